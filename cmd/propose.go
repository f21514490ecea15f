package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/idea-allies/upwork-pipeline/internal/pipeline"
	"github.com/idea-allies/upwork-pipeline/internal/proposal"
)

var proposeCmd = &cobra.Command{
	Use:   "propose <job-id>",
	Short: "Generate a proposal draft for one job",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		propose(args[0])
	},
}

var batchProposeCmd = &cobra.Command{
	Use:   "batch-propose",
	Short: "Generate drafts for every eligible high-scoring job",
	Run: func(_ *cobra.Command, _ []string) {
		batchPropose()
	},
}

func init() {
	rootCmd.AddCommand(proposeCmd)
	rootCmd.AddCommand(batchProposeCmd)
}

func propose(jobID string) {
	ctx := context.Background()
	logger := newLogger()

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	store := openStore(config, logger)
	defer store.Close()

	job, err := store.Get(jobID)
	if err != nil {
		logger.Fatal("loading job", zap.Error(err))
	}
	if job == nil {
		logger.Fatal("job not found", zap.String("job", jobID))
	}

	draft, tmpl := draftFor(ctx, config, logger, job)
	if err := store.SaveProposal(job.ID, draft, tmpl); err != nil {
		logger.Fatal("saving proposal", zap.Error(err))
	}

	fmt.Printf("--- %s (template: %s) ---\n\n%s\n", job.Title, tmpl, draft)
}

func batchPropose() {
	ctx := context.Background()
	logger := newLogger()

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	store := openStore(config, logger)
	defer store.Close()

	jobs, err := store.JobsNeedingProposals(config.automationConfig().ProposeThreshold)
	if err != nil {
		logger.Fatal("listing eligible jobs", zap.Error(err))
	}
	if len(jobs) == 0 {
		fmt.Println("no jobs need proposals")
		return
	}

	var entries []proposal.ReviewEntry
	for _, job := range jobs {
		draft, tmpl := draftFor(ctx, config, logger, job)
		if err := store.SaveProposal(job.ID, draft, tmpl); err != nil {
			logger.Error("saving proposal", zap.String("job", job.ID), zap.Error(err))
			continue
		}
		entries = append(entries, proposal.ReviewEntry{Job: job, Draft: draft})
		fmt.Printf("drafted %s\n", proposal.Summary(job))
	}

	path, err := proposal.WriteReviewFile(config.ReviewDir, entries)
	if err != nil {
		logger.Fatal("writing review file", zap.Error(err))
	}
	fmt.Printf("\nreview file: %s\n", path)
}

func draftFor(ctx context.Context, config *Config, logger *zap.Logger, job *pipeline.Job) (string, string) {
	prof := loadProfile(config, logger)

	if drafter := newDrafter(ctx, config, logger); drafter != nil {
		draft, err := drafter.Draft(ctx, job, prof)
		if err == nil {
			return draft, "ai"
		}
		logger.Warn("ai draft failed, falling back to template", zap.Error(err))
	}
	return proposal.Generate(job, prof, config.proposalConfig())
}
