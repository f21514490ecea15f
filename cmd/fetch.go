package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/idea-allies/upwork-pipeline/internal/automation"
	"github.com/idea-allies/upwork-pipeline/internal/pipeline"
	"github.com/idea-allies/upwork-pipeline/internal/scoring"
	"github.com/idea-allies/upwork-pipeline/internal/utils"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch and score current postings without alerting or drafting",
	Run: func(_ *cobra.Command, _ []string) {
		fetch()
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}

func fetch() {
	ctx := context.Background()
	logger := newLogger()

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	fetcher, err := newFetcher(config, logger)
	if err != nil {
		logger.Fatal("configuring the vollna client", zap.Error(err))
	}

	store := openStore(config, logger)
	defer store.Close()

	engine := scoring.NewEngine(config.rubric())
	auto := config.automationConfig()

	filters, err := fetcher.ListFilters(ctx)
	if err != nil {
		logger.Fatal("listing filters", zap.Error(err))
	}

	for i, f := range filters {
		if i > 0 {
			if err := utils.WaitFor(ctx, auto.FetchDelay); err != nil {
				return
			}
		}
		projects, err := fetcher.ListProjects(ctx, f.ID)
		if err != nil {
			logger.Error("fetching filter projects", zap.String("filter", f.Name), zap.Error(err))
			continue
		}

		for _, p := range projects {
			job := automation.BuildJob(p, time.Now().UTC())
			exists, err := store.Exists(job.ID)
			if err != nil {
				logger.Fatal("checking store", zap.Error(err))
			}
			if exists {
				continue
			}

			verdict := engine.Score(job.Posting())
			job.Score = verdict.Total
			job.ScoreBreakdown = verdict.Breakdown
			job.AutoReject = verdict.AutoReject
			job.RejectReason = verdict.RejectReason
			switch {
			case verdict.AutoReject:
				job.Status = pipeline.StatusRejected
			case verdict.Total >= auto.QualifyThreshold:
				job.Status = pipeline.StatusQualified
			}

			if err := store.UpsertScore(job, verdict); err != nil {
				logger.Error("storing job", zap.String("job", job.ID), zap.Error(err))
				continue
			}

			fmt.Printf("%-4s %3d  %s\n", scoring.Category(verdict.Total), verdict.Total, job.Title)
		}
	}
}
