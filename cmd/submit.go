package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var submitCmd = &cobra.Command{
	Use:   "submit <job-id>",
	Short: "Print the proposal for manual submission and mark the job submitted",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		submit(args[0])
	},
}

func init() {
	rootCmd.AddCommand(submitCmd)
}

func submit(jobID string) {
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
	if !job.HasProposal() {
		logger.Fatal("no proposal drafted for this job yet",
			zap.String("job", jobID),
			zap.String("hint", "run: "+app+" propose "+jobID),
		)
	}

	if err := store.MarkSubmitted(job.ID); err != nil {
		logger.Fatal("marking submitted", zap.Error(err))
	}

	fmt.Printf("--- paste into the posting at %s ---\n\n%s\n\n", job.URL, job.ProposalText)
	fmt.Printf("marked submitted. record the response later with: %s status %s responded|won|lost\n", app, job.ID)
}
