package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/idea-allies/upwork-pipeline/internal/pipeline"
)

var statusCmd = &cobra.Command{
	Use:   "status <job-id> <status> [note]",
	Short: "Move a job through the pipeline (submitted, responded, won, lost, rejected, ...)",
	Args:  cobra.RangeArgs(2, 3),
	Run: func(_ *cobra.Command, args []string) {
		note := ""
		if len(args) == 3 {
			note = args[2]
		}
		setStatus(args[0], args[1], note)
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func setStatus(jobID, rawStatus, note string) {
	logger := newLogger()

	// Validate before touching anything.
	status, err := pipeline.ParseStatus(strings.ToLower(rawStatus))
	if err != nil {
		logger.Fatal("invalid status", zap.Error(err))
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	store := openStore(config, logger)
	defer store.Close()

	switch {
	case status == pipeline.StatusSubmitted:
		err = store.MarkSubmitted(jobID)
	case pipeline.IsOutcome(status):
		err = store.RecordResponse(jobID, status, note)
	default:
		err = store.UpdateStatus(jobID, status, note)
	}
	if err != nil {
		logger.Fatal("updating status", zap.String("job", jobID), zap.Error(err))
	}

	fmt.Printf("%s -> %s\n", jobID, status)
}
