package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var digestCmd = &cobra.Command{
	Use:   "digest",
	Short: "Send the daily digest now, ignoring the schedule window",
	Run: func(_ *cobra.Command, _ []string) {
		digest()
	},
}

func init() {
	rootCmd.AddCommand(digestCmd)
}

func digest() {
	ctx := context.Background()
	logger := newLogger()

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	store := openStore(config, logger)
	defer store.Close()

	auto := config.automationConfig()
	jobs, err := store.QualifiedJobs(auto.QualifyThreshold)
	if err != nil {
		logger.Fatal("listing qualified jobs", zap.Error(err))
	}

	st, err := store.StatsSince(7)
	if err != nil {
		logger.Fatal("collecting stats", zap.Error(err))
	}

	notifier := newNotifier(config, logger)
	if !notifier.SendDailyDigest(ctx, jobs, st) {
		logger.Fatal("digest was not delivered")
	}
	if err := store.MarkDigestSent(time.Now()); err != nil {
		logger.Fatal("marking digest sent", zap.Error(err))
	}

	fmt.Printf("digest sent: %d qualified jobs\n", len(jobs))
}
