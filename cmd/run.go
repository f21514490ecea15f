package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/idea-allies/upwork-pipeline/internal/automation"
	"github.com/idea-allies/upwork-pipeline/internal/scoring"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline cycle: fetch, score, alert, draft, digest",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("cron", "", "keep running, executing the cycle on this cron schedule")
}

func run(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := newLogger()

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the "+app, zap.String("version", version))

	fetcher, err := newFetcher(config, logger)
	if err != nil {
		logger.Fatal("configuring the vollna client", zap.Error(err))
	}

	store := openStore(config, logger)
	defer store.Close()

	deps := automation.Deps{
		Store:     store,
		Fetcher:   fetcher,
		Notifier:  newNotifier(config, logger),
		Engine:    scoring.NewEngine(config.rubric()),
		Drafter:   newDrafter(ctx, config, logger),
		Profile:   loadProfile(config, logger),
		Proposals: config.proposalConfig(),
		Logger:    logger,
		Config:    config.automationConfig(),
	}

	if spec := cmd.Flag("cron").Value.String(); spec != "" {
		if err := automation.RunOnSchedule(ctx, deps, spec); err != nil && ctx.Err() == nil {
			logger.Fatal("scheduler failed", zap.Error(err))
		}
		return
	}

	automation.Run(ctx, deps)
}
