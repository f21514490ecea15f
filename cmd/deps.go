package cmd

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/idea-allies/upwork-pipeline/internal/ai"
	"github.com/idea-allies/upwork-pipeline/internal/ai/gemini"
	"github.com/idea-allies/upwork-pipeline/internal/logger"
	"github.com/idea-allies/upwork-pipeline/internal/notify"
	"github.com/idea-allies/upwork-pipeline/internal/pipeline"
	"github.com/idea-allies/upwork-pipeline/internal/profile"
	"github.com/idea-allies/upwork-pipeline/internal/secrets"
	"github.com/idea-allies/upwork-pipeline/internal/vollna"
)

func newLogger() *zap.Logger {
	l, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	return l
}

func openStore(config *Config, logger *zap.Logger) *pipeline.Store {
	store, err := pipeline.Open(config.DBPath)
	if err != nil {
		logger.Fatal("opening pipeline store", zap.String("path", config.DBPath), zap.Error(err))
	}
	return store
}

func newFetcher(config *Config, logger *zap.Logger) (*vollna.Client, error) {
	tokenFile := ""
	if config.Vollna != nil {
		tokenFile = strings.TrimSpace(config.Vollna.TokenFile)
	}
	if tokenFile == "" {
		return nil, errors.New("vollna token file is not configured (set VOLLNA_TOKEN_FILE or vollna.token-file)")
	}

	token, err := secrets.Load(secrets.Source{
		Name: "vollna token",
		File: tokenFile,
	})
	if err != nil {
		return nil, err
	}
	return vollna.New(token, logger), nil
}

// newNotifier builds the Discord notifier. A missing webhook is not an error;
// the notifier logs and skips every send.
func newNotifier(config *Config, logger *zap.Logger) *notify.Discord {
	webhookFile := ""
	if config.Discord != nil {
		webhookFile = strings.TrimSpace(config.Discord.WebhookFile)
	}
	if webhookFile == "" {
		return notify.New("", logger)
	}

	webhook, err := secrets.Load(secrets.Source{
		Name: "discord webhook",
		File: webhookFile,
	})
	if err != nil {
		logger.Warn("loading discord webhook, notifications disabled", zap.Error(err))
		return notify.New("", logger)
	}
	return notify.New(webhook, logger)
}

// newDrafter builds the optional AI drafter, nil when disabled or broken.
func newDrafter(ctx context.Context, config *Config, logger *zap.Logger) ai.Drafter {
	if config.AI == nil || !config.AI.Enabled {
		return nil
	}
	if config.AI.Gemini == nil {
		logger.Warn("ai enabled without gemini configuration, using template drafts")
		return nil
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: config.AI.Gemini.APIKeyFile,
	})
	if err != nil {
		logger.Warn("loading gemini api key, using template drafts", zap.Error(err))
		return nil
	}

	drafter, err := gemini.NewDrafter(ctx, apiKey, config.AI.Gemini.Model)
	if err != nil {
		logger.Warn("creating gemini drafter, using template drafts", zap.Error(err))
		return nil
	}
	logger.Info("gemini drafter enabled", zap.String("model", drafter.Model()))
	return drafter
}

// loadProfile reads the agency profile. Absence is tolerated; generation then
// uses built-in fallbacks.
func loadProfile(config *Config, logger *zap.Logger) *profile.Profile {
	prof, err := profile.Load(config.ProfileFile)
	if err != nil {
		logger.Warn("loading profile", zap.String("path", config.ProfileFile), zap.Error(err))
		return nil
	}
	return prof
}
