package cmd

import (
	"errors"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/idea-allies/upwork-pipeline/internal/automation"
	"github.com/idea-allies/upwork-pipeline/internal/proposal"
	"github.com/idea-allies/upwork-pipeline/internal/scoring"
)

const (
	app = "upwork-pipeline"

	defaultDBPath      = "data/pipeline.db"
	defaultProfilePath = "config/profile.yaml"
	defaultReviewDir   = "proposals"
)

type Config struct {
	DBPath      string `mapstructure:"db-path"`
	ProfileFile string `mapstructure:"profile-file"`
	ReviewDir   string `mapstructure:"review-dir"`

	Vollna *struct {
		TokenFile string `mapstructure:"token-file"`
	} `mapstructure:"vollna"`

	Discord *struct {
		WebhookFile string `mapstructure:"webhook-file"`
	} `mapstructure:"discord"`

	GitHub *struct {
		Username  string `mapstructure:"username"`
		TokenFile string `mapstructure:"token-file"`
	} `mapstructure:"github"`

	Scoring    *scoring.Rubric    `mapstructure:"scoring"`
	Automation *automation.Config `mapstructure:"automation"`
	Proposals  *proposal.Config   `mapstructure:"proposals"`

	AI *AIConfig `mapstructure:"ai"`
}

type AIConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Gemini  *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "upwork-pipeline qualifies freelance job postings, drafts proposals and tracks their outcomes",
		// An unrecognized subcommand falls through to help instead of an error.
		Args: cobra.ArbitraryArgs,
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	for key, env := range map[string]string{
		"vollna.token-file":    "VOLLNA_TOKEN_FILE",
		"discord.webhook-file": "DISCORD_WEBHOOK_FILE",
		"github.token-file":    "GITHUB_TOKEN_FILE",
	} {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is upwork-pipeline.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
		viper.SetConfigType("yaml")
	}

	// A missing config file is fine, everything has defaults. A present but
	// unparseable one is not.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return
		}
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, err
	}

	if config.DBPath == "" {
		config.DBPath = defaultDBPath
	}
	if config.ProfileFile == "" {
		config.ProfileFile = defaultProfilePath
	}
	if config.ReviewDir == "" {
		config.ReviewDir = defaultReviewDir
	}

	return config, nil
}

// rubric returns the configured scoring rubric, or the built-in defaults.
func (c *Config) rubric() scoring.Rubric {
	if c.Scoring != nil {
		return *c.Scoring
	}
	return scoring.DefaultRubric()
}

func (c *Config) automationConfig() automation.Config {
	cfg := automation.DefaultConfig()
	if c.Automation != nil {
		o := c.Automation
		if o.QualifyThreshold > 0 {
			cfg.QualifyThreshold = o.QualifyThreshold
		}
		if o.AlertThreshold > 0 {
			cfg.AlertThreshold = o.AlertThreshold
		}
		if o.ProposeThreshold > 0 {
			cfg.ProposeThreshold = o.ProposeThreshold
		}
		if o.DigestHour > 0 {
			cfg.DigestHour = o.DigestHour
		}
		if o.AlertDelay > 0 {
			cfg.AlertDelay = o.AlertDelay
		}
		if o.FetchDelay > 0 {
			cfg.FetchDelay = o.FetchDelay
		}
	}
	return cfg
}

func (c *Config) proposalConfig() proposal.Config {
	if c.Proposals != nil && len(c.Proposals.Templates) > 0 {
		return *c.Proposals
	}
	return proposal.DefaultConfig()
}
