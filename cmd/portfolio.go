package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/idea-allies/upwork-pipeline/internal/portfolio"
	"github.com/idea-allies/upwork-pipeline/internal/profile"
	"github.com/idea-allies/upwork-pipeline/internal/secrets"
)

var portfolioCmd = &cobra.Command{
	Use:   "portfolio",
	Short: "Sync the profile's repository list from GitHub",
	Run: func(_ *cobra.Command, _ []string) {
		syncPortfolio()
	},
}

var portfolioListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the synced portfolio repositories",
	Run: func(_ *cobra.Command, _ []string) {
		listPortfolio()
	},
}

func init() {
	rootCmd.AddCommand(portfolioCmd)
	portfolioCmd.AddCommand(portfolioListCmd)
}

func syncPortfolio() {
	ctx := context.Background()
	logger := newLogger()

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}
	if config.GitHub == nil || config.GitHub.Username == "" {
		logger.Fatal("github username is not configured (set github.username)")
	}

	prof, err := profile.Load(config.ProfileFile)
	if err != nil {
		logger.Fatal("loading profile", zap.String("path", config.ProfileFile), zap.Error(err))
	}

	token := ""
	if config.GitHub.TokenFile != "" {
		token, err = secrets.Load(secrets.Source{
			Name: "github token",
			File: config.GitHub.TokenFile,
		})
		if err != nil {
			logger.Warn("loading github token, using unauthenticated access", zap.Error(err))
			token = ""
		}
	}

	client := portfolio.New(config.GitHub.Username, token, logger)
	kept, err := client.Sync(ctx, prof)
	if err != nil {
		logger.Fatal("syncing portfolio", zap.Error(err))
	}

	if err := profile.Save(config.ProfileFile, prof); err != nil {
		logger.Fatal("saving profile", zap.Error(err))
	}

	fmt.Printf("synced %d repositories into %s\n", len(kept), config.ProfileFile)
	for _, h := range portfolio.Highlights(kept, 5) {
		fmt.Printf("  %s\n", h)
	}
}

func listPortfolio() {
	logger := newLogger()

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	prof, err := profile.Load(config.ProfileFile)
	if err != nil {
		logger.Fatal("loading profile", zap.String("path", config.ProfileFile), zap.Error(err))
	}

	if len(prof.Portfolio.GitHubRepos) == 0 {
		fmt.Println("no repositories synced yet; run: " + app + " portfolio")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "STARS\tLANGUAGE\tUPDATED\tNAME")
	for _, r := range prof.Portfolio.GitHubRepos {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", r.Stars, r.Language, r.LastUpdated, r.Name)
	}
	w.Flush()

	if prof.Portfolio.LastSynced != "" {
		fmt.Printf("\nlast synced: %s\n", prof.Portfolio.LastSynced)
	}
}
