package cmd

import (
	"fmt"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/idea-allies/upwork-pipeline/internal/pipeline"
	"github.com/idea-allies/upwork-pipeline/internal/proposal"
)

const (
	promptBack          = "back"
	promptMarkSubmitted = "Mark as submitted"
	promptShowDraft     = "Show the draft"
)

var reviewCmd = &cobra.Command{
	Use:   "review [dir]",
	Short: "Review pending proposal drafts interactively, or export them to a review file",
	Args:  cobra.MaximumNArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		if len(args) == 1 {
			exportReview(args[0])
			return
		}
		review()
	},
}

func init() {
	rootCmd.AddCommand(reviewCmd)
}

func review() {
	logger := newLogger()

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	store := openStore(config, logger)
	defer store.Close()

	for {
		pending, err := pendingDrafts(store)
		if err != nil {
			logger.Fatal("listing pending drafts", zap.Error(err))
		}
		if len(pending) == 0 {
			fmt.Println("no pending drafts")
			return
		}

		items := make([]string, 0, len(pending)+1)
		for _, j := range pending {
			items = append(items, proposal.Summary(j))
		}
		items = append(items, promptBack)

		jobPrompt := promptui.Select{
			Label: "Choose a draft and press ENTER",
			Items: items,
			Size:  10,
		}
		idx, selected, err := jobPrompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}
		if selected == promptBack {
			return
		}

		if err := reviewOne(store, pending[idx]); err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func reviewOne(store *pipeline.Store, job *pipeline.Job) error {
	for {
		actionPrompt := promptui.Select{
			Label: job.Title,
			Items: []string{promptShowDraft, promptMarkSubmitted, promptBack},
		}
		_, action, err := actionPrompt.Run()
		if err != nil {
			return err
		}

		switch action {
		case promptBack:
			return nil
		case promptShowDraft:
			fmt.Printf("\n%s\n\n", job.ProposalText)
		case promptMarkSubmitted:
			if err := store.MarkSubmitted(job.ID); err != nil {
				return err
			}
			fmt.Printf("marked %s submitted\n", job.ID)
			return nil
		}
	}
}

func exportReview(dir string) {
	logger := newLogger()

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	store := openStore(config, logger)
	defer store.Close()

	pending, err := pendingDrafts(store)
	if err != nil {
		logger.Fatal("listing pending drafts", zap.Error(err))
	}
	if len(pending) == 0 {
		fmt.Println("no pending drafts")
		return
	}

	entries := make([]proposal.ReviewEntry, 0, len(pending))
	for _, j := range pending {
		entries = append(entries, proposal.ReviewEntry{Job: j, Draft: j.ProposalText})
	}

	path, err := proposal.WriteReviewFile(dir, entries)
	if err != nil {
		logger.Fatal("writing review file", zap.Error(err))
	}
	fmt.Printf("review file: %s\n", path)
}

func pendingDrafts(store *pipeline.Store) ([]*pipeline.Job, error) {
	var pending []*pipeline.Job
	for _, st := range []pipeline.Status{pipeline.StatusQualified, pipeline.StatusProposed} {
		jobs, err := store.JobsByStatus(st)
		if err != nil {
			return nil, err
		}
		for _, j := range jobs {
			if j.HasProposal() {
				pending = append(pending, j)
			}
		}
	}
	return pending, nil
}
