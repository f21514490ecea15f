package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/idea-allies/upwork-pipeline/internal/pipeline"
	"github.com/idea-allies/upwork-pipeline/internal/scoring"
	"github.com/idea-allies/upwork-pipeline/internal/utils"
)

const jobsListLimit = 50

var jobsCmd = &cobra.Command{
	Use:       "jobs [all|hot|warm|pending|submitted|qualified]",
	Short:     "List tracked jobs",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"all", "hot", "warm", "pending", "submitted", "qualified"},
	Run: func(_ *cobra.Command, args []string) {
		view := "all"
		if len(args) == 1 {
			view = args[0]
		}
		listJobs(view)
	},
}

func init() {
	rootCmd.AddCommand(jobsCmd)
}

func listJobs(view string) {
	logger := newLogger()

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	store := openStore(config, logger)
	defer store.Close()

	jobs, err := jobsForView(store, view)
	if err != nil {
		logger.Fatal("listing jobs", zap.Error(err))
	}

	if len(jobs) == 0 {
		fmt.Println("no jobs match")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SCORE\tCAT\tSTATUS\tBUDGET\tID\tTITLE")
	for _, j := range jobs {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			j.Score, scoring.Category(j.Score), j.Status, j.BudgetLabel(),
			j.ID, utils.Truncate(j.Title, 60),
		)
	}
	w.Flush()
}

func jobsForView(store *pipeline.Store, view string) ([]*pipeline.Job, error) {
	switch view {
	case "all":
		return store.AllJobs(jobsListLimit)
	case "hot":
		return store.QualifiedJobs(85)
	case "warm":
		jobs, err := store.QualifiedJobs(70)
		if err != nil {
			return nil, err
		}
		var warm []*pipeline.Job
		for _, j := range jobs {
			if j.Score < 85 {
				warm = append(warm, j)
			}
		}
		return warm, nil
	case "qualified":
		return store.JobsByStatus(pipeline.StatusQualified)
	case "pending":
		// Drafted but not yet submitted.
		return pendingDrafts(store)
	case "submitted":
		return store.JobsByStatus(pipeline.StatusSubmitted)
	default:
		return nil, fmt.Errorf("unknown view %q", view)
	}
}
