package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/idea-allies/upwork-pipeline/internal/pipeline"
	"github.com/idea-allies/upwork-pipeline/internal/utils"
)

var trackCmd = &cobra.Command{
	Use:   "track",
	Short: "Show the pipeline overview: counts per status and submissions awaiting a response",
	Run: func(_ *cobra.Command, _ []string) {
		track()
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregate pipeline counters",
	Run: func(cmd *cobra.Command, _ []string) {
		days, _ := cmd.Flags().GetInt("days")
		stats(days)
	},
}

func init() {
	rootCmd.AddCommand(trackCmd)
	rootCmd.AddCommand(statsCmd)

	statsCmd.Flags().Int("days", 30, "trailing window in days")
}

func track() {
	logger := newLogger()

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	store := openStore(config, logger)
	defer store.Close()

	statuses := []pipeline.Status{
		pipeline.StatusNew, pipeline.StatusQualified, pipeline.StatusProposed,
		pipeline.StatusSubmitted, pipeline.StatusResponded,
		pipeline.StatusWon, pipeline.StatusLost, pipeline.StatusRejected,
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "STATUS\tCOUNT")
	for _, st := range statuses {
		jobs, err := store.JobsByStatus(st)
		if err != nil {
			logger.Fatal("listing jobs", zap.Error(err))
		}
		fmt.Fprintf(w, "%s\t%d\n", st, len(jobs))
	}
	w.Flush()

	submitted, err := store.JobsByStatus(pipeline.StatusSubmitted)
	if err != nil {
		logger.Fatal("listing submitted jobs", zap.Error(err))
	}
	if len(submitted) == 0 {
		return
	}

	fmt.Println("\nawaiting response:")
	for _, j := range submitted {
		age := ""
		if !j.SubmittedAt.IsZero() {
			age = fmt.Sprintf(" (%dd ago)", int(time.Since(j.SubmittedAt).Hours()/24))
		}
		fmt.Printf("  %s  %s%s\n", j.ID, utils.Truncate(j.Title, 60), age)
	}
}

func stats(days int) {
	logger := newLogger()

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	store := openStore(config, logger)
	defer store.Close()

	st, err := store.StatsSince(days)
	if err != nil {
		logger.Fatal("collecting stats", zap.Error(err))
	}

	fmt.Printf("last %d days:\n", days)
	fmt.Printf("  jobs tracked:     %d\n", st.TotalJobs)
	fmt.Printf("  qualified:        %d\n", st.QualifiedJobs)
	fmt.Printf("  proposals:        %d\n", st.ProposalsGenerated)
	fmt.Printf("  submitted:        %d\n", st.Submitted)
	fmt.Printf("  responses:        %d\n", st.Responses)
	fmt.Printf("  won:              %d\n", st.Won)
	fmt.Printf("  lost:             %d\n", st.Lost)
	fmt.Printf("  avg score:        %.1f\n", st.AvgScore)
}
