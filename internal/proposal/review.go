package proposal

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/idea-allies/upwork-pipeline/internal/pipeline"
)

// ReviewEntry is one job in a review file: the draft plus enough posting
// context to edit the draft without opening the posting.
type ReviewEntry struct {
	Job   *pipeline.Job
	Draft string
}

// WriteReviewFile renders pending drafts into a single markdown file for
// editing before submission. Returns the written path.
func WriteReviewFile(dir string, entries []ReviewEntry) (string, error) {
	if len(entries) == 0 {
		return "", fmt.Errorf("no drafts to review")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating review dir: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Proposal review queue (%d drafts)\n", len(entries))
	fmt.Fprintf(&b, "Generated %s\n", time.Now().Format("2006-01-02 15:04"))

	for i, e := range entries {
		j := e.Job
		fmt.Fprintf(&b, "\n---\n\n## %d. %s\n\n", i+1, j.Title)
		fmt.Fprintf(&b, "- ID: %s\n", j.ID)
		fmt.Fprintf(&b, "- Score: %d\n", j.Score)
		fmt.Fprintf(&b, "- Budget: %s\n", j.BudgetLabel())
		if j.URL != "" {
			fmt.Fprintf(&b, "- Link: %s\n", j.URL)
		}
		fmt.Fprintf(&b, "- Template: %s\n", j.ProposalTemplate)
		fmt.Fprintf(&b, "\n```\n%s\n```\n", e.Draft)
		fmt.Fprintf(&b, "\nAfter submitting on the platform, run: upwork-pipeline status %s submitted\n", j.ID)
	}

	path := filepath.Join(dir, fmt.Sprintf("review-%s.md", time.Now().Format("2006-01-02")))
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("writing review file: %w", err)
	}
	return path, nil
}

// Summary renders a one-line description of a draft for interactive listing.
func Summary(j *pipeline.Job) string {
	return fmt.Sprintf("[%d] %s (%s)", j.Score, trimTitle(j.Title), j.BudgetLabel())
}

func trimTitle(title string) string {
	if len(title) > 50 {
		return title[:50] + "..."
	}
	return title
}
