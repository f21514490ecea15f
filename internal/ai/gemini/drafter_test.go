package gemini

import (
	"context"
	"strings"
	"testing"

	"github.com/idea-allies/upwork-pipeline/internal/pipeline"
	"github.com/idea-allies/upwork-pipeline/internal/profile"
)

func TestNewDrafterRequiresKey(t *testing.T) {
	if _, err := NewDrafter(context.Background(), "  ", ""); err == nil {
		t.Fatal("expected error for empty api key")
	}
}

func TestBuildPromptIncludesJobAndProfile(t *testing.T) {
	job := &pipeline.Job{
		Title:       "Build a booking platform",
		Description: "We need a marketplace with payments.",
		Skills:      "Next.js, Stripe",
		BudgetType:  "fixed",
		BudgetMin:   4000,
		BudgetMax:   4000,
	}
	prof := &profile.Profile{
		Agency: profile.Agency{
			TechStack: map[string][]string{"frontend": {"Next.js"}},
		},
		Portfolio: profile.Portfolio{
			Highlights: []string{"Shipped a two-sided marketplace"},
		},
	}

	prompt := buildPrompt(job, prof)
	for _, want := range []string{
		"Build a booking platform",
		"Next.js, Stripe",
		"Shipped a two-sided marketplace",
		"clarifying question",
	} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestDraftOnUninitializedDrafter(t *testing.T) {
	var d *Drafter
	if _, err := d.Draft(context.Background(), &pipeline.Job{}, nil); err == nil {
		t.Fatal("expected error from nil drafter")
	}
}
