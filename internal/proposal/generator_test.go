package proposal

import (
	"os"
	"strings"
	"testing"

	"github.com/idea-allies/upwork-pipeline/internal/pipeline"
	"github.com/idea-allies/upwork-pipeline/internal/profile"
)

func testProfile() *profile.Profile {
	return &profile.Profile{
		Agency: profile.Agency{
			TechStack: map[string][]string{
				"frontend": {"React", "Next.js", "TypeScript"},
				"backend":  {"Node.js", "PostgreSQL"},
			},
		},
		Portfolio: profile.Portfolio{
			Highlights: []string{
				"Built a analytics dashboard serving 40k monthly users",
				"Shipped a payments integration for a fintech startup",
			},
			Showcase: []profile.ShowcaseItem{
				{Name: "AcmeMetrics"},
				{Name: "PayBridge"},
			},
		},
	}
}

func dashboardJob() *pipeline.Job {
	return &pipeline.Job{
		ID:    "~abc123",
		Title: "React dashboard for SaaS analytics",
		Description: "We need an experienced developer to build a dashboard for our SaaS product. " +
			"Must support real-time charts and role based access. " +
			"You should have strong TypeScript experience.",
		Skills:     "React, TypeScript",
		BudgetType: "fixed",
		BudgetMin:  3000,
		BudgetMax:  6000,
		Score:      88,
	}
}

func TestGenerateSelectsWebappTemplate(t *testing.T) {
	content, name := Generate(dashboardJob(), testProfile(), DefaultConfig())
	if name != "webapp" {
		t.Fatalf("expected webapp template, got %q", name)
	}
	if strings.Contains(content, "{") {
		t.Fatalf("unresolved placeholder left in draft:\n%s", content)
	}
	if !strings.Contains(content, "React") {
		t.Fatalf("expected matched tech stack in draft:\n%s", content)
	}
}

func TestGenerateDeterministic(t *testing.T) {
	job := dashboardJob()
	prof := testProfile()
	cfg := DefaultConfig()

	first, _ := Generate(job, prof, cfg)
	second, _ := Generate(job, prof, cfg)
	if first != second {
		t.Fatal("expected identical drafts for identical input")
	}
}

func TestGenerateFallsBackToGeneric(t *testing.T) {
	job := &pipeline.Job{
		ID:          "~xyz",
		Title:       "Help with a spreadsheet macro",
		Description: "We want someone to automate our weekly report workflow in a reliable way.",
	}
	_, name := Generate(job, testProfile(), DefaultConfig())
	if name != "generic" {
		t.Fatalf("expected generic template, got %q", name)
	}
}

func TestGenerateRespectsMaxLength(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxLength = 200
	content, _ := Generate(dashboardJob(), testProfile(), cfg)
	if len(content) > 200 {
		t.Fatalf("draft length %d exceeds limit", len(content))
	}
}

func TestGenerateWithoutProfile(t *testing.T) {
	content, _ := Generate(dashboardJob(), nil, DefaultConfig())
	if !strings.Contains(content, "Next.js, React, TypeScript") {
		t.Fatalf("expected fallback tech stack in draft:\n%s", content)
	}
}

func TestExtractRequirements(t *testing.T) {
	desc := "Short line. We need real-time charts with websocket updates. " +
		"You must have TypeScript experience and strong testing habits. " +
		"Budget is flexible for the right person who should communicate daily."
	got := extractRequirements(desc)

	lines := strings.Split(got, "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 bullets, got %d:\n%s", len(lines), got)
	}
	for _, l := range lines {
		if !strings.HasPrefix(l, "• ") {
			t.Fatalf("bullet missing marker: %q", l)
		}
	}
}

func TestExtractRequirementsVerbFallback(t *testing.T) {
	desc := "Please build a landing page with our existing brand assets and copy."
	got := extractRequirements(desc)
	if !strings.Contains(got, "landing page") {
		t.Fatalf("expected verb fallback to pick the line, got:\n%s", got)
	}
}

func TestClarifyingQuestionBranches(t *testing.T) {
	cases := []struct {
		title string
		want  string
	}{
		{"Figma to React conversion", "designs ready"},
		{"Stripe API integration", "documented APIs"},
		{"MVP for my startup", "first launch"},
		{"Fix checkout bug", "reproduce"},
		{"Misc consulting", "first month"},
	}
	for _, c := range cases {
		q := clarifyingQuestion(&pipeline.Job{Title: c.title})
		if !strings.Contains(q, c.want) {
			t.Fatalf("title %q: expected question containing %q, got %q", c.title, c.want, q)
		}
	}
}

func TestWriteReviewFile(t *testing.T) {
	dir := t.TempDir()
	job := dashboardJob()
	job.ProposalTemplate = "webapp"

	path, err := WriteReviewFile(dir, []ReviewEntry{{Job: job, Draft: "draft body"}})
	if err != nil {
		t.Fatalf("WriteReviewFile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading review file: %v", err)
	}
	text := string(data)
	if !strings.Contains(text, job.Title) || !strings.Contains(text, "draft body") {
		t.Fatalf("review file missing content:\n%s", text)
	}
	if !strings.Contains(text, "status ~abc123 submitted") {
		t.Fatalf("review file missing follow-up hint:\n%s", text)
	}
}

func TestWriteReviewFileEmpty(t *testing.T) {
	if _, err := WriteReviewFile(t.TempDir(), nil); err == nil {
		t.Fatal("expected error for empty queue")
	}
}
