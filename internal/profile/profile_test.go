package profile

import (
	"path/filepath"
	"testing"
)

func TestLoadSaveRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")

	p := &Profile{
		Owner:  Owner{Name: "Renee", GitHub: "renee-dev"},
		Agency: Agency{Name: "Idea Allies", TechStack: map[string][]string{"frontend": {"React"}}},
		Portfolio: Portfolio{
			Highlights: []string{"Built a SaaS dashboard"},
			Showcase: []ShowcaseItem{
				{Name: "AcmeMetrics", Repos: []string{"acme-metrics", "acme-metrics-api"}},
				{Name: "PayBridge"},
			},
		},
	}

	if err := Save(path, p); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if got.Owner.GitHub != "renee-dev" || got.Agency.TechStack["frontend"][0] != "React" {
		t.Fatalf("roundtrip mismatch: %+v", got)
	}
	if len(got.Portfolio.Showcase) != 2 {
		t.Fatalf("showcase not preserved: %+v", got.Portfolio)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing profile")
	}
}

func TestShowcaseNames(t *testing.T) {
	p := &Profile{Portfolio: Portfolio{
		Showcase: []ShowcaseItem{
			{Name: "AcmeMetrics", Repos: []string{"acme-metrics"}},
			{Name: "PayBridge"},
		},
	}}

	names := p.ShowcaseNames()
	for _, want := range []string{"acme-metrics", "PayBridge"} {
		if !names[want] {
			t.Fatalf("expected %q in showcase names, got %v", want, names)
		}
	}
	if names["AcmeMetrics"] {
		t.Fatal("items with explicit repos must not contribute their display name")
	}
}
