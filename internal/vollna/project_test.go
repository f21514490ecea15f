package vollna

import "testing"

func TestJobIDDerivation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		project Project
		want    string
	}{
		{
			name:    "prefers ciphertext",
			project: Project{Ciphertext: "~01abc", UID: "u1", URL: "https://www.upwork.com/jobs/~01xyz"},
			want:    "01abc",
		},
		{
			name:    "falls back to uid",
			project: Project{UID: "u1", URL: "https://www.upwork.com/jobs/~01xyz"},
			want:    "u1",
		},
		{
			name:    "extracts token from url",
			project: Project{URL: "https://www.upwork.com/jobs/~01xyz"},
			want:    "01xyz",
		},
		{
			name:    "raw url as last resort",
			project: Project{URL: "https://www.freelancer.com/projects/1234"},
			want:    "https://www.freelancer.com/projects/1234",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.project.JobID(); got != tt.want {
				t.Fatalf("JobID() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveMoneyStrings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		min, max float64
		ok       bool
	}{
		{"$2,000-$3,000", 2000, 3000, true},
		{"$500 - $1,000", 500, 1000, true},
		{"$500", 500, 500, true},
		{"$30.50/hr", 30.5, 30.5, true},
		{"negotiable", 0, 0, false},
		{"", 0, 0, false},
	}

	for _, tt := range tests {
		m, ok := ResolveMoney(tt.input)
		if ok != tt.ok {
			t.Errorf("ResolveMoney(%q) ok = %v, want %v", tt.input, ok, tt.ok)
			continue
		}
		if ok && (m.Min != tt.min || m.Max != tt.max) {
			t.Errorf("ResolveMoney(%q) = %v-%v, want %v-%v", tt.input, m.Min, m.Max, tt.min, tt.max)
		}
	}
}

func TestResolveMoneyStructured(t *testing.T) {
	t.Parallel()

	m, ok := ResolveMoney(map[string]any{"min": 30.0, "max": 50.0})
	if !ok || m.Min != 30 || m.Max != 50 {
		t.Fatalf("structured min/max: got %v %v", m, ok)
	}

	m, ok = ResolveMoney(map[string]any{"amount": 2500.0})
	if !ok || m.Min != 2500 || m.Max != 2500 {
		t.Fatalf("structured amount: got %v %v", m, ok)
	}

	if _, ok := ResolveMoney(map[string]any{}); ok {
		t.Fatal("empty object resolved to a budget")
	}

	if _, ok := ResolveMoney(nil); ok {
		t.Fatal("nil resolved to a budget")
	}
}

func TestHourlyRatesRequireHourlyMarker(t *testing.T) {
	t.Parallel()

	// A plain budget string is fixed-price, not hourly.
	p := Project{Budget: "$2,000-$3,000"}
	if _, ok := p.HourlyRates(); ok {
		t.Fatal("fixed budget string treated as hourly")
	}

	p = Project{Budget: "$30-$50/hr", BudgetType: "hourly"}
	m, ok := p.HourlyRates()
	if !ok || m.Min != 30 || m.Max != 50 {
		t.Fatalf("hourly budget string: got %v %v", m, ok)
	}

	// Structured hourly_rate needs no marker.
	p = Project{HourlyRate: map[string]any{"min": 40.0, "max": 60.0}}
	m, ok = p.HourlyRates()
	if !ok || m.Min != 40 || m.Max != 60 {
		t.Fatalf("structured hourly rate: got %v %v", m, ok)
	}
}

func TestSkillList(t *testing.T) {
	t.Parallel()

	p := Project{Skills: []any{"React", "TypeScript"}}
	if got := p.SkillList(); got != "React, TypeScript" {
		t.Fatalf("SkillList() = %q", got)
	}

	p = Project{Skills: "React, TypeScript"}
	if got := p.SkillList(); got != "React, TypeScript" {
		t.Fatalf("SkillList() = %q", got)
	}

	p = Project{}
	if got := p.SkillList(); got != "" {
		t.Fatalf("SkillList() = %q, want empty", got)
	}
}
