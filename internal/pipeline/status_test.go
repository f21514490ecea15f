package pipeline

import "testing"

func TestParseStatusValidValues(t *testing.T) {
	valid := []string{"new", "qualified", "proposed", "submitted", "responded", "won", "lost", "rejected"}
	for _, s := range valid {
		got, err := ParseStatus(s)
		if err != nil {
			t.Errorf("ParseStatus(%q) returned unexpected error: %v", s, err)
		}
		if string(got) != s {
			t.Errorf("ParseStatus(%q) = %q", s, got)
		}
	}
}

func TestParseStatusInvalidValues(t *testing.T) {
	for _, s := range []string{"", "NEW", "open", "pending"} {
		if _, err := ParseStatus(s); err == nil {
			t.Errorf("ParseStatus(%q) expected error, got nil", s)
		}
	}
}

func TestIsOutcome(t *testing.T) {
	for _, s := range []Status{StatusResponded, StatusWon, StatusLost} {
		if !IsOutcome(s) {
			t.Errorf("IsOutcome(%s) = false", s)
		}
	}
	for _, s := range []Status{StatusNew, StatusQualified, StatusSubmitted, StatusRejected} {
		if IsOutcome(s) {
			t.Errorf("IsOutcome(%s) = true", s)
		}
	}
}

func TestIsPrePursuit(t *testing.T) {
	for _, s := range []Status{StatusNew, StatusQualified} {
		if !IsPrePursuit(s) {
			t.Errorf("IsPrePursuit(%s) = false", s)
		}
	}
	for _, s := range []Status{StatusSubmitted, StatusWon, StatusRejected} {
		if IsPrePursuit(s) {
			t.Errorf("IsPrePursuit(%s) = true", s)
		}
	}
}
