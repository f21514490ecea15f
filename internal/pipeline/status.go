// Package pipeline owns the persisted per-job lifecycle.
//
// Status graph for the automated path:
//
//	new ──► qualified ──► submitted ──► {responded, won, lost}
//
// Saving a proposal promotes new to qualified. rejected is reachable from any
// pre-submission state through explicit operator action, and UpdateStatus is
// an operator override that does not enforce the forward ordering.
package pipeline

import "fmt"

// Status is one job's position in the response lifecycle.
type Status string

const (
	StatusNew       Status = "new"
	StatusQualified Status = "qualified"
	StatusProposed  Status = "proposed"
	StatusSubmitted Status = "submitted"
	StatusResponded Status = "responded"
	StatusWon       Status = "won"
	StatusLost      Status = "lost"
	StatusRejected  Status = "rejected"
)

// ParseStatus converts a raw string to a Status, rejecting unknown values at
// the boundary.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	switch st {
	case StatusNew, StatusQualified, StatusProposed, StatusSubmitted,
		StatusResponded, StatusWon, StatusLost, StatusRejected:
		return st, nil
	}
	return "", fmt.Errorf("unknown job status %q", s)
}

// IsOutcome reports whether s is a terminal response outcome.
func IsOutcome(s Status) bool {
	return s == StatusResponded || s == StatusWon || s == StatusLost
}

// IsPrePursuit reports whether a job is still eligible for proposal work.
func IsPrePursuit(s Status) bool {
	return s == StatusNew || s == StatusQualified
}
