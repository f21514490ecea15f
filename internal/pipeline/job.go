package pipeline

import (
	"fmt"
	"time"

	"github.com/idea-allies/upwork-pipeline/internal/scoring"
)

// Job is the persisted record of one posting's pursuit. Created on first
// sighting of a posting id and never deleted afterwards; score fields refresh
// on resighting but the lifecycle fields only move forward.
type Job struct {
	ID          string
	Title       string
	Description string
	URL         string

	BudgetType    string
	BudgetMin     float64
	BudgetMax     float64
	HourlyRateMin float64
	HourlyRateMax float64
	Skills        string

	ClientCountry         string
	ClientPaymentVerified bool
	ClientHireRate        *float64
	ClientTotalSpent      float64

	PostedAt  time.Time
	FetchedAt time.Time

	Score          int
	ScoreBreakdown scoring.Breakdown
	AutoReject     bool
	RejectReason   string

	Status           Status
	ProposalText     string
	ProposalTemplate string

	SubmittedAt time.Time
	ResponseAt  time.Time
	Outcome     string
	Notes       string
}

// Posting exposes the job's immutable posting attributes as scoring input.
func (j *Job) Posting() scoring.Posting {
	return scoring.Posting{
		Title:                 j.Title,
		Description:           j.Description,
		Skills:                j.Skills,
		BudgetType:            j.BudgetType,
		BudgetMin:             j.BudgetMin,
		BudgetMax:             j.BudgetMax,
		HourlyRateMin:         j.HourlyRateMin,
		HourlyRateMax:         j.HourlyRateMax,
		ClientPaymentVerified: j.ClientPaymentVerified,
		ClientHireRate:        j.ClientHireRate,
		ClientTotalSpent:      j.ClientTotalSpent,
		ClientCountry:         j.ClientCountry,
		PostedAt:              j.PostedAt,
	}
}

// HasProposal reports whether a proposal has been generated for this job.
func (j *Job) HasProposal() bool {
	return j.ProposalText != ""
}

// BudgetLabel renders the budget for listings and notifications.
func (j *Job) BudgetLabel() string {
	if j.BudgetType == "hourly" && j.HourlyRateMin > 0 {
		if j.HourlyRateMax > j.HourlyRateMin {
			return fmt.Sprintf("$%g-$%g/hr", j.HourlyRateMin, j.HourlyRateMax)
		}
		return fmt.Sprintf("$%g/hr", j.HourlyRateMin)
	}
	if j.BudgetMin > 0 {
		if j.BudgetMax > j.BudgetMin {
			return fmt.Sprintf("$%g-$%g (fixed)", j.BudgetMin, j.BudgetMax)
		}
		return fmt.Sprintf("$%g (fixed)", j.BudgetMin)
	}
	return "Not specified"
}
