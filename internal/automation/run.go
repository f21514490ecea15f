// Package automation wires ingestion, scoring, alerting, proposal drafting
// and the daily digest into one run.
package automation

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/idea-allies/upwork-pipeline/internal/ai"
	"github.com/idea-allies/upwork-pipeline/internal/pipeline"
	"github.com/idea-allies/upwork-pipeline/internal/profile"
	"github.com/idea-allies/upwork-pipeline/internal/proposal"
	"github.com/idea-allies/upwork-pipeline/internal/scoring"
	"github.com/idea-allies/upwork-pipeline/internal/utils"
	"github.com/idea-allies/upwork-pipeline/internal/vollna"
)

// Fetcher lists saved filters and their current postings.
type Fetcher interface {
	ListFilters(ctx context.Context) ([]*vollna.Filter, error)
	ListProjects(ctx context.Context, filterID int) ([]*vollna.Project, error)
}

// Notifier delivers pipeline events. Sends report success as a boolean and
// must not fail the run.
type Notifier interface {
	SendJobAlert(ctx context.Context, job *pipeline.Job) bool
	SendProposalReady(ctx context.Context, job *pipeline.Job, draft string) bool
	SendDailyDigest(ctx context.Context, jobs []*pipeline.Job, stats pipeline.Stats) bool
}

// Config carries the run thresholds.
type Config struct {
	// Minimum composite score to count a posting as qualified.
	QualifyThreshold int `mapstructure:"qualify-threshold"`
	// Minimum composite score for an immediate alert.
	AlertThreshold int `mapstructure:"alert-threshold"`
	// Minimum composite score for automatic proposal drafting.
	ProposeThreshold int `mapstructure:"propose-threshold"`
	// Local hour during which the daily digest may go out.
	DigestHour int `mapstructure:"digest-hour"`
	// Pause between consecutive alert sends.
	AlertDelay time.Duration `mapstructure:"alert-delay"`
	// Pause between per-filter fetches.
	FetchDelay time.Duration `mapstructure:"fetch-delay"`
}

// DefaultConfig returns the standard thresholds.
func DefaultConfig() Config {
	return Config{
		QualifyThreshold: 50,
		AlertThreshold:   80,
		ProposeThreshold: 85,
		DigestHour:       8,
		AlertDelay:       time.Second,
		FetchDelay:       time.Second,
	}
}

// Deps are the collaborators of one run. Drafter is optional; when nil or
// failing, template generation is used.
type Deps struct {
	Store     *pipeline.Store
	Fetcher   Fetcher
	Notifier  Notifier
	Engine    *scoring.Engine
	Drafter   ai.Drafter
	Profile   *profile.Profile
	Proposals proposal.Config
	Logger    *zap.Logger
	Config    Config

	// Clock overrides time.Now for the digest window check.
	Clock func() time.Time
}

// Result summarizes one run for logging and exit reporting.
type Result struct {
	JobsFetched        int
	NewJobs            int
	QualifiedJobs      int
	AlertsSent         int
	ProposalsGenerated int
	DigestSent         bool
}

// Run executes the daily pipeline: ingest and score, alert, draft proposals,
// send the digest. Every stage failure is logged and the remaining stages
// still execute, so a broken feed never holds back queued proposals or the
// digest.
func Run(ctx context.Context, deps Deps) Result {
	var res Result

	if deps.Clock == nil {
		deps.Clock = time.Now
	}

	sendAlerts(ctx, deps, ingest(ctx, deps, &res), &res)
	draftProposals(ctx, deps, &res)
	sendDigest(ctx, deps, &res)

	deps.Logger.Info("run complete",
		zap.Int("fetched", res.JobsFetched),
		zap.Int("new", res.NewJobs),
		zap.Int("qualified", res.QualifiedJobs),
		zap.Int("alerts", res.AlertsSent),
		zap.Int("proposals", res.ProposalsGenerated),
		zap.Bool("digest", res.DigestSent),
	)
	return res
}

func ingest(ctx context.Context, deps Deps, res *Result) []*pipeline.Job {
	filters, err := deps.Fetcher.ListFilters(ctx)
	if err != nil {
		deps.Logger.Error("listing filters", zap.Error(err))
		filters = nil
	}

	seen := make(map[string]bool)
	var batch []*vollna.Project
	for i, f := range filters {
		if i > 0 {
			if err := utils.WaitFor(ctx, deps.Config.FetchDelay); err != nil {
				break
			}
		}
		projects, err := deps.Fetcher.ListProjects(ctx, f.ID)
		if err != nil {
			deps.Logger.Error("fetching filter projects",
				zap.Int("filter", f.ID),
				zap.String("name", f.Name),
				zap.Error(err),
			)
			continue
		}
		res.JobsFetched += len(projects)
		for _, p := range projects {
			if key := p.DedupKey(); !seen[key] {
				seen[key] = true
				batch = append(batch, p)
			}
		}
	}

	fetchedAt := deps.Clock().UTC()
	var alertCandidates []*pipeline.Job
	for _, p := range batch {
		job := BuildJob(p, fetchedAt)

		exists, err := deps.Store.Exists(job.ID)
		if err != nil {
			deps.Logger.Error("checking store", zap.String("job", job.ID), zap.Error(err))
			continue
		}
		if exists {
			continue
		}
		res.NewJobs++

		verdict := deps.Engine.Score(job.Posting())
		job.Score = verdict.Total
		job.ScoreBreakdown = verdict.Breakdown
		job.AutoReject = verdict.AutoReject
		job.RejectReason = verdict.RejectReason
		switch {
		case verdict.AutoReject:
			job.Status = pipeline.StatusRejected
		case verdict.Total >= deps.Config.QualifyThreshold:
			job.Status = pipeline.StatusQualified
		}

		if err := deps.Store.UpsertScore(job, verdict); err != nil {
			deps.Logger.Error("storing job", zap.String("job", job.ID), zap.Error(err))
			continue
		}

		if verdict.AutoReject {
			continue
		}
		if verdict.Total >= deps.Config.QualifyThreshold {
			res.QualifiedJobs++
		}
		if verdict.Total >= deps.Config.AlertThreshold {
			alertCandidates = append(alertCandidates, job)
		}
	}

	deps.Logger.Info("ingest step",
		zap.Int("initial", res.JobsFetched),
		zap.Int("deduplicated", len(batch)),
		zap.Int("new", res.NewJobs),
		zap.Int("qualified", res.QualifiedJobs),
	)
	return alertCandidates
}

func sendAlerts(ctx context.Context, deps Deps, jobs []*pipeline.Job, res *Result) {
	for i, job := range jobs {
		if i > 0 {
			if err := utils.WaitFor(ctx, deps.Config.AlertDelay); err != nil {
				return
			}
		}
		if deps.Notifier.SendJobAlert(ctx, job) {
			res.AlertsSent++
		}
	}
}

func draftProposals(ctx context.Context, deps Deps, res *Result) {
	jobs, err := deps.Store.JobsNeedingProposals(deps.Config.ProposeThreshold)
	if err != nil {
		deps.Logger.Error("listing jobs needing proposals", zap.Error(err))
		return
	}

	for _, job := range jobs {
		draft, tmpl := draftOne(ctx, deps, job)
		if err := deps.Store.SaveProposal(job.ID, draft, tmpl); err != nil {
			deps.Logger.Error("saving proposal", zap.String("job", job.ID), zap.Error(err))
			continue
		}
		res.ProposalsGenerated++
		deps.Notifier.SendProposalReady(ctx, job, draft)
	}
}

func draftOne(ctx context.Context, deps Deps, job *pipeline.Job) (string, string) {
	if deps.Drafter != nil {
		draft, err := deps.Drafter.Draft(ctx, job, deps.Profile)
		if err == nil {
			return draft, "ai"
		}
		deps.Logger.Warn("ai draft failed, falling back to template",
			zap.String("job", job.ID),
			zap.Error(err),
		)
	}
	return proposal.Generate(job, deps.Profile, deps.Proposals)
}

// sendDigest delivers the daily summary at most once per calendar day, inside
// the configured local hour. The marker is written only after a confirmed
// send so a failed delivery retries on the next run.
func sendDigest(ctx context.Context, deps Deps, res *Result) {
	now := deps.Clock()
	if now.Hour() != deps.Config.DigestHour {
		return
	}

	last, err := deps.Store.LastDigestAt()
	if err != nil {
		deps.Logger.Error("reading digest marker", zap.Error(err))
		return
	}
	if sameDay(last.In(now.Location()), now) {
		return
	}

	jobs, err := deps.Store.QualifiedJobs(deps.Config.QualifyThreshold)
	if err != nil {
		deps.Logger.Error("listing qualified jobs for digest", zap.Error(err))
		return
	}
	var recent []*pipeline.Job
	for _, j := range jobs {
		if now.Sub(j.FetchedAt) <= 24*time.Hour {
			recent = append(recent, j)
		}
	}

	stats, err := deps.Store.StatsSince(7)
	if err != nil {
		deps.Logger.Error("collecting stats for digest", zap.Error(err))
		return
	}

	if !deps.Notifier.SendDailyDigest(ctx, recent, stats) {
		return
	}
	if err := deps.Store.MarkDigestSent(now); err != nil {
		deps.Logger.Error("marking digest sent", zap.Error(err))
		return
	}
	res.DigestSent = true
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

// BuildJob maps a raw aggregator project onto a stored job.
func BuildJob(p *vollna.Project, fetchedAt time.Time) *pipeline.Job {
	job := &pipeline.Job{
		ID:          p.JobID(),
		Title:       p.Title,
		Description: p.Description,
		URL:         p.URL,
		BudgetType:  p.BudgetType,
		Skills:      p.SkillList(),
		PostedAt:    parsePublished(p.Published),
		FetchedAt:   fetchedAt,
	}

	if m, ok := p.FixedBudget(); ok && p.BudgetType != "hourly" {
		job.BudgetMin = m.Min
		job.BudgetMax = m.Max
	}
	if m, ok := p.HourlyRates(); ok {
		job.HourlyRateMin = m.Min
		job.HourlyRateMax = m.Max
	}

	if c := p.Client; c != nil {
		job.ClientCountry = c.Country
		job.ClientPaymentVerified = c.PaymentVerified
		job.ClientHireRate = c.HireRate
		job.ClientTotalSpent = c.TotalSpent
	}
	return job
}

func parsePublished(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}
