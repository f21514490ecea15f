package pipeline

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/idea-allies/upwork-pipeline/internal/scoring"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(filepath.Join(t.TempDir(), "pipeline.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testJob(id string, score int) (*Job, scoring.Verdict) {
	job := &Job{
		ID:       id,
		Title:    "React dashboard",
		URL:      "https://www.upwork.com/jobs/~" + id,
		Skills:   "React, TypeScript",
		Status:   StatusNew,
		PostedAt: time.Now().Add(-time.Hour),
	}
	verdict := scoring.Verdict{
		Total:     score,
		Breakdown: scoring.Breakdown{Budget: 80, TechMatch: 100},
		Reasons:   []string{"a", "b", "c", "d", "e"},
	}
	return job, verdict
}

func TestUpsertScoreCreatesAndRefreshes(t *testing.T) {
	s := newTestStore(t)

	job, verdict := testJob("01abc", 90)
	if err := s.UpsertScore(job, verdict); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := s.Get("01abc")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatal("job not stored")
	}
	if got.Score != 90 || got.Status != StatusNew {
		t.Fatalf("got score %d status %s", got.Score, got.Status)
	}
	if got.ScoreBreakdown.TechMatch != 100 {
		t.Fatalf("breakdown not persisted: %+v", got.ScoreBreakdown)
	}

	// Resighting refreshes score fields without touching status.
	if err := s.UpdateStatus("01abc", StatusSubmitted, ""); err != nil {
		t.Fatalf("update status: %v", err)
	}
	verdict.Total = 70
	if err := s.UpsertScore(job, verdict); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	got, _ = s.Get("01abc")
	if got.Score != 70 {
		t.Fatalf("score not refreshed: %d", got.Score)
	}
	if got.Status != StatusSubmitted {
		t.Fatalf("status regressed to %s", got.Status)
	}
}

func TestExistsDedup(t *testing.T) {
	s := newTestStore(t)

	ok, err := s.Exists("nope")
	if err != nil || ok {
		t.Fatalf("Exists on empty store = %v, %v", ok, err)
	}

	job, verdict := testJob("01abc", 60)
	if err := s.UpsertScore(job, verdict); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	ok, err = s.Exists("01abc")
	if err != nil || !ok {
		t.Fatalf("Exists after upsert = %v, %v", ok, err)
	}
}

func TestSaveProposalPromotesAndIsIdempotent(t *testing.T) {
	s := newTestStore(t)

	job, verdict := testJob("01abc", 90)
	if err := s.UpsertScore(job, verdict); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	if err := s.SaveProposal("01abc", "Hello, I can build this.", "webapp"); err != nil {
		t.Fatalf("save proposal: %v", err)
	}

	got, _ := s.Get("01abc")
	if got.Status != StatusQualified {
		t.Fatalf("status = %s, want qualified", got.Status)
	}
	if got.ProposalText != "Hello, I can build this." || got.ProposalTemplate != "webapp" {
		t.Fatalf("proposal fields not cached: %q %q", got.ProposalText, got.ProposalTemplate)
	}

	// Second identical save: no new version, no status change.
	if err := s.SaveProposal("01abc", "Hello, I can build this.", "webapp"); err != nil {
		t.Fatalf("second save: %v", err)
	}

	var versions int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM proposals WHERE job_id = ?`, "01abc").Scan(&versions); err != nil {
		t.Fatalf("count proposals: %v", err)
	}
	if versions != 1 {
		t.Fatalf("identical re-save appended a version: %d rows", versions)
	}

	// A revised proposal appends a second version.
	if err := s.SaveProposal("01abc", "Revised pitch.", "webapp"); err != nil {
		t.Fatalf("revised save: %v", err)
	}
	s.db.QueryRow(`SELECT COUNT(*) FROM proposals WHERE job_id = ?`, "01abc").Scan(&versions)
	if versions != 2 {
		t.Fatalf("revision not appended: %d rows", versions)
	}

	got, _ = s.Get("01abc")
	if got.ProposalText != "Revised pitch." {
		t.Fatalf("latest proposal not cached: %q", got.ProposalText)
	}
}

func TestSaveProposalDoesNotRegressStatus(t *testing.T) {
	s := newTestStore(t)

	job, verdict := testJob("01abc", 90)
	s.UpsertScore(job, verdict)
	s.SaveProposal("01abc", "v1", "generic")
	s.MarkSubmitted("01abc")

	if err := s.SaveProposal("01abc", "v2", "generic"); err != nil {
		t.Fatalf("save proposal: %v", err)
	}

	got, _ := s.Get("01abc")
	if got.Status != StatusSubmitted {
		t.Fatalf("status = %s, want submitted", got.Status)
	}
}

func TestMarkSubmittedRequiresProposal(t *testing.T) {
	s := newTestStore(t)

	job, verdict := testJob("01abc", 90)
	s.UpsertScore(job, verdict)

	if err := s.MarkSubmitted("01abc"); err == nil {
		t.Fatal("expected error submitting without a proposal")
	}

	// No partial mutation happened.
	got, _ := s.Get("01abc")
	if got.Status != StatusNew || !got.SubmittedAt.IsZero() {
		t.Fatalf("job mutated on rejected submit: %s %v", got.Status, got.SubmittedAt)
	}

	s.SaveProposal("01abc", "pitch", "generic")
	if err := s.MarkSubmitted("01abc"); err != nil {
		t.Fatalf("submit with proposal: %v", err)
	}

	got, _ = s.Get("01abc")
	if got.Status != StatusSubmitted || got.SubmittedAt.IsZero() {
		t.Fatalf("submit not recorded: %s %v", got.Status, got.SubmittedAt)
	}
}

func TestRecordResponseAppendsNotes(t *testing.T) {
	s := newTestStore(t)

	job, verdict := testJob("01abc", 90)
	s.UpsertScore(job, verdict)
	s.SaveProposal("01abc", "pitch", "generic")
	s.MarkSubmitted("01abc")

	if err := s.RecordResponse("01abc", StatusWon, "signed $5k contract"); err != nil {
		t.Fatalf("record response: %v", err)
	}

	got, _ := s.Get("01abc")
	if got.Status != StatusWon || got.Outcome != "won" || got.ResponseAt.IsZero() {
		t.Fatalf("response not recorded: %+v", got)
	}

	// Later note is appended, not overwritten.
	if err := s.RecordResponse("01abc", StatusWon, "kickoff scheduled"); err != nil {
		t.Fatalf("second response: %v", err)
	}
	got, _ = s.Get("01abc")
	if got.Notes != "signed $5k contract\nkickoff scheduled" {
		t.Fatalf("notes = %q", got.Notes)
	}
}

func TestRecordResponseRejectsNonOutcome(t *testing.T) {
	s := newTestStore(t)

	if err := s.RecordResponse("01abc", StatusQualified, ""); err == nil {
		t.Fatal("expected error for non-outcome status")
	}
}

func TestUpdateStatusValidatesValue(t *testing.T) {
	s := newTestStore(t)

	job, verdict := testJob("01abc", 90)
	s.UpsertScore(job, verdict)

	if err := s.UpdateStatus("01abc", Status("bogus"), ""); err == nil {
		t.Fatal("expected error for unknown status")
	}

	if err := s.UpdateStatus("01abc", StatusRejected, "spam posting"); err != nil {
		t.Fatalf("reject: %v", err)
	}
	got, _ := s.Get("01abc")
	if got.Status != StatusRejected || got.Notes != "spam posting" {
		t.Fatalf("reject not recorded: %s %q", got.Status, got.Notes)
	}
}

func TestJobsNeedingProposalsEligibility(t *testing.T) {
	s := newTestStore(t)

	high, v1 := testJob("high", 90)
	v1.Total = 90
	s.UpsertScore(high, v1)

	low, v2 := testJob("low", 60)
	v2.Total = 60
	s.UpsertScore(low, v2)

	submitted, v3 := testJob("submitted", 95)
	v3.Total = 95
	s.UpsertScore(submitted, v3)
	s.SaveProposal("submitted", "pitch", "generic")
	s.MarkSubmitted("submitted")

	jobs, err := s.JobsNeedingProposals(85)
	if err != nil {
		t.Fatalf("eligibility query: %v", err)
	}
	if len(jobs) != 1 || jobs[0].ID != "high" {
		t.Fatalf("selection = %v", jobIDs(jobs))
	}

	// The filter is idempotent: same selection without state change.
	again, _ := s.JobsNeedingProposals(85)
	if len(again) != 1 || again[0].ID != "high" {
		t.Fatalf("second selection differs: %v", jobIDs(again))
	}

	// After proposal generation the job leaves the selection.
	s.SaveProposal("high", "pitch", "generic")
	after, _ := s.JobsNeedingProposals(85)
	if len(after) != 0 {
		t.Fatalf("proposed job still selected: %v", jobIDs(after))
	}
}

func TestDigestMarker(t *testing.T) {
	s := newTestStore(t)

	last, err := s.LastDigestAt()
	if err != nil {
		t.Fatalf("read marker: %v", err)
	}
	if !last.IsZero() {
		t.Fatalf("fresh store has marker %v", last)
	}

	sent := time.Date(2025, 6, 2, 8, 15, 0, 0, time.UTC)
	if err := s.MarkDigestSent(sent); err != nil {
		t.Fatalf("write marker: %v", err)
	}

	last, err = s.LastDigestAt()
	if err != nil {
		t.Fatalf("reread marker: %v", err)
	}
	if !last.Equal(sent) {
		t.Fatalf("marker = %v, want %v", last, sent)
	}
}

func TestStatsSince(t *testing.T) {
	s := newTestStore(t)

	a, va := testJob("a", 90)
	va.Total = 90
	s.UpsertScore(a, va)
	s.SaveProposal("a", "pitch", "generic")
	s.MarkSubmitted("a")

	b, vb := testJob("b", 40)
	vb.Total = 40
	s.UpsertScore(b, vb)

	st, err := s.StatsSince(7)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.TotalJobs != 2 || st.QualifiedJobs != 1 || st.ProposalsGenerated != 1 || st.Submitted != 1 {
		t.Fatalf("stats = %+v", st)
	}
}

func jobIDs(jobs []*Job) []string {
	ids := make([]string, 0, len(jobs))
	for _, j := range jobs {
		ids = append(ids, j.ID)
	}
	return ids
}
