package pipeline

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/idea-allies/upwork-pipeline/internal/scoring"

	_ "modernc.org/sqlite"
)

// Store is the SQLite-backed pipeline store. The per-row upsert is the
// concurrency primitive: orchestration is single-threaded but every
// read-then-write on one job goes through a single statement or transaction.
type Store struct {
	db *sql.DB
}

const createTablesSQL = `
CREATE TABLE IF NOT EXISTS jobs (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	description TEXT,
	url TEXT NOT NULL,
	budget_type TEXT,
	budget_min REAL,
	budget_max REAL,
	hourly_rate_min REAL,
	hourly_rate_max REAL,
	skills TEXT,
	client_country TEXT,
	client_payment_verified INTEGER DEFAULT 0,
	client_hire_rate REAL,
	client_total_spent REAL,
	posted_at TEXT,
	fetched_at TEXT NOT NULL,
	score INTEGER DEFAULT 0,
	score_breakdown TEXT,
	auto_reject INTEGER DEFAULT 0,
	reject_reason TEXT,
	status TEXT NOT NULL DEFAULT 'new',
	proposal_text TEXT,
	proposal_template TEXT,
	submitted_at TEXT,
	response_at TEXT,
	outcome TEXT,
	notes TEXT
);

CREATE TABLE IF NOT EXISTS proposals (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	job_id TEXT NOT NULL,
	template_used TEXT,
	content TEXT NOT NULL,
	generated_at TEXT NOT NULL,
	submitted INTEGER DEFAULT 0,
	submitted_at TEXT,
	FOREIGN KEY (job_id) REFERENCES jobs(id)
);

CREATE TABLE IF NOT EXISTS digest_log (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	sent_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_jobs_status ON jobs(status);
CREATE INDEX IF NOT EXISTS idx_jobs_score ON jobs(score);
`

// Open opens (or creates) the pipeline database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open pipeline database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if _, err := db.Exec(createTablesSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Exists reports whether a job with the derived id is already stored. This is
// the ingestion dedup check: existing ids are skipped before any scoring.
func (s *Store) Exists(id string) (bool, error) {
	var one int
	err := s.db.QueryRow(`SELECT 1 FROM jobs WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check job %s: %w", id, err)
	}
	return true, nil
}

// UpsertScore creates the job record on first sighting and refreshes the
// posting and score fields on resighting. It never regresses status, never
// touches proposal or lifecycle fields, and never duplicates the primary key.
func (s *Store) UpsertScore(job *Job, v scoring.Verdict) error {
	breakdown, err := json.Marshal(v.Breakdown)
	if err != nil {
		return fmt.Errorf("marshal breakdown for job %s: %w", job.ID, err)
	}

	status := job.Status
	if status == "" {
		status = StatusNew
	}
	if _, err := ParseStatus(string(status)); err != nil {
		return err
	}

	fetched := job.FetchedAt
	if fetched.IsZero() {
		fetched = time.Now().UTC()
	}

	_, err = s.db.Exec(`
		INSERT INTO jobs (
			id, title, description, url, budget_type, budget_min, budget_max,
			hourly_rate_min, hourly_rate_max, skills, client_country,
			client_payment_verified, client_hire_rate, client_total_spent,
			posted_at, fetched_at, score, score_breakdown, auto_reject,
			reject_reason, status
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			url = excluded.url,
			budget_type = excluded.budget_type,
			budget_min = excluded.budget_min,
			budget_max = excluded.budget_max,
			hourly_rate_min = excluded.hourly_rate_min,
			hourly_rate_max = excluded.hourly_rate_max,
			skills = excluded.skills,
			client_country = excluded.client_country,
			client_payment_verified = excluded.client_payment_verified,
			client_hire_rate = excluded.client_hire_rate,
			client_total_spent = excluded.client_total_spent,
			posted_at = excluded.posted_at,
			score = excluded.score,
			score_breakdown = excluded.score_breakdown,
			auto_reject = excluded.auto_reject,
			reject_reason = excluded.reject_reason`,
		job.ID, job.Title, job.Description, job.URL, job.BudgetType,
		job.BudgetMin, job.BudgetMax, job.HourlyRateMin, job.HourlyRateMax,
		job.Skills, job.ClientCountry, boolInt(job.ClientPaymentVerified),
		nullableFloat(job.ClientHireRate), job.ClientTotalSpent,
		timeString(job.PostedAt), fetched.Format(time.RFC3339),
		v.Total, string(breakdown), boolInt(v.AutoReject), v.RejectReason,
		string(status),
	)
	if err != nil {
		return fmt.Errorf("upsert job %s: %w", job.ID, err)
	}
	return nil
}

// SaveProposal appends a proposal version and caches the latest text on the
// job row, promoting new to qualified. Already-advanced statuses are left
// alone. Re-saving the text already current appends no new version, so the
// call is idempotent on content.
func (s *Store) SaveProposal(jobID, content, template string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("save proposal for %s: %w", jobID, err)
	}
	defer tx.Rollback()

	var current sql.NullString
	err = tx.QueryRow(`SELECT content FROM proposals WHERE job_id = ? ORDER BY id DESC LIMIT 1`, jobID).
		Scan(&current)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("read latest proposal for %s: %w", jobID, err)
	}

	if !current.Valid || current.String != content {
		_, err = tx.Exec(
			`INSERT INTO proposals (job_id, template_used, content, generated_at) VALUES (?, ?, ?, ?)`,
			jobID, template, content, time.Now().UTC().Format(time.RFC3339),
		)
		if err != nil {
			return fmt.Errorf("insert proposal for %s: %w", jobID, err)
		}
	}

	res, err := tx.Exec(`
		UPDATE jobs SET
			proposal_text = ?,
			proposal_template = ?,
			status = CASE WHEN status = ? THEN ? ELSE status END
		WHERE id = ?`,
		content, template, string(StatusNew), string(StatusQualified), jobID,
	)
	if err != nil {
		return fmt.Errorf("update job %s with proposal: %w", jobID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("job %s not found", jobID)
	}

	return tx.Commit()
}

// MarkSubmitted moves the job to submitted and stamps the submission time.
// A job without a generated proposal is rejected up front; nothing is
// mutated in that case.
func (s *Store) MarkSubmitted(jobID string) error {
	job, err := s.Get(jobID)
	if err != nil {
		return err
	}
	if job == nil {
		return fmt.Errorf("job %s not found", jobID)
	}
	if !job.HasProposal() {
		return fmt.Errorf("job %s has no proposal; generate one before submitting", jobID)
	}

	now := time.Now().UTC().Format(time.RFC3339)

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("mark submitted %s: %w", jobID, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`UPDATE proposals SET submitted = 1, submitted_at = ? WHERE job_id = ?`,
		now, jobID,
	); err != nil {
		return fmt.Errorf("mark proposals submitted for %s: %w", jobID, err)
	}

	if _, err := tx.Exec(
		`UPDATE jobs SET status = ?, submitted_at = ? WHERE id = ?`,
		string(StatusSubmitted), now, jobID,
	); err != nil {
		return fmt.Errorf("mark job %s submitted: %w", jobID, err)
	}

	return tx.Commit()
}

// RecordResponse sets a terminal response outcome, stamps the response time
// and appends the note to any existing ones. Normally called from submitted,
// but tolerated from any status as an operator correction.
func (s *Store) RecordResponse(jobID string, outcome Status, note string) error {
	if !IsOutcome(outcome) {
		return fmt.Errorf("invalid outcome %q: use responded, won or lost", outcome)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.Exec(`
		UPDATE jobs SET
			status = ?,
			response_at = ?,
			outcome = ?,
			notes = CASE WHEN ? = '' THEN notes
				WHEN notes IS NULL OR notes = '' THEN ?
				ELSE notes || char(10) || ? END
		WHERE id = ?`,
		string(outcome), now, string(outcome), note, note, note, jobID,
	)
	if err != nil {
		return fmt.Errorf("record response for %s: %w", jobID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("job %s not found", jobID)
	}
	return nil
}

// UpdateStatus is the operator escape hatch for rejected and manual
// corrections. The status value is validated, the forward ordering is not.
func (s *Store) UpdateStatus(jobID string, status Status, note string) error {
	if _, err := ParseStatus(string(status)); err != nil {
		return err
	}

	res, err := s.db.Exec(`
		UPDATE jobs SET
			status = ?,
			notes = CASE WHEN ? = '' THEN notes
				WHEN notes IS NULL OR notes = '' THEN ?
				ELSE notes || char(10) || ? END
		WHERE id = ?`,
		string(status), note, note, note, jobID,
	)
	if err != nil {
		return fmt.Errorf("update status for %s: %w", jobID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("job %s not found", jobID)
	}
	return nil
}

// Get returns one job by id, or nil when it is not stored.
func (s *Store) Get(id string) (*Job, error) {
	row := s.db.QueryRow(selectJobSQL+` WHERE id = ?`, id)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get job %s: %w", id, err)
	}
	return job, nil
}

// QualifiedJobs returns jobs at or above minScore still in the pre-pursuit
// statuses, best first.
func (s *Store) QualifiedJobs(minScore int) ([]*Job, error) {
	return s.queryJobs(
		selectJobSQL+` WHERE score >= ? AND status IN (?, ?) ORDER BY score DESC`,
		minScore, string(StatusNew), string(StatusQualified),
	)
}

// JobsNeedingProposals applies the proposal eligibility policy: score at or
// above the threshold, no proposal yet, status still pre-pursuit. The filter
// is idempotent; once a proposal is saved the job drops out of the selection.
func (s *Store) JobsNeedingProposals(minScore int) ([]*Job, error) {
	return s.queryJobs(
		selectJobSQL+` WHERE score >= ?
			AND (proposal_text IS NULL OR proposal_text = '')
			AND status IN (?, ?)
			ORDER BY score DESC`,
		minScore, string(StatusNew), string(StatusQualified),
	)
}

// JobsByStatus returns jobs in one status, best first.
func (s *Store) JobsByStatus(status Status) ([]*Job, error) {
	if _, err := ParseStatus(string(status)); err != nil {
		return nil, err
	}
	return s.queryJobs(selectJobSQL+` WHERE status = ? ORDER BY score DESC`, string(status))
}

// AllJobs returns the most recently fetched jobs up to limit.
func (s *Store) AllJobs(limit int) ([]*Job, error) {
	return s.queryJobs(selectJobSQL+` ORDER BY fetched_at DESC LIMIT ?`, limit)
}

// Stats summarizes pipeline activity over the trailing number of days.
type Stats struct {
	TotalJobs          int
	QualifiedJobs      int
	ProposalsGenerated int
	Submitted          int
	Responses          int
	Won                int
	Lost               int
	AvgScore           float64
}

// StatsSince aggregates counts for jobs fetched within the last days.
func (s *Store) StatsSince(days int) (Stats, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -days).Format(time.RFC3339)

	var st Stats
	var avg sql.NullFloat64
	err := s.db.QueryRow(`
		SELECT
			COUNT(*),
			COUNT(CASE WHEN score >= 50 THEN 1 END),
			COUNT(CASE WHEN proposal_text IS NOT NULL AND proposal_text != '' THEN 1 END),
			COUNT(CASE WHEN status = 'submitted' THEN 1 END),
			COUNT(CASE WHEN status = 'responded' THEN 1 END),
			COUNT(CASE WHEN status = 'won' THEN 1 END),
			COUNT(CASE WHEN status = 'lost' THEN 1 END),
			AVG(score)
		FROM jobs WHERE fetched_at >= ?`, cutoff,
	).Scan(&st.TotalJobs, &st.QualifiedJobs, &st.ProposalsGenerated,
		&st.Submitted, &st.Responses, &st.Won, &st.Lost, &avg)
	if err != nil {
		return Stats{}, fmt.Errorf("aggregate stats: %w", err)
	}
	st.AvgScore = avg.Float64
	return st, nil
}

// LastDigestAt returns when the daily digest was last sent successfully, or
// the zero time when it never was.
func (s *Store) LastDigestAt() (time.Time, error) {
	var raw string
	err := s.db.QueryRow(`SELECT sent_at FROM digest_log WHERE id = 1`).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("read digest marker: %w", err)
	}

	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		// A corrupt marker degrades to "never sent" so the digest can
		// recover on the next eligible run.
		return time.Time{}, nil
	}
	return t, nil
}

// MarkDigestSent records the successful digest send time.
func (s *Store) MarkDigestSent(t time.Time) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO digest_log (id, sent_at) VALUES (1, ?)`,
		t.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("write digest marker: %w", err)
	}
	return nil
}

const selectJobSQL = `
	SELECT id, title, description, url, budget_type, budget_min, budget_max,
		hourly_rate_min, hourly_rate_max, skills, client_country,
		client_payment_verified, client_hire_rate, client_total_spent,
		posted_at, fetched_at, score, score_breakdown, auto_reject,
		reject_reason, status, proposal_text, proposal_template,
		submitted_at, response_at, outcome, notes
	FROM jobs`

func (s *Store) queryJobs(query string, args ...any) ([]*Job, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate jobs: %w", err)
	}
	return jobs, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanJob(row scanner) (*Job, error) {
	var (
		j                                          Job
		description, budgetType, skills            sql.NullString
		country, breakdown, rejectReason           sql.NullString
		proposalText, proposalTemplate             sql.NullString
		postedAt, fetchedAt, submittedAt           sql.NullString
		responseAt, outcome, notes                 sql.NullString
		budgetMin, budgetMax, rateMin, rateMax     sql.NullFloat64
		hireRate, totalSpent                       sql.NullFloat64
		paymentVerified, autoReject                int
	)

	err := row.Scan(&j.ID, &j.Title, &description, &j.URL, &budgetType,
		&budgetMin, &budgetMax, &rateMin, &rateMax, &skills, &country,
		&paymentVerified, &hireRate, &totalSpent, &postedAt, &fetchedAt,
		&j.Score, &breakdown, &autoReject, &rejectReason, (*string)(&j.Status),
		&proposalText, &proposalTemplate, &submittedAt, &responseAt,
		&outcome, &notes)
	if err != nil {
		return nil, err
	}

	j.Description = description.String
	j.BudgetType = budgetType.String
	j.Skills = skills.String
	j.ClientCountry = country.String
	j.RejectReason = rejectReason.String
	j.ProposalText = proposalText.String
	j.ProposalTemplate = proposalTemplate.String
	j.Outcome = outcome.String
	j.Notes = notes.String
	j.BudgetMin = budgetMin.Float64
	j.BudgetMax = budgetMax.Float64
	j.HourlyRateMin = rateMin.Float64
	j.HourlyRateMax = rateMax.Float64
	j.ClientTotalSpent = totalSpent.Float64
	j.ClientPaymentVerified = paymentVerified != 0
	j.AutoReject = autoReject != 0

	if hireRate.Valid {
		rate := hireRate.Float64
		j.ClientHireRate = &rate
	}

	j.PostedAt = parseTime(postedAt.String)
	j.FetchedAt = parseTime(fetchedAt.String)
	j.SubmittedAt = parseTime(submittedAt.String)
	j.ResponseAt = parseTime(responseAt.String)

	// A breakdown that fails to parse degrades to zero values rather than
	// aborting the record.
	if breakdown.Valid && breakdown.String != "" {
		_ = json.Unmarshal([]byte(breakdown.String), &j.ScoreBreakdown)
	}

	return &j, nil
}

func parseTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}

func timeString(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullableFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}
