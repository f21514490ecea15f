package scoring

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Posting is the read-only input to scoring: the attributes of one fetched
// job posting. A zero PostedAt means the posting time is unknown; a nil
// ClientHireRate means the aggregator did not report one.
type Posting struct {
	Title       string
	Description string
	Skills      string

	// BudgetType is "hourly" or "fixed"; empty when the posting does not
	// specify a budget.
	BudgetType    string
	BudgetMin     float64
	BudgetMax     float64
	HourlyRateMin float64
	HourlyRateMax float64

	ClientPaymentVerified bool
	ClientHireRate        *float64
	ClientTotalSpent      float64
	ClientCountry         string

	PostedAt time.Time
}

// Breakdown holds the five raw sub-scores, each 0-100 before weighting.
type Breakdown struct {
	Budget         int `json:"budget"`
	TechMatch      int `json:"techMatch"`
	ClientQuality  int `json:"clientQuality"`
	ProjectClarity int `json:"projectClarity"`
	Timing         int `json:"timing"`
}

// Verdict is the full scoring result for one posting.
type Verdict struct {
	// Total is the weighted composite, clamped to [0,100].
	Total     int
	Breakdown Breakdown
	// Reasons has exactly five entries in fixed factor order: budget,
	// tech, client, clarity, timing.
	Reasons      []string
	AutoReject   bool
	RejectReason string
}

// Engine scores postings against a rubric. It is pure: the same posting and
// rubric always produce the same verdict. The clock is injectable so timing
// buckets are testable.
type Engine struct {
	rubric Rubric
	now    func() time.Time
}

// NewEngine builds an engine for the given rubric. Budget tier tables are
// reordered descending by minimum so lookups are deterministic.
func NewEngine(rubric Rubric) *Engine {
	rubric.Budget.Hourly = sortTiers(rubric.Budget.Hourly)
	rubric.Budget.Fixed = sortTiers(rubric.Budget.Fixed)

	return &Engine{
		rubric: rubric,
		now:    time.Now,
	}
}

// WithClock replaces the engine clock. Tests use it to pin the timing factor.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Score computes the composite verdict for a posting. Auto-reject fires when
// the tech-match or budget sub-score is exactly zero, regardless of the
// composite value.
func (e *Engine) Score(p Posting) Verdict {
	budget, budgetReason := e.scoreBudget(p)
	tech, techReason := e.scoreTechMatch(p)
	client, clientReason := e.scoreClientQuality(p)
	clarity, clarityReason := e.scoreProjectClarity(p)
	timing, timingReason := e.scoreTiming(p)

	w := e.rubric.Weights
	total := weighted(budget, w.Budget) +
		weighted(tech, w.TechMatch) +
		weighted(client, w.ClientQuality) +
		weighted(clarity, w.ProjectClarity) +
		weighted(timing, w.Timing)

	v := Verdict{
		Total: clamp(total),
		Breakdown: Breakdown{
			Budget:         budget,
			TechMatch:      tech,
			ClientQuality:  client,
			ProjectClarity: clarity,
			Timing:         timing,
		},
		Reasons: []string{budgetReason, techReason, clientReason, clarityReason, timingReason},
	}

	// Hard gates, evaluated after all sub-scores are known. These are
	// boundary conditions, not penalties: they override qualification even
	// when the composite passes.
	if tech == 0 {
		v.AutoReject = true
		v.RejectReason = "No tech stack match"
	}
	if budget == 0 {
		v.AutoReject = true
		v.RejectReason = "Budget too low"
	}

	return v
}

const unspecifiedBudgetScore = 30

func (e *Engine) scoreBudget(p Posting) (int, string) {
	if p.BudgetType == "hourly" && p.HourlyRateMin > 0 {
		rate := p.HourlyRateMin
		for _, tier := range e.rubric.Budget.Hourly {
			if rate >= tier.Min {
				return tier.Score, fmt.Sprintf("Hourly rate $%g/hr (%s)", rate, tier.Name)
			}
		}
	}

	if p.BudgetMin > 0 {
		amount := p.BudgetMax
		if amount < p.BudgetMin {
			amount = p.BudgetMin
		}
		for _, tier := range e.rubric.Budget.Fixed {
			if amount >= tier.Min {
				return tier.Score, fmt.Sprintf("Fixed budget $%g (%s)", amount, tier.Name)
			}
		}
	}

	// Absence of budget data is neutral, never a rejection signal. A budget
	// that parses but lands in the floor tier is a different path and does
	// auto-reject.
	return unspecifiedBudgetScore, "Budget not specified"
}

func (e *Engine) scoreTechMatch(p Posting) (int, string) {
	text := strings.ToLower(p.Title + " " + p.Description + " " + p.Skills)
	cfg := e.rubric.Tech

	score := 0
	var matches []string

	// One primary match sets the floor; additional matches do not raise it.
	for _, keyword := range cfg.Primary.Keywords {
		if strings.Contains(text, strings.ToLower(keyword)) {
			if cfg.Primary.Score > score {
				score = cfg.Primary.Score
			}
			matches = append(matches, keyword)
		}
	}

	for _, keyword := range cfg.Secondary.Keywords {
		if strings.Contains(text, strings.ToLower(keyword)) {
			if cfg.Secondary.Score > score {
				score = cfg.Secondary.Score
			}
			matches = append(matches, keyword)
		}
	}

	// Bonus matches are additive at half the configured value, capped at 100.
	for _, keyword := range cfg.Bonus.Keywords {
		if strings.Contains(text, strings.ToLower(keyword)) {
			score += cfg.Bonus.Score / 2
			if score > 100 {
				score = 100
			}
			matches = append(matches, keyword)
		}
	}

	// Negative matches subtract after everything else so a single one still
	// pulls down a primary-tier 100.
	for _, keyword := range cfg.Negative.Keywords {
		if strings.Contains(text, strings.ToLower(keyword)) {
			score += cfg.Negative.Score
			if score < 0 {
				score = 0
			}
			matches = append(matches, "-"+keyword)
		}
	}

	if len(matches) == 0 {
		return 0, "No tech keywords matched"
	}
	return score, "Tech: " + strings.Join(matches, ", ")
}

func (e *Engine) scoreClientQuality(p Posting) (int, string) {
	cfg := e.rubric.Client
	score := 50
	var reasons []string

	if p.ClientPaymentVerified {
		score += cfg.PaymentVerified
		reasons = append(reasons, "Payment verified")
	} else {
		score += cfg.NoPaymentMethod
		reasons = append(reasons, "No payment method")
	}

	if p.ClientHireRate != nil {
		rate := *p.ClientHireRate
		switch {
		case rate >= 50:
			score += cfg.HireRate50Plus
			reasons = append(reasons, fmt.Sprintf("%g%% hire rate", rate))
		case rate < 20:
			score += cfg.HireRateBelow20
			reasons = append(reasons, fmt.Sprintf("Low hire rate: %g%%", rate))
		}
	}

	if p.ClientTotalSpent >= cfg.SpendThreshold && cfg.SpendThreshold > 0 {
		score += cfg.BigSpender
		reasons = append(reasons, fmt.Sprintf("$%.0f spent", p.ClientTotalSpent))
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	reason := strings.Join(reasons, ", ")
	if reason == "" {
		reason = "Client data unknown"
	}
	return score, reason
}

var (
	techSpecTerms    = []string{"api", "database", "authentication", "integration", "endpoints", "schema", "architecture"}
	examplePhrases   = []string{"example", "reference", "similar to"}
	milestonePhrases = []string{"milestone", "phase", "deadline"}
)

func (e *Engine) scoreProjectClarity(p Posting) (int, string) {
	cfg := e.rubric.Clarity
	desc := p.Description
	lower := strings.ToLower(desc)
	score := 40
	var reasons []string

	switch {
	case len(desc) > 500:
		score += cfg.DetailedDescription
		reasons = append(reasons, "Detailed description")
	case len(desc) > 200:
		score += cfg.DetailedDescription / 2
		reasons = append(reasons, "Moderate detail")
	}

	if containsAny(lower, techSpecTerms) {
		score += cfg.TechSpec
		reasons = append(reasons, "Has tech specs")
	}

	if containsAny(lower, examplePhrases) {
		score += cfg.Examples
		reasons = append(reasons, "Has examples")
	}

	if containsAny(lower, milestonePhrases) {
		score += cfg.Milestones
		reasons = append(reasons, "Has milestones")
	}

	if score > 100 {
		score = 100
	}

	reason := strings.Join(reasons, ", ")
	if reason == "" {
		reason = "Basic requirements"
	}
	return score, reason
}

const unknownTimingScore = 50

func (e *Engine) scoreTiming(p Posting) (int, string) {
	if p.PostedAt.IsZero() {
		return unknownTimingScore, "Unknown posting time"
	}

	cfg := e.rubric.Timing
	hours := e.now().Sub(p.PostedAt).Hours()

	switch {
	case hours <= 1:
		return cfg.Within1Hour, "Posted <1 hour ago"
	case hours <= 3:
		return cfg.Within3Hours, "Posted <3 hours ago"
	case hours <= 6:
		return cfg.Within6Hours, "Posted <6 hours ago"
	case hours <= 12:
		return cfg.Within12Hours, "Posted <12 hours ago"
	case hours <= 24:
		return cfg.Within24Hours, "Posted <24 hours ago"
	default:
		return cfg.Older, fmt.Sprintf("Posted %d hours ago", int(hours))
	}
}

// Category buckets a composite score for prioritization. It does not gate
// anything.
func Category(total int) string {
	switch {
	case total >= 85:
		return "hot"
	case total >= 70:
		return "warm"
	case total >= 50:
		return "maybe"
	default:
		return "pass"
	}
}

func weighted(score, weight int) int {
	return int(math.Round(float64(score) * float64(weight) / 100))
}

func clamp(total int) int {
	if total < 0 {
		return 0
	}
	if total > 100 {
		return 100
	}
	return total
}

func containsAny(text string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}
