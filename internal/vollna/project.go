package vollna

import (
	"regexp"
	"strconv"
	"strings"
)

// Filter is one saved search filter configured upstream.
type Filter struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Project is one raw posting as the aggregator reports it. Budget and
// HourlyRate are polymorphic upstream: either a display string
// ("$2,000-$3,000", "$30/hr") or a structured {min,max,amount} object, so
// they decode into any and are resolved by ResolveMoney at the ingestion
// boundary.
type Project struct {
	UID         string `json:"uid"`
	Ciphertext  string `json:"ciphertext"`
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Skills      any    `json:"skills"`
	BudgetType  string `json:"budget_type"`
	Budget      any    `json:"budget"`
	HourlyRate  any    `json:"hourly_rate"`
	Site        string `json:"site"`
	Published   string `json:"published"`
	Client      *ProjectClient `json:"client"`
}

// ProjectClient carries the client trust signals attached to a project.
type ProjectClient struct {
	Country         string   `json:"country"`
	PaymentVerified bool     `json:"payment_verified"`
	Rating          float64  `json:"rating"`
	ReviewsCount    int      `json:"reviews_count"`
	TotalSpent      float64  `json:"total_spent"`
	HireRate        *float64 `json:"hire_rate"`
}

// Money is a resolved budget descriptor. A single parsed number sets both
// bounds.
type Money struct {
	Min float64
	Max float64
}

var jobIDPattern = regexp.MustCompile(`~(\w+)`)

// JobID derives the stable posting identifier: the ciphertext when present,
// then the uid, then the ~token from the posting URL, falling back to the raw
// URL. Derivation must be deterministic so re-ingesting the same posting maps
// to the same primary key.
func (p *Project) JobID() string {
	if p.Ciphertext != "" {
		return strings.TrimPrefix(p.Ciphertext, "~")
	}
	if p.UID != "" {
		return p.UID
	}
	if m := jobIDPattern.FindStringSubmatch(p.URL); m != nil {
		return m[1]
	}
	return p.URL
}

// DedupKey identifies a project inside one fetched batch, collapsing
// overlapping filters that return the same posting.
func (p *Project) DedupKey() string {
	if p.URL != "" {
		return p.URL
	}
	if p.Ciphertext != "" {
		return p.Ciphertext
	}
	return p.UID
}

// SkillList flattens the string-or-array skills field to a comma separated
// string.
func (p *Project) SkillList() string {
	switch v := p.Skills.(type) {
	case string:
		return v
	case []any:
		parts := make([]string, 0, len(v))
		for _, s := range v {
			if str, ok := s.(string); ok {
				parts = append(parts, str)
			}
		}
		return strings.Join(parts, ", ")
	case []string:
		return strings.Join(v, ", ")
	default:
		return ""
	}
}

// FixedBudget resolves the fixed-price budget descriptor, if any.
func (p *Project) FixedBudget() (Money, bool) {
	return ResolveMoney(p.Budget)
}

// HourlyRates resolves the hourly rate descriptor. The aggregator sometimes
// reports hourly rates in the budget field, so that is consulted when the
// dedicated field is empty, but a display string only counts as hourly when
// the posting says so.
func (p *Project) HourlyRates() (Money, bool) {
	raw := p.HourlyRate
	if raw == nil {
		raw = p.Budget
	}
	if raw == nil {
		return Money{}, false
	}

	if s, isString := raw.(string); isString {
		if p.BudgetType != "hourly" && !strings.Contains(strings.ToLower(s), "hour") && !strings.Contains(strings.ToLower(s), "/hr") {
			return Money{}, false
		}
	}

	return ResolveMoney(raw)
}

var moneyPattern = regexp.MustCompile(`\$?([\d,]+(?:\.\d+)?)(?:\s*-\s*\$?([\d,]+(?:\.\d+)?))?`)

// ResolveMoney turns either encoding of a budget descriptor into a Money
// value. String parsing takes the first one or two numeric groups separated
// by a dash, strips thousands-separators, and treats a single number as both
// min and max. Unparseable input reports ok=false instead of failing the
// posting.
func ResolveMoney(raw any) (Money, bool) {
	switch v := raw.(type) {
	case map[string]any:
		min := floatField(v, "min")
		max := floatField(v, "max")
		amount := floatField(v, "amount")

		if min == 0 && max == 0 && amount == 0 {
			return Money{}, false
		}
		if min == 0 {
			min = amount
		}
		if max == 0 {
			max = amount
		}
		if max == 0 {
			max = min
		}
		return Money{Min: min, Max: max}, true

	case string:
		m := moneyPattern.FindStringSubmatch(v)
		if m == nil || m[1] == "" {
			return Money{}, false
		}
		min, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
		if err != nil {
			return Money{}, false
		}
		max := min
		if m[2] != "" {
			if parsed, err := strconv.ParseFloat(strings.ReplaceAll(m[2], ",", ""), 64); err == nil {
				max = parsed
			}
		}
		return Money{Min: min, Max: max}, true

	default:
		return Money{}, false
	}
}

func floatField(m map[string]any, key string) float64 {
	switch v := m[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case string:
		f, _ := strconv.ParseFloat(strings.ReplaceAll(v, ",", ""), 64)
		return f
	default:
		return 0
	}
}
