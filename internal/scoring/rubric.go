package scoring

import "sort"

// Rubric is the externally configured scoring rubric: factor weights, budget
// tiers, keyword lists, client signal bonuses, clarity indicators and timing
// buckets. It is data, not logic, so it can be tuned without touching the
// engine.
type Rubric struct {
	Weights Weights           `mapstructure:"weights"`
	Budget  BudgetTiers       `mapstructure:"budget"`
	Tech    TechKeywords      `mapstructure:"tech-keywords"`
	Client  ClientSignals     `mapstructure:"client-signals"`
	Clarity ClarityIndicators `mapstructure:"project-clarity"`
	Timing  TimingBuckets     `mapstructure:"timing"`
}

// Weights are the per-factor percentages applied to the five sub-scores. They
// are expected to sum to 100 but the engine clamps the composite explicitly
// instead of relying on it.
type Weights struct {
	Budget         int `mapstructure:"budget"`
	TechMatch      int `mapstructure:"tech-match"`
	ClientQuality  int `mapstructure:"client-quality"`
	ProjectClarity int `mapstructure:"project-clarity"`
	Timing         int `mapstructure:"timing"`
}

// BudgetTier maps a minimum rate or amount to a sub-score.
type BudgetTier struct {
	Name  string  `mapstructure:"name"`
	Min   float64 `mapstructure:"min"`
	Score int     `mapstructure:"score"`
}

// BudgetTiers holds separate tier tables for hourly and fixed-price postings.
type BudgetTiers struct {
	Hourly []BudgetTier `mapstructure:"hourly"`
	Fixed  []BudgetTier `mapstructure:"fixed"`
}

// KeywordTier is a keyword list with the score it contributes.
type KeywordTier struct {
	Keywords []string `mapstructure:"keywords"`
	Score    int      `mapstructure:"score"`
}

// TechKeywords are the four keyword tiers of the tech-match factor. Negative
// carries a negative Score.
type TechKeywords struct {
	Primary   KeywordTier `mapstructure:"primary"`
	Secondary KeywordTier `mapstructure:"secondary"`
	Bonus     KeywordTier `mapstructure:"bonus"`
	Negative  KeywordTier `mapstructure:"negative"`
}

// ClientSignals configures the client-quality bonuses and penalties applied
// on top of the base score of 50.
type ClientSignals struct {
	PaymentVerified int     `mapstructure:"payment-verified"`
	NoPaymentMethod int     `mapstructure:"no-payment-method"`
	HireRate50Plus  int     `mapstructure:"hire-rate-50-plus"`
	HireRateBelow20 int     `mapstructure:"hire-rate-below-20"`
	BigSpender      int     `mapstructure:"big-spender"`
	SpendThreshold  float64 `mapstructure:"spend-threshold"`
}

// ClarityIndicators configures the project-clarity bonuses applied on top of
// the base score of 40.
type ClarityIndicators struct {
	DetailedDescription int `mapstructure:"detailed-description"`
	TechSpec            int `mapstructure:"tech-spec"`
	Examples            int `mapstructure:"examples"`
	Milestones          int `mapstructure:"milestones"`
}

// TimingBuckets maps hours-since-posted buckets to scores.
type TimingBuckets struct {
	Within1Hour   int `mapstructure:"within-1-hour"`
	Within3Hours  int `mapstructure:"within-3-hours"`
	Within6Hours  int `mapstructure:"within-6-hours"`
	Within12Hours int `mapstructure:"within-12-hours"`
	Within24Hours int `mapstructure:"within-24-hours"`
	Older         int `mapstructure:"older"`
}

// DefaultRubric returns the built-in rubric used when the config file does
// not override it.
func DefaultRubric() Rubric {
	return Rubric{
		Weights: Weights{
			Budget:         25,
			TechMatch:      30,
			ClientQuality:  20,
			ProjectClarity: 15,
			Timing:         10,
		},
		Budget: BudgetTiers{
			Hourly: []BudgetTier{
				{Name: "premium", Min: 60, Score: 100},
				{Name: "high", Min: 40, Score: 80},
				{Name: "good", Min: 25, Score: 60},
				{Name: "low", Min: 15, Score: 30},
				{Name: "floor", Min: 0, Score: 0},
			},
			Fixed: []BudgetTier{
				{Name: "large", Min: 5000, Score: 100},
				{Name: "big", Min: 2000, Score: 85},
				{Name: "mid", Min: 1000, Score: 65},
				{Name: "small", Min: 500, Score: 45},
				{Name: "tiny", Min: 100, Score: 20},
				{Name: "floor", Min: 0, Score: 0},
			},
		},
		Tech: TechKeywords{
			Primary: KeywordTier{
				Keywords: []string{"react", "next.js", "nextjs", "typescript", "node.js", "full-stack", "fullstack"},
				Score:    100,
			},
			Secondary: KeywordTier{
				Keywords: []string{"javascript", "tailwind", "postgres", "supabase", "rest api", "frontend", "backend"},
				Score:    60,
			},
			Bonus: KeywordTier{
				Keywords: []string{"saas", "dashboard", "stripe", "openai", "ai integration"},
				Score:    20,
			},
			Negative: KeywordTier{
				Keywords: []string{"wordpress", "wix", "squarespace", "data entry", "no code"},
				Score:    -40,
			},
		},
		Client: ClientSignals{
			PaymentVerified: 20,
			NoPaymentMethod: -20,
			HireRate50Plus:  15,
			HireRateBelow20: -15,
			BigSpender:      15,
			SpendThreshold:  10000,
		},
		Clarity: ClarityIndicators{
			DetailedDescription: 25,
			TechSpec:            15,
			Examples:            10,
			Milestones:          10,
		},
		Timing: TimingBuckets{
			Within1Hour:   100,
			Within3Hours:  85,
			Within6Hours:  70,
			Within12Hours: 55,
			Within24Hours: 40,
			Older:         20,
		},
	}
}

// sortTiers orders a tier table from the highest minimum down so the first
// tier whose minimum is met is always the best one. Config files may list
// tiers in any order.
func sortTiers(tiers []BudgetTier) []BudgetTier {
	sorted := make([]BudgetTier, len(tiers))
	copy(sorted, tiers)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Min > sorted[j].Min
	})
	return sorted
}
