package proposal

// Template is one proposal skeleton. Triggers decide when it applies;
// Structure sections carry {placeholder} tokens filled by the generator.
type Template struct {
	Name      string    `mapstructure:"name"`
	Triggers  []string  `mapstructure:"triggers"`
	Structure Structure `mapstructure:"structure"`
}

// Structure is the fixed section order of every proposal.
type Structure struct {
	Hook          string `mapstructure:"hook"`
	Understanding string `mapstructure:"understanding"`
	Approach      string `mapstructure:"approach"`
	Proof         string `mapstructure:"proof"`
	CTA           string `mapstructure:"cta"`
	Signature     string `mapstructure:"signature"`
}

// Config holds the template set. Templates are matched in order; the last
// template with no triggers is the generic fallback.
type Config struct {
	Templates []Template `mapstructure:"templates"`
	MaxLength int        `mapstructure:"max-length"`
}

// DefaultConfig returns the built-in template set.
func DefaultConfig() Config {
	signature := "Best,\nThe Idea Allies team"

	return Config{
		MaxLength: 2800,
		Templates: []Template{
			{
				Name:     "webapp",
				Triggers: []string{"dashboard", "saas", "web app", "platform", "portal"},
				Structure: Structure{
					Hook:          "I've shipped {techStack} products used by {scale}, and {projectName} is squarely in that lane.",
					Understanding: "From your post, the core needs are:\n{bulletPoints}",
					Approach:      "How I'd run this:\n1. {phase1}\n2. {phase2}\n3. {phase3}",
					Proof:         "Most relevant work: {portfolioLink}",
					CTA:           "One question to scope this right: {clarifyingQuestion}",
					Signature:     signature,
				},
			},
			{
				Name:     "api",
				Triggers: []string{"api", "integration", "backend", "webhook", "endpoint"},
				Structure: Structure{
					Hook:          "Integrations are my bread and butter — {specificDetail} tells me you need someone who sweats the edge cases.",
					Understanding: "What I'm reading as the requirements:\n{bulletPoints}",
					Approach:      "Plan: {approach}\nRealistic timeline: {timeline}.",
					Proof:         "I built {project1} and {project2}, both heavy on exactly this kind of work.",
					CTA:           "Quick question before I can give a firm estimate: {clarifyingQuestion}",
					Signature:     signature,
				},
			},
			{
				Name:     "bugfix",
				Triggers: []string{"bug", "fix", "broken", "not working", "issue"},
				Structure: Structure{
					Hook:          "I've debugged {issueType} issues across plenty of production {projectType}s — usually the fix is smaller than it looks.",
					Understanding: "What seems to be happening:\n{bulletPoints}",
					Approach:      "Plan: {approach}",
					Proof:         "Recent comparable work: {portfolioLink}",
					CTA:           "{clarifyingQuestion}",
					Signature:     signature,
				},
			},
			{
				Name:     "mvp",
				Triggers: []string{"mvp", "startup", "launch", "prototype", "from scratch"},
				Structure: Structure{
					Hook:          "I help founders take ideas like {projectName} from zero to launched, fast and without cut corners.",
					Understanding: "Your must-haves as I read them:\n{bulletPoints}",
					Approach:      "Phased delivery:\n1. {phase1}\n2. {phase2}\n3. {phase3}\nTimeline: {timeline}.",
					Proof:         "I've done this before: {portfolioLink}",
					CTA:           "To scope the first milestone: {clarifyingQuestion}",
					Signature:     signature,
				},
			},
			{
				Name: "generic",
				Structure: Structure{
					Hook:          "Your project caught my eye — {specificDetail} is exactly the kind of work I do with {techStack}.",
					Understanding: "Key requirements I picked up:\n{bulletPoints}",
					Approach:      "Plan: {approach}\nTimeline: {timeline}.",
					Proof:         "Relevant work: {portfolioLink}",
					CTA:           "{clarifyingQuestion}",
					Signature:     signature,
				},
			},
		},
	}
}

// fallback returns the generic template: the first one with no triggers, or
// the last template when every one has triggers.
func (c Config) fallback() Template {
	for _, t := range c.Templates {
		if len(t.Triggers) == 0 {
			return t
		}
	}
	return c.Templates[len(c.Templates)-1]
}
