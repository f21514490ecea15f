// Package proposal renders job postings into ready-to-edit proposal drafts.
// Generation is deterministic: the same job and profile always produce the
// same draft, so revision tracking in the store stays meaningful.
package proposal

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/idea-allies/upwork-pipeline/internal/pipeline"
	"github.com/idea-allies/upwork-pipeline/internal/profile"
)

var (
	sentenceSplitRe = regexp.MustCompile(`[.\n]`)
	actionVerbRe    = regexp.MustCompile(`(?i)\b(build|create|develop|design|implement|migrate|integrate)\b`)
	blankLinesRe    = regexp.MustCompile(`\n{3,}`)
	placeholderRe   = regexp.MustCompile(`\{(\w+)\}`)
)

// Generate fills the best-matching template for the job and returns the draft
// together with the name of the template used.
func Generate(job *pipeline.Job, prof *profile.Profile, cfg Config) (string, string) {
	tmpl := selectTemplate(job, cfg)
	vars := buildVars(job, prof)

	sections := []string{
		tmpl.Structure.Hook,
		tmpl.Structure.Understanding,
		tmpl.Structure.Approach,
		tmpl.Structure.Proof,
		tmpl.Structure.CTA,
		tmpl.Structure.Signature,
	}
	body := strings.Join(sections, "\n\n")

	body = placeholderRe.ReplaceAllStringFunc(body, func(m string) string {
		key := m[1 : len(m)-1]
		if v, ok := vars[key]; ok {
			return v
		}
		return m
	})
	body = blankLinesRe.ReplaceAllString(body, "\n\n")
	body = strings.TrimSpace(body)

	if cfg.MaxLength > 0 && len(body) > cfg.MaxLength {
		body = body[:cfg.MaxLength]
	}
	return body, tmpl.Name
}

// selectTemplate returns the first template whose triggers match the posting
// text, skipping trigger-less templates in the scan. Falls back to generic.
func selectTemplate(job *pipeline.Job, cfg Config) Template {
	haystack := strings.ToLower(job.Title + " " + job.Description)
	for _, t := range cfg.Templates {
		if len(t.Triggers) == 0 {
			continue
		}
		for _, trig := range t.Triggers {
			if strings.Contains(haystack, trig) {
				return t
			}
		}
	}
	return cfg.fallback()
}

func buildVars(job *pipeline.Job, prof *profile.Profile) map[string]string {
	stack := matchTechStack(job, prof)
	detail := specificDetail(job)

	vars := map[string]string{
		"projectName":        projectName(job),
		"specificDetail":     detail,
		"techStack":          stack,
		"bulletPoints":       extractRequirements(job.Description),
		"scale":              "thousands of users",
		"phase1":             "Nail down scope and set up the foundation (repo, CI, deploy target)",
		"phase2":             "Build and demo the core flows, iterating on your feedback",
		"phase3":             "Polish, test, and hand over with docs",
		"approach":           "start with a short discovery call, then deliver in small reviewable increments",
		"timeline":           estimateTimeline(job),
		"portfolioLink":      portfolioHighlight(job, prof),
		"project1":           showcaseName(prof, 0),
		"project2":           showcaseName(prof, 1),
		"issueType":          issueType(job),
		"projectType":        "web application",
		"duration":           estimateTimeline(job),
		"clarifyingQuestion": clarifyingQuestion(job),
	}
	return vars
}

// extractRequirements pulls requirement-looking lines out of the description
// and renders them as bullets, at most four.
func extractRequirements(description string) string {
	markers := []string{"need", "must", "should", "require", "looking for", "want"}

	var bullets []string
	for _, line := range sentenceSplitRe.Split(description, -1) {
		line = strings.TrimSpace(line)
		if len(line) < 20 {
			continue
		}
		lower := strings.ToLower(line)
		matched := false
		for _, m := range markers {
			if strings.Contains(lower, m) {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}
		if len(line) > 100 {
			line = line[:100]
		}
		bullets = append(bullets, "• "+line)
		if len(bullets) == 4 {
			break
		}
	}

	if len(bullets) == 0 {
		for _, line := range sentenceSplitRe.Split(description, -1) {
			line = strings.TrimSpace(line)
			if len(line) < 20 || !actionVerbRe.MatchString(line) {
				continue
			}
			if len(line) > 100 {
				line = line[:100]
			}
			bullets = append(bullets, "• "+line)
			if len(bullets) == 4 {
				break
			}
		}
	}

	if len(bullets) == 0 {
		return "• Deliver the project as described in your post"
	}
	return strings.Join(bullets, "\n")
}

// clarifyingQuestion picks one scoping question keyed off the posting text.
func clarifyingQuestion(job *pipeline.Job) string {
	text := strings.ToLower(job.Title + " " + job.Description)
	switch {
	case containsAny(text, "design", "ui", "figma"):
		return "Do you have designs ready, or would you like me to handle the UI design as well?"
	case containsAny(text, "api", "integrate", "backend"):
		return "Which systems does this need to integrate with, and do they have documented APIs?"
	case containsAny(text, "mvp", "startup", "launch"):
		return "What is the single must-have feature for your first launch?"
	case containsAny(text, "bug", "fix", "issue"):
		return "Can you share steps to reproduce the issue and access to the relevant code?"
	default:
		return "What does a successful outcome look like for you in the first month?"
	}
}

// matchTechStack intersects the posting's skills with the profile's tech
// stack, capped at four entries.
func matchTechStack(job *pipeline.Job, prof *profile.Profile) string {
	const fallback = "Next.js, React, TypeScript"
	if prof == nil {
		return fallback
	}

	jobText := strings.ToLower(job.Title + " " + job.Description + " " + job.Skills)
	var matched []string
	for _, techs := range prof.Agency.TechStack {
		for _, tech := range techs {
			if strings.Contains(jobText, strings.ToLower(tech)) {
				matched = append(matched, tech)
				if len(matched) == 4 {
					return strings.Join(matched, ", ")
				}
			}
		}
	}
	if len(matched) == 0 {
		return fallback
	}
	return strings.Join(matched, ", ")
}

// portfolioHighlight returns the first profile highlight sharing a keyword
// with the posting, or the first highlight at all.
func portfolioHighlight(job *pipeline.Job, prof *profile.Profile) string {
	if prof == nil || len(prof.Portfolio.Highlights) == 0 {
		return "available on request"
	}
	jobText := strings.ToLower(job.Title + " " + job.Description)
	for _, h := range prof.Portfolio.Highlights {
		for _, word := range strings.Fields(strings.ToLower(h)) {
			if len(word) >= 5 && strings.Contains(jobText, word) {
				return h
			}
		}
	}
	return prof.Portfolio.Highlights[0]
}

func showcaseName(prof *profile.Profile, idx int) string {
	if prof != nil && idx < len(prof.Portfolio.Showcase) {
		return prof.Portfolio.Showcase[idx].Name
	}
	if idx == 0 {
		return "a production SaaS dashboard"
	}
	return "a high-volume integration service"
}

func projectName(job *pipeline.Job) string {
	title := strings.TrimSpace(job.Title)
	if title == "" {
		return "your project"
	}
	if len(title) > 60 {
		title = title[:60]
	}
	return title
}

// specificDetail surfaces one concrete phrase from the posting so the draft
// reads written-for-you rather than boilerplate.
func specificDetail(job *pipeline.Job) string {
	for _, line := range sentenceSplitRe.Split(job.Description, -1) {
		line = strings.TrimSpace(line)
		if len(line) >= 30 && len(line) <= 120 {
			return fmt.Sprintf("%q", line)
		}
	}
	return "the scope you describe"
}

func estimateTimeline(job *pipeline.Job) string {
	switch {
	case job.BudgetType == "hourly":
		return "ongoing, starting within the week"
	case job.BudgetMax >= 5000:
		return "4-6 weeks"
	case job.BudgetMax >= 1000:
		return "2-3 weeks"
	default:
		return "about a week"
	}
}

func issueType(job *pipeline.Job) string {
	text := strings.ToLower(job.Title + " " + job.Description)
	switch {
	case containsAny(text, "performance", "slow"):
		return "performance"
	case containsAny(text, "deploy", "build", "ci"):
		return "deployment"
	case containsAny(text, "css", "layout", "responsive"):
		return "front-end"
	default:
		return "application"
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
