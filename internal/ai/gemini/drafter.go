// Package gemini drafts proposals with the Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/idea-allies/upwork-pipeline/internal/pipeline"
	"github.com/idea-allies/upwork-pipeline/internal/profile"
)

const defaultModel = "gemini-2.5-flash"

// Drafter wraps the Google GenAI client for proposal drafting.
type Drafter struct {
	client    *genai.Client
	modelName string
}

// NewDrafter creates a Drafter configured for the Gemini API backend.
func NewDrafter(ctx context.Context, apiKey, model string) (*Drafter, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}

	return &Drafter{client: client, modelName: model}, nil
}

// Draft asks the model for a proposal tailored to the job and profile.
func (d *Drafter) Draft(ctx context.Context, job *pipeline.Job, prof *profile.Profile) (string, error) {
	if d == nil || d.client == nil {
		return "", errors.New("gemini drafter is not initialized")
	}

	resp, err := d.client.Models.GenerateContent(ctx, d.modelName, genai.Text(buildPrompt(job, prof)), nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	output := strings.TrimSpace(builder.String())
	if output == "" {
		return "", errors.New("gemini api returned empty response")
	}
	return output, nil
}

func (d *Drafter) Model() string {
	if d == nil {
		return ""
	}
	return d.modelName
}

func buildPrompt(job *pipeline.Job, prof *profile.Profile) string {
	var b strings.Builder
	b.WriteString("Write a concise Upwork proposal (under 300 words) for the job below. ")
	b.WriteString("Open with a specific hook referencing the job, list how we would approach it, ")
	b.WriteString("mention relevant experience, and close with one clarifying question. ")
	b.WriteString("No greetings like 'Dear client'. Plain text only.\n\n")

	fmt.Fprintf(&b, "Job title: %s\n", job.Title)
	fmt.Fprintf(&b, "Budget: %s\n", job.BudgetLabel())
	if job.Skills != "" {
		fmt.Fprintf(&b, "Skills requested: %s\n", job.Skills)
	}
	fmt.Fprintf(&b, "Description:\n%s\n", job.Description)

	if prof != nil {
		if len(prof.Portfolio.Highlights) > 0 {
			b.WriteString("\nOur portfolio highlights:\n")
			for _, h := range prof.Portfolio.Highlights {
				fmt.Fprintf(&b, "- %s\n", h)
			}
		}
		if len(prof.Agency.TechStack) > 0 {
			b.WriteString("\nOur tech stack:\n")
			for area, techs := range prof.Agency.TechStack {
				fmt.Fprintf(&b, "- %s: %s\n", area, strings.Join(techs, ", "))
			}
		}
	}
	return b.String()
}
