// Package profile holds the agency profile consumed by proposal generation
// and kept in sync by the portfolio job.
package profile

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Profile is the agency profile file. Showcase and Highlights are curated by
// hand; GitHubRepos is the only section the portfolio sync is allowed to
// rewrite.
type Profile struct {
	Owner     Owner     `yaml:"owner"`
	Agency    Agency    `yaml:"agency"`
	Portfolio Portfolio `yaml:"portfolio"`
}

type Owner struct {
	Name   string `yaml:"name"`
	GitHub string `yaml:"github"`
}

type Agency struct {
	Name      string              `yaml:"name"`
	TechStack map[string][]string `yaml:"tech-stack"`
}

type Portfolio struct {
	Highlights  []string       `yaml:"highlights"`
	Showcase    []ShowcaseItem `yaml:"showcase"`
	GitHubRepos []Repo         `yaml:"github-repos"`
	LastSynced  string         `yaml:"last-synced"`
}

// ShowcaseItem is one hand-curated portfolio entry.
type ShowcaseItem struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	URL         string   `yaml:"url"`
	Tech        []string `yaml:"tech"`
	Sector      string   `yaml:"sector"`
	Repos       []string `yaml:"repos"`
}

// Repo is one synced GitHub repository.
type Repo struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	URL         string   `yaml:"url"`
	LiveURL     string   `yaml:"live-url,omitempty"`
	Language    string   `yaml:"language,omitempty"`
	Topics      []string `yaml:"topics,omitempty"`
	Stars       int      `yaml:"stars"`
	LastUpdated string   `yaml:"last-updated"`
	Private     bool     `yaml:"private"`
}

// Load reads the profile from path.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile %q: %w", path, err)
	}

	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse profile %q: %w", path, err)
	}
	return &p, nil
}

// Save writes the profile back to path.
func Save(path string, p *Profile) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write profile %q: %w", path, err)
	}
	return nil
}

// ShowcaseNames returns every repo name represented in the curated showcase.
func (p *Profile) ShowcaseNames() map[string]bool {
	names := make(map[string]bool)
	for _, item := range p.Portfolio.Showcase {
		if len(item.Repos) == 0 {
			names[item.Name] = true
			continue
		}
		for _, repo := range item.Repos {
			names[repo] = true
		}
	}
	return names
}
