// Package portfolio keeps the profile's repository list in sync with GitHub.
// Sync only ever rewrites the github-repos section and the sync timestamp; the
// hand-curated showcase and highlights are never touched.
package portfolio

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/idea-allies/upwork-pipeline/internal/profile"
)

const (
	defaultAPIURL  = "https://api.github.com"
	perPage        = 100
	requestTimeout = time.Second * 20

	// Repos untouched for longer than this are dropped from the portfolio.
	recencyWindow = 2 * 365 * 24 * time.Hour
)

// Languages and topics that mark a repo as client-relevant.
var (
	relevantLanguages = map[string]bool{
		"typescript": true,
		"javascript": true,
		"go":         true,
		"python":     true,
	}
	relevantTopics = map[string]bool{
		"nextjs":    true,
		"react":     true,
		"saas":      true,
		"dashboard": true,
		"api":       true,
		"fullstack": true,
	}
)

type Client struct {
	username string
	token    string
	logger   *zap.Logger

	HTTPClient *http.Client
	APIURL     string
}

// Repo is one repository as the GitHub API reports it.
type Repo struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	HTMLURL     string   `json:"html_url"`
	Homepage    string   `json:"homepage"`
	Language    string   `json:"language"`
	Topics      []string `json:"topics"`
	Stars       int      `json:"stargazers_count"`
	Fork        bool     `json:"fork"`
	Archived    bool     `json:"archived"`
	Private     bool     `json:"private"`
	PushedAt    string   `json:"pushed_at"`
}

// New creates a GitHub client. With a token the authenticated /user/repos
// endpoint is used so private repos are visible; without one only the
// username's public repos are listed.
func New(username, token string, logger *zap.Logger) *Client {
	return &Client{
		username:   username,
		token:      token,
		logger:     logger,
		HTTPClient: &http.Client{},
		APIURL:     defaultAPIURL,
	}
}

// FetchRepos lists all repositories, following pagination.
func (c *Client) FetchRepos(ctx context.Context) ([]Repo, error) {
	var all []Repo
	for page := 1; ; page++ {
		batch, err := c.fetchPage(ctx, page)
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)
		if len(batch) < perPage {
			return all, nil
		}
	}
}

func (c *Client) fetchPage(ctx context.Context, page int) ([]Repo, error) {
	path := fmt.Sprintf("/users/%s/repos", c.username)
	if c.token != "" {
		path = "/user/repos"
	}
	url := fmt.Sprintf("%s%s?per_page=%d&page=%d&sort=pushed", c.APIURL, path, perPage, page)

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching github repos: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		c.logger.Error("github api request failed",
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body)),
		)
		return nil, fmt.Errorf("github api returned status %d", resp.StatusCode)
	}

	var repos []Repo
	if err := json.NewDecoder(resp.Body).Decode(&repos); err != nil {
		return nil, fmt.Errorf("decoding github response: %w", err)
	}
	return repos, nil
}

// Sync fetches, filters and ranks repos, then rewrites the profile's
// github-repos list and sync timestamp. Returns the kept repos.
func (c *Client) Sync(ctx context.Context, prof *profile.Profile) ([]profile.Repo, error) {
	fetched, err := c.FetchRepos(ctx)
	if err != nil {
		return nil, err
	}

	kept := FilterAndRank(fetched, time.Now())
	c.logger.Info("synced github portfolio",
		zap.Int("fetched", len(fetched)),
		zap.Int("kept", len(kept)),
	)

	prof.Portfolio.GitHubRepos = kept
	prof.Portfolio.LastSynced = time.Now().Format(time.RFC3339)
	return kept, nil
}

// FilterAndRank drops forks, archived repos and stale ones, keeps repos with
// a relevant language or topic, and orders by stars with recency as the
// tie-break.
func FilterAndRank(repos []Repo, now time.Time) []profile.Repo {
	type ranked struct {
		repo   profile.Repo
		pushed time.Time
	}

	var kept []ranked
	for _, r := range repos {
		if r.Fork || r.Archived {
			continue
		}
		pushed, err := time.Parse(time.RFC3339, r.PushedAt)
		if err != nil || now.Sub(pushed) > recencyWindow {
			continue
		}
		if !isRelevant(r) {
			continue
		}
		kept = append(kept, ranked{
			repo: profile.Repo{
				Name:        r.Name,
				Description: r.Description,
				URL:         r.HTMLURL,
				LiveURL:     r.Homepage,
				Language:    r.Language,
				Topics:      r.Topics,
				Stars:       r.Stars,
				LastUpdated: pushed.Format("2006-01-02"),
				Private:     r.Private,
			},
			pushed: pushed,
		})
	}

	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].repo.Stars != kept[j].repo.Stars {
			return kept[i].repo.Stars > kept[j].repo.Stars
		}
		return kept[i].pushed.After(kept[j].pushed)
	})

	out := make([]profile.Repo, len(kept))
	for i, k := range kept {
		out[i] = k.repo
	}
	return out
}

func isRelevant(r Repo) bool {
	if relevantLanguages[strings.ToLower(r.Language)] {
		return true
	}
	for _, t := range r.Topics {
		if relevantTopics[strings.ToLower(t)] {
			return true
		}
	}
	return false
}

// Highlights renders one-liners for the top public repos, for pasting into
// the profile's highlights section.
func Highlights(repos []profile.Repo, limit int) []string {
	var out []string
	for _, r := range repos {
		if r.Private {
			continue
		}
		line := r.Name
		if r.Description != "" {
			line += ": " + r.Description
		}
		if r.Language != "" {
			line += fmt.Sprintf(" (%s)", r.Language)
		}
		out = append(out, line)
		if len(out) == limit {
			break
		}
	}
	return out
}
