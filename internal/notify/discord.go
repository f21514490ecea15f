// Package notify delivers pipeline events to a Discord channel via an
// incoming webhook. Delivery is best-effort: failures are logged and reported
// as a boolean so a broken webhook never aborts a run.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/idea-allies/upwork-pipeline/internal/pipeline"
	"github.com/idea-allies/upwork-pipeline/internal/utils"
)

const requestTimeout = time.Second * 10

// Embed colors by score band.
const (
	colorHot   = 0x00ff00
	colorWarm  = 0xffff00
	colorMaybe = 0xffa500
	colorCold  = 0xff0000
)

type Discord struct {
	webhookURL string
	logger     *zap.Logger

	HTTPClient *http.Client
}

type message struct {
	Content string  `json:"content,omitempty"`
	Embeds  []embed `json:"embeds,omitempty"`
}

type embed struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	URL         string       `json:"url,omitempty"`
	Color       int          `json:"color,omitempty"`
	Fields      []embedField `json:"fields,omitempty"`
	Footer      *embedFooter `json:"footer,omitempty"`
}

type embedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type embedFooter struct {
	Text string `json:"text"`
}

// New creates a Discord notifier. An empty webhook URL is allowed; every send
// then logs a skip and reports false.
func New(webhookURL string, logger *zap.Logger) *Discord {
	return &Discord{
		webhookURL: webhookURL,
		logger:     logger,
		HTTPClient: &http.Client{},
	}
}

// SendJobAlert announces a high-scoring posting.
func (d *Discord) SendJobAlert(ctx context.Context, job *pipeline.Job) bool {
	e := embed{
		Title: fmt.Sprintf("%s %s", scoreEmoji(job.Score), utils.Truncate(job.Title, 120)),
		URL:   job.URL,
		Color: scoreColor(job.Score),
		Fields: []embedField{
			{Name: "Score", Value: fmt.Sprintf("%d/100", job.Score), Inline: true},
			{Name: "Budget", Value: job.BudgetLabel(), Inline: true},
			{Name: "Client", Value: clientLine(job), Inline: true},
		},
		Description: utils.Truncate(job.Description, 300),
		Footer:      &embedFooter{Text: "upwork-pipeline job alert"},
	}
	if job.Skills != "" {
		e.Fields = append(e.Fields, embedField{Name: "Skills", Value: utils.Truncate(job.Skills, 200)})
	}
	return d.send(ctx, message{Embeds: []embed{e}})
}

// SendProposalReady announces a generated draft awaiting review.
func (d *Discord) SendProposalReady(ctx context.Context, job *pipeline.Job, draft string) bool {
	e := embed{
		Title:       fmt.Sprintf("📝 Draft ready: %s", utils.Truncate(job.Title, 120)),
		URL:         job.URL,
		Color:       scoreColor(job.Score),
		Description: utils.Truncate(draft, 1000),
		Fields: []embedField{
			{Name: "Score", Value: fmt.Sprintf("%d/100", job.Score), Inline: true},
			{Name: "Review with", Value: "`upwork-pipeline review`", Inline: true},
		},
	}
	return d.send(ctx, message{Embeds: []embed{e}})
}

// SendDailyDigest summarizes the day's qualified jobs and pipeline counters.
func (d *Discord) SendDailyDigest(ctx context.Context, jobs []*pipeline.Job, stats pipeline.Stats) bool {
	var lines []string
	for i, j := range jobs {
		if i == 10 {
			lines = append(lines, fmt.Sprintf("...and %d more", len(jobs)-10))
			break
		}
		lines = append(lines, fmt.Sprintf("%s **%d** [%s](%s) %s",
			scoreEmoji(j.Score), j.Score, utils.Truncate(j.Title, 60), j.URL, j.BudgetLabel()))
	}
	body := "No qualified jobs in the last day."
	if len(lines) > 0 {
		body = strings.Join(lines, "\n")
	}

	e := embed{
		Title:       fmt.Sprintf("📊 Daily digest: %d qualified jobs", len(jobs)),
		Color:       colorWarm,
		Description: body,
		Fields: []embedField{
			{Name: "Proposals out", Value: fmt.Sprintf("%d", stats.Submitted), Inline: true},
			{Name: "Responses", Value: fmt.Sprintf("%d", stats.Responses), Inline: true},
			{Name: "Won", Value: fmt.Sprintf("%d", stats.Won), Inline: true},
		},
	}
	return d.send(ctx, message{Embeds: []embed{e}})
}

func (d *Discord) send(ctx context.Context, msg message) bool {
	if d.webhookURL == "" {
		d.logger.Info("discord webhook not configured, skipping notification")
		return false
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		d.logger.Error("marshaling discord payload", zap.Error(err))
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.webhookURL, bytes.NewReader(payload))
	if err != nil {
		d.logger.Error("building discord request", zap.Error(err))
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.HTTPClient.Do(req)
	if err != nil {
		d.logger.Error("sending discord notification", zap.Error(err))
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		d.logger.Error("discord webhook rejected message",
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body)),
		)
		return false
	}
	return true
}

func scoreColor(score int) int {
	switch {
	case score >= 85:
		return colorHot
	case score >= 70:
		return colorWarm
	case score >= 50:
		return colorMaybe
	default:
		return colorCold
	}
}

func scoreEmoji(score int) string {
	switch {
	case score >= 85:
		return "🔥"
	case score >= 70:
		return "🌤"
	case score >= 50:
		return "🤔"
	default:
		return "❄️"
	}
}

func clientLine(job *pipeline.Job) string {
	verified := "unverified"
	if job.ClientPaymentVerified {
		verified = "verified"
	}
	line := verified
	if job.ClientCountry != "" {
		line = job.ClientCountry + ", " + line
	}
	if job.ClientTotalSpent > 0 {
		line += fmt.Sprintf(", $%.0f spent", job.ClientTotalSpent)
	}
	return line
}
