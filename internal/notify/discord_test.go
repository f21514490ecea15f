package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/idea-allies/upwork-pipeline/internal/pipeline"
)

func alertJob() *pipeline.Job {
	return &pipeline.Job{
		ID:                    "~job1",
		Title:                 "Next.js dashboard build",
		Description:           "Build a dashboard with charts.",
		URL:                   "https://www.upwork.com/jobs/~job1",
		BudgetType:            "hourly",
		HourlyRateMin:         50,
		HourlyRateMax:         80,
		Skills:                "React, Next.js",
		ClientCountry:         "United States",
		ClientPaymentVerified: true,
		ClientTotalSpent:      25000,
		Score:                 91,
	}
}

func TestSendJobAlert(t *testing.T) {
	var got message
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &got); err != nil {
			t.Errorf("bad payload: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	d := New(srv.URL, zap.NewNop())
	if !d.SendJobAlert(context.Background(), alertJob()) {
		t.Fatal("expected send to succeed")
	}
	if len(got.Embeds) != 1 {
		t.Fatalf("expected 1 embed, got %d", len(got.Embeds))
	}
	e := got.Embeds[0]
	if e.Color != colorHot {
		t.Fatalf("expected hot color for score 91, got %#x", e.Color)
	}
	if e.URL != "https://www.upwork.com/jobs/~job1" {
		t.Fatalf("unexpected embed URL %q", e.URL)
	}
}

func TestSendReturnsFalseOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	d := New(srv.URL, zap.NewNop())
	if d.SendJobAlert(context.Background(), alertJob()) {
		t.Fatal("expected send to fail on 429")
	}
}

func TestSendSkipsWithoutWebhook(t *testing.T) {
	d := New("", zap.NewNop())
	if d.SendJobAlert(context.Background(), alertJob()) {
		t.Fatal("expected skip without a webhook URL")
	}
}

func TestSendDailyDigestCapsListing(t *testing.T) {
	var got message
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	jobs := make([]*pipeline.Job, 14)
	for i := range jobs {
		j := alertJob()
		jobs[i] = j
	}

	d := New(srv.URL, zap.NewNop())
	if !d.SendDailyDigest(context.Background(), jobs, pipeline.Stats{Submitted: 3, Won: 1}) {
		t.Fatal("expected digest send to succeed")
	}
	if want := "...and 4 more"; !strings.Contains(got.Embeds[0].Description, want) {
		t.Fatalf("expected truncation marker %q in digest:\n%s", want, got.Embeds[0].Description)
	}
}
