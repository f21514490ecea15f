package vollna

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

func TestListFilters(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-API-TOKEN"); got != "token123" {
			t.Errorf("missing api token header, got %q", got)
		}
		if r.URL.Path != "/filters" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Write([]byte(`{"data":[{"id":1,"name":"React jobs"},{"id":2,"name":"Go jobs"}]}`))
	}))
	defer srv.Close()

	c := New("token123", zap.NewNop())
	c.APIURL = srv.URL

	filters, err := c.ListFilters(context.Background())
	if err != nil {
		t.Fatalf("ListFilters: %v", err)
	}
	if len(filters) != 2 {
		t.Fatalf("got %d filters, want 2", len(filters))
	}
	if filters[0].ID != 1 || filters[0].Name != "React jobs" {
		t.Fatalf("unexpected first filter: %+v", filters[0])
	}
}

func TestListProjectsDecodesPolymorphicBudget(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/filters/7/projects" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Write([]byte(`{"data":[
			{"url":"https://www.upwork.com/jobs/~01aaa","title":"React dashboard","budget":"$2,000-$3,000","skills":["React","TypeScript"]},
			{"url":"https://www.upwork.com/jobs/~01bbb","title":"API work","budget_type":"hourly","hourly_rate":{"min":40,"max":60},"client":{"payment_verified":true,"hire_rate":80}}
		]}`))
	}))
	defer srv.Close()

	c := New("token123", zap.NewNop())
	c.APIURL = srv.URL

	projects, err := c.ListProjects(context.Background(), 7)
	if err != nil {
		t.Fatalf("ListProjects: %v", err)
	}
	if len(projects) != 2 {
		t.Fatalf("got %d projects, want 2", len(projects))
	}

	if m, ok := projects[0].FixedBudget(); !ok || m.Min != 2000 || m.Max != 3000 {
		t.Fatalf("first project budget: %v %v", m, ok)
	}
	if m, ok := projects[1].HourlyRates(); !ok || m.Min != 40 || m.Max != 60 {
		t.Fatalf("second project hourly rate: %v %v", m, ok)
	}
	if projects[1].Client == nil || !projects[1].Client.PaymentVerified {
		t.Fatal("client signals not decoded")
	}
	if projects[1].Client.HireRate == nil || *projects[1].Client.HireRate != 80 {
		t.Fatal("hire rate not decoded")
	}
}

func TestListFiltersBadStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := New("bad", zap.NewNop())
	c.APIURL = srv.URL

	if _, err := c.ListFilters(context.Background()); err == nil {
		t.Fatal("expected error for 401 response")
	}
}
