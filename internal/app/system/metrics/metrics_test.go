package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollector_Counts(t *testing.T) {
	c := New("stratapage_test")

	c.Generation(GenerationOK)
	c.Generation(GenerationOK)
	c.Generation(GenerationFailed)
	c.PublicView(ViewNotFound)
	c.PageWrite("save")

	if got := testutil.ToFloat64(c.Generations.WithLabelValues(GenerationOK)); got != 2 {
		t.Errorf("ok generations = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.Generations.WithLabelValues(GenerationFailed)); got != 1 {
		t.Errorf("failed generations = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.PublicViews.WithLabelValues(ViewNotFound)); got != 1 {
		t.Errorf("not found views = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.PageWrites.WithLabelValues("save")); got != 1 {
		t.Errorf("save writes = %v, want 1", got)
	}
}

func TestCollector_NilIsNoop(t *testing.T) {
	var c *Collector
	c.Generation(GenerationOK)
	c.PublicView(ViewFound)
	c.PageWrite("delete")
}

func TestCollector_Handler(t *testing.T) {
	c := New("stratapage_test")
	c.PageWrite("create")

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `stratapage_test_page_writes_total{op="create"} 1`) {
		t.Errorf("metrics output missing page write counter:\n%s", rec.Body.String())
	}
}
