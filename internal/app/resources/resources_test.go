package resources

import (
	"io/fs"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestAssets(t *testing.T) {
	for _, name := range []string{"css/app.css", "js/app.js"} {
		if _, err := fs.Stat(Assets(), name); err != nil {
			t.Errorf("asset %s missing: %v", name, err)
		}
	}
}

func TestAssetsHandler(t *testing.T) {
	h := AssetsHandler("/assets")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/assets/css/app.css", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), ".lp-theme-dark") {
		t.Error("app.css should carry the page theme classes")
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/assets/css/missing.css", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing asset status = %d, want 404", rec.Code)
	}
}
