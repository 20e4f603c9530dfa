package jsonutil

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestJSON(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		data       any
		wantStatus int
		wantBody   string
	}{
		{"200 with data", http.StatusOK, map[string]string{"status": "ok"}, http.StatusOK, `{"status":"ok"}`},
		{"503 with data", http.StatusServiceUnavailable, map[string]string{"status": "degraded"}, http.StatusServiceUnavailable, `{"status":"degraded"}`},
		{"nil data", http.StatusNoContent, nil, http.StatusNoContent, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			JSON(rec, tt.status, tt.data)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q", ct)
			}
			if got := strings.TrimSpace(rec.Body.String()); got != tt.wantBody {
				t.Errorf("body = %q, want %q", got, tt.wantBody)
			}
		})
	}
}

func TestAttachment(t *testing.T) {
	rec := httptest.NewRecorder()
	if err := Attachment(rec, "summer.json", []string{"a"}); err != nil {
		t.Fatalf("Attachment() error = %v", err)
	}
	if cd := rec.Header().Get("Content-Disposition"); cd != `attachment; filename="summer.json"` {
		t.Errorf("Content-Disposition = %q", cd)
	}
	if got := rec.Body.String(); got != "[\n  \"a\"\n]\n" {
		t.Errorf("body = %q", got)
	}
}
