package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/dalemusser/stratapage/internal/app/system/apperr"
	"github.com/dalemusser/stratapage/internal/testutil"
	"go.uber.org/zap"
)

func TestErrorPages(t *testing.T) {
	testutil.MustBootTemplates(t)
	h := NewHandler()

	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    int
	}{
		{"not found", h.NotFound, http.StatusNotFound},
		{"forbidden", h.Forbidden, http.StatusForbidden},
		{"internal", h.InternalError, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testutil.NewRecorder()
			tt.handler(rec, testutil.NewRequest(http.MethodGet, "/x"))
			rec.AssertStatus(t, tt.want)
		})
	}
}

func TestNotFoundMessage(t *testing.T) {
	testutil.MustBootTemplates(t)
	rec := testutil.NewRecorder()
	NewHandler().NotFoundMessage(rec, testutil.NewRequest(http.MethodGet, "/p/x"), "Page not found or not published.")
	rec.AssertStatus(t, http.StatusNotFound)
	rec.AssertContains(t, "Page not found or not published.")
}

func TestFromError(t *testing.T) {
	testutil.MustBootTemplates(t)
	h := NewHandler()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", apperr.NotFound("page"), http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("load: %w", apperr.NotFound("page")), http.StatusNotFound},
		{"permission", apperr.PermissionDenied("not yours"), http.StatusForbidden},
		{"other", fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testutil.NewRecorder()
			h.FromError(rec, testutil.NewRequest(http.MethodGet, "/editor/x"), tt.err)
			rec.AssertStatus(t, tt.want)
		})
	}
}

func TestErrorLogger_Log(t *testing.T) {
	errLog := NewErrorLogger(zap.NewNop())
	user := testutil.NewUser("ann@example.com")

	// Must not panic with or without a user or an error.
	errLog.Log(testutil.NewRequest(http.MethodGet, "/test"), "anon", nil)
	errLog.Log(testutil.NewAuthenticatedRequest(http.MethodGet, "/test", user), "signed in", fmt.Errorf("x"), zap.String("extra", "1"))
}
