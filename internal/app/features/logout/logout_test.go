package logout

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/stratapage/internal/app/system/auth"
	"github.com/dalemusser/stratapage/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func TestLogout(t *testing.T) {
	sm, err := auth.NewSessionManager("k9$Lw2!rQz7@pX4#vN8&mT1^bY6*cH3x", "", "", time.Hour, false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager() error = %v", err)
	}
	router := Routes(NewHandler(sm, zap.NewNop()))

	// Sign in to get a live cookie.
	login := httptest.NewRecorder()
	if err := sm.CreateSession(login, httptest.NewRequest(http.MethodPost, "/login", nil), primitive.NewObjectID()); err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	cookie := login.Result().Cookies()[0]

	for _, method := range []string{http.MethodPost, http.MethodGet} {
		t.Run(method, func(t *testing.T) {
			req := testutil.NewAuthenticatedRequest(method, "/", testutil.NewUser("ann@example.com"))
			req.AddCookie(cookie)
			rec := testutil.NewRecorder()
			router.ServeHTTP(rec, req)

			rec.AssertRedirect(t, "/")
			cookies := rec.Result().Cookies()
			if len(cookies) == 0 || cookies[0].MaxAge >= 0 {
				t.Errorf("expected the session cookie to be expired, got %+v", cookies)
			}
		})
	}
}

func TestLogout_Anonymous(t *testing.T) {
	sm, err := auth.NewSessionManager("k9$Lw2!rQz7@pX4#vN8&mT1^bY6*cH3x", "", "", time.Hour, false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager() error = %v", err)
	}
	rec := testutil.NewRecorder()
	Routes(NewHandler(sm, zap.NewNop())).ServeHTTP(rec, testutil.NewRequest(http.MethodPost, "/"))
	rec.AssertRedirect(t, "/")
}
