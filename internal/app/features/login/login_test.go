package login

import (
	"net/http"
	"net/url"
	"testing"
	"time"

	errorsfeature "github.com/dalemusser/stratapage/internal/app/features/errors"
	"github.com/dalemusser/stratapage/internal/app/store/ratelimit"
	userstore "github.com/dalemusser/stratapage/internal/app/store/users"
	"github.com/dalemusser/stratapage/internal/app/system/auth"
	"github.com/dalemusser/stratapage/internal/app/system/authutil"
	"github.com/dalemusser/stratapage/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const sessionKey = "k9$Lw2!rQz7@pX4#vN8&mT1^bY6*cH3x"

func newHandler(t *testing.T, db *mongo.Database, limits *ratelimit.Store) http.Handler {
	t.Helper()
	testutil.MustBootTemplates(t)
	t.Cleanup(authutil.UseMinCostForTests())

	sm, err := auth.NewSessionManager(sessionKey, "", "", time.Hour, false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager() error = %v", err)
	}
	return Routes(NewHandler(db, sm, limits, errorsfeature.NewErrorLogger(zap.NewNop()), zap.NewNop()))
}

func createUser(t *testing.T, db *mongo.Database, email, password string) {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()
	hash, err := authutil.HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if _, err := userstore.New(db).Create(ctx, userstore.NewUser{Email: email, PasswordHash: hash}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
}

func post(h http.Handler, target string, form url.Values) *testutil.ResponseRecorder {
	rec := testutil.NewRecorder()
	h.ServeHTTP(rec, testutil.NewFormRequest(target, form, testutil.TestUser{}))
	return rec
}

func TestShow(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(t, db, nil)

	rec := testutil.NewRecorder()
	h.ServeHTTP(rec, testutil.NewRequest(http.MethodGet, "/?return=%2Feditor%2Fabc"))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `action="/login"`)
	rec.AssertContains(t, "/editor/abc")

	rec = testutil.NewRecorder()
	h.ServeHTTP(rec, testutil.NewRequest(http.MethodGet, "/?mode=signup"))
	rec.AssertContains(t, `action="/login/signup"`)
}

func TestShow_SignedInRedirects(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(t, db, nil)

	rec := testutil.NewRecorder()
	h.ServeHTTP(rec, testutil.NewAuthenticatedRequest(http.MethodGet, "/", testutil.NewUser("ann@example.com")))
	rec.AssertRedirect(t, "/dashboard")
}

func TestSignIn(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(t, db, nil)
	createUser(t, db, "ann@example.com", "correct-horse")

	tests := []struct {
		name     string
		email    string
		password string
		wantMsg  string
	}{
		{"unknown email", "bob@example.com", "whatever1", MsgNoAccount},
		{"wrong password", "ann@example.com", "wrong-horse", MsgInvalidPassword},
		{"missing password", "ann@example.com", "", "Password is required."},
		{"bad email", "not-an-email", "x", "A valid email address is required."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(h, "/", url.Values{"email": {tt.email}, "password": {tt.password}})
			rec.AssertStatus(t, http.StatusOK)
			rec.AssertContains(t, tt.wantMsg)
		})
	}

	t.Run("success", func(t *testing.T) {
		rec := post(h, "/", url.Values{"email": {"  ANN@example.com"}, "password": {"correct-horse"}})
		rec.AssertRedirect(t, "/dashboard")
		if len(rec.Result().Cookies()) == 0 {
			t.Error("expected a session cookie")
		}
	})
}

func TestSignIn_RateLimited(t *testing.T) {
	db := testutil.SetupTestDB(t)
	limits := ratelimit.New(db, 2, 15*time.Minute, 30*time.Minute)
	h := newHandler(t, db, limits)
	createUser(t, db, "ann@example.com", "correct-horse")

	post(h, "/", url.Values{"email": {"ann@example.com"}, "password": {"bad-1"}}).
		AssertContains(t, MsgInvalidPassword)
	post(h, "/", url.Values{"email": {"ann@example.com"}, "password": {"bad-2"}}).
		AssertContains(t, "Too many failed sign-in attempts")

	// Locked out even with the right password.
	rec := post(h, "/", url.Values{"email": {"ann@example.com"}, "password": {"correct-horse"}})
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "Too many failed sign-in attempts")
}

func TestSignUp(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(t, db, nil)
	createUser(t, db, "taken@example.com", "correct-horse")

	tests := []struct {
		name     string
		email    string
		password string
		wantMsg  string
	}{
		{"duplicate email", "Taken@example.com", "another-pass", "This email is already in use. Please sign in instead."},
		{"short password", "new@example.com", "abc", "Password should be at least 6 characters."},
		{"common password", "new@example.com", "123456", "too common"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(h, "/signup", url.Values{"email": {tt.email}, "password": {tt.password}})
			rec.AssertStatus(t, http.StatusOK)
			rec.AssertContains(t, tt.wantMsg)
		})
	}

	t.Run("success", func(t *testing.T) {
		rec := post(h, "/signup", url.Values{"email": {"new@example.com"}, "password": {"a-good-one"}})
		rec.AssertRedirect(t, "/dashboard")

		ctx, cancel := testutil.TestContext()
		defer cancel()
		u, err := userstore.New(db).GetByEmail(ctx, "new@example.com")
		if err != nil {
			t.Fatalf("GetByEmail() error = %v", err)
		}
		if u.DisplayName != "new" {
			t.Errorf("DisplayName = %q, want %q", u.DisplayName, "new")
		}
	})
}

func TestLockoutMessage(t *testing.T) {
	if got := lockoutMessage(nil); got != "Too many failed sign-in attempts. Please try again later." {
		t.Errorf("lockoutMessage(nil) = %q", got)
	}
	soon := time.Now().Add(30 * time.Second)
	if got := lockoutMessage(&soon); got == "" || got[len(got)-10:] != "second(s)." {
		t.Errorf("lockoutMessage(30s) = %q", got)
	}
	later := time.Now().Add(10 * time.Minute)
	if got := lockoutMessage(&later); got[len(got)-10:] != "minute(s)." {
		t.Errorf("lockoutMessage(10m) = %q", got)
	}
}
