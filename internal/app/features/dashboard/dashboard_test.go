package dashboard

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	errorsfeature "github.com/dalemusser/stratapage/internal/app/features/errors"
	draftstore "github.com/dalemusser/stratapage/internal/app/store/drafts"
	pagestore "github.com/dalemusser/stratapage/internal/app/store/pages"
	"github.com/dalemusser/stratapage/internal/app/system/apperr"
	"github.com/dalemusser/stratapage/internal/app/system/auth"
	"github.com/dalemusser/stratapage/internal/domain/models"
	"github.com/dalemusser/stratapage/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func setup(t *testing.T) (*mongo.Database, http.Handler) {
	t.Helper()
	testutil.MustBootTemplates(t)
	db := testutil.SetupTestDB(t)
	sm, err := auth.NewSessionManager("k9$Lw2!rQz7@pX4#vN8&mT1^bY6*cH3x", "", "", time.Hour, false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager() error = %v", err)
	}
	h := NewHandler(db, draftstore.New(db, time.Hour), sm, nil, errorsfeature.NewErrorLogger(zap.NewNop()), zap.NewNop())
	return db, Routes(h, sm)
}

func createPage(t *testing.T, db *mongo.Database, owner testutil.TestUser, slug string, published bool) models.LandingPage {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()
	store := pagestore.New(db)
	p, err := store.Create(ctx, pagestore.NewPage{UserID: owner.ID, Slug: slug, Name: "Page " + slug})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if published {
		if err := store.SetPublished(ctx, owner.ID, p.ID, true); err != nil {
			t.Fatalf("SetPublished() error = %v", err)
		}
	}
	return p
}

func TestDashboard_RequiresSignIn(t *testing.T) {
	_, router := setup(t)
	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewRequest(http.MethodGet, "/"))
	rec.AssertRedirect(t, "/login?return=%2F")
}

func TestDashboard_ListsOwnPages(t *testing.T) {
	db, router := setup(t)
	ann := testutil.NewUser("ann@example.com")
	bob := testutil.NewUser("bob@example.com")
	createPage(t, db, ann, "ann-draft", false)
	createPage(t, db, ann, "ann-live", true)
	createPage(t, db, bob, "bob-page", true)

	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewAuthenticatedRequest(http.MethodGet, "/", ann))

	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "Page ann-draft")
	rec.AssertContains(t, "Page ann-live")
	rec.AssertContains(t, "Draft")
	rec.AssertContains(t, "Published")
	rec.AssertContains(t, `href="/p/ann-live"`)
	rec.AssertContains(t, "View Live")
	rec.AssertNotContains(t, "bob-page")
	rec.AssertNotContains(t, `href="/p/ann-draft"`)
}

func TestDashboard_Create(t *testing.T) {
	db, router := setup(t)
	ann := testutil.NewUser("ann@example.com")
	createPage(t, db, ann, "taken", false)

	tests := []struct {
		name    string
		form    url.Values
		wantMsg string
	}{
		{"duplicate slug", url.Values{"name": {"Again"}, "slug": {"Taken"}}, MsgSlugTaken},
		{"slug empty after normalizing", url.Values{"name": {"X"}, "slug": {"!!!"}}, "Slug is required."},
		{"missing name", url.Values{"slug": {"fine"}}, "Page name is required."},
		{"unknown theme", url.Values{"name": {"X"}, "slug": {"fine"}, "theme": {"neon"}}, "Theme must be one of"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testutil.NewRecorder()
			router.ServeHTTP(rec, testutil.NewFormRequest("/pages", tt.form, ann))
			rec.AssertStatus(t, http.StatusOK)
			rec.AssertContains(t, tt.wantMsg)
		})
	}

	t.Run("success normalizes slug", func(t *testing.T) {
		rec := testutil.NewRecorder()
		form := url.Values{"name": {"Summer Sale"}, "slug": {"  Summer Sale 2025! "}, "theme": {"dark"}}
		router.ServeHTTP(rec, testutil.NewFormRequest("/pages", form, ann))

		if rec.Code != http.StatusSeeOther {
			t.Fatalf("status = %d, want 303", rec.Code)
		}
		loc := rec.Header().Get("Location")
		if !strings.HasPrefix(loc, "/editor/") {
			t.Fatalf("Location = %q, want /editor/{id}", loc)
		}

		ctx, cancel := testutil.TestContext()
		defer cancel()
		pages, err := pagestore.New(db).ListByOwner(ctx, ann.ID)
		if err != nil {
			t.Fatalf("ListByOwner() error = %v", err)
		}
		if len(pages) != 2 || pages[0].Slug != "summer-sale-2025" || pages[0].Theme != "dark" || pages[0].IsPublished {
			t.Errorf("newest page = %+v", pages[0])
		}
		if loc != "/editor/"+pages[0].ID.Hex() {
			t.Errorf("Location = %q, want editor of the new page", loc)
		}
	})
}

func TestDashboard_Delete(t *testing.T) {
	db, router := setup(t)
	ann := testutil.NewUser("ann@example.com")
	bob := testutil.NewUser("bob@example.com")
	page := createPage(t, db, ann, "bye", false)
	path := "/pages/" + page.ID.Hex() + "/delete"

	t.Run("confirm page", func(t *testing.T) {
		rec := testutil.NewRecorder()
		router.ServeHTTP(rec, testutil.NewAuthenticatedRequest(http.MethodGet, path, ann))
		rec.AssertStatus(t, http.StatusOK)
		rec.AssertContains(t, "cannot be undone")
	})

	t.Run("other owner is refused", func(t *testing.T) {
		rec := testutil.NewRecorder()
		router.ServeHTTP(rec, testutil.NewFormRequest(path, url.Values{}, bob))
		rec.AssertStatus(t, http.StatusForbidden)
	})

	t.Run("bad id", func(t *testing.T) {
		rec := testutil.NewRecorder()
		router.ServeHTTP(rec, testutil.NewFormRequest("/pages/nope/delete", url.Values{}, ann))
		rec.AssertStatus(t, http.StatusNotFound)
	})

	t.Run("owner deletes", func(t *testing.T) {
		rec := testutil.NewRecorder()
		router.ServeHTTP(rec, testutil.NewFormRequest(path, url.Values{}, ann))
		rec.AssertRedirect(t, "/dashboard")

		ctx, cancel := testutil.TestContext()
		defer cancel()
		if _, err := pagestore.New(db).GetByID(ctx, ann.ID, page.ID); !errors.Is(err, apperr.ErrNotFound) {
			t.Errorf("GetByID() after delete error = %v, want NotFound", err)
		}
	})

	t.Run("second delete is not found", func(t *testing.T) {
		rec := testutil.NewRecorder()
		router.ServeHTTP(rec, testutil.NewFormRequest(path, url.Values{}, ann))
		rec.AssertStatus(t, http.StatusNotFound)
	})
}
