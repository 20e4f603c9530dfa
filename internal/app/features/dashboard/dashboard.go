// internal/app/features/dashboard/dashboard.go
package dashboard

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	errorsfeature "github.com/dalemusser/stratapage/internal/app/features/errors"
	draftstore "github.com/dalemusser/stratapage/internal/app/store/drafts"
	pagestore "github.com/dalemusser/stratapage/internal/app/store/pages"
	"github.com/dalemusser/stratapage/internal/app/system/apperr"
	"github.com/dalemusser/stratapage/internal/app/system/auth"
	"github.com/dalemusser/stratapage/internal/app/system/inputval"
	"github.com/dalemusser/stratapage/internal/app/system/metrics"
	"github.com/dalemusser/stratapage/internal/app/system/normalize"
	"github.com/dalemusser/stratapage/internal/app/system/timeouts"
	"github.com/dalemusser/stratapage/internal/app/system/viewdata"
	"github.com/dalemusser/stratapage/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// MsgSlugTaken is shown when the owner already has a page with the slug.
const MsgSlugTaken = "You already have a page with this slug."

// Handler serves the page list, page creation and deletion.
type Handler struct {
	pages      *pagestore.Store
	drafts     *draftstore.Store
	sessionMgr *auth.SessionManager
	metrics    *metrics.Collector
	errPages   *errorsfeature.Handler
	errLog     *errorsfeature.ErrorLogger
	logger     *zap.Logger
}

// NewHandler creates a dashboard Handler.
func NewHandler(db *mongo.Database, drafts *draftstore.Store, sessionMgr *auth.SessionManager, m *metrics.Collector, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		pages:      pagestore.New(db),
		drafts:     drafts,
		sessionMgr: sessionMgr,
		metrics:    m,
		errPages:   errorsfeature.NewHandler(),
		errLog:     errLog,
		logger:     logger,
	}
}

type pageRow struct {
	ID          string
	Name        string
	Slug        string
	IsPublished bool
	Sections    int
	CreatedAt   time.Time
}

// DashboardVM is the view model for the page list.
type DashboardVM struct {
	viewdata.BaseVM
	Pages  []pageRow
	Themes []string
	Form   createInput
	Error  string
}

// DeleteVM is the view model for the delete confirmation.
type DeleteVM struct {
	viewdata.BaseVM
	PageID   string
	PageName string
	Slug     string
}

type createInput struct {
	Name  string `validate:"required,max=200" label:"Page name"`
	Slug  string `validate:"required,slug,max=100" label:"Slug"`
	Theme string `validate:"theme" label:"Theme"`
}

// Routes mounts the dashboard behind RequireSignedIn.
func Routes(h *Handler, sessionMgr *auth.SessionManager) http.Handler {
	r := chi.NewRouter()
	r.Use(sessionMgr.RequireSignedIn)
	r.Get("/", h.show)
	r.Post("/pages", h.create)
	r.Get("/pages/{id}/delete", h.confirmDelete)
	r.Post("/pages/{id}/delete", h.delete)
	return r
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	h.renderList(w, r, createInput{Theme: models.ThemeLight}, "")
}

func (h *Handler) renderList(w http.ResponseWriter, r *http.Request, form createInput, errMsg string) {
	user, _ := auth.CurrentUser(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.logger, "dashboard list")
	defer cancel()

	pages, err := h.pages.ListByOwner(ctx, user.UserID())
	if err != nil {
		h.errLog.Log(r, "list pages failed", err)
		h.errPages.InternalError(w, r)
		return
	}

	vm := DashboardVM{
		BaseVM: viewdata.New(r),
		Themes: models.AllThemes(),
		Form:   form,
		Error:  errMsg,
	}
	vm.Title = "My Pages"
	vm.Flashes = h.sessionMgr.Flashes(w, r)
	for _, p := range pages {
		vm.Pages = append(vm.Pages, pageRow{
			ID:          p.ID.Hex(),
			Name:        p.Name,
			Slug:        p.Slug,
			IsPublished: p.IsPublished,
			Sections:    len(p.Sections),
			CreatedAt:   p.CreatedAt,
		})
	}
	templates.Render(w, r, "dashboard/index", vm)
}

// create normalizes the slug, runs the advisory per-owner duplicate check
// and opens the new page in the editor.
func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	user, _ := auth.CurrentUser(r)
	in := createInput{
		Name:  normalize.Name(r.FormValue("name")),
		Slug:  normalize.Slug(strings.TrimSpace(r.FormValue("slug"))),
		Theme: normalize.Theme(r.FormValue("theme")),
	}
	if res := inputval.Validate(in); res.HasErrors() {
		h.renderList(w, r, in, res.First())
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.logger, "create page")
	defer cancel()

	if err := h.checkSlug(ctx, user.UserID(), in.Slug); err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			h.renderList(w, r, in, apperr.Message(err, MsgSlugTaken))
			return
		}
		h.errLog.Log(r, "slug check failed", err)
		h.renderList(w, r, in, "Could not create the page. Please try again.")
		return
	}

	page, err := h.pages.Create(ctx, pagestore.NewPage{
		UserID: user.UserID(),
		Slug:   in.Slug,
		Name:   in.Name,
		Theme:  in.Theme,
	})
	if err != nil {
		h.errLog.Log(r, "create page failed", err)
		h.renderList(w, r, in, "Could not create the page. Please try again.")
		return
	}
	h.metrics.PageWrite("create")
	h.logger.Info("page created", zap.String("page_id", page.ID.Hex()), zap.String("slug", page.Slug))
	http.Redirect(w, r, "/editor/"+page.ID.Hex(), http.StatusSeeOther)
}

func (h *Handler) checkSlug(ctx context.Context, owner primitive.ObjectID, slug string) error {
	taken, err := h.pages.SlugTaken(ctx, owner, slug)
	if err != nil {
		return err
	}
	if taken {
		return apperr.Conflict(MsgSlugTaken)
	}
	return nil
}

func (h *Handler) loadOwned(w http.ResponseWriter, r *http.Request) (models.LandingPage, bool) {
	user, _ := auth.CurrentUser(r)
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.errPages.NotFound(w, r)
		return models.LandingPage{}, false
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.logger, "load page")
	defer cancel()
	page, err := h.pages.GetByID(ctx, user.UserID(), id)
	if err != nil {
		if !errors.Is(err, apperr.ErrNotFound) && !errors.Is(err, apperr.ErrPermissionDenied) {
			h.errLog.Log(r, "load page failed", err)
		}
		h.errPages.FromError(w, r, err)
		return models.LandingPage{}, false
	}
	return page, true
}

func (h *Handler) confirmDelete(w http.ResponseWriter, r *http.Request) {
	page, ok := h.loadOwned(w, r)
	if !ok {
		return
	}
	vm := DeleteVM{
		BaseVM:   viewdata.NewBaseVM(r, "Delete page", "/dashboard"),
		PageID:   page.ID.Hex(),
		PageName: page.Name,
		Slug:     page.Slug,
	}
	templates.Render(w, r, "dashboard/delete", vm)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.CurrentUser(r)
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.errPages.NotFound(w, r)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.logger, "delete page")
	defer cancel()

	if err := h.pages.Delete(ctx, user.UserID(), id); err != nil {
		if !errors.Is(err, apperr.ErrNotFound) && !errors.Is(err, apperr.ErrPermissionDenied) {
			h.errLog.Log(r, "delete page failed", err)
		}
		h.errPages.FromError(w, r, err)
		return
	}
	if err := h.drafts.DiscardForPage(ctx, id); err != nil {
		h.logger.Warn("discard drafts for deleted page failed", zap.Error(err), zap.String("page_id", id.Hex()))
	}
	h.metrics.PageWrite("delete")
	h.sessionMgr.AddFlash(w, r, "Page deleted.")
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}
