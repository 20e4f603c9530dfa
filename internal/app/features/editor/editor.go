// internal/app/features/editor/editor.go
package editor

import (
	"context"
	"errors"
	"io"
	"net/http"

	errorsfeature "github.com/dalemusser/stratapage/internal/app/features/errors"
	draftstore "github.com/dalemusser/stratapage/internal/app/store/drafts"
	pagestore "github.com/dalemusser/stratapage/internal/app/store/pages"
	"github.com/dalemusser/stratapage/internal/app/system/apperr"
	"github.com/dalemusser/stratapage/internal/app/system/auth"
	"github.com/dalemusser/stratapage/internal/app/system/metrics"
	"github.com/dalemusser/stratapage/internal/app/system/timeouts"
	"github.com/dalemusser/stratapage/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ContentGenerator drafts a full page for a topic.
type ContentGenerator interface {
	Generate(ctx context.Context, topic string) ([]models.Section, error)
}

// ImageStore keeps uploaded section images. storage.Store satisfies it.
type ImageStore interface {
	Put(ctx context.Context, path string, r io.Reader, opts *storage.PutOptions) error
	URL(path string) string
}

// Handler serves the page editor. Edits go to the user's draft of the page
// and reach the page document only on Save; publishing is written through
// at once.
type Handler struct {
	pages      *pagestore.Store
	drafts     *draftstore.Store
	generator  ContentGenerator
	images     ImageStore // nil disables uploads
	sessionMgr *auth.SessionManager
	metrics    *metrics.Collector
	errPages   *errorsfeature.Handler
	errLog     *errorsfeature.ErrorLogger
	logger     *zap.Logger
}

// Deps bundles what NewHandler needs.
type Deps struct {
	Pages      *pagestore.Store
	Drafts     *draftstore.Store
	Generator  ContentGenerator
	Images     ImageStore
	SessionMgr *auth.SessionManager
	Metrics    *metrics.Collector
	ErrLog     *errorsfeature.ErrorLogger
	Logger     *zap.Logger
}

// NewHandler creates an editor Handler.
func NewHandler(d Deps) *Handler {
	return &Handler{
		pages:      d.Pages,
		drafts:     d.Drafts,
		generator:  d.Generator,
		images:     d.Images,
		sessionMgr: d.SessionMgr,
		metrics:    d.Metrics,
		errPages:   errorsfeature.NewHandler(),
		errLog:     d.ErrLog,
		logger:     d.Logger,
	}
}

// Routes mounts the editor behind RequireSignedIn.
func Routes(h *Handler, sessionMgr *auth.SessionManager) http.Handler {
	r := chi.NewRouter()
	r.Use(sessionMgr.RequireSignedIn)

	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.show)
		r.Get("/preview", h.preview)
		r.Get("/export", h.export)

		r.Post("/sections", h.addSection)
		r.Post("/sections/{sid}/remove", h.removeSection)
		r.Post("/sections/{sid}/move", h.moveSection)
		r.Post("/sections/{sid}/fields", h.updateFields)
		r.Post("/sections/{sid}/image", h.uploadImage)
		r.Post("/sections/{sid}/items", h.addItem)
		r.Post("/sections/{sid}/items/{idx}", h.updateItem)
		r.Post("/sections/{sid}/items/{idx}/remove", h.removeItem)
		r.Post("/theme", h.setTheme)

		r.Post("/generate", h.generate)
		r.Post("/save", h.save)
		r.Post("/discard", h.discard)
		r.Post("/publish", h.togglePublish)
	})
	return r
}

// workingCopy is a page as the editor sees it: the stored page with the
// user's draft, if any, applied on top.
type workingCopy struct {
	Page     models.LandingPage
	Stored   models.LandingPage
	HasDraft bool
}

func editorPath(pageID primitive.ObjectID) string {
	return "/editor/" + pageID.Hex()
}

// load resolves the page id from the URL and returns the user's working
// copy. On failure it has already written the response.
func (h *Handler) load(w http.ResponseWriter, r *http.Request) (workingCopy, bool) {
	user, _ := auth.CurrentUser(r)
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.errPages.NotFound(w, r)
		return workingCopy{}, false
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.logger, "editor load")
	defer cancel()

	page, err := h.pages.GetByID(ctx, user.UserID(), id)
	if err != nil {
		h.fail(w, r, "load page failed", err)
		return workingCopy{}, false
	}
	wc := workingCopy{Page: page, Stored: page}

	draft, found, err := h.drafts.Get(ctx, user.UserID(), id)
	if err != nil {
		h.fail(w, r, "load draft failed", err)
		return workingCopy{}, false
	}
	if found {
		wc.Page = draft.Apply(page)
		wc.HasDraft = true
	}
	return wc, true
}

// fail renders the error page for err, logging anything that is not an
// expected access outcome.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	if !errors.Is(err, apperr.ErrNotFound) && !errors.Is(err, apperr.ErrPermissionDenied) {
		h.errLog.Log(r, msg, err)
	}
	h.errPages.FromError(w, r, err)
}

// mutate applies op to the working copy, stores the result as the user's
// draft and sends the browser back to the editor.
func (h *Handler) mutate(w http.ResponseWriter, r *http.Request, op func(models.LandingPage) models.LandingPage) {
	wc, ok := h.load(w, r)
	if !ok {
		return
	}
	h.storeDraft(w, r, op(wc.Page))
}

func (h *Handler) storeDraft(w http.ResponseWriter, r *http.Request, page models.LandingPage) {
	user, _ := auth.CurrentUser(r)
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.logger, "editor draft")
	defer cancel()

	if err := h.drafts.Put(ctx, user.UserID(), page); err != nil {
		h.errLog.Log(r, "store draft failed", err, zap.String("page_id", page.ID.Hex()))
		h.sessionMgr.AddFlash(w, r, "Could not keep your change. Please try again.")
	}
	http.Redirect(w, r, editorPath(page.ID), http.StatusSeeOther)
}
