// internal/app/features/pages/pages.go
package pages

import (
	"errors"
	"html/template"
	"net/http"

	errorsfeature "github.com/dalemusser/stratapage/internal/app/features/errors"
	pagestore "github.com/dalemusser/stratapage/internal/app/store/pages"
	"github.com/dalemusser/stratapage/internal/app/system/apperr"
	"github.com/dalemusser/stratapage/internal/app/system/metrics"
	"github.com/dalemusser/stratapage/internal/app/system/render"
	"github.com/dalemusser/stratapage/internal/app/system/timeouts"
	"github.com/dalemusser/stratapage/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// NotPublishedMessage is shown for slugs with no published page.
const NotPublishedMessage = "Page not found or not published."

// Handler serves published landing pages to anonymous visitors.
type Handler struct {
	pageStore *pagestore.Store
	metrics   *metrics.Collector
	errPages  *errorsfeature.Handler
	errLog    *errorsfeature.ErrorLogger
	logger    *zap.Logger
}

// NewHandler creates a new pages Handler.
func NewHandler(db *mongo.Database, m *metrics.Collector, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		pageStore: pagestore.New(db),
		metrics:   m,
		errPages:  errorsfeature.NewHandler(),
		errLog:    errLog,
		logger:    logger,
	}
}

// PageVM is the view model for a published page.
type PageVM struct {
	viewdata.BaseVM
	Slug    string
	Content template.HTML
}

// Routes mounts the public page at /{slug}. No sign-in is required.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/{slug}", h.show)
	return r
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.logger, "public page")
	defer cancel()

	page, err := h.pageStore.GetPublishedBySlug(ctx, slug)
	if errors.Is(err, apperr.ErrNotFound) {
		h.metrics.PublicView(metrics.ViewNotFound)
		h.errPages.NotFoundMessage(w, r, NotPublishedMessage)
		return
	}
	if err != nil {
		h.errLog.Log(r, "failed to get published page", err, zap.String("slug", slug))
		h.errPages.InternalError(w, r)
		return
	}

	content, err := render.Page(page.Sections, render.Options{Theme: page.Theme})
	if err != nil {
		h.errLog.Log(r, "failed to render published page", err, zap.String("slug", slug))
		h.errPages.InternalError(w, r)
		return
	}
	h.metrics.PublicView(metrics.ViewFound)

	vm := PageVM{
		BaseVM:  viewdata.New(r),
		Slug:    page.Slug,
		Content: content,
	}
	vm.Title = page.Name

	templates.Render(w, r, "pages/show", vm)
}
