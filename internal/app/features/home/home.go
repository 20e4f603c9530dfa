// internal/app/features/home/home.go
package home

import (
	"html/template"
	"net/http"

	"github.com/dalemusser/stratapage/internal/app/system/editor"
	"github.com/dalemusser/stratapage/internal/app/system/render"
	"github.com/dalemusser/stratapage/internal/app/system/viewdata"
	"github.com/dalemusser/stratapage/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler serves the product home page.
type Handler struct {
	logger *zap.Logger
}

// NewHandler creates a new home Handler.
func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{logger: logger}
}

// HomeVM is the view model for the home page.
type HomeVM struct {
	viewdata.BaseVM
	Sample template.HTML // a sample page, rendered the way published pages are
}

// Routes returns a chi.Router with home routes mounted.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.Index)
	return r
}

// Index renders the home page.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	vm := HomeVM{BaseVM: viewdata.New(r)}
	vm.Title = "Build a landing page in minutes"

	sample, err := render.Page(samplePage().Sections, render.Options{Preview: true, Theme: models.ThemeBlue})
	if err != nil {
		h.logger.Warn("render home sample failed", zap.Error(err))
	}
	vm.Sample = sample

	templates.Render(w, r, "home/index", vm)
}

// samplePage builds the demo shown on the home page through the same editor
// operations a user would apply.
func samplePage() models.LandingPage {
	var p models.LandingPage
	p = editor.AddSection(p, models.SectionHero)
	p = editor.AddSection(p, models.SectionCTA)
	p = editor.AddSection(p, models.SectionFooter)
	hero, cta := p.Sections[0].ID, p.Sections[1].ID

	p = editor.UpdateSectionField(p, hero, models.FieldTitle, "Launch your idea today")
	p = editor.UpdateSectionField(p, hero, models.FieldSubtitle, "Describe a topic, let AI draft the copy, tweak it, publish.")
	p = editor.UpdateSectionField(p, hero, models.FieldButtonText, "Get started")
	p = editor.UpdateSectionField(p, hero, models.FieldButtonLink, "/dashboard")
	p = editor.UpdateSectionField(p, cta, models.FieldTitle, "")
	return p
}
