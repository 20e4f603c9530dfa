// internal/app/features/editor/view.go
package editor

import (
	"html/template"
	"net/http"
	"strconv"

	"github.com/dalemusser/stratapage/internal/app/system/jsonutil"
	"github.com/dalemusser/stratapage/internal/app/system/render"
	"github.com/dalemusser/stratapage/internal/app/system/viewdata"
	"github.com/dalemusser/stratapage/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
)

// field is one editable input in a section or item form.
type field struct {
	Name      string
	Label     string
	Value     string
	Multiline bool
}

type itemForm struct {
	Index  int
	Fields []field
}

type sectionForm struct {
	ID        string
	Type      string
	Position  int
	First     bool
	Last      bool
	Fields    []field
	HasItems  bool
	Items     []itemForm
	CanUpload bool
	Image     string
}

// EditorVM is the view model for the editor page.
type EditorVM struct {
	viewdata.BaseVM
	PageID       string
	PageName     string
	Slug         string
	Theme        string
	Themes       []string
	IsPublished  bool
	HasDraft     bool
	SectionTypes []string
	Sections     []sectionForm
	Preview      template.HTML
	Uploads      bool
}

// PreviewVM is the view model for the full-screen preview.
type PreviewVM struct {
	viewdata.BaseVM
	PageID  string
	Preview template.HTML
}

var fieldLabels = map[string]string{
	models.FieldTitle:           "Title",
	models.FieldSubtitle:        "Subtitle",
	models.FieldText:            "Text",
	models.FieldButtonText:      "Button text",
	models.FieldButtonLink:      "Button link",
	models.FieldImage:           "Image URL",
	models.ItemFieldDescription: "Description",
	models.ItemFieldIcon:        "Icon",
	models.ItemFieldName:        "Name",
	models.ItemFieldRole:        "Role",
	models.ItemFieldAvatar:      "Avatar URL",
}

// sectionFields lists the content fields the editor offers per section type.
var sectionFields = map[models.SectionType][]string{
	models.SectionHero:         {models.FieldTitle, models.FieldSubtitle, models.FieldButtonText, models.FieldButtonLink, models.FieldImage},
	models.SectionFeatures:     {models.FieldTitle, models.FieldSubtitle},
	models.SectionTestimonials: {models.FieldTitle},
	models.SectionCTA:          {models.FieldTitle, models.FieldText, models.FieldButtonText, models.FieldButtonLink, models.FieldImage},
	models.SectionFooter:       {models.FieldText},
}

// itemFields lists the item fields per section type. Types without items
// are absent.
var itemFields = map[models.SectionType][]string{
	models.SectionFeatures:     {models.ItemFieldIcon, models.ItemFieldTitle, models.ItemFieldDescription},
	models.SectionTestimonials: {models.ItemFieldName, models.ItemFieldRole, models.ItemFieldDescription, models.ItemFieldAvatar},
}

var multiline = map[string]bool{
	models.FieldSubtitle:        true,
	models.FieldText:            true,
	models.ItemFieldDescription: true,
}

// imageSections are the types that show an uploaded image.
var imageSections = map[models.SectionType]bool{
	models.SectionHero: true,
	models.SectionCTA:  true,
}

func buildFields(names []string, get func(string) string) []field {
	out := make([]field, 0, len(names))
	for _, n := range names {
		out = append(out, field{Name: n, Label: fieldLabels[n], Value: get(n), Multiline: multiline[n]})
	}
	return out
}

func itemValue(it models.SectionItem, name string) string {
	switch name {
	case models.ItemFieldTitle:
		return it.Title
	case models.ItemFieldDescription:
		return it.Description
	case models.ItemFieldIcon:
		return it.Icon
	case models.ItemFieldName:
		return it.Name
	case models.ItemFieldRole:
		return it.Role
	case models.ItemFieldAvatar:
		return it.Avatar
	}
	return ""
}

func (h *Handler) sectionForms(page models.LandingPage) []sectionForm {
	forms := make([]sectionForm, 0, len(page.Sections))
	for i, s := range page.Sections {
		f := sectionForm{
			ID:        s.ID,
			Type:      string(s.Type),
			Position:  i + 1,
			First:     i == 0,
			Last:      i == len(page.Sections)-1,
			Fields:    buildFields(sectionFields[s.Type], s.Content.Get),
			CanUpload: h.images != nil && imageSections[s.Type],
			Image:     s.Content.Image,
		}
		if names, ok := itemFields[s.Type]; ok {
			f.HasItems = true
			for j, it := range s.Content.Items {
				f.Items = append(f.Items, itemForm{
					Index:  j,
					Fields: buildFields(names, func(n string) string { return itemValue(it, n) }),
				})
			}
		}
		forms = append(forms, f)
	}
	return forms
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	wc, ok := h.load(w, r)
	if !ok {
		return
	}
	page := wc.Page

	preview, err := render.Page(page.Sections, render.Options{Preview: true, Theme: page.Theme})
	if err != nil {
		h.errLog.Log(r, "render preview failed", err)
	}

	vm := EditorVM{
		BaseVM:      viewdata.NewBaseVM(r, "Edit "+page.Name, "/dashboard"),
		PageID:      page.ID.Hex(),
		PageName:    page.Name,
		Slug:        page.Slug,
		Theme:       page.Theme,
		Themes:      models.AllThemes(),
		IsPublished: page.IsPublished,
		HasDraft:    wc.HasDraft,
		Sections:    h.sectionForms(page),
		Preview:     preview,
		Uploads:     h.images != nil,
	}
	if vm.Theme == "" {
		vm.Theme = models.ThemeLight
	}
	for _, t := range models.AllSectionTypes() {
		vm.SectionTypes = append(vm.SectionTypes, string(t))
	}
	vm.Flashes = h.sessionMgr.Flashes(w, r)

	templates.Render(w, r, "editor/show", vm)
}

// preview shows the working copy alone, framed as a preview.
func (h *Handler) preview(w http.ResponseWriter, r *http.Request) {
	wc, ok := h.load(w, r)
	if !ok {
		return
	}
	html, err := render.Page(wc.Page.Sections, render.Options{Preview: true, Theme: wc.Page.Theme})
	if err != nil {
		h.errLog.Log(r, "render preview failed", err)
		h.errPages.InternalError(w, r)
		return
	}
	vm := PreviewVM{
		BaseVM:  viewdata.NewBaseVM(r, "Preview: "+wc.Page.Name, editorPath(wc.Page.ID)),
		PageID:  wc.Page.ID.Hex(),
		Preview: html,
	}
	templates.Render(w, r, "editor/preview", vm)
}

// export downloads the working copy's sections as JSON.
func (h *Handler) export(w http.ResponseWriter, r *http.Request) {
	wc, ok := h.load(w, r)
	if !ok {
		return
	}
	sections := wc.Page.Sections
	if sections == nil {
		sections = []models.Section{}
	}
	if err := jsonutil.Attachment(w, wc.Page.Slug+".json", sections); err != nil {
		h.errLog.Log(r, "export sections failed", err)
	}
}

func atoi(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	return n, err == nil
}
