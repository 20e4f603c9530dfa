// internal/app/features/editor/actions.go
package editor

import (
	"net/http"
	"strings"

	editops "github.com/dalemusser/stratapage/internal/app/system/editor"
	"github.com/dalemusser/stratapage/internal/app/system/inputval"
	"github.com/dalemusser/stratapage/internal/app/system/normalize"
	"github.com/dalemusser/stratapage/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Longest value accepted for any single text field.
const maxFieldLen = 2000

// linkFields hold URLs and must pass inputval.IsValidLink.
var linkFields = map[string]bool{
	models.FieldButtonLink: true,
	models.FieldImage:      true,
	models.ItemFieldAvatar: true,
}

func invalidLinkMessage(name string) string {
	return fieldLabels[name] + " must be a path, an #anchor, or a URL starting with http:// or https://."
}

type addSectionInput struct {
	Type string `validate:"required,sectiontype" label:"Section type"`
}

func (h *Handler) addSection(w http.ResponseWriter, r *http.Request) {
	in := addSectionInput{Type: strings.TrimSpace(r.FormValue("type"))}
	if res := inputval.Validate(in); res.HasErrors() {
		h.sessionMgr.AddFlash(w, r, res.First())
	}
	h.mutate(w, r, func(p models.LandingPage) models.LandingPage {
		return editops.AddSection(p, models.SectionType(in.Type))
	})
}

func (h *Handler) removeSection(w http.ResponseWriter, r *http.Request) {
	sid := chi.URLParam(r, "sid")
	h.mutate(w, r, func(p models.LandingPage) models.LandingPage {
		return editops.RemoveSection(p, sid)
	})
}

func (h *Handler) moveSection(w http.ResponseWriter, r *http.Request) {
	sid := chi.URLParam(r, "sid")
	delta := 1
	if r.FormValue("dir") == "up" {
		delta = -1
	}
	h.mutate(w, r, func(p models.LandingPage) models.LandingPage {
		return editops.MoveSection(p, sid, delta)
	})
}

// updateFields merges the submitted content fields into the section. Only
// fields the section's type offers are read; absent ones stay as they are.
func (h *Handler) updateFields(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	sid := chi.URLParam(r, "sid")

	wc, ok := h.load(w, r)
	if !ok {
		return
	}
	idx := wc.Page.FindSection(sid)
	if idx < 0 {
		h.storeDraft(w, r, wc.Page)
		return
	}

	page := wc.Page
	for _, name := range sectionFields[page.Sections[idx].Type] {
		vals, present := r.PostForm[name]
		if !present {
			continue
		}
		value := clip(vals[0])
		if linkFields[name] {
			value = strings.TrimSpace(value)
			if !inputval.IsValidLink(value) {
				h.sessionMgr.AddFlash(w, r, invalidLinkMessage(name))
				continue
			}
		}
		page = editops.UpdateSectionField(page, sid, name, value)
	}
	h.storeDraft(w, r, page)
}

func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	sid := chi.URLParam(r, "sid")
	h.mutate(w, r, func(p models.LandingPage) models.LandingPage {
		if i := p.FindSection(sid); i < 0 || itemFields[p.Sections[i].Type] == nil {
			return p
		}
		return editops.AddItem(p, sid)
	})
}

func (h *Handler) removeItem(w http.ResponseWriter, r *http.Request) {
	sid := chi.URLParam(r, "sid")
	idx, ok := atoi(chi.URLParam(r, "idx"))
	if !ok {
		idx = -1
	}
	h.mutate(w, r, func(p models.LandingPage) models.LandingPage {
		return editops.RemoveItem(p, sid, idx)
	})
}

func (h *Handler) updateItem(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	sid := chi.URLParam(r, "sid")
	idx, ok := atoi(chi.URLParam(r, "idx"))
	if !ok {
		idx = -1
	}
	h.mutate(w, r, func(p models.LandingPage) models.LandingPage {
		i := p.FindSection(sid)
		if i < 0 {
			return p
		}
		for _, name := range itemFields[p.Sections[i].Type] {
			vals, present := r.PostForm[name]
			if !present {
				continue
			}
			value := clip(vals[0])
			if linkFields[name] {
				value = strings.TrimSpace(value)
				if !inputval.IsValidLink(value) {
					h.sessionMgr.AddFlash(w, r, invalidLinkMessage(name))
					continue
				}
			}
			p = editops.UpdateItemField(p, sid, idx, name, value)
		}
		return p
	})
}

func (h *Handler) setTheme(w http.ResponseWriter, r *http.Request) {
	theme := normalize.Theme(r.FormValue("theme"))
	h.mutate(w, r, func(p models.LandingPage) models.LandingPage {
		return editops.SetTheme(p, theme)
	})
}

func clip(s string) string {
	if len(s) > maxFieldLen {
		return strings.ToValidUTF8(s[:maxFieldLen], "")
	}
	return s
}
