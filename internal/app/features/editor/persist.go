// internal/app/features/editor/persist.go
package editor

import (
	"errors"
	"net/http"

	pagestore "github.com/dalemusser/stratapage/internal/app/store/pages"
	"github.com/dalemusser/stratapage/internal/app/system/apperr"
	"github.com/dalemusser/stratapage/internal/app/system/auth"
	editops "github.com/dalemusser/stratapage/internal/app/system/editor"
	"github.com/dalemusser/stratapage/internal/app/system/generator"
	"github.com/dalemusser/stratapage/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// generate replaces the working copy's sections with AI-drafted ones. On
// failure the sections are left alone and the user sees a flash.
func (h *Handler) generate(w http.ResponseWriter, r *http.Request) {
	wc, ok := h.load(w, r)
	if !ok {
		return
	}

	sections, err := h.generator.Generate(r.Context(), r.FormValue("topic"))
	if err != nil {
		if !errors.Is(err, apperr.ErrGeneration) {
			h.errLog.Log(r, "generate content failed", err)
		}
		h.sessionMgr.AddFlash(w, r, apperr.Message(err, generator.FailureMessage))
		http.Redirect(w, r, editorPath(wc.Page.ID), http.StatusSeeOther)
		return
	}
	h.storeDraft(w, r, editops.ReplaceSections(wc.Page, sections))
}

// save writes the working copy's sections, theme and publish flag to the
// page in one update and drops the draft.
func (h *Handler) save(w http.ResponseWriter, r *http.Request) {
	wc, ok := h.load(w, r)
	if !ok {
		return
	}
	user, _ := auth.CurrentUser(r)
	page := wc.Page

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.logger, "editor save")
	defer cancel()

	err := h.pages.Update(ctx, user.UserID(), page.ID, pagestore.PageUpdate{
		Sections: &page.Sections,
		Theme:    &page.Theme,
	})
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) || errors.Is(err, apperr.ErrPermissionDenied) {
			h.fail(w, r, "save page failed", err)
			return
		}
		h.errLog.Log(r, "save page failed", err, zap.String("page_id", page.ID.Hex()))
		h.sessionMgr.AddFlash(w, r, "Could not save the page. Your changes are still here; please try again.")
		http.Redirect(w, r, editorPath(page.ID), http.StatusSeeOther)
		return
	}
	if err := h.drafts.Discard(ctx, user.UserID(), page.ID); err != nil {
		h.logger.Warn("discard draft after save failed", zap.Error(err), zap.String("page_id", page.ID.Hex()))
	}
	h.metrics.PageWrite("save")
	h.sessionMgr.AddFlash(w, r, "Page saved.")
	http.Redirect(w, r, editorPath(page.ID), http.StatusSeeOther)
}

// discard drops the draft, returning the editor to the saved page.
func (h *Handler) discard(w http.ResponseWriter, r *http.Request) {
	wc, ok := h.load(w, r)
	if !ok {
		return
	}
	user, _ := auth.CurrentUser(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.logger, "editor discard")
	defer cancel()

	if err := h.drafts.Discard(ctx, user.UserID(), wc.Page.ID); err != nil {
		h.errLog.Log(r, "discard draft failed", err)
		h.sessionMgr.AddFlash(w, r, "Could not discard your changes. Please try again.")
	} else if wc.HasDraft {
		h.sessionMgr.AddFlash(w, r, "Unsaved changes discarded.")
	}
	http.Redirect(w, r, editorPath(wc.Page.ID), http.StatusSeeOther)
}

// togglePublish flips the publish flag on the stored page right away.
// Unsaved section edits stay in the draft.
func (h *Handler) togglePublish(w http.ResponseWriter, r *http.Request) {
	wc, ok := h.load(w, r)
	if !ok {
		return
	}
	user, _ := auth.CurrentUser(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.logger, "editor publish")
	defer cancel()

	page, err := editops.TogglePublish(ctx, wc.Page, user.UserID(), h.pages)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) || errors.Is(err, apperr.ErrPermissionDenied) {
			h.fail(w, r, "toggle publish failed", err)
			return
		}
		h.errLog.Log(r, "toggle publish failed", err)
		h.sessionMgr.AddFlash(w, r, "Could not change the publish state. Please try again.")
		http.Redirect(w, r, editorPath(wc.Page.ID), http.StatusSeeOther)
		return
	}
	if page.IsPublished {
		h.metrics.PageWrite("publish")
		h.sessionMgr.AddFlash(w, r, "Page published at /p/"+page.Slug+".")
	} else {
		h.metrics.PageWrite("unpublish")
		h.sessionMgr.AddFlash(w, r, "Page unpublished.")
	}
	http.Redirect(w, r, editorPath(page.ID), http.StatusSeeOther)
}
