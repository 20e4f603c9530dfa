// internal/app/system/editor/editor.go
//
// Package editor holds the page editing operations. Every function takes a
// page value and returns a new one; the input page and its sections are
// never modified. Only TogglePublish touches storage. Section edits become
// durable when the caller saves.
package editor

import (
	"context"

	"github.com/dalemusser/stratapage/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NewSectionTitle is the title given to sections added by hand.
const NewSectionTitle = "New Section"

// PublishStore persists a page's publish flag.
type PublishStore interface {
	SetPublished(ctx context.Context, actorID, pageID primitive.ObjectID, published bool) error
}

// NewSection creates a section of type t with a fresh id and default content.
func NewSection(t models.SectionType) models.Section {
	return models.Section{
		ID:      uuid.NewString(),
		Type:    t,
		Content: models.SectionContent{Title: NewSectionTitle},
	}
}

// AddSection appends a new section of type t. Unknown types leave the page
// unchanged.
func AddSection(page models.LandingPage, t models.SectionType) models.LandingPage {
	if !models.IsValidSectionType(string(t)) {
		return page
	}
	out := withSections(page, len(page.Sections)+1)
	out.Sections = append(out.Sections, NewSection(t))
	return out
}

// RemoveSection drops the section with the given id. Missing ids are a no-op.
func RemoveSection(page models.LandingPage, id string) models.LandingPage {
	idx := page.FindSection(id)
	if idx < 0 {
		return page
	}
	out := page
	out.Sections = make([]models.Section, 0, len(page.Sections)-1)
	for i, s := range page.Sections {
		if i != idx {
			out.Sections = append(out.Sections, cloneSection(s))
		}
	}
	return out
}

// UpdateSectionField sets one content field on the section with the given
// id, leaving its other fields alone. Missing ids are a no-op.
func UpdateSectionField(page models.LandingPage, id, field string, value any) models.LandingPage {
	return updateSection(page, id, func(s *models.Section) {
		s.Content = s.Content.With(field, value)
	})
}

// ReplaceSections swaps the whole section list.
func ReplaceSections(page models.LandingPage, sections []models.Section) models.LandingPage {
	out := page
	out.Sections = make([]models.Section, len(sections))
	for i, s := range sections {
		out.Sections[i] = cloneSection(s)
	}
	return out
}

// MoveSection shifts a section by delta positions, clamped to the list
// bounds. Missing ids are a no-op.
func MoveSection(page models.LandingPage, id string, delta int) models.LandingPage {
	from := page.FindSection(id)
	if from < 0 {
		return page
	}
	to := from + delta
	if to < 0 {
		to = 0
	}
	if to > len(page.Sections)-1 {
		to = len(page.Sections) - 1
	}
	out := withSections(page, len(page.Sections))
	if to == from {
		return out
	}
	moved := out.Sections[from]
	out.Sections = append(out.Sections[:from], out.Sections[from+1:]...)
	out.Sections = append(out.Sections[:to], append([]models.Section{moved}, out.Sections[to:]...)...)
	return out
}

// AddItem appends an empty item to a section's items.
func AddItem(page models.LandingPage, id string) models.LandingPage {
	return updateSection(page, id, func(s *models.Section) {
		s.Content.Items = append(s.Content.Items, models.SectionItem{})
	})
}

// RemoveItem drops the item at index. Out-of-range indexes are a no-op.
func RemoveItem(page models.LandingPage, id string, index int) models.LandingPage {
	return updateSection(page, id, func(s *models.Section) {
		if index < 0 || index >= len(s.Content.Items) {
			return
		}
		s.Content.Items = append(s.Content.Items[:index], s.Content.Items[index+1:]...)
	})
}

// UpdateItemField sets one field on the item at index. Out-of-range indexes
// are a no-op.
func UpdateItemField(page models.LandingPage, id string, index int, field, value string) models.LandingPage {
	return updateSection(page, id, func(s *models.Section) {
		if index < 0 || index >= len(s.Content.Items) {
			return
		}
		s.Content.Items[index] = s.Content.Items[index].With(field, value)
	})
}

// SetTheme sets the page theme. Invalid themes leave the page unchanged.
func SetTheme(page models.LandingPage, theme string) models.LandingPage {
	if !models.IsValidTheme(theme) {
		return page
	}
	out := page
	out.Theme = theme
	return out
}

// TogglePublish flips the publish flag and persists it right away. If the
// write fails, the original page is returned with the error.
func TogglePublish(ctx context.Context, page models.LandingPage, actorID primitive.ObjectID, store PublishStore) (models.LandingPage, error) {
	next := !page.IsPublished
	if err := store.SetPublished(ctx, actorID, page.ID, next); err != nil {
		return page, err
	}
	out := page
	out.IsPublished = next
	return out, nil
}

func updateSection(page models.LandingPage, id string, fn func(*models.Section)) models.LandingPage {
	idx := page.FindSection(id)
	if idx < 0 {
		return page
	}
	out := withSections(page, len(page.Sections))
	fn(&out.Sections[idx])
	return out
}

// withSections returns a copy of page whose section slice is a deep copy
// with room for capacity entries.
func withSections(page models.LandingPage, capacity int) models.LandingPage {
	out := page
	out.Sections = make([]models.Section, len(page.Sections), capacity)
	for i, s := range page.Sections {
		out.Sections[i] = cloneSection(s)
	}
	return out
}

func cloneSection(s models.Section) models.Section {
	s.Content = s.Content.Clone()
	return s
}
