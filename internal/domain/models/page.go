// internal/domain/models/page.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LandingPage is one user-owned page made of ordered sections.
//
// Slug is unique only within one owner's pages. The public lookup key is
// (slug, is_published=true). The order of Sections is the layout order.
type LandingPage struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID      primitive.ObjectID `bson:"user_id" json:"userId"`
	Slug        string             `bson:"slug" json:"slug"`
	Name        string             `bson:"name" json:"name"`
	Theme       string             `bson:"theme,omitempty" json:"theme,omitempty"` // light, dark, blue (empty = light)
	IsPublished bool               `bson:"is_published" json:"isPublished"`
	Sections    []Section          `bson:"sections" json:"sections"`

	CreatedAt time.Time  `bson:"created_at" json:"createdAt"`
	UpdatedAt *time.Time `bson:"updated_at,omitempty" json:"updatedAt,omitempty"`
}

// FindSection returns the index of the section with the given id, or -1.
func (p LandingPage) FindSection(id string) int {
	for i, s := range p.Sections {
		if s.ID == id {
			return i
		}
	}
	return -1
}

// Page themes
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
	ThemeBlue  = "blue"
)

// AllThemes returns all valid page themes.
func AllThemes() []string {
	return []string{
		ThemeLight,
		ThemeDark,
		ThemeBlue,
	}
}

// IsValidTheme checks if a theme is valid. Empty is accepted and means light.
func IsValidTheme(theme string) bool {
	if theme == "" {
		return true
	}
	for _, t := range AllThemes() {
		if t == theme {
			return true
		}
	}
	return false
}

// PageDraft is the editor's working copy of a page. Edits land here and
// reach the page only when the owner saves. The publish flag is not part
// of it; publishing writes to the page directly.
type PageDraft struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	PageID    primitive.ObjectID `bson:"page_id"`
	UserID    primitive.ObjectID `bson:"user_id"`
	Theme     string             `bson:"theme,omitempty"`
	Sections  []Section          `bson:"sections"`
	UpdatedAt time.Time          `bson:"updated_at"`
	ExpiresAt time.Time          `bson:"expires_at"`
}

// Apply overlays the draft's theme and sections onto page.
func (d PageDraft) Apply(page LandingPage) LandingPage {
	page.Theme = d.Theme
	page.Sections = d.Sections
	return page
}
