package pagestore

import (
	"errors"
	"testing"

	"github.com/dalemusser/stratapage/internal/app/system/apperr"
	"github.com/dalemusser/stratapage/internal/domain/models"
	"github.com/dalemusser/stratapage/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := primitive.NewObjectID()
	page, err := store.Create(ctx, NewPage{UserID: owner, Slug: "summer-sale", Name: "Summer Sale"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if page.ID.IsZero() {
		t.Error("ID should be assigned")
	}
	if page.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}

	got, err := store.GetByID(ctx, owner, page.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Slug != "summer-sale" || got.Name != "Summer Sale" {
		t.Errorf("got slug=%q name=%q", got.Slug, got.Name)
	}
	if got.IsPublished {
		t.Error("new page should be unpublished")
	}
	if len(got.Sections) != 0 {
		t.Errorf("new page has %d sections, want 0", len(got.Sections))
	}
	if got.UserID != owner {
		t.Errorf("UserID = %v, want %v", got.UserID, owner)
	}
}

func TestStore_ListByOwner(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := primitive.NewObjectID()
	bob := primitive.NewObjectID()

	first, _ := store.Create(ctx, NewPage{UserID: alice, Slug: "one", Name: "One"})
	second, _ := store.Create(ctx, NewPage{UserID: alice, Slug: "two", Name: "Two"})
	store.Create(ctx, NewPage{UserID: bob, Slug: "three", Name: "Three"})

	pages, err := store.ListByOwner(ctx, alice)
	if err != nil {
		t.Fatalf("ListByOwner() error = %v", err)
	}
	if len(pages) != 2 {
		t.Fatalf("got %d pages, want 2", len(pages))
	}
	if pages[0].ID != second.ID || pages[1].ID != first.ID {
		t.Error("pages should be listed newest first")
	}

	none, err := store.ListByOwner(ctx, primitive.NewObjectID())
	if err != nil {
		t.Fatalf("ListByOwner() error = %v", err)
	}
	if len(none) != 0 {
		t.Errorf("got %d pages for unknown owner, want 0", len(none))
	}
}

func TestStore_GetByID_Access(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := primitive.NewObjectID()
	other := primitive.NewObjectID()
	page, _ := store.Create(ctx, NewPage{UserID: owner, Slug: "mine", Name: "Mine"})

	if _, err := store.GetByID(ctx, owner, primitive.NewObjectID()); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("missing page: err = %v, want ErrNotFound", err)
	}
	if _, err := store.GetByID(ctx, other, page.ID); !errors.Is(err, apperr.ErrPermissionDenied) {
		t.Errorf("other owner: err = %v, want ErrPermissionDenied", err)
	}

	// Publishing does not open the id path to other users.
	if err := store.SetPublished(ctx, owner, page.ID, true); err != nil {
		t.Fatalf("SetPublished() error = %v", err)
	}
	if _, err := store.GetByID(ctx, other, page.ID); !errors.Is(err, apperr.ErrPermissionDenied) {
		t.Errorf("other owner on published page: err = %v, want ErrPermissionDenied", err)
	}
}

func TestStore_GetPublishedBySlug(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := primitive.NewObjectID()
	page, _ := store.Create(ctx, NewPage{UserID: owner, Slug: "launch", Name: "Launch"})

	if _, err := store.GetPublishedBySlug(ctx, "launch"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("draft page: err = %v, want ErrNotFound", err)
	}

	if err := store.SetPublished(ctx, owner, page.ID, true); err != nil {
		t.Fatalf("SetPublished() error = %v", err)
	}
	got, err := store.GetPublishedBySlug(ctx, "launch")
	if err != nil {
		t.Fatalf("GetPublishedBySlug() error = %v", err)
	}
	if got.ID != page.ID {
		t.Errorf("got page %v, want %v", got.ID, page.ID)
	}

	// Unpublishing takes effect for the very next lookup.
	if err := store.SetPublished(ctx, owner, page.ID, false); err != nil {
		t.Fatalf("SetPublished(false) error = %v", err)
	}
	if _, err := store.GetPublishedBySlug(ctx, "launch"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("after unpublish: err = %v, want ErrNotFound", err)
	}

	if _, err := store.GetPublishedBySlug(ctx, ""); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("empty slug: err = %v, want ErrNotFound", err)
	}
}

func TestStore_GetPublishedBySlug_SharedSlug(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := primitive.NewObjectID()
	bob := primitive.NewObjectID()
	carol := primitive.NewObjectID()

	aliceDraft, _ := store.Create(ctx, NewPage{UserID: alice, Slug: "sale", Name: "Alice draft"})
	bobPage, _ := store.Create(ctx, NewPage{UserID: bob, Slug: "sale", Name: "Bob"})
	carolPage, _ := store.Create(ctx, NewPage{UserID: carol, Slug: "sale", Name: "Carol"})

	// Only drafts share the slug: nothing is public.
	if _, err := store.GetPublishedBySlug(ctx, "sale"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("all drafts: err = %v, want ErrNotFound", err)
	}

	store.SetPublished(ctx, carol, carolPage.ID, true)
	store.SetPublished(ctx, bob, bobPage.ID, true)

	got, err := store.GetPublishedBySlug(ctx, "sale")
	if err != nil {
		t.Fatalf("GetPublishedBySlug() error = %v", err)
	}
	if got.ID == aliceDraft.ID {
		t.Fatal("returned an unpublished page")
	}
	if got.ID != bobPage.ID {
		t.Errorf("got %q, want the oldest published page (Bob)", got.Name)
	}
}

func TestStore_Update(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := primitive.NewObjectID()
	page, _ := store.Create(ctx, NewPage{UserID: owner, Slug: "p", Name: "P"})

	sections := []models.Section{
		{ID: "s1", Type: models.SectionHero, Content: models.SectionContent{Title: "Hi", Extras: map[string]any{"badge": "new"}}},
		{ID: "s2", Type: models.SectionFooter},
	}
	if err := store.Update(ctx, owner, page.ID, PageUpdate{Sections: &sections}); err != nil {
		t.Fatalf("Update(sections) error = %v", err)
	}

	got, _ := store.GetByID(ctx, owner, page.ID)
	if len(got.Sections) != 2 || got.Sections[0].ID != "s1" || got.Sections[1].ID != "s2" {
		t.Fatalf("sections = %+v", got.Sections)
	}
	if got.Sections[0].Content.Extras["badge"] != "new" {
		t.Errorf("extras lost: %v", got.Sections[0].Content.Extras)
	}
	if got.IsPublished {
		t.Error("sections-only update changed is_published")
	}
	if got.Name != "P" || got.Slug != "p" {
		t.Error("update touched name or slug")
	}

	published := true
	if err := store.Update(ctx, owner, page.ID, PageUpdate{IsPublished: &published}); err != nil {
		t.Fatalf("Update(published) error = %v", err)
	}
	got, _ = store.GetByID(ctx, owner, page.ID)
	if !got.IsPublished {
		t.Error("is_published not updated")
	}
	if len(got.Sections) != 2 {
		t.Error("publish-only update changed sections")
	}
}

func TestStore_Update_Access(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := primitive.NewObjectID()
	page, _ := store.Create(ctx, NewPage{UserID: owner, Slug: "p", Name: "P"})
	published := true

	err := store.Update(ctx, primitive.NewObjectID(), page.ID, PageUpdate{IsPublished: &published})
	if !errors.Is(err, apperr.ErrPermissionDenied) {
		t.Errorf("other owner: err = %v, want ErrPermissionDenied", err)
	}
	got, _ := store.GetByID(ctx, owner, page.ID)
	if got.IsPublished {
		t.Error("non-owner update was applied")
	}

	err = store.Update(ctx, owner, primitive.NewObjectID(), PageUpdate{IsPublished: &published})
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("missing page: err = %v, want ErrNotFound", err)
	}
}

func TestStore_Delete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := primitive.NewObjectID()
	page, _ := store.Create(ctx, NewPage{UserID: owner, Slug: "p", Name: "P"})

	if err := store.Delete(ctx, primitive.NewObjectID(), page.ID); !errors.Is(err, apperr.ErrPermissionDenied) {
		t.Errorf("other owner: err = %v, want ErrPermissionDenied", err)
	}
	if err := store.Delete(ctx, owner, page.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := store.GetByID(ctx, owner, page.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("after delete: err = %v, want ErrNotFound", err)
	}
	if err := store.Delete(ctx, owner, page.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("second delete: err = %v, want ErrNotFound", err)
	}
}

func TestStore_SlugTaken(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := primitive.NewObjectID()
	bob := primitive.NewObjectID()
	store.Create(ctx, NewPage{UserID: alice, Slug: "sale", Name: "Sale"})

	tests := []struct {
		name  string
		owner primitive.ObjectID
		slug  string
		want  bool
	}{
		{"same owner same slug", alice, "sale", true},
		{"same owner other slug", alice, "other", false},
		{"other owner same slug", bob, "sale", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.SlugTaken(ctx, tt.owner, tt.slug)
			if err != nil {
				t.Fatalf("SlugTaken() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("SlugTaken(%s) = %v, want %v", tt.slug, got, tt.want)
			}
		})
	}
}
