package editor

import (
	"context"
	"errors"
	"testing"

	"github.com/dalemusser/stratapage/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func twoSectionPage() models.LandingPage {
	return models.LandingPage{
		ID:     primitive.NewObjectID(),
		UserID: primitive.NewObjectID(),
		Slug:   "summer-sale",
		Name:   "Summer Sale",
		Sections: []models.Section{
			{ID: "a", Type: models.SectionHero, Content: models.SectionContent{Title: "Hello", Subtitle: "World"}},
			{ID: "b", Type: models.SectionFeatures, Content: models.SectionContent{
				Items: []models.SectionItem{{Title: "one"}, {Title: "two"}},
			}},
		},
	}
}

func ids(p models.LandingPage) []string {
	out := make([]string, len(p.Sections))
	for i, s := range p.Sections {
		out[i] = s.ID
	}
	return out
}

func equalIDs(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func TestAddSection(t *testing.T) {
	page := twoSectionPage()

	got := AddSection(page, models.SectionCTA)

	if len(got.Sections) != 3 {
		t.Fatalf("got %d sections, want 3", len(got.Sections))
	}
	last := got.Sections[2]
	if last.Type != models.SectionCTA {
		t.Errorf("new section type = %q, want cta", last.Type)
	}
	if last.Content.Title != NewSectionTitle {
		t.Errorf("new section title = %q, want %q", last.Content.Title, NewSectionTitle)
	}
	if last.ID == "" || last.ID == "a" || last.ID == "b" {
		t.Errorf("new section id = %q, want a fresh id", last.ID)
	}
	if len(page.Sections) != 2 {
		t.Error("input page was modified")
	}
}

func TestAddSection_UnknownTypeIsNoop(t *testing.T) {
	page := twoSectionPage()
	got := AddSection(page, models.SectionType("banner"))
	if !equalIDs(ids(got), []string{"a", "b"}) {
		t.Errorf("sections = %v", ids(got))
	}
}

func TestRemoveSection(t *testing.T) {
	page := twoSectionPage()

	got := RemoveSection(page, "a")
	if !equalIDs(ids(got), []string{"b"}) {
		t.Errorf("after remove = %v, want [b]", ids(got))
	}
	if !equalIDs(ids(page), []string{"a", "b"}) {
		t.Error("input page was modified")
	}

	same := RemoveSection(page, "missing")
	if !equalIDs(ids(same), []string{"a", "b"}) {
		t.Errorf("remove missing = %v, want unchanged", ids(same))
	}
}

func TestUpdateSectionField(t *testing.T) {
	page := twoSectionPage()

	got := UpdateSectionField(page, "a", models.FieldTitle, "Hi")

	if got.Sections[0].Content.Title != "Hi" {
		t.Errorf("title = %q, want Hi", got.Sections[0].Content.Title)
	}
	if got.Sections[0].Content.Subtitle != "World" {
		t.Errorf("subtitle changed to %q", got.Sections[0].Content.Subtitle)
	}
	if page.Sections[0].Content.Title != "Hello" {
		t.Error("input page was modified")
	}
}

func TestUpdateSectionField_MissingIDIsNoop(t *testing.T) {
	page := twoSectionPage()

	got := UpdateSectionField(page, "nope", models.FieldTitle, "Hi")

	if !equalIDs(ids(got), []string{"a", "b"}) {
		t.Fatalf("sections = %v, want unchanged", ids(got))
	}
	if got.Sections[0].Content.Title != "Hello" {
		t.Errorf("title = %q, want unchanged", got.Sections[0].Content.Title)
	}
}

func TestUpdateSectionField_UnknownFieldGoesToExtras(t *testing.T) {
	got := UpdateSectionField(twoSectionPage(), "a", "badge", "new")
	if got.Sections[0].Content.Extras["badge"] != "new" {
		t.Errorf("extras = %v", got.Sections[0].Content.Extras)
	}
}

func TestReplaceSections(t *testing.T) {
	page := twoSectionPage()
	repl := []models.Section{{ID: "x", Type: models.SectionFooter}}

	got := ReplaceSections(page, repl)

	if !equalIDs(ids(got), []string{"x"}) {
		t.Errorf("sections = %v, want [x]", ids(got))
	}
	repl[0].ID = "changed"
	if got.Sections[0].ID != "x" {
		t.Error("result shares the caller's slice")
	}
}

func TestMoveSection(t *testing.T) {
	page := twoSectionPage()
	page = AddSection(page, models.SectionFooter)
	c := page.Sections[2].ID

	tests := []struct {
		name  string
		id    string
		delta int
		want  []string
	}{
		{"down one", "a", 1, []string{"b", "a", c}},
		{"up one", c, -1, []string{"a", c, "b"}},
		{"clamped top", "b", -5, []string{"b", "a", c}},
		{"clamped bottom", "a", 9, []string{"b", c, "a"}},
		{"zero", "b", 0, []string{"a", "b", c}},
		{"missing", "zzz", 1, []string{"a", "b", c}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MoveSection(page, tt.id, tt.delta)
			if !equalIDs(ids(got), tt.want) {
				t.Errorf("MoveSection(%s, %d) = %v, want %v", tt.id, tt.delta, ids(got), tt.want)
			}
			if !equalIDs(ids(page), []string{"a", "b", c}) {
				t.Error("input page was modified")
			}
		})
	}
}

func TestItems(t *testing.T) {
	page := twoSectionPage()

	added := AddItem(page, "b")
	if n := len(added.Sections[1].Content.Items); n != 3 {
		t.Fatalf("items after add = %d, want 3", n)
	}

	updated := UpdateItemField(added, "b", 2, models.ItemFieldIcon, "🚀")
	if got := updated.Sections[1].Content.Items[2].Icon; got != "🚀" {
		t.Errorf("icon = %q", got)
	}
	if added.Sections[1].Content.Items[2].Icon != "" {
		t.Error("UpdateItemField modified its input")
	}

	removed := RemoveItem(updated, "b", 0)
	items := removed.Sections[1].Content.Items
	if len(items) != 2 || items[0].Title != "two" {
		t.Errorf("items after remove = %+v", items)
	}
	if len(updated.Sections[1].Content.Items) != 3 {
		t.Error("RemoveItem modified its input")
	}

	if got := RemoveItem(page, "b", 7); len(got.Sections[1].Content.Items) != 2 {
		t.Error("out of range RemoveItem changed items")
	}
	if got := UpdateItemField(page, "b", -1, "title", "x"); got.Sections[1].Content.Items[0].Title != "one" {
		t.Error("out of range UpdateItemField changed items")
	}
}

func TestSetTheme(t *testing.T) {
	page := twoSectionPage()
	if got := SetTheme(page, models.ThemeDark); got.Theme != models.ThemeDark {
		t.Errorf("theme = %q, want dark", got.Theme)
	}
	if got := SetTheme(page, "neon"); got.Theme != "" {
		t.Errorf("invalid theme applied: %q", got.Theme)
	}
}

type fakePublishStore struct {
	calls []bool
	err   error
}

func (f *fakePublishStore) SetPublished(ctx context.Context, actorID, pageID primitive.ObjectID, published bool) error {
	f.calls = append(f.calls, published)
	return f.err
}

func TestTogglePublish_PersistsImmediately(t *testing.T) {
	page := twoSectionPage()
	page.IsPublished = true
	store := &fakePublishStore{}

	got, err := TogglePublish(context.Background(), page, page.UserID, store)
	if err != nil {
		t.Fatalf("TogglePublish failed: %v", err)
	}
	if got.IsPublished {
		t.Error("page still published after toggle")
	}
	if len(store.calls) != 1 || store.calls[0] != false {
		t.Errorf("store calls = %v, want [false]", store.calls)
	}
}

func TestTogglePublish_FailureLeavesPageUnchanged(t *testing.T) {
	page := twoSectionPage()
	store := &fakePublishStore{err: errors.New("write failed")}

	got, err := TogglePublish(context.Background(), page, page.UserID, store)
	if err == nil {
		t.Fatal("expected error")
	}
	if got.IsPublished {
		t.Error("page flipped despite failed write")
	}
}
