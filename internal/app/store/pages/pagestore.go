// internal/app/store/pages/pagestore.go
package pagestore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/stratapage/internal/app/system/apperr"
	"github.com/dalemusser/stratapage/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionName is the MongoDB collection holding landing pages.
const CollectionName = "landing_pages"

// Store provides owner-scoped access to landing pages.
//
// Every read or write by id takes the acting user's id and refuses to touch
// another owner's page, published or not. Published pages are readable by
// anyone only through GetPublishedBySlug.
type Store struct {
	c *mongo.Collection
}

// New creates a new page store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(CollectionName)}
}

// NewPage holds the caller-supplied fields for Create.
type NewPage struct {
	UserID primitive.ObjectID
	Slug   string
	Name   string
	Theme  string
}

// Create inserts an empty, unpublished page and returns it with its id and
// created_at set. Slug uniqueness is not checked here; see SlugTaken.
func (s *Store) Create(ctx context.Context, in NewPage) (models.LandingPage, error) {
	page := models.LandingPage{
		ID:          primitive.NewObjectID(),
		UserID:      in.UserID,
		Slug:        in.Slug,
		Name:        in.Name,
		Theme:       in.Theme,
		IsPublished: false,
		Sections:    []models.Section{},
		CreatedAt:   time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, page); err != nil {
		return models.LandingPage{}, err
	}
	return page, nil
}

// ListByOwner returns all pages owned by userID, newest first.
func (s *Store) ListByOwner(ctx context.Context, userID primitive.ObjectID) ([]models.LandingPage, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var pages []models.LandingPage
	if err := cur.All(ctx, &pages); err != nil {
		return nil, err
	}
	return pages, nil
}

// GetByID returns the page if actorID owns it.
// Returns apperr.ErrNotFound or apperr.ErrPermissionDenied.
func (s *Store) GetByID(ctx context.Context, actorID, id primitive.ObjectID) (models.LandingPage, error) {
	var page models.LandingPage
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&page)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.LandingPage{}, apperr.NotFound("page")
	}
	if err != nil {
		return models.LandingPage{}, err
	}
	if page.UserID != actorID {
		return models.LandingPage{}, apperr.PermissionDenied("You do not have access to this page.")
	}
	return page, nil
}

// GetPublishedBySlug returns the published page with the given slug.
// Unpublished pages are never returned. When several owners have published
// the same slug, the oldest page wins.
func (s *Store) GetPublishedBySlug(ctx context.Context, slug string) (models.LandingPage, error) {
	if slug == "" {
		return models.LandingPage{}, apperr.NotFound("page")
	}
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	var page models.LandingPage
	err := s.c.FindOne(ctx, bson.M{"slug": slug, "is_published": true}, opts).Decode(&page)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.LandingPage{}, apperr.NotFound("page")
	}
	if err != nil {
		return models.LandingPage{}, err
	}
	return page, nil
}

// SlugTaken reports whether userID already has a page with slug.
func (s *Store) SlugTaken(ctx context.Context, userID primitive.ObjectID, slug string) (bool, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{"user_id": userID, "slug": slug}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// PageUpdate lists the fields an owner may change after creation.
// Nil fields are left as they are.
type PageUpdate struct {
	Sections    *[]models.Section
	IsPublished *bool
	Theme       *string
}

// Update writes the supplied fields in a single document update.
// Returns apperr.ErrNotFound or apperr.ErrPermissionDenied.
func (s *Store) Update(ctx context.Context, actorID, id primitive.ObjectID, upd PageUpdate) error {
	if err := s.checkOwner(ctx, actorID, id); err != nil {
		return err
	}

	set := bson.M{"updated_at": time.Now().UTC()}
	if upd.Sections != nil {
		sections := *upd.Sections
		if sections == nil {
			sections = []models.Section{}
		}
		set["sections"] = sections
	}
	if upd.IsPublished != nil {
		set["is_published"] = *upd.IsPublished
	}
	if upd.Theme != nil {
		set["theme"] = *upd.Theme
	}

	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id, "user_id": actorID}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("page")
	}
	return nil
}

// SetPublished updates only the publish flag.
func (s *Store) SetPublished(ctx context.Context, actorID, id primitive.ObjectID, published bool) error {
	return s.Update(ctx, actorID, id, PageUpdate{IsPublished: &published})
}

// Delete removes the page permanently.
// Returns apperr.ErrNotFound or apperr.ErrPermissionDenied.
func (s *Store) Delete(ctx context.Context, actorID, id primitive.ObjectID) error {
	if err := s.checkOwner(ctx, actorID, id); err != nil {
		return err
	}
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id, "user_id": actorID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound("page")
	}
	return nil
}

// checkOwner distinguishes a missing page from someone else's page.
func (s *Store) checkOwner(ctx context.Context, actorID, id primitive.ObjectID) error {
	var doc struct {
		UserID primitive.ObjectID `bson:"user_id"`
	}
	opts := options.FindOne().SetProjection(bson.M{"user_id": 1})
	err := s.c.FindOne(ctx, bson.M{"_id": id}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return apperr.NotFound("page")
	}
	if err != nil {
		return err
	}
	if doc.UserID != actorID {
		return apperr.PermissionDenied("You do not have access to this page.")
	}
	return nil
}
