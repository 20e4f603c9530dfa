// internal/app/store/drafts/draftstore.go
package draftstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/stratapage/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionName is the MongoDB collection holding editor working copies.
const CollectionName = "page_drafts"

// DefaultTTL is how long an untouched draft is kept.
const DefaultTTL = 72 * time.Hour

// Store holds one working copy per (user, page). Drafts expire after the
// configured TTL; expired drafts are treated as absent.
type Store struct {
	c   *mongo.Collection
	ttl time.Duration
}

// New creates a draft store. A ttl of zero uses DefaultTTL.
func New(db *mongo.Database, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{c: db.Collection(CollectionName), ttl: ttl}
}

// Get returns the user's live draft of a page. found is false when there
// is no draft or it has expired.
func (s *Store) Get(ctx context.Context, userID, pageID primitive.ObjectID) (draft models.PageDraft, found bool, err error) {
	filter := bson.M{
		"user_id":    userID,
		"page_id":    pageID,
		"expires_at": bson.M{"$gt": time.Now().UTC()},
	}
	err = s.c.FindOne(ctx, filter).Decode(&draft)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.PageDraft{}, false, nil
	}
	if err != nil {
		return models.PageDraft{}, false, err
	}
	return draft, true, nil
}

// Put replaces the user's draft of page with the page's editable fields
// and pushes its expiry forward.
func (s *Store) Put(ctx context.Context, userID primitive.ObjectID, page models.LandingPage) error {
	now := time.Now().UTC()
	sections := page.Sections
	if sections == nil {
		sections = []models.Section{}
	}
	doc := models.PageDraft{
		PageID:    page.ID,
		UserID:    userID,
		Theme:     page.Theme,
		Sections:  sections,
		UpdatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	_, err := s.c.ReplaceOne(ctx,
		bson.M{"user_id": userID, "page_id": page.ID},
		doc,
		options.Replace().SetUpsert(true),
	)
	return err
}

// Discard removes the user's draft of a page.
func (s *Store) Discard(ctx context.Context, userID, pageID primitive.ObjectID) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"user_id": userID, "page_id": pageID})
	return err
}

// DiscardForPage removes every draft of a page (used when the page is deleted).
func (s *Store) DiscardForPage(ctx context.Context, pageID primitive.ObjectID) error {
	_, err := s.c.DeleteMany(ctx, bson.M{"page_id": pageID})
	return err
}

// DeleteExpired removes drafts whose expiry is before now and returns how
// many were removed.
func (s *Store) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lt": now}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
