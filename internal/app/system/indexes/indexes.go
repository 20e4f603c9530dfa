// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Collection names are spelled out here rather than imported from the
// stores: store tests build their databases through this package.

/*
EnsureAll is called at startup and by testutil.SetupTestDB. Each ensure*
function is idempotent. Errors are aggregated so every problem is visible
and startup can fail fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	ensure := func(name string, fn func(context.Context, *mongo.Database) error) {
		if err := fn(ctx, db); err != nil {
			problems = append(problems, name+": "+err.Error())
		}
	}
	ensure("users", ensureUsers)
	ensure("landing_pages", ensureLandingPages)
	ensure("page_drafts", ensurePageDrafts)
	ensure("rate_limits", ensureRateLimits)

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Reconciling one collection's desired indexes                               */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name        string `bson:"name"`
	Key         bson.D `bson:"key"`
	Unique      *bool  `bson:"unique,omitempty"`
	ExpireAfter *int32 `bson:"expireAfterSeconds,omitempty"`
}

// keySig renders a key pattern as "field:dir, field:dir" for comparison.
func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func boolOf(b *bool) bool { return b != nil && *b }
func int32Of(n *int32) int32 {
	if n == nil {
		return -1
	}
	return *n
}

// matches reports whether an existing index already satisfies m.
func (ex existingIndex) matches(m mongo.IndexModel) bool {
	var unique *bool
	var ttl *int32
	if m.Options != nil {
		unique, ttl = m.Options.Unique, m.Options.ExpireAfterSeconds
	}
	return boolOf(ex.Unique) == boolOf(unique) && int32Of(ex.ExpireAfter) == int32Of(ttl)
}

func loadExisting(ctx context.Context, coll *mongo.Collection) (map[string]existingIndex, error) {
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		// A collection that does not exist yet has no indexes.
		if strings.Contains(err.Error(), "NamespaceNotFound") {
			return map[string]existingIndex{}, nil
		}
		return nil, err
	}
	defer cur.Close(ctx)

	out := map[string]existingIndex{}
	for cur.Next(ctx) {
		var idx existingIndex
		if err := cur.Decode(&idx); err != nil {
			zap.L().Warn("failed to decode existing index",
				zap.String("collection", coll.Name()), zap.Error(err))
			continue
		}
		out[keySig(idx.Key)] = idx
	}
	return out, cur.Err()
}

// ensureIndexSet makes coll carry every index in models. An index whose key
// pattern exists with different unique/TTL options is dropped and recreated.
func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	existing, err := loadExisting(ctx, coll)
	if err != nil {
		return fmt.Errorf("list indexes: %w", err)
	}

	var errs []string
	for _, m := range models {
		name := ""
		if m.Options != nil && m.Options.Name != nil {
			name = *m.Options.Name
		}
		sig := keySig(m.Keys.(bson.D))
		start := time.Now()

		ex, found := existing[sig]
		if found && ex.matches(m) {
			zap.L().Debug("index up to date",
				zap.String("collection", coll.Name()),
				zap.String("name", ex.Name),
				zap.String("keys", sig))
			continue
		}
		if found {
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				errs = append(errs, fmt.Sprintf("%s(%s): drop failed: %v", coll.Name(), name, err))
				continue
			}
			zap.L().Info("dropped index with stale options",
				zap.String("collection", coll.Name()), zap.String("name", ex.Name))
		}

		created, err := coll.Indexes().CreateOne(ctx, m)
		if err != nil {
			switch {
			case isDuplicateKeyErr(err):
				errs = append(errs, fmt.Sprintf("%s(%s): cannot create unique index (duplicates present)", coll.Name(), name))
			default:
				errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), name, err))
			}
			zap.L().Warn("index ensure failed",
				zap.String("collection", coll.Name()),
				zap.String("name", name),
				zap.String("keys", sig),
				zap.Error(err))
			continue
		}
		zap.L().Info("index ensured",
			zap.String("collection", coll.Name()),
			zap.String("name", created),
			zap.String("keys", sig),
			zap.Duration("took", time.Since(start)))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// isDuplicateKeyErr detects E11000 across driver error shapes.
func isDuplicateKeyErr(err error) bool {
	if mongo.IsDuplicateKeyError(err) {
		return true
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == 11000 {
		return true
	}
	return strings.Contains(err.Error(), "E11000")
}

/* -------------------------------------------------------------------------- */
/* Collection-specific index sets                                              */
/* -------------------------------------------------------------------------- */

func ensureUsers(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("users"), []mongo.IndexModel{
		// One account per folded email
		{
			Keys:    bson.D{{Key: "email_ci", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_users_emailci"),
		},
	})
}

func ensureLandingPages(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("landing_pages"), []mongo.IndexModel{
		// Dashboard listing, newest first
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "created_at", Value: -1},
				{Key: "_id", Value: -1},
			},
			Options: options.Index().SetName("idx_pages_user_created"),
		},
		// Advisory per-owner slug check. Not unique: the store does not enforce it.
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "slug", Value: 1},
			},
			Options: options.Index().SetName("idx_pages_user_slug"),
		},
		// Public lookup: slug + published, oldest first
		{
			Keys: bson.D{
				{Key: "slug", Value: 1},
				{Key: "is_published", Value: 1},
				{Key: "created_at", Value: 1},
				{Key: "_id", Value: 1},
			},
			Options: options.Index().SetName("idx_pages_public_slug"),
		},
	})
}

func ensurePageDrafts(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("page_drafts"), []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "page_id", Value: 1},
			},
			Options: options.Index().SetUnique(true).SetName("uniq_drafts_user_page"),
		},
		{
			Keys:    bson.D{{Key: "page_id", Value: 1}},
			Options: options.Index().SetName("idx_drafts_page"),
		},
		// TTL cleanup; the drafts cleanup task covers the monitor's lag
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0).SetName("idx_drafts_expires_ttl"),
		},
	})
}

func ensureRateLimits(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("rate_limits"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_ratelimit_email"),
		},
		// Old records go away a day after the last attempt
		{
			Keys:    bson.D{{Key: "last_attempt", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(86400).SetName("idx_ratelimit_ttl"),
		},
	})
}
