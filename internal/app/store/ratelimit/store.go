// internal/app/store/ratelimit/store.go
package ratelimit

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/stratapage/internal/app/system/normalize"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionName is the Mongo collection holding sign-in failure counters.
const CollectionName = "rate_limits"

// Attempt tracks failed sign-in attempts for one email.
type Attempt struct {
	Email        string     `bson:"email"`
	AttemptCount int        `bson:"attempt_count"`
	WindowStart  time.Time  `bson:"window_start"`
	LockedUntil  *time.Time `bson:"locked_until"`
	LastAttempt  time.Time  `bson:"last_attempt"` // TTL index key
}

// Decision is the outcome of a rate-limit check.
type Decision struct {
	Allowed     bool
	Remaining   int        // attempts left before lockout; 0 when locked
	LockedUntil *time.Time // set while locked out
}

// Store counts failed sign-ins per email and locks an email out after
// maxAttempts failures inside one window.
type Store struct {
	c           *mongo.Collection
	maxAttempts int
	window      time.Duration
	lockout     time.Duration
	now         func() time.Time
}

// New creates a Store. Indexes are created by indexes.EnsureAll.
func New(db *mongo.Database, maxAttempts int, window, lockout time.Duration) *Store {
	return &Store{
		c:           db.Collection(CollectionName),
		maxAttempts: maxAttempts,
		window:      window,
		lockout:     lockout,
		now:         time.Now,
	}
}

func (s *Store) fresh() Decision {
	return Decision{Allowed: true, Remaining: s.maxAttempts}
}

// decide evaluates a stored attempt at time now.
func (s *Store) decide(a Attempt, now time.Time) Decision {
	if a.LockedUntil != nil && now.Before(*a.LockedUntil) {
		return Decision{Allowed: false, LockedUntil: a.LockedUntil}
	}
	if now.After(a.WindowStart.Add(s.window)) {
		return s.fresh()
	}
	remaining := s.maxAttempts - a.AttemptCount
	if remaining <= 0 {
		return Decision{Allowed: false}
	}
	return Decision{Allowed: true, Remaining: remaining}
}

// Check reports whether email may attempt a sign-in now. Lookup errors
// fail open.
func (s *Store) Check(ctx context.Context, email string) Decision {
	a, err := s.Get(ctx, email)
	if err != nil || a == nil {
		return s.fresh()
	}
	return s.decide(*a, s.now())
}

// RecordFailure counts one failed sign-in for email and returns the state
// after counting. Reaching maxAttempts starts a lockout.
func (s *Store) RecordFailure(ctx context.Context, email string) Decision {
	email = normalize.Email(email)
	now := s.now()

	a, err := s.Get(ctx, email)
	if err != nil {
		return s.fresh()
	}
	if a == nil || now.After(a.WindowStart.Add(s.window)) {
		a = &Attempt{Email: email, WindowStart: now}
	}
	a.AttemptCount++
	a.LastAttempt = now
	a.LockedUntil = nil
	if a.AttemptCount >= s.maxAttempts {
		until := now.Add(s.lockout)
		a.LockedUntil = &until
	}

	_, _ = s.c.ReplaceOne(ctx, bson.M{"email": email}, a, options.Replace().SetUpsert(true))
	return s.decide(*a, now)
}

// Clear removes the counter for email after a successful sign-in.
func (s *Store) Clear(ctx context.Context, email string) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"email": normalize.Email(email)})
	return err
}

// Get returns the stored attempt for email, or nil when there is none.
func (s *Store) Get(ctx context.Context, email string) (*Attempt, error) {
	var a Attempt
	err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}
