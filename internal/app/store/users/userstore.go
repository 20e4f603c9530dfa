// internal/app/store/users/userstore.go
package userstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/stratapage/internal/app/system/apperr"
	"github.com/dalemusser/stratapage/internal/app/system/normalize"
	"github.com/dalemusser/stratapage/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// CollectionName is the Mongo collection holding accounts.
const CollectionName = "users"

// ErrDuplicateEmail is returned by Create when the email already has an account.
var ErrDuplicateEmail = apperr.Auth("This email is already in use. Please sign in instead.")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(CollectionName)}
}

// NewUser is the input to Create. PasswordHash is already a bcrypt hash.
type NewUser struct {
	Email        string
	DisplayName  string
	PasswordHash string
}

// DisplayNameFor derives a display name from an email's local part.
func DisplayNameFor(email string) string {
	local, _, _ := strings.Cut(normalize.Email(email), "@")
	return local
}

// Create inserts an active user. The email is lowercased and a folded copy
// is stored in email_ci, which carries the unique index.
func (s *Store) Create(ctx context.Context, in NewUser) (models.User, error) {
	email := normalize.Email(in.Email)
	name := normalize.Name(in.DisplayName)
	if name == "" {
		name = DisplayNameFor(email)
	}
	now := time.Now().UTC()
	u := models.User{
		ID:           primitive.NewObjectID(),
		DisplayName:  name,
		Email:        email,
		EmailCI:      text.Fold(email),
		PasswordHash: in.PasswordHash,
		Status:       models.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return u, nil
}

func (s *Store) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var u models.User
	err := s.c.FindOne(ctx, filter).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("user")
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByID loads a user by ObjectID. A missing user is apperr.ErrNotFound.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

// GetByEmail looks up a user by case/diacritic-insensitive email.
// A missing user is apperr.ErrNotFound.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"email_ci": text.Fold(normalize.Email(email))})
}

// SetStatus enables or disables an account.
func (s *Store) SetStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	if status != models.StatusActive && status != models.StatusDisabled {
		return errors.New(`status must be "active"|"disabled"`)
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"status":     status,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("user")
	}
	return nil
}
