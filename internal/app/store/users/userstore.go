package userstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/bookcourier/internal/app/system/normalize"
	"github.com/dalemusser/bookcourier/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ListLimit caps the admin user listing.
const ListLimit = 500

var (
	// ErrNotFound is returned when no user has the given email.
	ErrNotFound = errors.New("user not found")
	// ErrBadRole is returned when a role outside user|librarian|admin is requested.
	ErrBadRole = errors.New(`role must be "user"|"librarian"|"admin"`)
	// ErrIsAdmin is returned by Promote when the user is already an admin.
	ErrIsAdmin = errors.New("user is an admin")
	// ErrEmailRequired is returned when an empty email is supplied.
	ErrEmailRequired = errors.New("email is required")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// EnsureByEmail creates a user with role "user" if none exists for the email.
// An existing record is left untouched. inserted reports whether a new
// document was written.
func (s *Store) EnsureByEmail(ctx context.Context, u models.User) (inserted bool, err error) {
	email := normalize.Email(u.Email)
	if email == "" {
		return false, ErrEmailRequired
	}

	now := time.Now().UTC()
	onInsert := bson.M{
		"email":     email,
		"role":      models.RoleUser,
		"createdAt": now,
	}
	if name := normalize.Name(u.Name); name != "" {
		onInsert["name"] = name
	}
	if u.PhotoURL != "" {
		onInsert["photoURL"] = u.PhotoURL
	}

	res, err := s.c.UpdateOne(ctx,
		bson.M{"email": email},
		bson.M{"$setOnInsert": onInsert},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		// Two first sign-ins racing on the unique email index: the loser sees
		// a duplicate key, which means the record now exists.
		if wafflemongo.IsDup(err) {
			return false, nil
		}
		return false, err
	}
	return res.UpsertedCount > 0, nil
}

// GetByEmail looks up a user by case-insensitive email. Returns ErrNotFound if absent.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// SetRole changes the role of the user with the given email.
func (s *Store) SetRole(ctx context.Context, email, role string) error {
	role = normalize.Role(role)
	if !models.IsValidRole(role) {
		return ErrBadRole
	}
	res, err := s.c.UpdateOne(ctx,
		bson.M{"email": normalize.Email(email)},
		bson.M{"$set": bson.M{"role": role, "updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Promote sets role on a user who is not an admin. An admin is left as is
// and ErrIsAdmin is returned; an unknown email returns ErrNotFound.
func (s *Store) Promote(ctx context.Context, email, role string) error {
	role = normalize.Role(role)
	if !models.IsValidRole(role) {
		return ErrBadRole
	}
	email = normalize.Email(email)
	res, err := s.c.UpdateOne(ctx,
		bson.M{"email": email, "role": bson.M{"$ne": models.RoleAdmin}},
		bson.M{"$set": bson.M{"role": role, "updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount > 0 {
		return nil
	}
	n, err := s.c.CountDocuments(ctx, bson.M{"email": email})
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return ErrIsAdmin
}

// List returns users newest first, capped at ListLimit.
func (s *Store) List(ctx context.Context) ([]models.User, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(ListLimit)
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]models.User, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
