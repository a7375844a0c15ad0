package userstore

import (
	"context"
	"errors"

	"github.com/dalemusser/bookcourier/internal/app/system/authz"
	"github.com/dalemusser/bookcourier/internal/app/system/normalize"
	"github.com/dalemusser/bookcourier/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Fetcher implements authz.RoleResolver. It reads the role fresh on every
// request so promotions and demotions take effect immediately.
type Fetcher struct {
	users *mongo.Collection
}

// NewFetcher creates a RoleResolver that queries the given database.
func NewFetcher(db *mongo.Database) *Fetcher {
	return &Fetcher{users: db.Collection("users")}
}

// ResolveRole returns the stored role for email, or authz.ErrUnknownUser
// when no record exists.
func (f *Fetcher) ResolveRole(ctx context.Context, email string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	var u struct {
		Role string `bson:"role"`
	}
	proj := options.FindOne().SetProjection(bson.M{"_id": 0, "role": 1})
	err := f.users.FindOne(ctx, bson.M{"email": normalize.Email(email)}, proj).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", authz.ErrUnknownUser
	}
	if err != nil {
		return "", err
	}
	return normalize.Role(u.Role), nil
}

var _ authz.RoleResolver = (*Fetcher)(nil)
