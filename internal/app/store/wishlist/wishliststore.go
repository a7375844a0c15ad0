// internal/app/store/wishlist/wishliststore.go
package wishliststore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/bookcourier/internal/app/system/normalize"
	"github.com/dalemusser/bookcourier/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ListLimit caps one user's wishlist listing.
const ListLimit = 500

var (
	ErrExists         = errors.New("book is already in wishlist")
	ErrNotFound       = errors.New("book is not in wishlist")
	ErrBookIDRequired = errors.New("bookId is required")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("wishlist")}
}

// Add puts bookID on the user's wishlist. A second add of the same book
// returns ErrExists, whether caught by the existence check or by the unique
// index when two adds race.
func (s *Store) Add(ctx context.Context, userEmail, bookID string) (models.WishlistItem, error) {
	userEmail = normalize.Email(userEmail)
	bookID = strings.TrimSpace(bookID)
	if bookID == "" {
		return models.WishlistItem{}, ErrBookIDRequired
	}

	n, err := s.c.CountDocuments(ctx,
		bson.M{"userEmail": userEmail, "bookId": bookID},
		options.Count().SetLimit(1))
	if err != nil {
		return models.WishlistItem{}, err
	}
	if n > 0 {
		return models.WishlistItem{}, ErrExists
	}

	item := models.WishlistItem{
		ID:        primitive.NewObjectID(),
		UserEmail: userEmail,
		BookID:    bookID,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, item); err != nil {
		if wafflemongo.IsDup(err) {
			return models.WishlistItem{}, ErrExists
		}
		return models.WishlistItem{}, err
	}
	return item, nil
}

// ListWithBooks returns the user's wishlist, newest first, each item joined
// with its book. Items whose book has since been deleted carry a nil Book.
func (s *Store) ListWithBooks(ctx context.Context, userEmail string) ([]models.WishlistItem, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"userEmail": normalize.Email(userEmail)}}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}}},
		{{Key: "$limit", Value: ListLimit}},
		{{Key: "$lookup", Value: bson.M{
			"from": "books",
			"let":  bson.M{"bid": "$bookId"},
			"pipeline": bson.A{
				bson.M{"$match": bson.M{"$expr": bson.M{
					"$eq": bson.A{bson.M{"$toString": "$_id"}, "$$bid"},
				}}},
			},
			"as": "book",
		}}},
		{{Key: "$unwind", Value: bson.M{"path": "$book", "preserveNullAndEmptyArrays": true}}},
	}

	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]models.WishlistItem, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Remove takes bookID off the user's wishlist.
func (s *Store) Remove(ctx context.Context, userEmail, bookID string) error {
	res, err := s.c.DeleteOne(ctx, bson.M{
		"userEmail": normalize.Email(userEmail),
		"bookId":    strings.TrimSpace(bookID),
	})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
