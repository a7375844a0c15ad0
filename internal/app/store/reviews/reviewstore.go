// internal/app/store/reviews/reviewstore.go
package reviewstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/bookcourier/internal/app/system/htmlsanitize"
	"github.com/dalemusser/bookcourier/internal/app/system/normalize"
	"github.com/dalemusser/bookcourier/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	MinRating = 1
	MaxRating = 5

	// ListLimit caps the reviews returned for one book.
	ListLimit = 500
)

var (
	ErrBookIDRequired = errors.New("bookId is required")
	ErrBadRating      = errors.New("rating must be between 1 and 5")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("reviews")}
}

// bookKey is the form bookId is stored in: lower-case hex for an ObjectID,
// the trimmed string otherwise.
func bookKey(bookID string) string {
	bookID = strings.TrimSpace(bookID)
	if oid, err := primitive.ObjectIDFromHex(bookID); err == nil {
		return oid.Hex()
	}
	return bookID
}

// Create stores a review. The caller has already checked that the reviewer
// bought the book. Review text is reduced to plain text.
func (s *Store) Create(ctx context.Context, rv models.Review) (models.Review, error) {
	rv.BookID = bookKey(rv.BookID)
	if rv.BookID == "" {
		return models.Review{}, ErrBookIDRequired
	}
	if rv.Rating < MinRating || rv.Rating > MaxRating {
		return models.Review{}, ErrBadRating
	}

	rv.ID = primitive.NewObjectID()
	rv.UserEmail = normalize.Email(rv.UserEmail)
	rv.UserName = normalize.Name(rv.UserName)
	rv.Review = htmlsanitize.StripTags(rv.Review)
	rv.CreatedAt = time.Now().UTC()

	if _, err := s.c.InsertOne(ctx, rv); err != nil {
		return models.Review{}, err
	}
	return rv, nil
}

// ListByBook returns a book's reviews, newest first.
func (s *Store) ListByBook(ctx context.Context, bookID string) ([]models.Review, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(ListLimit)
	cur, err := s.c.Find(ctx, bson.M{"bookId": bookKey(bookID)}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]models.Review, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
