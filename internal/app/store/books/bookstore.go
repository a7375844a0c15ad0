// internal/app/store/books/bookstore.go
package bookstore

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/dalemusser/bookcourier/internal/app/system/htmlsanitize"
	"github.com/dalemusser/bookcourier/internal/app/system/normalize"
	"github.com/dalemusser/bookcourier/internal/app/system/search"
	"github.com/dalemusser/bookcourier/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ListLimit caps every catalog listing.
const ListLimit = 500

var (
	ErrNotFound       = errors.New("book not found")
	ErrForbidden      = errors.New("book not found or not owned by caller")
	ErrTitleRequired  = errors.New("title is required")
	ErrAuthorRequired = errors.New("author is required")
	ErrBadStatus      = errors.New(`status must be "published"|"unpublished"`)
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("books")}
}

// CoercePrice turns a JSON price (number or numeric string) into a
// non-negative float. Anything unparseable, negative or non-finite becomes 0.
func CoercePrice(v any) float64 {
	var f float64
	switch p := v.(type) {
	case float64:
		f = p
	case float32:
		f = float64(p)
	case int:
		f = float64(p)
	case int64:
		f = float64(p)
	case json.Number:
		n, err := p.Float64()
		if err != nil {
			return 0
		}
		f = n
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return 0
		}
		f = n
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	return f
}

// Create inserts a book owned by ownerEmail. Title and author are required;
// status is published unless exactly "unpublished".
func (s *Store) Create(ctx context.Context, b models.Book, ownerEmail string) (models.Book, error) {
	b.Title = strings.TrimSpace(b.Title)
	b.Author = strings.TrimSpace(b.Author)
	if b.Title == "" {
		return models.Book{}, ErrTitleRequired
	}
	if b.Author == "" {
		return models.Book{}, ErrAuthorRequired
	}
	if b.Status != models.BookUnpublished {
		b.Status = models.BookPublished
	}
	if b.Price < 0 || math.IsNaN(b.Price) {
		b.Price = 0
	}

	b.ID = primitive.NewObjectID()
	b.OwnerEmail = normalize.Email(ownerEmail)
	b.Cover = strings.TrimSpace(b.Cover)
	b.Description = htmlsanitize.Sanitize(b.Description)
	b.PublicationDate = strings.TrimSpace(b.PublicationDate)
	b.CreatedAt = time.Now().UTC()
	b.UpdatedAt = nil

	if _, err := s.c.InsertOne(ctx, b); err != nil {
		return models.Book{}, err
	}
	return b, nil
}

func (s *Store) find(ctx context.Context, filter bson.M) ([]models.Book, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(ListLimit)
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]models.Book, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListPublished returns published books, newest first. A non-empty query
// narrows the list to titles or authors containing it.
func (s *Store) ListPublished(ctx context.Context, query string) ([]models.Book, error) {
	filter := bson.M{"status": models.BookPublished}
	if f := search.AnyField(query, "title", "author"); f != nil {
		filter["$or"] = f["$or"]
	}
	return s.find(ctx, filter)
}

// ListAll returns every book regardless of status.
func (s *Store) ListAll(ctx context.Context) ([]models.Book, error) {
	return s.find(ctx, bson.M{})
}

// ListByOwner returns the books created by ownerEmail, newest first.
func (s *Store) ListByOwner(ctx context.Context, ownerEmail string) ([]models.Book, error) {
	return s.find(ctx, bson.M{"ownerEmail": normalize.Email(ownerEmail)})
}

// GetByID loads a book. Returns ErrNotFound if absent.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Book, error) {
	var b models.Book
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&b)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// SetStatus publishes or unpublishes a book.
func (s *Store) SetStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	status = normalize.Status(status)
	if status != models.BookPublished && status != models.BookUnpublished {
		return ErrBadStatus
	}
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Update holds the owner-editable fields. Nil fields are left unchanged.
type Update struct {
	Title           *string
	Author          *string
	Price           *float64
	Cover           *string
	Description     *string
	PublicationDate *string
}

func (u Update) setDoc() (bson.M, error) {
	set := bson.M{}
	if u.Title != nil {
		t := strings.TrimSpace(*u.Title)
		if t == "" {
			return nil, ErrTitleRequired
		}
		set["title"] = t
	}
	if u.Author != nil {
		a := strings.TrimSpace(*u.Author)
		if a == "" {
			return nil, ErrAuthorRequired
		}
		set["author"] = a
	}
	if u.Price != nil {
		set["price"] = CoercePrice(*u.Price)
	}
	if u.Cover != nil {
		set["cover"] = strings.TrimSpace(*u.Cover)
	}
	if u.Description != nil {
		set["description"] = htmlsanitize.Sanitize(*u.Description)
	}
	if u.PublicationDate != nil {
		set["publicationDate"] = strings.TrimSpace(*u.PublicationDate)
	}
	return set, nil
}

// Update applies upd to the book only when callerEmail owns it. A missing
// book and a book owned by someone else both return ErrForbidden.
// ownerEmail and status are never written here.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, upd Update, callerEmail string) error {
	set, err := upd.setDoc()
	if err != nil {
		return err
	}
	set["updatedAt"] = time.Now().UTC()

	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "ownerEmail": normalize.Email(callerEmail)},
		bson.M{"$set": set},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrForbidden
	}
	return nil
}

// Delete removes one book and reports how many documents were deleted.
// Orders referencing it are removed by the caller in the same transaction.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
