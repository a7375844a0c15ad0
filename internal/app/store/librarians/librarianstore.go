// internal/app/store/librarians/librarianstore.go
package librarianstore

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

// ListLimit caps the application listing.
const ListLimit = 500

var (
	ErrNotFound       = errors.New("application not found")
	ErrEmailRequired  = errors.New("email is required")
	ErrAlreadyPending = errors.New("an application for this email is already pending")
	ErrBadStatus      = errors.New(`status must be "pending"|"approved"|"rejected"`)
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("librarian_applications")}
}

// Apply records a pending application. Only one pending application per
// email is allowed at a time.
func (s *Store) Apply(ctx context.Context, a models.LibrarianApplication) (models.LibrarianApplication, error) {
	a.Email = normalize.Email(a.Email)
	if a.Email == "" {
		return models.LibrarianApplication{}, ErrEmailRequired
	}

	n, err := s.c.CountDocuments(ctx,
		bson.M{"email": a.Email, "status": models.ApplicationPending},
		options.Count().SetLimit(1))
	if err != nil {
		return models.LibrarianApplication{}, err
	}
	if n > 0 {
		return models.LibrarianApplication{}, ErrAlreadyPending
	}

	a.ID = primitive.NewObjectID()
	a.Name = normalize.Name(a.Name)
	a.ShopName = strings.TrimSpace(a.ShopName)
	a.Phone = strings.TrimSpace(a.Phone)
	a.Address = strings.TrimSpace(a.Address)
	a.Message = htmlsanitize.StripTags(a.Message)
	a.Status = models.ApplicationPending
	a.CreatedAt = time.Now().UTC()
	a.UpdatedAt = nil

	if _, err := s.c.InsertOne(ctx, a); err != nil {
		return models.LibrarianApplication{}, err
	}
	return a, nil
}

// List returns applications newest first. An empty status lists all of them.
func (s *Store) List(ctx context.Context, status string) ([]models.LibrarianApplication, error) {
	filter := bson.M{}
	if status = normalize.Status(status); status != "" {
		if !models.IsValidApplicationStatus(status) {
			return nil, ErrBadStatus
		}
		filter["status"] = status
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(ListLimit)
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]models.LibrarianApplication, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID loads one application. Returns ErrNotFound if absent.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.LibrarianApplication, error) {
	var a models.LibrarianApplication
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// SetStatus moves an application to status and returns the updated record.
func (s *Store) SetStatus(ctx context.Context, id primitive.ObjectID, status string) (*models.LibrarianApplication, error) {
	status = normalize.Status(status)
	if !models.IsValidApplicationStatus(status) {
		return nil, ErrBadStatus
	}

	var a models.LibrarianApplication
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}
