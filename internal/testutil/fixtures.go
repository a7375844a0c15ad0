package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/bookcourier/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser inserts a user with the given email and role.
func (f *Fixtures) CreateUser(ctx context.Context, email, role string) models.User {
	f.t.Helper()

	u := models.User{
		ID:        primitive.NewObjectID(),
		Email:     email,
		Name:      "Test " + role,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("failed to create user %s: %v", email, err)
	}
	return u
}

// CreateBook inserts a book owned by ownerEmail.
func (f *Fixtures) CreateBook(ctx context.Context, ownerEmail, title, status string) models.Book {
	f.t.Helper()

	b := models.Book{
		ID:         primitive.NewObjectID(),
		Title:      title,
		Author:     "Test Author",
		Price:      12.5,
		Status:     status,
		OwnerEmail: ownerEmail,
		CreatedAt:  time.Now().UTC(),
	}
	if _, err := f.db.Collection("books").InsertOne(ctx, b); err != nil {
		f.t.Fatalf("failed to create book %q: %v", title, err)
	}
	return b
}

// CreateOrder inserts an order for book placed by buyerEmail in the given status.
func (f *Fixtures) CreateOrder(ctx context.Context, book models.Book, buyerEmail, status string) models.Order {
	f.t.Helper()

	now := time.Now().UTC()
	o := models.Order{
		ID:             primitive.NewObjectID(),
		BookID:         book.ID.Hex(),
		BookTitle:      book.Title,
		Price:          book.Price,
		UserEmail:      buyerEmail,
		LibrarianEmail: book.OwnerEmail,
		Status:         status,
		PaymentStatus:  models.PaymentUnpaid,
		OrderDate:      now,
		CreatedAt:      now,
	}
	if status == models.OrderPaid {
		o.PaymentStatus = models.PaymentPaid
		o.TransactionID = "pi_fixture"
		o.TrackingID = "BC-FIXTURE"
		o.PaidAt = &now
	}
	if _, err := f.db.Collection("orders").InsertOne(ctx, o); err != nil {
		f.t.Fatalf("failed to create order: %v", err)
	}
	return o
}

// CreateApplication inserts a pending librarian application for email.
func (f *Fixtures) CreateApplication(ctx context.Context, email string) models.LibrarianApplication {
	f.t.Helper()

	a := models.LibrarianApplication{
		ID:        primitive.NewObjectID(),
		Email:     email,
		Name:      "Applicant",
		ShopName:  "Corner Books",
		Status:    models.ApplicationPending,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := f.db.Collection("librarian_applications").InsertOne(ctx, a); err != nil {
		f.t.Fatalf("failed to create application: %v", err)
	}
	return a
}
