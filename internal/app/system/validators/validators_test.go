package validators_test

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/bookcourier/internal/app/system/validators"
	"github.com/dalemusser/bookcourier/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func setup(t *testing.T) (*mongo.Database, context.Context) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	t.Cleanup(cancel)
	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	return db, ctx
}

func TestEnsureAll_Idempotent(t *testing.T) {
	db, ctx := setup(t)

	// Second call should also succeed
	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("Second EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_CreatesCollections(t *testing.T) {
	db, ctx := setup(t)

	expectedCollections := []string{
		"users",
		"books",
		"orders",
		"librarian_applications",
		"reviews",
		"wishlist",
		"audit_events",
	}

	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		t.Fatalf("ListCollectionNames failed: %v", err)
	}

	collMap := make(map[string]bool)
	for _, name := range names {
		collMap[name] = true
	}

	for _, expected := range expectedCollections {
		if !collMap[expected] {
			t.Errorf("expected collection %q to exist", expected)
		}
	}
}

func TestValidators(t *testing.T) {
	db, ctx := setup(t)
	now := time.Now().UTC()

	tests := []struct {
		name    string
		coll    string
		doc     bson.M
		wantErr bool
	}{
		{"valid user", "users", bson.M{"email": "a@example.com", "role": "user", "createdAt": now}, false},
		{"user without email", "users", bson.M{"role": "user"}, true},
		{"user with unknown role", "users", bson.M{"email": "b@example.com", "role": "superadmin"}, true},

		{"valid book", "books", bson.M{"title": "Dune", "author": "Herbert", "price": 12.5, "status": "published", "ownerEmail": "lib@example.com"}, false},
		{"book with blank title", "books", bson.M{"title": "  ", "author": "Herbert", "price": 1.0, "status": "published", "ownerEmail": "lib@example.com"}, true},
		{"book with negative price", "books", bson.M{"title": "Dune", "author": "Herbert", "price": -1.0, "status": "published", "ownerEmail": "lib@example.com"}, true},
		{"book with unknown status", "books", bson.M{"title": "Dune", "author": "Herbert", "price": 1.0, "status": "draft", "ownerEmail": "lib@example.com"}, true},

		{"valid order", "orders", bson.M{"bookId": primitive.NewObjectID().Hex(), "userEmail": "r@example.com", "status": "pending", "paymentStatus": "unpaid"}, false},
		{"order with legacy object id", "orders", bson.M{"bookId": primitive.NewObjectID(), "userEmail": "r@example.com", "status": "paid", "paymentStatus": "paid"}, false},
		{"order with unknown status", "orders", bson.M{"bookId": "x", "userEmail": "r@example.com", "status": "shipped", "paymentStatus": "unpaid"}, true},

		{"valid application", "librarian_applications", bson.M{"email": "a@example.com", "status": "pending"}, false},
		{"application with unknown status", "librarian_applications", bson.M{"email": "a@example.com", "status": "maybe"}, true},

		{"valid review", "reviews", bson.M{"bookId": "b1", "userEmail": "r@example.com", "rating": int32(5)}, false},
		{"review rating out of range", "reviews", bson.M{"bookId": "b1", "userEmail": "r@example.com", "rating": int32(6)}, true},

		{"valid wishlist item", "wishlist", bson.M{"userEmail": "r@example.com", "bookId": "b1"}, false},
		{"wishlist item without book", "wishlist", bson.M{"userEmail": "r@example.com"}, true},

		{"audit events have no validator", "audit_events", bson.M{"anything": true}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := db.Collection(tt.coll).InsertOne(ctx, tt.doc)
			if tt.wantErr && err == nil {
				t.Error("expected validation error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
