package librarianstore_test

import (
	"errors"
	"strings"
	"testing"

	librarianstore "github.com/dalemusser/bookcourier/internal/app/store/librarians"
	"github.com/dalemusser/bookcourier/internal/domain/models"
	"github.com/dalemusser/bookcourier/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Apply(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := librarianstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a, err := store.Apply(ctx, models.LibrarianApplication{
		Email:    " Seller@Example.com ",
		Name:     "Sam",
		ShopName: "Corner Books",
		Status:   models.ApplicationApproved,
		Message:  "<b>Hi</b> there",
	})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if a.Email != "seller@example.com" {
		t.Errorf("expected normalized email, got %q", a.Email)
	}
	if a.Status != models.ApplicationPending {
		t.Errorf("expected pending regardless of input, got %q", a.Status)
	}
	if strings.Contains(a.Message, "<b>") {
		t.Errorf("expected tags stripped from message, got %q", a.Message)
	}
	if a.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
}

func TestStore_Apply_Validation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := librarianstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Apply(ctx, models.LibrarianApplication{}); !errors.Is(err, librarianstore.ErrEmailRequired) {
		t.Errorf("expected ErrEmailRequired, got %v", err)
	}

	if _, err := store.Apply(ctx, models.LibrarianApplication{Email: "s@example.com"}); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if _, err := store.Apply(ctx, models.LibrarianApplication{Email: "S@example.com"}); !errors.Is(err, librarianstore.ErrAlreadyPending) {
		t.Errorf("expected ErrAlreadyPending, got %v", err)
	}
}

func TestStore_List(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := librarianstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a := fixtures.CreateApplication(ctx, "a@example.com")
	fixtures.CreateApplication(ctx, "b@example.com")
	if _, err := store.SetStatus(ctx, a.ID, models.ApplicationRejected); err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}

	all, err := store.List(ctx, "")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 applications, got %d", len(all))
	}

	pending, err := store.List(ctx, "Pending")
	if err != nil {
		t.Fatalf("List pending failed: %v", err)
	}
	if len(pending) != 1 || pending[0].Email != "b@example.com" {
		t.Errorf("expected only b@example.com pending, got %v", pending)
	}

	if _, err := store.List(ctx, "archived"); !errors.Is(err, librarianstore.ErrBadStatus) {
		t.Errorf("expected ErrBadStatus, got %v", err)
	}
}

func TestStore_SetStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := librarianstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a := fixtures.CreateApplication(ctx, "a@example.com")

	got, err := store.SetStatus(ctx, a.ID, models.ApplicationApproved)
	if err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}
	if got.Status != models.ApplicationApproved {
		t.Errorf("expected approved, got %q", got.Status)
	}
	if got.UpdatedAt == nil {
		t.Error("expected UpdatedAt to be stamped")
	}

	if _, err := store.SetStatus(ctx, a.ID, "maybe"); !errors.Is(err, librarianstore.ErrBadStatus) {
		t.Errorf("expected ErrBadStatus, got %v", err)
	}
	if _, err := store.SetStatus(ctx, primitive.NewObjectID(), models.ApplicationApproved); !errors.Is(err, librarianstore.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	fetched, err := store.GetByID(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if fetched.Status != models.ApplicationApproved {
		t.Errorf("expected stored status approved, got %q", fetched.Status)
	}
}
