package books_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/bookcourier/internal/app/features/books"
	"github.com/dalemusser/bookcourier/internal/app/store/audit"
	bookstore "github.com/dalemusser/bookcourier/internal/app/store/books"
	"github.com/dalemusser/bookcourier/internal/app/system/auditlog"
	"github.com/dalemusser/bookcourier/internal/domain/models"
	"github.com/dalemusser/bookcourier/internal/testutil"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const (
	adminEmail     = "admin@example.com"
	librarianEmail = "lib@example.com"
	otherLibrarian = "lib2@example.com"
	readerEmail    = "reader@example.com"
)

type testEnv struct {
	db       *mongo.Database
	fixtures *testutil.Fixtures
	router   chi.Router
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateUser(ctx, adminEmail, models.RoleAdmin)
	fixtures.CreateUser(ctx, librarianEmail, models.RoleLibrarian)
	fixtures.CreateUser(ctx, otherLibrarian, models.RoleLibrarian)
	fixtures.CreateUser(ctx, readerEmail, models.RoleUser)

	logger := zap.NewNop()
	h := books.NewHandler(db, auditlog.New(audit.New(db), logger, auditlog.Config{}), logger)
	gate := testutil.NewGate(db)

	r := chi.NewRouter()
	r.Mount("/books", books.Routes(h, gate))
	r.Mount("/admin/books", books.AdminRoutes(h, gate))
	r.Mount("/librarian/books", books.LibrarianRoutes(h, gate))

	return &testEnv{db: db, fixtures: fixtures, router: r}
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func TestCreate_AsLibrarian(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(testutil.BearerRequest(t, "POST", "/books", librarianEmail,
		map[string]any{"title": "Dune", "author": "Herbert", "price": 12.5}))
	testutil.AssertStatus(t, rec, http.StatusCreated)

	var resp struct {
		ID string `json:"id"`
	}
	testutil.DecodeJSON(t, rec, &resp)
	oid, err := primitive.ObjectIDFromHex(resp.ID)
	if err != nil {
		t.Fatalf("expected hex id, got %q", resp.ID)
	}

	ctx, cancel := testutil.TestContext()
	defer cancel()
	got, err := bookstore.New(env.db).GetByID(ctx, oid)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Status != models.BookPublished {
		t.Errorf("expected published, got %q", got.Status)
	}
	if got.Price != 12.5 {
		t.Errorf("expected price 12.5, got %v", got.Price)
	}
	if got.OwnerEmail != librarianEmail {
		t.Errorf("expected owner %q, got %q", librarianEmail, got.OwnerEmail)
	}

	// Now visible in the public list.
	rec = env.do(httptest.NewRequest("GET", "/books", nil))
	testutil.AssertStatus(t, rec, http.StatusOK)
	var list []models.Book
	testutil.DecodeJSON(t, rec, &list)
	if len(list) != 1 || list[0].Title != "Dune" {
		t.Errorf("expected Dune in public list, got %v", list)
	}
}

func TestCreate_StringPriceCoerced(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(testutil.BearerRequest(t, "POST", "/books", librarianEmail,
		map[string]any{"title": "Emma", "author": "Austen", "price": "-3"}))
	testutil.AssertStatus(t, rec, http.StatusCreated)

	ctx, cancel := testutil.TestContext()
	defer cancel()
	var b models.Book
	if err := env.db.Collection("books").FindOne(ctx, bson.M{"title": "Emma"}).Decode(&b); err != nil {
		t.Fatalf("find: %v", err)
	}
	if b.Price != 0 {
		t.Errorf("expected negative price to collapse to 0, got %v", b.Price)
	}
}

func TestCreate_MissingTitleWritesNothing(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(testutil.BearerRequest(t, "POST", "/books", librarianEmail,
		map[string]any{"author": "Herbert"}))
	testutil.AssertStatus(t, rec, http.StatusBadRequest)
	testutil.AssertMessage(t, rec, "title is required")

	ctx, cancel := testutil.TestContext()
	defer cancel()
	n, _ := env.db.Collection("books").CountDocuments(ctx, bson.M{})
	if n != 0 {
		t.Errorf("expected no books written, got %d", n)
	}
}

func TestCreate_AuthAndRole(t *testing.T) {
	env := newTestEnv(t)
	body := map[string]any{"title": "Dune", "author": "Herbert"}

	rec := env.do(testutil.JSONRequest(t, "POST", "/books", body))
	testutil.AssertStatus(t, rec, http.StatusUnauthorized)
	testutil.AssertMessage(t, rec, "Unauthorized access")

	rec = env.do(testutil.BearerRequest(t, "POST", "/books", "garbage", body))
	testutil.AssertStatus(t, rec, http.StatusUnauthorized)

	rec = env.do(testutil.BearerRequest(t, "POST", "/books", readerEmail, body))
	testutil.AssertStatus(t, rec, http.StatusForbidden)
	testutil.AssertMessage(t, rec, "Forbidden access")

	rec = env.do(testutil.BearerRequest(t, "POST", "/books", "stranger@example.com", body))
	testutil.AssertStatus(t, rec, http.StatusForbidden)
}

func TestAdminList_RequiresAdmin(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	env.fixtures.CreateBook(ctx, librarianEmail, "Visible", models.BookPublished)
	env.fixtures.CreateBook(ctx, librarianEmail, "Hidden", models.BookUnpublished)

	rec := env.do(testutil.BearerRequest(t, "GET", "/admin/books", librarianEmail, nil))
	testutil.AssertStatus(t, rec, http.StatusForbidden)

	rec = env.do(testutil.BearerRequest(t, "GET", "/admin/books", adminEmail, nil))
	testutil.AssertStatus(t, rec, http.StatusOK)
	var list []models.Book
	testutil.DecodeJSON(t, rec, &list)
	if len(list) != 2 {
		t.Errorf("expected 2 books for admin, got %d", len(list))
	}

	rec = env.do(httptest.NewRequest("GET", "/books", nil))
	testutil.DecodeJSON(t, rec, &list)
	if len(list) != 1 {
		t.Errorf("expected 1 published book, got %d", len(list))
	}
}

func TestListMine(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	env.fixtures.CreateBook(ctx, librarianEmail, "Mine", models.BookUnpublished)
	env.fixtures.CreateBook(ctx, otherLibrarian, "Theirs", models.BookPublished)

	rec := env.do(testutil.BearerRequest(t, "GET", "/librarian/books", librarianEmail, nil))
	testutil.AssertStatus(t, rec, http.StatusOK)
	var list []models.Book
	testutil.DecodeJSON(t, rec, &list)
	if len(list) != 1 || list[0].Title != "Mine" {
		t.Errorf("expected only own book, got %v", list)
	}
}

func TestGet(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	b := env.fixtures.CreateBook(ctx, librarianEmail, "Dune", models.BookPublished)

	rec := env.do(httptest.NewRequest("GET", "/books/"+b.ID.Hex(), nil))
	testutil.AssertStatus(t, rec, http.StatusOK)

	rec = env.do(httptest.NewRequest("GET", "/books/"+primitive.NewObjectID().Hex(), nil))
	testutil.AssertStatus(t, rec, http.StatusNotFound)

	rec = env.do(httptest.NewRequest("GET", "/books/not-an-id", nil))
	testutil.AssertStatus(t, rec, http.StatusNotFound)
	testutil.AssertMessage(t, rec, "Book not found")
}

func TestUpdate_NonOwnerForbidden(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	b := env.fixtures.CreateBook(ctx, librarianEmail, "Dune", models.BookPublished)

	rec := env.do(testutil.BearerRequest(t, "PATCH", "/books/"+b.ID.Hex(), otherLibrarian,
		map[string]any{"title": "Hijacked"}))
	testutil.AssertStatus(t, rec, http.StatusForbidden)

	got, _ := bookstore.New(env.db).GetByID(ctx, b.ID)
	if got.Title != "Dune" {
		t.Errorf("expected book unchanged, got title %q", got.Title)
	}
	if got.UpdatedAt != nil {
		t.Error("expected updatedAt to stay unset")
	}
}

func TestUpdate_OwnerUpdatesSuppliedFields(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	b := env.fixtures.CreateBook(ctx, librarianEmail, "Dune", models.BookPublished)

	rec := env.do(testutil.BearerRequest(t, "PATCH", "/books/"+b.ID.Hex(), librarianEmail,
		map[string]any{"price": "19.99", "ownerEmail": "thief@example.com", "status": "unpublished"}))
	testutil.AssertStatus(t, rec, http.StatusOK)

	got, _ := bookstore.New(env.db).GetByID(ctx, b.ID)
	if got.Price != 19.99 {
		t.Errorf("expected price 19.99, got %v", got.Price)
	}
	if got.Title != "Dune" || got.Author != b.Author {
		t.Error("expected unsupplied fields untouched")
	}
	if got.OwnerEmail != librarianEmail {
		t.Errorf("expected owner unchanged, got %q", got.OwnerEmail)
	}
	if got.Status != models.BookPublished {
		t.Errorf("expected status unchanged, got %q", got.Status)
	}
	if got.UpdatedAt == nil {
		t.Error("expected updatedAt stamped")
	}
}

func TestSetStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	b := env.fixtures.CreateBook(ctx, librarianEmail, "Dune", models.BookPublished)
	path := "/books/status/" + b.ID.Hex()

	rec := env.do(testutil.BearerRequest(t, "PATCH", path, librarianEmail, map[string]any{"status": "unpublished"}))
	testutil.AssertStatus(t, rec, http.StatusForbidden)

	rec = env.do(testutil.BearerRequest(t, "PATCH", path, adminEmail, map[string]any{"status": "archived"}))
	testutil.AssertStatus(t, rec, http.StatusBadRequest)

	rec = env.do(testutil.BearerRequest(t, "PATCH", path, adminEmail, map[string]any{"status": "unpublished"}))
	testutil.AssertStatus(t, rec, http.StatusOK)

	got, _ := bookstore.New(env.db).GetByID(ctx, b.ID)
	if got.Status != models.BookUnpublished {
		t.Errorf("expected unpublished, got %q", got.Status)
	}

	events, err := audit.New(env.db).GetByTarget(ctx, b.ID.Hex(), 10)
	if err != nil {
		t.Fatalf("GetByTarget failed: %v", err)
	}
	if len(events) != 1 || events[0].EventType != audit.EventBookStatusChanged {
		t.Errorf("expected one book_status_changed event, got %v", events)
	}

	rec = env.do(testutil.BearerRequest(t, "PATCH", "/books/status/"+primitive.NewObjectID().Hex(), adminEmail,
		map[string]any{"status": "published"}))
	testutil.AssertStatus(t, rec, http.StatusNotFound)
}

func TestDelete_CascadesOrders(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	b := env.fixtures.CreateBook(ctx, librarianEmail, "Dune", models.BookPublished)
	other := env.fixtures.CreateBook(ctx, librarianEmail, "Emma", models.BookPublished)
	env.fixtures.CreateOrder(ctx, b, readerEmail, models.OrderPending)
	env.fixtures.CreateOrder(ctx, b, readerEmail, models.OrderPaid)
	env.fixtures.CreateOrder(ctx, other, readerEmail, models.OrderPending)
	if _, err := env.db.Collection("orders").InsertOne(ctx, bson.M{"bookId": b.ID, "userEmail": "legacy@example.com"}); err != nil {
		t.Fatalf("insert legacy order: %v", err)
	}

	rec := env.do(testutil.BearerRequest(t, "DELETE", "/books/"+b.ID.Hex(), librarianEmail, nil))
	testutil.AssertStatus(t, rec, http.StatusForbidden)

	rec = env.do(testutil.BearerRequest(t, "DELETE", "/books/"+b.ID.Hex(), adminEmail, nil))
	testutil.AssertStatus(t, rec, http.StatusOK)

	var resp struct {
		DeletedBook   int64 `json:"deletedBook"`
		DeletedOrders int64 `json:"deletedOrders"`
	}
	testutil.DecodeJSON(t, rec, &resp)
	if resp.DeletedBook != 1 || resp.DeletedOrders != 3 {
		t.Errorf("expected 1 book and 3 orders deleted, got %+v", resp)
	}

	n, _ := env.db.Collection("orders").CountDocuments(ctx, bson.M{})
	if n != 1 {
		t.Errorf("expected only the other book's order to remain, got %d", n)
	}
}

func TestDelete_NoOrdersLeavesOrdersUnchanged(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	b := env.fixtures.CreateBook(ctx, librarianEmail, "Dune", models.BookPublished)
	other := env.fixtures.CreateBook(ctx, librarianEmail, "Emma", models.BookPublished)
	env.fixtures.CreateOrder(ctx, other, readerEmail, models.OrderPending)

	rec := env.do(testutil.BearerRequest(t, "DELETE", "/books/"+b.ID.Hex(), adminEmail, nil))
	testutil.AssertStatus(t, rec, http.StatusOK)

	n, _ := env.db.Collection("orders").CountDocuments(ctx, bson.M{})
	if n != 1 {
		t.Errorf("expected orders untouched, got %d", n)
	}
}
