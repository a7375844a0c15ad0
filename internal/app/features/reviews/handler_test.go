package reviews_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/bookcourier/internal/app/features/reviews"
	"github.com/dalemusser/bookcourier/internal/domain/models"
	"github.com/dalemusser/bookcourier/internal/testutil"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const (
	buyerEmail = "buyer@example.com"
	libEmail   = "lib@example.com"
)

type testEnv struct {
	fixtures *testutil.Fixtures
	router   chi.Router
	book     models.Book
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fixtures.CreateUser(ctx, buyerEmail, models.RoleUser)
	book := fixtures.CreateBook(ctx, libEmail, "Dune", models.BookPublished)

	r := chi.NewRouter()
	r.Mount("/reviews", reviews.Routes(reviews.NewHandler(db, zap.NewNop()), testutil.NewGate(db)))
	return &testEnv{fixtures: fixtures, router: r, book: book}
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func TestCreate_RequiresPaidOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	body := map[string]any{"bookId": env.book.ID.Hex(), "rating": 4, "review": "Great"}

	rec := env.do(testutil.JSONRequest(t, "POST", "/reviews", body))
	testutil.AssertStatus(t, rec, http.StatusUnauthorized)

	rec = env.do(testutil.BearerRequest(t, "POST", "/reviews", buyerEmail, body))
	testutil.AssertStatus(t, rec, http.StatusForbidden)

	// A pending order is not enough.
	env.fixtures.CreateOrder(ctx, env.book, buyerEmail, models.OrderPending)
	rec = env.do(testutil.BearerRequest(t, "POST", "/reviews", buyerEmail, body))
	testutil.AssertStatus(t, rec, http.StatusForbidden)

	env.fixtures.CreateOrder(ctx, env.book, buyerEmail, models.OrderPaid)
	rec = env.do(testutil.BearerRequest(t, "POST", "/reviews", buyerEmail, body))
	testutil.AssertStatus(t, rec, http.StatusCreated)

	var rv models.Review
	testutil.DecodeJSON(t, rec, &rv)
	if rv.UserEmail != buyerEmail || rv.Rating != 4 {
		t.Errorf("unexpected review %+v", rv)
	}
}

func TestCreate_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	env.fixtures.CreateOrder(ctx, env.book, buyerEmail, models.OrderPaid)

	for _, rating := range []int{0, 6} {
		rec := env.do(testutil.BearerRequest(t, "POST", "/reviews", buyerEmail,
			map[string]any{"bookId": env.book.ID.Hex(), "rating": rating}))
		testutil.AssertStatus(t, rec, http.StatusBadRequest)
	}

	rec := env.do(testutil.BearerRequest(t, "POST", "/reviews", buyerEmail,
		map[string]any{"rating": 3}))
	testutil.AssertStatus(t, rec, http.StatusBadRequest)
}

func TestListByBook(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	env.fixtures.CreateOrder(ctx, env.book, buyerEmail, models.OrderPaid)

	for _, text := range []string{"first", "<b>second</b>"} {
		rec := env.do(testutil.BearerRequest(t, "POST", "/reviews", buyerEmail,
			map[string]any{"bookId": env.book.ID.Hex(), "rating": 5, "review": text}))
		testutil.AssertStatus(t, rec, http.StatusCreated)
	}

	rec := env.do(httptest.NewRequest("GET", "/reviews/"+env.book.ID.Hex(), nil))
	testutil.AssertStatus(t, rec, http.StatusOK)
	var list []models.Review
	testutil.DecodeJSON(t, rec, &list)
	if len(list) != 2 {
		t.Fatalf("expected 2 reviews, got %d", len(list))
	}
	if list[0].Review != "second" {
		t.Errorf("expected newest sanitized review first, got %q", list[0].Review)
	}
}

func TestCreate_UpperCaseBookIDListsUnderCanonicalID(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	env.fixtures.CreateOrder(ctx, env.book, buyerEmail, models.OrderPaid)

	upper := strings.ToUpper(env.book.ID.Hex())
	rec := env.do(testutil.BearerRequest(t, "POST", "/reviews", buyerEmail,
		map[string]any{"bookId": upper, "rating": 4}))
	testutil.AssertStatus(t, rec, http.StatusCreated)

	var rv models.Review
	testutil.DecodeJSON(t, rec, &rv)
	if rv.BookID != env.book.ID.Hex() {
		t.Errorf("expected stored bookId %q, got %q", env.book.ID.Hex(), rv.BookID)
	}

	for _, id := range []string{env.book.ID.Hex(), upper} {
		rec = env.do(httptest.NewRequest("GET", "/reviews/"+id, nil))
		testutil.AssertStatus(t, rec, http.StatusOK)
		var list []models.Review
		testutil.DecodeJSON(t, rec, &list)
		if len(list) != 1 {
			t.Errorf("GET /reviews/%s: expected 1 review, got %d", id, len(list))
		}
	}
}
