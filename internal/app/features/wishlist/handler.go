package wishlist

import (
	"context"
	"errors"
	"net/http"
	"strings"

	bookstore "github.com/dalemusser/bookcourier/internal/app/store/books"
	wishliststore "github.com/dalemusser/bookcourier/internal/app/store/wishlist"
	"github.com/dalemusser/bookcourier/internal/app/system/auth"
	"github.com/dalemusser/bookcourier/internal/app/system/httperr"
	"github.com/dalemusser/bookcourier/internal/app/system/jsonio"
	"github.com/dalemusser/bookcourier/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Items *wishliststore.Store
	Books *bookstore.Store
	Log   *zap.Logger
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		Items: wishliststore.New(db),
		Books: bookstore.New(db),
		Log:   logger,
	}
}

func storeErr(err error, msg string) error {
	switch {
	case errors.Is(err, wishliststore.ErrNotFound):
		return httperr.New(httperr.NotFound, "Book not in wishlist")
	case errors.Is(err, wishliststore.ErrExists),
		errors.Is(err, wishliststore.ErrBookIDRequired):
		return httperr.New(httperr.InvalidArgument, err.Error())
	}
	return httperr.Wrap(httperr.Upstream, msg, err)
}

type addRequest struct {
	BookID string `json:"bookId" validate:"required"`
}

// Add handles POST /wishlist.
func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	var req addRequest
	if err := jsonio.Decode(r, &req); err != nil {
		httperr.Write(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(req.BookID))
	if err != nil {
		httperr.Respond(w, h.Log, httperr.NotFound, "Book not found")
		return
	}
	if _, err := h.Books.GetByID(ctx, oid); err != nil {
		if errors.Is(err, bookstore.ErrNotFound) {
			httperr.Respond(w, h.Log, httperr.NotFound, "Book not found")
			return
		}
		httperr.Write(w, h.Log, httperr.Wrap(httperr.Upstream, "Failed to load book", err))
		return
	}

	item, err := h.Items.Add(ctx, auth.CurrentEmail(r), oid.Hex())
	if err != nil {
		httperr.Write(w, h.Log, storeErr(err, "Failed to add to wishlist"))
		return
	}
	jsonio.Write(w, http.StatusCreated, item)
}

// List handles GET /wishlist.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	items, err := h.Items.ListWithBooks(ctx, auth.CurrentEmail(r))
	if err != nil {
		httperr.Write(w, h.Log, storeErr(err, "Failed to fetch wishlist"))
		return
	}
	jsonio.Write(w, http.StatusOK, items)
}

// Remove handles DELETE /wishlist/{bookId}.
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Items.Remove(ctx, auth.CurrentEmail(r), chi.URLParam(r, "bookId")); err != nil {
		httperr.Write(w, h.Log, storeErr(err, "Failed to remove from wishlist"))
		return
	}
	jsonio.Write(w, http.StatusOK, map[string]string{"message": "Removed from wishlist"})
}
