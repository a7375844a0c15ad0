package reviews

import (
	"context"
	"errors"
	"net/http"
	"strings"

	orderstore "github.com/dalemusser/bookcourier/internal/app/store/orders"
	reviewstore "github.com/dalemusser/bookcourier/internal/app/store/reviews"
	"github.com/dalemusser/bookcourier/internal/app/system/auth"
	"github.com/dalemusser/bookcourier/internal/app/system/httperr"
	"github.com/dalemusser/bookcourier/internal/app/system/jsonio"
	"github.com/dalemusser/bookcourier/internal/app/system/timeouts"
	"github.com/dalemusser/bookcourier/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Reviews *reviewstore.Store
	Orders  *orderstore.Store
	Log     *zap.Logger
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		Reviews: reviewstore.New(db),
		Orders:  orderstore.New(db),
		Log:     logger,
	}
}

type createRequest struct {
	BookID string `json:"bookId" validate:"required"`
	Rating int    `json:"rating" validate:"min=1,max=5"`
	Review string `json:"review" validate:"max=5000"`
}

// Create handles POST /reviews. Only a buyer with a paid order for the book
// may review it.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := jsonio.Decode(r, &req); err != nil {
		httperr.Write(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	id, _ := auth.CurrentIdentity(r)

	bought := false
	bookOID, err := primitive.ObjectIDFromHex(strings.TrimSpace(req.BookID))
	if err == nil {
		bought, err = h.Orders.HasPaidOrder(ctx, bookOID, id.Email)
		if err != nil {
			httperr.Write(w, h.Log, httperr.Wrap(httperr.Upstream, "Failed to check purchase", err))
			return
		}
	}
	if !bought {
		httperr.Respond(w, h.Log, httperr.Forbidden, "Only buyers with a paid order can review this book")
		return
	}

	rv, err := h.Reviews.Create(ctx, models.Review{
		BookID:    bookOID.Hex(),
		UserEmail: id.Email,
		UserName:  id.Name,
		Rating:    req.Rating,
		Review:    req.Review,
	})
	if err != nil {
		if errors.Is(err, reviewstore.ErrBadRating) || errors.Is(err, reviewstore.ErrBookIDRequired) {
			httperr.Respond(w, h.Log, httperr.InvalidArgument, err.Error())
			return
		}
		httperr.Write(w, h.Log, httperr.Wrap(httperr.Upstream, "Failed to save review", err))
		return
	}
	jsonio.Write(w, http.StatusCreated, rv)
}

// ListByBook handles GET /reviews/{bookId}.
func (h *Handler) ListByBook(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Reviews.ListByBook(ctx, chi.URLParam(r, "bookId"))
	if err != nil {
		httperr.Write(w, h.Log, httperr.Wrap(httperr.Upstream, "Failed to fetch reviews", err))
		return
	}
	jsonio.Write(w, http.StatusOK, list)
}
