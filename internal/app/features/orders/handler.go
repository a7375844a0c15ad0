package orders

import (
	"context"
	"errors"
	"net/http"

	orderstore "github.com/dalemusser/bookcourier/internal/app/store/orders"
	"github.com/dalemusser/bookcourier/internal/app/system/auth"
	"github.com/dalemusser/bookcourier/internal/app/system/httperr"
	"github.com/dalemusser/bookcourier/internal/app/system/jsonio"
	"github.com/dalemusser/bookcourier/internal/app/system/normalize"
	"github.com/dalemusser/bookcourier/internal/app/system/timeouts"
	"github.com/dalemusser/bookcourier/internal/app/system/txn"
	"github.com/dalemusser/bookcourier/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the order endpoints.
type Handler struct {
	DB     *mongo.Database
	Orders *orderstore.Store
	Log    *zap.Logger
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		DB:     db,
		Orders: orderstore.New(db),
		Log:    logger,
	}
}

func orderID(r *http.Request) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		return primitive.NilObjectID, httperr.New(httperr.NotFound, "Order not found")
	}
	return id, nil
}

func storeErr(err error, msg string) error {
	switch {
	case errors.Is(err, orderstore.ErrNotFound):
		return httperr.New(httperr.NotFound, "Order not found")
	case errors.Is(err, orderstore.ErrBookNotFound):
		return httperr.New(httperr.NotFound, "Book not found")
	case errors.Is(err, orderstore.ErrNotPending):
		return httperr.New(httperr.InvalidArgument, "Only pending orders can be cancelled")
	case errors.Is(err, orderstore.ErrPaidLocked):
		return httperr.New(httperr.InvalidArgument, "Paid orders cannot change status")
	case errors.Is(err, orderstore.ErrBookIDRequired),
		errors.Is(err, orderstore.ErrUserEmailRequired),
		errors.Is(err, orderstore.ErrBadStatus):
		return httperr.New(httperr.InvalidArgument, err.Error())
	}
	return httperr.Wrap(httperr.Upstream, msg, err)
}

type createRequest struct {
	BookID    string `json:"bookId" validate:"required"`
	UserEmail string `json:"userEmail" validate:"required,email"`
	UserName  string `json:"userName"`
	Phone     string `json:"phone" validate:"max=40"`
	Address   string `json:"address" validate:"max=500"`
}

// Create handles POST /orders. Title and price always come from the book.
// The book read and the order insert share a transaction so a book deleted
// in between cannot leave an orphan order.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := jsonio.Decode(r, &req); err != nil {
		httperr.Write(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	in := models.Order{
		BookID:    req.BookID,
		UserEmail: req.UserEmail,
		UserName:  req.UserName,
		Phone:     req.Phone,
		Address:   req.Address,
	}

	var created models.Order
	if err := txn.Run(ctx, h.DB.Client(), h.Log, func(ctx context.Context) error {
		var err error
		created, err = h.Orders.Create(ctx, in)
		return err
	}); err != nil {
		httperr.Write(w, h.Log, storeErr(err, "Failed to create order"))
		return
	}

	jsonio.Write(w, http.StatusCreated, created)
}

// ListForBuyer handles GET /orders?email=.
func (h *Handler) ListForBuyer(w http.ResponseWriter, r *http.Request) {
	email := normalize.Email(r.URL.Query().Get("email"))
	if email == "" {
		httperr.Respond(w, h.Log, httperr.InvalidArgument, "email query parameter is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	orders, err := h.Orders.ListByBuyer(ctx, email)
	if err != nil {
		httperr.Write(w, h.Log, storeErr(err, "Failed to fetch orders"))
		return
	}
	jsonio.Write(w, http.StatusOK, orders)
}

// ListForLibrarian handles GET /librarian/orders for the calling librarian.
func (h *Handler) ListForLibrarian(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	orders, err := h.Orders.ListByLibrarian(ctx, auth.CurrentEmail(r))
	if err != nil {
		httperr.Write(w, h.Log, storeErr(err, "Failed to fetch orders"))
		return
	}
	jsonio.Write(w, http.StatusOK, orders)
}

// Get handles GET /orders/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := orderID(r)
	if err != nil {
		httperr.Write(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	o, err := h.Orders.GetByID(ctx, id)
	if err != nil {
		httperr.Write(w, h.Log, storeErr(err, "Failed to fetch order"))
		return
	}
	jsonio.Write(w, http.StatusOK, o)
}

// Cancel handles DELETE /orders/{id}. Cancelling deletes the pending order.
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := orderID(r)
	if err != nil {
		httperr.Write(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Orders.Cancel(ctx, id); err != nil {
		httperr.Write(w, h.Log, storeErr(err, "Failed to cancel order"))
		return
	}
	jsonio.Write(w, http.StatusOK, map[string]any{"message": "Order cancelled", "deletedCount": 1})
}

type statusRequest struct {
	Status string `json:"status" validate:"required"`
}

// UpdateStatus handles PATCH /orders/{id}/status for the order's librarian.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := orderID(r)
	if err != nil {
		httperr.Write(w, h.Log, err)
		return
	}
	var req statusRequest
	if err := jsonio.Decode(r, &req); err != nil {
		httperr.Write(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	status := normalize.Status(req.Status)
	if err := h.Orders.UpdateStatus(ctx, id, status, auth.CurrentEmail(r)); err != nil {
		httperr.Write(w, h.Log, storeErr(err, "Failed to update order status"))
		return
	}
	jsonio.Write(w, http.StatusOK, map[string]string{"message": "Order status updated", "status": status})
}
