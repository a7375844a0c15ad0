package books

import (
	"context"
	"errors"
	"net/http"

	bookstore "github.com/dalemusser/bookcourier/internal/app/store/books"
	orderstore "github.com/dalemusser/bookcourier/internal/app/store/orders"
	"github.com/dalemusser/bookcourier/internal/app/system/auditlog"
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

// Handler serves the catalog endpoints.
type Handler struct {
	DB       *mongo.Database
	Books    *bookstore.Store
	Orders   *orderstore.Store
	AuditLog *auditlog.Logger
	Log      *zap.Logger
}

func NewHandler(db *mongo.Database, auditLog *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Books:    bookstore.New(db),
		Orders:   orderstore.New(db),
		AuditLog: auditLog,
		Log:      logger,
	}
}

// bookID parses the {id} URL parameter. A malformed id is reported as not found.
func bookID(r *http.Request) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		return primitive.NilObjectID, httperr.New(httperr.NotFound, "Book not found")
	}
	return id, nil
}

// storeErr maps bookstore sentinels onto the HTTP taxonomy.
func storeErr(err error, msg string) error {
	switch {
	case errors.Is(err, bookstore.ErrNotFound):
		return httperr.New(httperr.NotFound, "Book not found")
	case errors.Is(err, bookstore.ErrForbidden):
		return httperr.New(httperr.Forbidden, "You are not allowed to edit this book")
	case errors.Is(err, bookstore.ErrTitleRequired),
		errors.Is(err, bookstore.ErrAuthorRequired),
		errors.Is(err, bookstore.ErrBadStatus):
		return httperr.New(httperr.InvalidArgument, err.Error())
	}
	return httperr.Wrap(httperr.Upstream, msg, err)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Public                                                                      |
*─────────────────────────────────────────────────────────────────────────────*/

// ListPublished handles GET /books.
func (h *Handler) ListPublished(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	books, err := h.Books.ListPublished(ctx, normalize.QueryParam(r.URL.Query().Get("search")))
	if err != nil {
		httperr.Write(w, h.Log, storeErr(err, "Failed to fetch books"))
		return
	}
	jsonio.Write(w, http.StatusOK, books)
}

// Get handles GET /books/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := bookID(r)
	if err != nil {
		httperr.Write(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	book, err := h.Books.GetByID(ctx, id)
	if err != nil {
		httperr.Write(w, h.Log, storeErr(err, "Failed to fetch book"))
		return
	}
	jsonio.Write(w, http.StatusOK, book)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Librarian                                                                   |
*─────────────────────────────────────────────────────────────────────────────*/

type createRequest struct {
	Title           string `json:"title"`
	Author          string `json:"author"`
	Price           any    `json:"price"`
	Cover           string `json:"cover" validate:"omitempty,url"`
	Status          string `json:"status"`
	Description     string `json:"description" validate:"max=10000"`
	PublicationDate string `json:"publicationDate"`
}

// Create handles POST /books. The caller becomes the owner.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := jsonio.Decode(r, &req); err != nil {
		httperr.Write(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	book, err := h.Books.Create(ctx, models.Book{
		Title:           req.Title,
		Author:          req.Author,
		Price:           bookstore.CoercePrice(req.Price),
		Cover:           req.Cover,
		Status:          normalize.Status(req.Status),
		Description:     req.Description,
		PublicationDate: req.PublicationDate,
	}, auth.CurrentEmail(r))
	if err != nil {
		httperr.Write(w, h.Log, storeErr(err, "Failed to create book"))
		return
	}
	jsonio.Write(w, http.StatusCreated, map[string]string{"id": book.ID.Hex()})
}

// ListMine handles GET /librarian/books.
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	books, err := h.Books.ListByOwner(ctx, auth.CurrentEmail(r))
	if err != nil {
		httperr.Write(w, h.Log, storeErr(err, "Failed to fetch books"))
		return
	}
	jsonio.Write(w, http.StatusOK, books)
}

type updateRequest struct {
	Title           *string `json:"title"`
	Author          *string `json:"author"`
	Price           any     `json:"price"`
	Cover           *string `json:"cover"`
	Description     *string `json:"description" validate:"omitempty,max=10000"`
	PublicationDate *string `json:"publicationDate"`
}

// Update handles PATCH /books/{id}. Only the owning librarian may edit.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := bookID(r)
	if err != nil {
		httperr.Write(w, h.Log, err)
		return
	}
	var req updateRequest
	if err := jsonio.Decode(r, &req); err != nil {
		httperr.Write(w, h.Log, err)
		return
	}

	upd := bookstore.Update{
		Title:           req.Title,
		Author:          req.Author,
		Cover:           req.Cover,
		Description:     req.Description,
		PublicationDate: req.PublicationDate,
	}
	if req.Price != nil {
		p := bookstore.CoercePrice(req.Price)
		upd.Price = &p
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Books.Update(ctx, id, upd, auth.CurrentEmail(r)); err != nil {
		httperr.Write(w, h.Log, storeErr(err, "Failed to update book"))
		return
	}
	jsonio.Write(w, http.StatusOK, map[string]string{"message": "Book updated"})
}

/*─────────────────────────────────────────────────────────────────────────────*
| Admin                                                                       |
*─────────────────────────────────────────────────────────────────────────────*/

// ListAll handles GET /admin/books.
func (h *Handler) ListAll(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	books, err := h.Books.ListAll(ctx)
	if err != nil {
		httperr.Write(w, h.Log, storeErr(err, "Failed to fetch books"))
		return
	}
	jsonio.Write(w, http.StatusOK, books)
}

type statusRequest struct {
	Status string `json:"status" validate:"required"`
}

// SetStatus handles PATCH /books/status/{id}.
func (h *Handler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := bookID(r)
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
	if err := h.Books.SetStatus(ctx, id, status); err != nil {
		httperr.Write(w, h.Log, storeErr(err, "Failed to update book status"))
		return
	}
	h.AuditLog.BookStatusChanged(ctx, r, id.Hex(), status)
	jsonio.Write(w, http.StatusOK, map[string]string{"message": "Book status updated", "status": status})
}

type deleteResponse struct {
	DeletedBook   int64 `json:"deletedBook"`
	DeletedOrders int64 `json:"deletedOrders"`
}

// Delete handles DELETE /books/{id}: the book and every order for it go together.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := bookID(r)
	if err != nil {
		httperr.Write(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	var resp deleteResponse
	if err := txn.Run(ctx, h.DB.Client(), h.Log, func(ctx context.Context) error {
		var err error
		if resp.DeletedOrders, err = h.Orders.DeleteByBook(ctx, id); err != nil {
			return err
		}
		resp.DeletedBook, err = h.Books.Delete(ctx, id)
		return err
	}); err != nil {
		httperr.Write(w, h.Log, httperr.Wrap(httperr.Upstream, "Failed to delete book", err))
		return
	}

	h.AuditLog.BookDeleted(ctx, r, id.Hex(), resp.DeletedOrders)
	jsonio.Write(w, http.StatusOK, resp)
}
