package librarians

import (
	"context"
	"errors"
	"net/http"

	librarianstore "github.com/dalemusser/bookcourier/internal/app/store/librarians"
	userstore "github.com/dalemusser/bookcourier/internal/app/store/users"
	"github.com/dalemusser/bookcourier/internal/app/system/auditlog"
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

// Handler serves librarian applications.
type Handler struct {
	DB           *mongo.Database
	Applications *librarianstore.Store
	Users        *userstore.Store
	AuditLog     *auditlog.Logger
	Log          *zap.Logger
}

func NewHandler(db *mongo.Database, auditLog *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:           db,
		Applications: librarianstore.New(db),
		Users:        userstore.New(db),
		AuditLog:     auditLog,
		Log:          logger,
	}
}

func storeErr(err error, msg string) error {
	switch {
	case errors.Is(err, librarianstore.ErrNotFound):
		return httperr.New(httperr.NotFound, "Application not found")
	case errors.Is(err, librarianstore.ErrEmailRequired),
		errors.Is(err, librarianstore.ErrAlreadyPending),
		errors.Is(err, librarianstore.ErrBadStatus):
		return httperr.New(httperr.InvalidArgument, err.Error())
	}
	return httperr.Wrap(httperr.Upstream, msg, err)
}

// List handles GET /librarians?status=.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	apps, err := h.Applications.List(ctx, r.URL.Query().Get("status"))
	if err != nil {
		httperr.Write(w, h.Log, storeErr(err, "Failed to fetch applications"))
		return
	}
	jsonio.Write(w, http.StatusOK, apps)
}

type applyRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"max=200"`
	ShopName string `json:"shopName" validate:"max=200"`
	Phone    string `json:"phone" validate:"max=40"`
	Address  string `json:"address" validate:"max=500"`
	Message  string `json:"message" validate:"max=5000"`
}

// Apply handles POST /librarians.
func (h *Handler) Apply(w http.ResponseWriter, r *http.Request) {
	var req applyRequest
	if err := jsonio.Decode(r, &req); err != nil {
		httperr.Write(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	app, err := h.Applications.Apply(ctx, models.LibrarianApplication{
		Email:    req.Email,
		Name:     req.Name,
		ShopName: req.ShopName,
		Phone:    req.Phone,
		Address:  req.Address,
		Message:  req.Message,
	})
	if err != nil {
		httperr.Write(w, h.Log, storeErr(err, "Failed to submit application"))
		return
	}
	jsonio.Write(w, http.StatusCreated, app)
}

type reviewRequest struct {
	Status string `json:"status" validate:"required"`
	Email  string `json:"email" validate:"omitempty,email"`
}

type reviewResponse struct {
	Message  string `json:"message"`
	Status   string `json:"status"`
	Promoted bool   `json:"promoted"`
}

// SetStatus handles PATCH /librarians/{id}. Approving promotes the applicant
// (the body email, else the application's email) to librarian.
func (h *Handler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httperr.Respond(w, h.Log, httperr.NotFound, "Application not found")
		return
	}
	var req reviewRequest
	if err := jsonio.Decode(r, &req); err != nil {
		httperr.Write(w, h.Log, err)
		return
	}
	status := normalize.Status(req.Status)
	if !models.IsValidApplicationStatus(status) {
		httperr.Write(w, h.Log, storeErr(librarianstore.ErrBadStatus, ""))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	var (
		app      *models.LibrarianApplication
		promoted bool
		isAdmin  bool
		target   string
	)
	err = txn.Run(ctx, h.DB.Client(), h.Log, func(ctx context.Context) error {
		promoted, isAdmin = false, false
		var err error
		if app, err = h.Applications.SetStatus(ctx, id, status); err != nil {
			return err
		}
		if status != models.ApplicationApproved {
			return nil
		}
		target = normalize.Email(req.Email)
		if target == "" {
			target = app.Email
		}
		switch err := h.Users.Promote(ctx, target, models.RoleLibrarian); {
		case errors.Is(err, userstore.ErrNotFound):
			return nil
		case errors.Is(err, userstore.ErrIsAdmin):
			isAdmin = true
			return nil
		case err != nil:
			return err
		}
		promoted = true
		return nil
	})
	if err != nil {
		httperr.Write(w, h.Log, storeErr(err, "Failed to update application"))
		return
	}

	h.AuditLog.ApplicationReviewed(ctx, r, id.Hex(), status)
	if status == models.ApplicationApproved {
		switch {
		case isAdmin:
			h.Log.Info("application approved for an admin; role left unchanged",
				zap.String("application_id", id.Hex()),
				zap.String("email", target))
		case !promoted:
			h.Log.Warn("application approved but no user matched for promotion",
				zap.String("application_id", id.Hex()),
				zap.String("email", target))
		}
		h.AuditLog.LibrarianPromoted(ctx, r, target, promoted)
	}

	jsonio.Write(w, http.StatusOK, reviewResponse{
		Message:  "Application " + status,
		Status:   status,
		Promoted: promoted,
	})
}
