package users

import (
	"context"
	"errors"
	"net/http"

	userstore "github.com/dalemusser/bookcourier/internal/app/store/users"
	"github.com/dalemusser/bookcourier/internal/app/system/auditlog"
	"github.com/dalemusser/bookcourier/internal/app/system/httperr"
	"github.com/dalemusser/bookcourier/internal/app/system/jsonio"
	"github.com/dalemusser/bookcourier/internal/app/system/normalize"
	"github.com/dalemusser/bookcourier/internal/app/system/timeouts"
	"github.com/dalemusser/bookcourier/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the user directory.
type Handler struct {
	Users    *userstore.Store
	AuditLog *auditlog.Logger
	Log      *zap.Logger
}

func NewHandler(db *mongo.Database, auditLog *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Users:    userstore.New(db),
		AuditLog: auditLog,
		Log:      logger,
	}
}

type upsertRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"max=200"`
	PhotoURL string `json:"photoURL" validate:"omitempty,url"`
}

// Upsert handles POST /users: records a first-time sign-in. Existing users
// are left as they are.
func (h *Handler) Upsert(w http.ResponseWriter, r *http.Request) {
	var req upsertRequest
	if err := jsonio.Decode(r, &req); err != nil {
		httperr.Write(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	inserted, err := h.Users.EnsureByEmail(ctx, models.User{
		Email:    req.Email,
		Name:     req.Name,
		PhotoURL: req.PhotoURL,
	})
	if err != nil {
		httperr.Write(w, h.Log, httperr.Wrap(httperr.Upstream, "Failed to save user", err))
		return
	}

	status := http.StatusOK
	msg := "User already exists"
	if inserted {
		status = http.StatusCreated
		msg = "User created"
	}
	jsonio.Write(w, status, map[string]any{"message": msg, "inserted": inserted})
}

// Role handles GET /users/{email}/role. An unknown email reads as "user".
func (h *Handler) Role(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	role := models.RoleUser
	u, err := h.Users.GetByEmail(ctx, chi.URLParam(r, "email"))
	switch {
	case errors.Is(err, userstore.ErrNotFound):
	case err != nil:
		httperr.Write(w, h.Log, httperr.Wrap(httperr.Upstream, "Failed to fetch role", err))
		return
	default:
		if u.Role != "" {
			role = u.Role
		}
	}
	jsonio.Write(w, http.StatusOK, map[string]string{"role": role})
}

// List handles GET /users.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Users.List(ctx)
	if err != nil {
		httperr.Write(w, h.Log, httperr.Wrap(httperr.Upstream, "Failed to fetch users", err))
		return
	}
	jsonio.Write(w, http.StatusOK, list)
}

type roleRequest struct {
	Role string `json:"role" validate:"required"`
}

// SetRole handles PATCH /users/{email}/role.
func (h *Handler) SetRole(w http.ResponseWriter, r *http.Request) {
	var req roleRequest
	if err := jsonio.Decode(r, &req); err != nil {
		httperr.Write(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	email := normalize.Email(chi.URLParam(r, "email"))
	role := normalize.Role(req.Role)
	switch err := h.Users.SetRole(ctx, email, role); {
	case errors.Is(err, userstore.ErrBadRole):
		httperr.Respond(w, h.Log, httperr.InvalidArgument, err.Error())
		return
	case errors.Is(err, userstore.ErrNotFound):
		httperr.Respond(w, h.Log, httperr.NotFound, "User not found")
		return
	case err != nil:
		httperr.Write(w, h.Log, httperr.Wrap(httperr.Upstream, "Failed to update role", err))
		return
	}

	h.AuditLog.UserRoleChanged(ctx, r, email, role)
	jsonio.Write(w, http.StatusOK, map[string]string{"message": "Role updated", "role": role})
}
