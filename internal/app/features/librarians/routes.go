package librarians

import (
	"github.com/dalemusser/bookcourier/internal/app/system/authz"
	"github.com/dalemusser/bookcourier/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes returns the router mounted at /librarians.
func Routes(h *Handler, gate *authz.Gate) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Post("/", h.Apply)

	r.With(gate.RequireAuth, gate.RequireRole(models.RoleAdmin)).Patch("/{id}", h.SetStatus)

	return r
}
