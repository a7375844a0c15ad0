package orders

import (
	"github.com/dalemusser/bookcourier/internal/app/system/authz"
	"github.com/dalemusser/bookcourier/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes returns the router mounted at /orders.
func Routes(h *Handler, gate *authz.Gate) chi.Router {
	r := chi.NewRouter()

	// The buyer is identified by the request body or query.
	r.Post("/", h.Create)
	r.Get("/", h.ListForBuyer)
	r.Get("/{id}", h.Get)
	r.Delete("/{id}", h.Cancel)

	r.With(gate.RequireAuth, gate.RequireRole(models.RoleLibrarian)).
		Patch("/{id}/status", h.UpdateStatus)

	return r
}

// LibrarianRoutes returns the router mounted at /librarian/orders.
func LibrarianRoutes(h *Handler, gate *authz.Gate) chi.Router {
	r := chi.NewRouter()
	r.Use(gate.RequireAuth, gate.RequireRole(models.RoleLibrarian))
	r.Get("/", h.ListForLibrarian)
	return r
}
