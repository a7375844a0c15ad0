package users

import (
	"github.com/dalemusser/bookcourier/internal/app/system/authz"
	"github.com/dalemusser/bookcourier/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes returns the router mounted at /users.
func Routes(h *Handler, gate *authz.Gate) chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Upsert)
	r.Get("/{email}/role", h.Role)

	r.Group(func(pr chi.Router) {
		pr.Use(gate.RequireAuth, gate.RequireRole(models.RoleAdmin))
		pr.Get("/", h.List)
		pr.Patch("/{email}/role", h.SetRole)
	})

	return r
}
