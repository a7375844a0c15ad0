package books

import (
	"github.com/dalemusser/bookcourier/internal/app/system/authz"
	"github.com/dalemusser/bookcourier/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes returns the router mounted at /books.
func Routes(h *Handler, gate *authz.Gate) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ListPublished)
	r.Get("/{id}", h.Get)

	r.Group(func(pr chi.Router) {
		pr.Use(gate.RequireAuth)

		pr.With(gate.RequireRole(models.RoleLibrarian)).Post("/", h.Create)
		pr.With(gate.RequireRole(models.RoleLibrarian)).Patch("/{id}", h.Update)

		pr.With(gate.RequireRole(models.RoleAdmin)).Patch("/status/{id}", h.SetStatus)
		pr.With(gate.RequireRole(models.RoleAdmin)).Delete("/{id}", h.Delete)
	})

	return r
}

// AdminRoutes returns the router mounted at /admin/books.
func AdminRoutes(h *Handler, gate *authz.Gate) chi.Router {
	r := chi.NewRouter()
	r.Use(gate.RequireAuth, gate.RequireRole(models.RoleAdmin))
	r.Get("/", h.ListAll)
	return r
}

// LibrarianRoutes returns the router mounted at /librarian/books.
func LibrarianRoutes(h *Handler, gate *authz.Gate) chi.Router {
	r := chi.NewRouter()
	r.Use(gate.RequireAuth, gate.RequireRole(models.RoleLibrarian))
	r.Get("/", h.ListMine)
	return r
}
