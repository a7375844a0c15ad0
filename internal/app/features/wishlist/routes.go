package wishlist

import (
	"github.com/dalemusser/bookcourier/internal/app/system/authz"
	"github.com/go-chi/chi/v5"
)

// Routes returns the router mounted at /wishlist. Every route acts on the
// caller's own list.
func Routes(h *Handler, gate *authz.Gate) chi.Router {
	r := chi.NewRouter()
	r.Use(gate.RequireAuth)
	r.Post("/", h.Add)
	r.Get("/", h.List)
	r.Delete("/{bookId}", h.Remove)
	return r
}
