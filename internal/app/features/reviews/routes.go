package reviews

import (
	"github.com/dalemusser/bookcourier/internal/app/system/authz"
	"github.com/go-chi/chi/v5"
)

// Routes returns the router mounted at /reviews.
func Routes(h *Handler, gate *authz.Gate) chi.Router {
	r := chi.NewRouter()
	r.Get("/{bookId}", h.ListByBook)
	r.With(gate.RequireAuth).Post("/", h.Create)
	return r
}
