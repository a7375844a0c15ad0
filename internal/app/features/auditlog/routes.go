// internal/app/features/auditlog/routes.go
package auditlog

import (
	"github.com/dalemusser/bookcourier/internal/app/system/authz"
	"github.com/dalemusser/bookcourier/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the audit log under the path where this router is mounted
// (typically "/admin/audit" from bootstrap). Admins only.
func Routes(h *Handler, gate *authz.Gate) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(gate.RequireAuth)
		pr.Use(gate.RequireRole(models.RoleAdmin))

		pr.Get("/", h.ServeList)
	})

	return r
}
