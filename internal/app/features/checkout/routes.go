package checkout

import (
	"net/http"

	"github.com/dalemusser/bookcourier/internal/app/system/ratelimit"
	"github.com/go-chi/chi/v5"
)

// Routes returns the checkout router, mounted at the root. A non-nil limiter
// throttles session creation per client IP.
func Routes(h *Handler, limiter *ratelimit.Limiter) chi.Router {
	r := chi.NewRouter()

	var create http.Handler = http.HandlerFunc(h.CreateSession)
	if limiter != nil {
		create = limiter.Middleware(h.Log)(create)
	}
	r.Method(http.MethodPost, "/checkout-session", create)
	r.Patch("/payment-success", h.ConfirmPayment)

	return r
}
