// internal/app/features/errors/errors.go
package errors

import (
	"net/http"

	"github.com/dalemusser/bookcourier/internal/app/system/httperr"
	"github.com/dalemusser/bookcourier/internal/app/system/jsonio"
	"go.uber.org/zap"
)

// Handler answers requests that match no route, in the common error shape.
type Handler struct {
	Log *zap.Logger
}

// NewHandler constructs an errors Handler.
func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{Log: logger}
}

// NotFound is installed as the router's NotFound handler.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	httperr.Respond(w, h.Log, httperr.NotFound, "Route not found")
}

// MethodNotAllowed is installed as the router's MethodNotAllowed handler.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	jsonio.Write(w, http.StatusMethodNotAllowed, httperr.Response{Message: "Method not allowed"})
}
