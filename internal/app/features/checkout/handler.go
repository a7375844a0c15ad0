package checkout

import (
	"context"
	"net/http"

	"github.com/dalemusser/bookcourier/internal/app/system/auditlog"
	"github.com/dalemusser/bookcourier/internal/app/system/httperr"
	"github.com/dalemusser/bookcourier/internal/app/system/jsonio"
	"github.com/dalemusser/bookcourier/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Handler exposes the Coordinator over HTTP.
type Handler struct {
	Checkout *Coordinator
	AuditLog *auditlog.Logger
	Log      *zap.Logger
}

func NewHandler(c *Coordinator, auditLog *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Checkout: c,
		AuditLog: auditLog,
		Log:      logger,
	}
}

type sessionRequest struct {
	OrderID string `json:"orderId" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
}

// CreateSession handles POST /checkout-session.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if err := jsonio.Decode(r, &req); err != nil {
		httperr.Write(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	res, err := h.Checkout.CreateSession(ctx, req.OrderID, req.Email)
	if err != nil {
		httperr.Write(w, h.Log, err)
		return
	}

	h.AuditLog.CheckoutSessionCreated(ctx, r, req.OrderID, res.SessionID, res.amountMinor)
	jsonio.Write(w, http.StatusOK, res)
}

// ConfirmPayment handles PATCH /payment-success?session_id=.
func (h *Handler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	res, err := h.Checkout.Confirm(ctx, sessionID)
	if err != nil {
		httperr.Write(w, h.Log, err)
		return
	}

	if res.Success {
		h.AuditLog.PaymentConfirmed(ctx, r, res.OrderID, sessionID, res.TransactionID, res.AlreadyConfirmed)
	} else {
		h.AuditLog.PaymentNotCompleted(ctx, r, sessionID, res.PaymentStatus)
	}
	jsonio.Write(w, http.StatusOK, res)
}
