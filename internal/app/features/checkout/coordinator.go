package checkout

import (
	"context"
	"errors"
	"strings"
	"time"

	orderstore "github.com/dalemusser/bookcourier/internal/app/store/orders"
	"github.com/dalemusser/bookcourier/internal/app/system/httperr"
	"github.com/dalemusser/bookcourier/internal/app/system/locker"
	"github.com/dalemusser/bookcourier/internal/app/system/normalize"
	"github.com/dalemusser/bookcourier/internal/app/system/payments"
	"github.com/dalemusser/bookcourier/internal/app/system/timeouts"
	"github.com/dalemusser/bookcourier/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// DefaultCurrency is charged when no currency is configured.
const DefaultCurrency = "usd"

// confirmLockTTL bounds how long a crashed confirmation can hold a session's lock.
const confirmLockTTL = 30 * time.Second

// NewTrackingID returns a shipment reference such as "BC-3F9A0C71B2DE".
func NewTrackingID() string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "BC-" + strings.ToUpper(hex[:12])
}

// Coordinator runs the two-phase hosted checkout: create a session for an
// order, then confirm it once the buyer returns from the provider.
type Coordinator struct {
	Orders   *orderstore.Store
	Provider payments.Provider
	Locker   locker.Locker
	Currency string
	Log      *zap.Logger
}

func NewCoordinator(orders *orderstore.Store, provider payments.Provider, lk locker.Locker, currency string, logger *zap.Logger) *Coordinator {
	currency = strings.ToLower(strings.TrimSpace(currency))
	if currency == "" {
		currency = DefaultCurrency
	}
	return &Coordinator{
		Orders:   orders,
		Provider: provider,
		Locker:   lk,
		Currency: currency,
		Log:      logger,
	}
}

// SessionResult is returned to the client to redirect the buyer.
type SessionResult struct {
	URL       string `json:"url"`
	SessionID string `json:"sessionId"`

	amountMinor int64
}

// CreateSession opens a hosted checkout for a pending order and records the
// session id on it.
func (c *Coordinator) CreateSession(ctx context.Context, orderID, buyerEmail string) (SessionResult, error) {
	orderID = strings.TrimSpace(orderID)
	buyerEmail = normalize.Email(buyerEmail)
	if orderID == "" {
		return SessionResult{}, httperr.New(httperr.InvalidArgument, "orderId is required")
	}
	if buyerEmail == "" {
		return SessionResult{}, httperr.New(httperr.InvalidArgument, "email is required")
	}

	oid, err := primitive.ObjectIDFromHex(orderID)
	if err != nil {
		return SessionResult{}, httperr.New(httperr.NotFound, "Order not found")
	}
	order, err := c.Orders.GetByID(ctx, oid)
	if errors.Is(err, orderstore.ErrNotFound) {
		return SessionResult{}, httperr.New(httperr.NotFound, "Order not found")
	}
	if err != nil {
		return SessionResult{}, httperr.Wrap(httperr.Upstream, "Failed to load order", err)
	}
	if order.Status == models.OrderPaid {
		return SessionResult{}, httperr.New(httperr.InvalidArgument, "Order is already paid")
	}

	amount := payments.ToMinorUnits(order.Price)

	upCtx, cancel := timeouts.WithTimeout(ctx, timeouts.Upstream(), c.Log, "checkout.create_session")
	sess, err := c.Provider.CreateCheckoutSession(upCtx, payments.CheckoutRequest{
		OrderID:     oid.Hex(),
		BookTitle:   order.BookTitle,
		BuyerEmail:  buyerEmail,
		Currency:    c.Currency,
		AmountMinor: amount,
	})
	cancel()
	if err != nil {
		return SessionResult{}, httperr.Wrap(httperr.Upstream, "Failed to create checkout session", err)
	}

	// The session exists at the provider either way; confirmation resolves the
	// order from session metadata, so a failed write here is only logged.
	if err := c.Orders.SetCheckoutSession(ctx, oid, sess.ID); err != nil {
		c.Log.Error("failed to record checkout session on order",
			zap.String("order_id", oid.Hex()),
			zap.String("session_id", sess.ID),
			zap.Error(err))
	}

	return SessionResult{URL: sess.URL, SessionID: sess.ID, amountMinor: amount}, nil
}

// Confirmation is the outcome of a confirm call. Success false with a
// message means the buyer has not paid yet; it is not an error.
type Confirmation struct {
	Success          bool   `json:"success"`
	Message          string `json:"message,omitempty"`
	PaymentStatus    string `json:"paymentStatus,omitempty"`
	OrderID          string `json:"orderId,omitempty"`
	TransactionID    string `json:"transactionId,omitempty"`
	TrackingID       string `json:"trackingId,omitempty"`
	AlreadyConfirmed bool   `json:"alreadyConfirmed,omitempty"`
}

func alreadyConfirmed(o *models.Order) Confirmation {
	return Confirmation{
		Success:          true,
		OrderID:          o.ID.Hex(),
		TransactionID:    o.TransactionID,
		TrackingID:       o.TrackingID,
		AlreadyConfirmed: true,
	}
}

// Confirm checks the session with the provider and, when paid, marks its
// order paid. Confirming an order that is already paid returns the stored
// identifiers instead of issuing new ones.
func (c *Coordinator) Confirm(ctx context.Context, sessionID string) (Confirmation, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return Confirmation{}, httperr.New(httperr.InvalidArgument, "session_id is required")
	}

	upCtx, cancel := timeouts.WithTimeout(ctx, timeouts.Upstream(), c.Log, "checkout.get_session")
	sess, err := c.Provider.GetCheckoutSession(upCtx, sessionID)
	cancel()
	if errors.Is(err, payments.ErrSessionNotFound) {
		return Confirmation{}, httperr.New(httperr.NotFound, "Checkout session not found")
	}
	if err != nil {
		return Confirmation{}, httperr.Wrap(httperr.Upstream, "Failed to retrieve checkout session", err)
	}

	if !sess.Paid() {
		return Confirmation{
			Success:       false,
			Message:       "Payment not completed",
			PaymentStatus: sess.PaymentStatus,
		}, nil
	}

	oid, err := primitive.ObjectIDFromHex(sess.OrderID())
	if err != nil {
		return Confirmation{}, httperr.New(httperr.InvalidArgument, "Checkout session is not linked to an order")
	}

	release, err := c.Locker.Acquire(ctx, "checkout:"+sessionID, confirmLockTTL)
	if err != nil {
		return Confirmation{}, httperr.Wrap(httperr.Upstream, "Failed to acquire confirmation lock", err)
	}
	defer release()

	order, err := c.Orders.GetByID(ctx, oid)
	if errors.Is(err, orderstore.ErrNotFound) {
		return Confirmation{}, httperr.New(httperr.NotFound, "Order not found")
	}
	if err != nil {
		return Confirmation{}, httperr.Wrap(httperr.Upstream, "Failed to load order", err)
	}
	if order.Status == models.OrderPaid {
		return alreadyConfirmed(order), nil
	}

	payment := orderstore.Payment{
		SessionID:     sessionID,
		TransactionID: sess.TransactionID,
		TrackingID:    NewTrackingID(),
	}
	updated, err := c.Orders.MarkPaid(ctx, oid, payment)
	if err != nil {
		return Confirmation{}, httperr.Wrap(httperr.Upstream, "Failed to update order", err)
	}
	if !updated {
		// Lost to a confirmation on another session for the same order, or
		// the order vanished after we read it.
		order, err := c.Orders.GetByID(ctx, oid)
		if errors.Is(err, orderstore.ErrNotFound) {
			return Confirmation{}, httperr.New(httperr.NotFound, "Order not found")
		}
		if err != nil {
			return Confirmation{}, httperr.Wrap(httperr.Upstream, "Failed to load order", err)
		}
		if order.Status != models.OrderPaid {
			return Confirmation{}, httperr.New(httperr.Upstream, "Failed to update order")
		}
		return alreadyConfirmed(order), nil
	}

	return Confirmation{
		Success:       true,
		OrderID:       oid.Hex(),
		TransactionID: payment.TransactionID,
		TrackingID:    payment.TrackingID,
	}, nil
}
