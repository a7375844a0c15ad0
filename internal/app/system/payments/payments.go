// Package payments talks to the hosted-checkout payment provider.
package payments

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatusPaid is the provider's status for a completed checkout.
const PaymentStatusPaid = "paid"

// ErrSessionNotFound is returned when the provider has no session with the given id.
var ErrSessionNotFound = errors.New("checkout session not found")

// CheckoutRequest describes one hosted checkout for a single order.
type CheckoutRequest struct {
	OrderID     string
	BookTitle   string
	BuyerEmail  string
	Currency    string
	AmountMinor int64 // in the currency's minor unit (cents)
}

// Session is the provider's view of a checkout session.
type Session struct {
	ID            string
	URL           string
	PaymentStatus string
	TransactionID string // payment intent id, set once paid
	Metadata      map[string]string
	CreatedAt     time.Time
}

// Paid reports whether the buyer completed payment.
func (s Session) Paid() bool {
	return s.PaymentStatus == PaymentStatusPaid
}

// OrderID returns the order id stored in the session metadata.
func (s Session) OrderID() string {
	return s.Metadata[MetadataOrderID]
}

// Metadata keys attached to every session for reconciliation.
const (
	MetadataOrderID   = "orderId"
	MetadataBookTitle = "bookTitle"
)

// Provider creates and retrieves hosted checkout sessions.
type Provider interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (Session, error)
	GetCheckoutSession(ctx context.Context, id string) (Session, error)
}

// ToMinorUnits converts a price in major units to minor units, rounding half
// away from zero. Negative prices convert to 0.
func ToMinorUnits(price float64) int64 {
	d := decimal.NewFromFloat(price)
	if d.IsNegative() {
		return 0
	}
	return d.Shift(2).Round(0).IntPart()
}
