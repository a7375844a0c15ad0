package payments

import (
	"testing"

	"github.com/stripe/stripe-go/v79"
)

func TestToMinorUnits(t *testing.T) {
	tests := []struct {
		price float64
		want  int64
	}{
		{0, 0},
		{12.5, 1250},
		{19.99, 1999},
		{0.105, 11},
		{0.104, 10},
		{7, 700},
		{-3, 0},
	}
	for _, tt := range tests {
		if got := ToMinorUnits(tt.price); got != tt.want {
			t.Errorf("ToMinorUnits(%v) = %d, want %d", tt.price, got, tt.want)
		}
	}
}

func TestWithSessionPlaceholder(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"https://shop.test/paid", "https://shop.test/paid?session_id={CHECKOUT_SESSION_ID}"},
		{"https://shop.test/paid?x=1", "https://shop.test/paid?x=1&session_id={CHECKOUT_SESSION_ID}"},
		{"https://shop.test/paid?s={CHECKOUT_SESSION_ID}", "https://shop.test/paid?s={CHECKOUT_SESSION_ID}"},
	}
	for _, tt := range tests {
		if got := withSessionPlaceholder(tt.in); got != tt.want {
			t.Errorf("withSessionPlaceholder(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFromStripe(t *testing.T) {
	s := fromStripe(&stripe.CheckoutSession{
		ID:            "cs_test_1",
		URL:           "https://checkout.stripe.test/cs_test_1",
		PaymentStatus: stripe.CheckoutSessionPaymentStatusPaid,
		PaymentIntent: &stripe.PaymentIntent{ID: "pi_123"},
		Metadata:      map[string]string{MetadataOrderID: "abc"},
		Created:       1700000000,
	})

	if !s.Paid() {
		t.Error("expected session to be paid")
	}
	if s.TransactionID != "pi_123" {
		t.Errorf("TransactionID = %q", s.TransactionID)
	}
	if s.OrderID() != "abc" {
		t.Errorf("OrderID = %q", s.OrderID())
	}
	if s.CreatedAt.Unix() != 1700000000 {
		t.Errorf("CreatedAt = %v", s.CreatedAt)
	}
}

func TestFromStripe_Unpaid(t *testing.T) {
	s := fromStripe(&stripe.CheckoutSession{
		ID:            "cs_test_2",
		PaymentStatus: stripe.CheckoutSessionPaymentStatusUnpaid,
	})
	if s.Paid() {
		t.Error("expected unpaid session")
	}
	if s.TransactionID != "" {
		t.Errorf("TransactionID = %q, want empty", s.TransactionID)
	}
}
