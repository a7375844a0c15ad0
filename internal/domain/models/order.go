// internal/domain/models/order.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Order states. A pending order becomes paid through checkout confirmation
// or is cancelled by deleting it.
const (
	OrderPending   = "pending"
	OrderPaid      = "paid"
	OrderCancelled = "cancelled"
)

// Payment states recorded alongside the order status.
const (
	PaymentUnpaid = "unpaid"
	PaymentPaid   = "paid"
)

// IsManualOrderStatus reports whether a librarian may set s directly.
// Paid is reserved for checkout confirmation.
func IsManualOrderStatus(s string) bool {
	return s == OrderPending || s == OrderCancelled
}

// Order is a buyer's purchase of one book.
//
// BookID holds the book's hex id. Older documents may carry an ObjectID
// instead, so queries on bookId match both forms.
// LibrarianEmail is copied from the book's owner when the order is placed.
type Order struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	BookID         string             `bson:"bookId" json:"bookId"`
	BookTitle      string             `bson:"bookTitle" json:"bookTitle"`
	Price          float64            `bson:"price" json:"price"`
	UserEmail      string             `bson:"userEmail" json:"userEmail"`
	UserName       string             `bson:"userName,omitempty" json:"userName,omitempty"`
	Phone          string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Address        string             `bson:"address,omitempty" json:"address,omitempty"`
	LibrarianEmail string             `bson:"librarianEmail" json:"librarianEmail"`

	Status            string `bson:"status" json:"status"`
	PaymentStatus     string `bson:"paymentStatus" json:"paymentStatus"`
	TransactionID     string `bson:"transactionId,omitempty" json:"transactionId,omitempty"`
	TrackingID        string `bson:"trackingId,omitempty" json:"trackingId,omitempty"`
	CheckoutSessionID string `bson:"checkoutSessionId,omitempty" json:"checkoutSessionId,omitempty"`

	OrderDate time.Time  `bson:"orderDate" json:"orderDate"`
	CreatedAt time.Time  `bson:"createdAt" json:"createdAt"`
	PaidAt    *time.Time `bson:"paidAt,omitempty" json:"paidAt,omitempty"`
}
