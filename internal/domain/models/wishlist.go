// internal/domain/models/wishlist.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WishlistItem marks a book a user wants to buy later. At most one per (UserEmail, BookID).
type WishlistItem struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserEmail string             `bson:"userEmail" json:"userEmail"`
	BookID    string             `bson:"bookId" json:"bookId"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`

	// Book is filled by the wishlist listing join and never stored.
	Book *Book `bson:"book,omitempty" json:"book,omitempty"`
}
