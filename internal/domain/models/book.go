// internal/domain/models/book.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	BookPublished   = "published"
	BookUnpublished = "unpublished"
)

// Book is a catalog listing owned by the librarian who created it.
// OwnerEmail is set once at creation and never rewritten.
type Book struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title           string             `bson:"title" json:"title"`
	Author          string             `bson:"author" json:"author"`
	Price           float64            `bson:"price" json:"price"`
	Cover           string             `bson:"cover,omitempty" json:"cover,omitempty"`
	Status          string             `bson:"status" json:"status"` // published | unpublished
	OwnerEmail      string             `bson:"ownerEmail" json:"ownerEmail"`
	Description     string             `bson:"description,omitempty" json:"description,omitempty"`
	PublicationDate string             `bson:"publicationDate,omitempty" json:"publicationDate,omitempty"`

	CreatedAt time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt *time.Time `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}
