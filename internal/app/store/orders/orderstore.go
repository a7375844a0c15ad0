// internal/app/store/orders/orderstore.go
package orderstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/bookcourier/internal/app/system/normalize"
	"github.com/dalemusser/bookcourier/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ListLimit caps order listings.
const ListLimit = 500

var (
	ErrNotFound          = errors.New("order not found")
	ErrBookNotFound      = errors.New("book not found")
	ErrBookIDRequired    = errors.New("bookId is required")
	ErrUserEmailRequired = errors.New("userEmail is required")
	ErrNotPending        = errors.New("only pending orders can be cancelled")
	ErrBadStatus         = errors.New(`status must be "pending"|"cancelled"`)
	ErrPaidLocked        = errors.New("paid orders cannot change status")
)

type Store struct {
	c     *mongo.Collection
	books *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		c:     db.Collection("orders"),
		books: db.Collection("books"),
	}
}

// bookIDFilter matches bookId stored either as the hex string or as an ObjectID.
func bookIDFilter(id primitive.ObjectID) bson.M {
	return bson.M{"$or": bson.A{
		bson.M{"bookId": id.Hex()},
		bson.M{"bookId": id},
	}}
}

// Create places a pending, unpaid order. The book must exist; its owner,
// title and price are copied onto the order, overriding anything the caller set.
func (s *Store) Create(ctx context.Context, o models.Order) (models.Order, error) {
	o.BookID = strings.TrimSpace(o.BookID)
	o.UserEmail = normalize.Email(o.UserEmail)
	if o.BookID == "" {
		return models.Order{}, ErrBookIDRequired
	}
	if o.UserEmail == "" {
		return models.Order{}, ErrUserEmailRequired
	}

	bookOID, err := primitive.ObjectIDFromHex(o.BookID)
	if err != nil {
		return models.Order{}, ErrBookNotFound
	}
	var book models.Book
	proj := options.FindOne().SetProjection(bson.M{"title": 1, "price": 1, "ownerEmail": 1})
	if err := s.books.FindOne(ctx, bson.M{"_id": bookOID}, proj).Decode(&book); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Order{}, ErrBookNotFound
		}
		return models.Order{}, err
	}

	now := time.Now().UTC()
	o.ID = primitive.NewObjectID()
	o.BookID = bookOID.Hex()
	o.LibrarianEmail = normalize.Email(book.OwnerEmail)
	o.BookTitle = book.Title
	o.Price = book.Price
	o.UserName = normalize.Name(o.UserName)
	o.Phone = strings.TrimSpace(o.Phone)
	o.Address = strings.TrimSpace(o.Address)
	o.Status = models.OrderPending
	o.PaymentStatus = models.PaymentUnpaid
	o.TransactionID = ""
	o.TrackingID = ""
	o.CheckoutSessionID = ""
	o.OrderDate = now
	o.CreatedAt = now
	o.PaidAt = nil

	if _, err := s.c.InsertOne(ctx, o); err != nil {
		return models.Order{}, err
	}
	return o, nil
}

func (s *Store) find(ctx context.Context, filter bson.M, sortField string) ([]models.Order, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: sortField, Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(ListLimit)
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]models.Order, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListByBuyer returns the buyer's orders, most recently created first.
func (s *Store) ListByBuyer(ctx context.Context, email string) ([]models.Order, error) {
	return s.find(ctx, bson.M{"userEmail": normalize.Email(email)}, "createdAt")
}

// ListByLibrarian returns orders for books the librarian sells, newest order date first.
func (s *Store) ListByLibrarian(ctx context.Context, email string) ([]models.Order, error) {
	return s.find(ctx, bson.M{"librarianEmail": normalize.Email(email)}, "orderDate")
}

// GetByID loads one order. Returns ErrNotFound if absent.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	var o models.Order
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&o)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// Cancel deletes a pending order. A paid or cancelled order is left in place
// and ErrNotPending is returned.
func (s *Store) Cancel(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id, "status": models.OrderPending})
	if err != nil {
		return err
	}
	if res.DeletedCount > 0 {
		return nil
	}
	n, err := s.c.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return ErrNotPending
}

// UpdateStatus moves an order belonging to librarianEmail between pending and
// cancelled. Only MarkPaid sets paid, and a paid order is final: ErrPaidLocked.
// An order that does not exist or belongs to another librarian returns ErrNotFound.
func (s *Store) UpdateStatus(ctx context.Context, id primitive.ObjectID, status, librarianEmail string) error {
	status = normalize.Status(status)
	if !models.IsManualOrderStatus(status) {
		return ErrBadStatus
	}
	lib := normalize.Email(librarianEmail)
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "librarianEmail": lib, "status": bson.M{"$ne": models.OrderPaid}},
		bson.M{"$set": bson.M{"status": status}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount > 0 {
		return nil
	}
	n, err := s.c.CountDocuments(ctx, bson.M{"_id": id, "librarianEmail": lib})
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return ErrPaidLocked
}

// SetCheckoutSession records the hosted checkout session created for an order.
func (s *Store) SetCheckoutSession(ctx context.Context, id primitive.ObjectID, sessionID string) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"checkoutSessionId": sessionID}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Payment is what a successful confirmation writes onto an order.
type Payment struct {
	SessionID     string
	TransactionID string
	TrackingID    string
}

// MarkPaid flips an unpaid order to paid in one conditional write.
// updated is false when the order is missing or was already paid; the caller
// re-reads the order to tell the two apart.
func (s *Store) MarkPaid(ctx context.Context, id primitive.ObjectID, p Payment) (updated bool, err error) {
	now := time.Now().UTC()
	set := bson.M{
		"status":        models.OrderPaid,
		"paymentStatus": models.PaymentPaid,
		"transactionId": p.TransactionID,
		"trackingId":    p.TrackingID,
		"paidAt":        now,
	}
	if p.SessionID != "" {
		set["checkoutSessionId"] = p.SessionID
	}
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "status": bson.M{"$ne": models.OrderPaid}},
		bson.M{"$set": set},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

// DeleteByBook removes every order for a book, whichever form its bookId was stored in.
func (s *Store) DeleteByBook(ctx context.Context, bookID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bookIDFilter(bookID))
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// HasPaidOrder reports whether email has a paid order for the book.
func (s *Store) HasPaidOrder(ctx context.Context, bookID primitive.ObjectID, email string) (bool, error) {
	filter := bookIDFilter(bookID)
	filter["userEmail"] = normalize.Email(email)
	filter["status"] = models.OrderPaid
	n, err := s.c.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
