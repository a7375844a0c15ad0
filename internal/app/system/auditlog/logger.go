// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"
	"strconv"

	"github.com/dalemusser/bookcourier/internal/app/store/audit"
	"github.com/dalemusser/bookcourier/internal/app/system/auth"
	"github.com/dalemusser/bookcourier/internal/app/system/ratelimit"
	"go.uber.org/zap"
)

// Destinations for a category of events.
const (
	All = "all" // MongoDB + zap
	DB  = "db"
	Log = "log"
	Off = "off"
)

// Config holds audit logging configuration.
type Config struct {
	// Admin controls logging for catalog moderation, role changes and librarian reviews.
	Admin string
	// Payment controls logging for checkout session creation and confirmation.
	Payment string
}

// Logger records audit events to MongoDB (via audit.Store) and to zap.
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
	}
	if event.ActorEmail != "" {
		fields = append(fields, zap.String("actor_email", event.ActorEmail))
	}
	if event.TargetID != "" {
		fields = append(fields, zap.String("target_id", event.TargetID))
	}
	if event.IP != "" {
		fields = append(fields, zap.String("ip", event.IP))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an event according to the setting for its category.
// A nil Logger is a no-op.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	var setting string
	switch event.Category {
	case audit.CategoryAdmin:
		setting = l.config.Admin
	case audit.CategoryPayment:
		setting = l.config.Payment
	}
	if setting == "" {
		setting = All
	}
	if setting == Off {
		return
	}

	if setting == All || setting == Log {
		l.logToZap(event)
	}
	if setting == All || setting == DB {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

func fromRequest(r *http.Request, category, eventType, target string) audit.Event {
	return audit.Event{
		Category:   category,
		EventType:  eventType,
		ActorEmail: auth.CurrentEmail(r),
		TargetID:   target,
		IP:         ratelimit.ClientIP(r),
		UserAgent:  r.UserAgent(),
		Success:    true,
	}
}

// --- Admin Events ---

// BookStatusChanged logs an admin publishing or unpublishing a book.
func (l *Logger) BookStatusChanged(ctx context.Context, r *http.Request, bookID, status string) {
	e := fromRequest(r, audit.CategoryAdmin, audit.EventBookStatusChanged, bookID)
	e.Details = map[string]string{"status": status}
	l.Log(ctx, e)
}

// BookDeleted logs a book removal and the number of orders removed with it.
func (l *Logger) BookDeleted(ctx context.Context, r *http.Request, bookID string, deletedOrders int64) {
	e := fromRequest(r, audit.CategoryAdmin, audit.EventBookDeleted, bookID)
	e.Details = map[string]string{"deleted_orders": strconv.FormatInt(deletedOrders, 10)}
	l.Log(ctx, e)
}

// UserRoleChanged logs an admin setting a user's role.
func (l *Logger) UserRoleChanged(ctx context.Context, r *http.Request, targetEmail, role string) {
	e := fromRequest(r, audit.CategoryAdmin, audit.EventUserRoleChanged, targetEmail)
	e.Details = map[string]string{"role": role}
	l.Log(ctx, e)
}

// ApplicationReviewed logs a status change on a librarian application.
func (l *Logger) ApplicationReviewed(ctx context.Context, r *http.Request, applicationID, status string) {
	e := fromRequest(r, audit.CategoryAdmin, audit.EventApplicationReviewed, applicationID)
	e.Details = map[string]string{"status": status}
	l.Log(ctx, e)
}

// LibrarianPromoted logs the role promotion that follows an approval.
// promoted is false when no user record matched the email.
func (l *Logger) LibrarianPromoted(ctx context.Context, r *http.Request, email string, promoted bool) {
	e := fromRequest(r, audit.CategoryAdmin, audit.EventLibrarianPromoted, email)
	e.Success = promoted
	if !promoted {
		e.FailureReason = "no user with this email"
	}
	l.Log(ctx, e)
}

// --- Payment Events ---

// CheckoutSessionCreated logs a new hosted checkout for an order.
func (l *Logger) CheckoutSessionCreated(ctx context.Context, r *http.Request, orderID, sessionID string, amountMinor int64) {
	e := fromRequest(r, audit.CategoryPayment, audit.EventCheckoutSessionCreated, orderID)
	e.Details = map[string]string{
		"session_id":   sessionID,
		"amount_minor": strconv.FormatInt(amountMinor, 10),
	}
	l.Log(ctx, e)
}

// PaymentConfirmed logs an order marked paid. alreadyPaid is true when the
// call found the order paid and returned the stored identifiers.
func (l *Logger) PaymentConfirmed(ctx context.Context, r *http.Request, orderID, sessionID, transactionID string, alreadyPaid bool) {
	e := fromRequest(r, audit.CategoryPayment, audit.EventPaymentConfirmed, orderID)
	e.Details = map[string]string{
		"session_id":     sessionID,
		"transaction_id": transactionID,
		"already_paid":   strconv.FormatBool(alreadyPaid),
	}
	l.Log(ctx, e)
}

// PaymentNotCompleted logs a confirmation attempt on an unpaid session.
func (l *Logger) PaymentNotCompleted(ctx context.Context, r *http.Request, sessionID, paymentStatus string) {
	e := fromRequest(r, audit.CategoryPayment, audit.EventPaymentNotCompleted, sessionID)
	e.Success = false
	e.FailureReason = "payment status " + paymentStatus
	l.Log(ctx, e)
}
