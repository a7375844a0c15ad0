// internal/app/features/auditlog/types.go
package auditlog

import (
	"time"

	"github.com/dalemusser/bookcourier/internal/app/store/audit"
)

// listItem is a single audit event in the list response.
type listItem struct {
	ID            string            `json:"id"`
	Timestamp     time.Time         `json:"timestamp"`
	Category      string            `json:"category"`
	EventType     string            `json:"eventType"`
	ActorEmail    string            `json:"actorEmail,omitempty"`
	TargetID      string            `json:"targetId,omitempty"`
	IP            string            `json:"ip,omitempty"`
	Success       bool              `json:"success"`
	FailureReason string            `json:"failureReason,omitempty"`
	Details       map[string]string `json:"details,omitempty"`
}

func toListItem(e audit.Event) listItem {
	return listItem{
		ID:            e.ID.Hex(),
		Timestamp:     e.Timestamp,
		Category:      e.Category,
		EventType:     e.EventType,
		ActorEmail:    e.ActorEmail,
		TargetID:      e.TargetID,
		IP:            e.IP,
		Success:       e.Success,
		FailureReason: e.FailureReason,
		Details:       e.Details,
	}
}

// listResponse is the body of GET /admin/audit.
type listResponse struct {
	Items      []listItem `json:"items"`
	Total      int64      `json:"total"`
	Page       int        `json:"page"`
	TotalPages int        `json:"totalPages"`
	HasPrev    bool       `json:"hasPrev"`
	HasNext    bool       `json:"hasNext"`
}

// eventTypesForCategory returns the event types for a given category.
// If category is empty, returns all event types.
func eventTypesForCategory(category string) []string {
	adminEvents := []string{
		audit.EventBookStatusChanged,
		audit.EventBookDeleted,
		audit.EventUserRoleChanged,
		audit.EventApplicationReviewed,
		audit.EventLibrarianPromoted,
	}

	paymentEvents := []string{
		audit.EventCheckoutSessionCreated,
		audit.EventPaymentConfirmed,
		audit.EventPaymentNotCompleted,
	}

	switch category {
	case audit.CategoryAdmin:
		return adminEvents
	case audit.CategoryPayment:
		return paymentEvents
	case "":
		all := make([]string, 0, len(adminEvents)+len(paymentEvents))
		all = append(all, adminEvents...)
		all = append(all, paymentEvents...)
		return all
	default:
		return nil
	}
}
