// internal/app/features/auditlog/list.go
package auditlog

import (
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/dalemusser/bookcourier/internal/app/store/audit"
	"github.com/dalemusser/bookcourier/internal/app/system/httperr"
	"github.com/dalemusser/bookcourier/internal/app/system/jsonio"
	"github.com/dalemusser/bookcourier/internal/app/system/normalize"
	"github.com/dalemusser/bookcourier/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
)

const pageSize = 50

// ServeList handles GET /admin/audit. Filters: category, event_type, actor,
// target, start_date and end_date (YYYY-MM-DD), page.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "audit log list")
	defer cancel()

	category := query.Get(r, "category")
	eventType := query.Get(r, "event_type")
	startDate := query.Get(r, "start_date")
	endDate := query.Get(r, "end_date")

	if eventType != "" && !slices.Contains(eventTypesForCategory(category), eventType) {
		httperr.Respond(w, h.Log, httperr.InvalidArgument, "Unknown event_type for category")
		return
	}

	page := 1
	if p, err := strconv.Atoi(query.Get(r, "page")); err == nil && p > 0 {
		page = p
	}

	filter := audit.QueryFilter{
		Category:   category,
		EventType:  eventType,
		ActorEmail: normalize.Email(query.Get(r, "actor")),
		TargetID:   query.Get(r, "target"),
		Limit:      pageSize,
		Offset:     int64((page - 1) * pageSize),
	}

	if startDate != "" {
		t, err := time.Parse("2006-01-02", startDate)
		if err != nil {
			httperr.Respond(w, h.Log, httperr.InvalidArgument, "start_date must be YYYY-MM-DD")
			return
		}
		filter.StartTime = &t
	}
	if endDate != "" {
		t, err := time.Parse("2006-01-02", endDate)
		if err != nil {
			httperr.Respond(w, h.Log, httperr.InvalidArgument, "end_date must be YYYY-MM-DD")
			return
		}
		// End of day
		endOfDay := t.Add(24*time.Hour - time.Nanosecond)
		filter.EndTime = &endOfDay
	}

	events, err := h.Events.Query(ctx, filter)
	if err != nil {
		httperr.Write(w, h.Log, httperr.Wrap(httperr.Upstream, "Failed to query audit events", err))
		return
	}
	total, err := h.Events.Count(ctx, filter)
	if err != nil {
		httperr.Write(w, h.Log, httperr.Wrap(httperr.Upstream, "Failed to count audit events", err))
		return
	}

	items := make([]listItem, 0, len(events))
	for _, e := range events {
		items = append(items, toListItem(e))
	}

	totalPages := int((total + pageSize - 1) / pageSize)
	if totalPages < 1 {
		totalPages = 1
	}

	jsonio.Write(w, http.StatusOK, listResponse{
		Items:      items,
		Total:      total,
		Page:       page,
		TotalPages: totalPages,
		HasPrev:    page > 1,
		HasNext:    page < totalPages,
	})
}
