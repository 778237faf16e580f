package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"iasrentals/internal/app/outbox"
	"iasrentals/internal/app/policies"
	domainproperties "iasrentals/internal/domain/properties"
	domainreviews "iasrentals/internal/domain/reviews"
	domainuser "iasrentals/internal/domain/user"
	domainvisits "iasrentals/internal/domain/visits"
)

const (
	TemplateVisitScheduled = "visit_scheduled"
	TemplateVisitCancelled = "visit_cancelled"
	TemplateVisitCompleted = "visit_completed"
	TemplateReviewReceived = "review_received"
)

// Router turns relayed domain events into user notifications. Events it
// does not know are ignored.
type Router struct {
	Notifier policies.Notifier
	Logger   *slog.Logger
}

func NewRouter(notifier policies.Notifier, logger *slog.Logger) *Router {
	return &Router{Notifier: notifier, Logger: logger}
}

func (r *Router) Dispatch(ctx context.Context, record outbox.EventRecord) error {
	notes, err := r.route(record)
	if err != nil {
		return fmt.Errorf("notifications: decode %s: %w", record.Name, err)
	}
	for _, n := range notes {
		if n.UserID == "" {
			continue
		}
		if err := r.Notifier.Notify(ctx, n); err != nil {
			return fmt.Errorf("notifications: notify %s: %w", n.UserID, err)
		}
	}
	if r.Logger != nil && len(notes) > 0 {
		r.Logger.Debug("event routed", "event", record.Name, "event_id", record.ID, "notifications", len(notes))
	}
	return nil
}

func (r *Router) route(record outbox.EventRecord) ([]policies.Notification, error) {
	switch record.Name {
	case domainvisits.EventVisitScheduled:
		var ev domainvisits.VisitScheduled
		if err := json.Unmarshal(record.Payload, &ev); err != nil {
			return nil, err
		}
		return []policies.Notification{{
			UserID:   string(ev.OwnerID),
			Template: TemplateVisitScheduled,
			Data:     visitData(ev.VisitID, ev.PropertyID, ev.Date, ev.Time),
		}}, nil
	case domainvisits.EventVisitCancelled:
		var ev domainvisits.VisitCancelled
		if err := json.Unmarshal(record.Payload, &ev); err != nil {
			return nil, err
		}
		data := visitData(ev.VisitID, ev.PropertyID, ev.Date, ev.Time)
		data["cancelled_by"] = string(ev.CancelledBy)
		var out []policies.Notification
		for _, party := range []domainuser.ID{ev.OwnerID, ev.BuyerID} {
			if party != ev.CancelledBy {
				out = append(out, policies.Notification{UserID: string(party), Template: TemplateVisitCancelled, Data: data})
			}
		}
		return out, nil
	case domainvisits.EventVisitCompleted:
		var ev domainvisits.VisitCompleted
		if err := json.Unmarshal(record.Payload, &ev); err != nil {
			return nil, err
		}
		return []policies.Notification{{
			UserID:   string(ev.BuyerID),
			Template: TemplateVisitCompleted,
			Data:     map[string]string{"visit_id": string(ev.VisitID), "property_id": string(ev.PropertyID), "owner_id": string(ev.OwnerID)},
		}}, nil
	case domainreviews.EventReviewCreated:
		var ev domainreviews.ReviewCreated
		if err := json.Unmarshal(record.Payload, &ev); err != nil {
			return nil, err
		}
		return []policies.Notification{{
			UserID:   string(ev.OwnerID),
			Template: TemplateReviewReceived,
			Data: map[string]string{
				"review_id":   string(ev.ReviewID),
				"property_id": string(ev.PropertyID),
				"buyer_id":    string(ev.BuyerID),
				"rating":      fmt.Sprint(ev.Rating),
			},
		}}, nil
	default:
		return nil, nil
	}
}

func visitData(id domainvisits.ID, property domainproperties.ID, date, slot string) map[string]string {
	return map[string]string{"visit_id": string(id), "property_id": string(property), "visit_date": date, "visit_time": slot}
}

var _ outbox.Dispatcher = (*Router)(nil)
