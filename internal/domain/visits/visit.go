package visits

import (
	"context"
	"strings"
	"time"

	"iasrentals/internal/domain/properties"
	"iasrentals/internal/domain/shared/events"
	"iasrentals/internal/domain/shared/fault"
	"iasrentals/internal/domain/user"
)

var (
	ErrNotFound          = fault.New(fault.NotFound, "visits: visit not found")
	ErrSlotTaken         = fault.New(fault.Conflict, "visits: time slot is already booked")
	ErrInvalidTransition = fault.New(fault.BadRequest, "visits: visit is not scheduled")
	ErrInvalidDate       = fault.New(fault.BadRequest, "visits: date must be formatted as YYYY-MM-DD")
	ErrInvalidTime       = fault.New(fault.BadRequest, "visits: time must be one of the 30-minute slots between 09:00 and 15:30")
	ErrNotAllowed        = fault.New(fault.Forbidden, "visits: not allowed to manage this visit")
	ErrIDRequired        = fault.New(fault.BadRequest, "visits: id is required")
	ErrPropertyRequired  = fault.New(fault.BadRequest, "visits: property is required")
	ErrBuyerRequired     = fault.New(fault.BadRequest, "visits: buyer is required")
)

const DateLayout = "2006-01-02"

type ID string

type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

type Visit struct {
	ID         ID
	PropertyID properties.ID
	BuyerID    user.ID
	Date       string
	Time       string
	Status     Status
	Notes      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	events.EventRecorder
}

// Criteria filters Repository.Find. Empty fields do not constrain the result.
type Criteria struct {
	PropertyIDs []properties.ID
	BuyerID     user.ID
	Date        string
	Time        string
	Statuses    []Status
	Limit       int
}

func (c Criteria) Matches(v *Visit) bool {
	if v == nil {
		return false
	}
	if len(c.PropertyIDs) > 0 && !containsProperty(c.PropertyIDs, v.PropertyID) {
		return false
	}
	if c.BuyerID != "" && v.BuyerID != c.BuyerID {
		return false
	}
	if c.Date != "" && v.Date != c.Date {
		return false
	}
	if c.Time != "" && v.Time != c.Time {
		return false
	}
	if len(c.Statuses) > 0 {
		ok := false
		for _, s := range c.Statuses {
			if v.Status == s {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return true
}

func containsProperty(ids []properties.ID, id properties.ID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

// Repository persists visits. Insert must reject a scheduled visit whose
// (property, date, time) already has a scheduled visit with ErrSlotTaken,
// atomically with respect to concurrent inserts. Find orders by date, time
// and creation time ascending.
type Repository interface {
	ByID(ctx context.Context, id ID) (*Visit, error)
	Insert(ctx context.Context, visit *Visit) error
	UpdateStatus(ctx context.Context, visit *Visit) error
	Find(ctx context.Context, criteria Criteria) ([]*Visit, error)
}

type ScheduleParams struct {
	ID         ID
	PropertyID properties.ID
	OwnerID    user.ID
	BuyerID    user.ID
	Date       string
	Time       string
	Notes      string
	Now        time.Time
}

// Schedule creates a visit in the scheduled state.
func Schedule(params ScheduleParams) (*Visit, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, ErrIDRequired
	}
	if strings.TrimSpace(string(params.PropertyID)) == "" {
		return nil, ErrPropertyRequired
	}
	if strings.TrimSpace(string(params.BuyerID)) == "" {
		return nil, ErrBuyerRequired
	}
	date, err := NormalizeDate(params.Date)
	if err != nil {
		return nil, err
	}
	slot := strings.TrimSpace(params.Time)
	if !OnGrid(slot) {
		return nil, ErrInvalidTime
	}
	now := params.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()

	visit := &Visit{
		ID:         params.ID,
		PropertyID: params.PropertyID,
		BuyerID:    params.BuyerID,
		Date:       date,
		Time:       slot,
		Status:     StatusScheduled,
		Notes:      strings.TrimSpace(params.Notes),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	visit.Record(VisitScheduled{
		VisitID:    visit.ID,
		PropertyID: visit.PropertyID,
		OwnerID:    params.OwnerID,
		BuyerID:    visit.BuyerID,
		Date:       visit.Date,
		Time:       visit.Time,
		At:         now,
	})
	return visit, nil
}

// NormalizeDate validates a YYYY-MM-DD calendar date.
func NormalizeDate(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	parsed, err := time.Parse(DateLayout, trimmed)
	if err != nil {
		return "", ErrInvalidDate
	}
	return parsed.Format(DateLayout), nil
}

// CanBeManagedBy reports whether actor booked the visit or owns its property.
func (v *Visit) CanBeManagedBy(actor, propertyOwner user.ID) bool {
	if actor == "" {
		return false
	}
	return actor == v.BuyerID || actor == propertyOwner
}

// Cancel moves a scheduled visit to cancelled. Any other state is rejected.
func (v *Visit) Cancel(by, propertyOwner user.ID, now time.Time) error {
	if v.Status != StatusScheduled {
		return ErrInvalidTransition
	}
	v.Status = StatusCancelled
	v.UpdatedAt = now.UTC()
	v.Record(VisitCancelled{
		VisitID:     v.ID,
		PropertyID:  v.PropertyID,
		OwnerID:     propertyOwner,
		BuyerID:     v.BuyerID,
		CancelledBy: by,
		Date:        v.Date,
		Time:        v.Time,
		At:          v.UpdatedAt,
	})
	return nil
}

// Complete moves a scheduled visit to completed.
func (v *Visit) Complete(propertyOwner user.ID, now time.Time) error {
	if v.Status != StatusScheduled {
		return ErrInvalidTransition
	}
	v.Status = StatusCompleted
	v.UpdatedAt = now.UTC()
	v.Record(VisitCompleted{
		VisitID:    v.ID,
		PropertyID: v.PropertyID,
		OwnerID:    propertyOwner,
		BuyerID:    v.BuyerID,
		At:         v.UpdatedAt,
	})
	return nil
}

// QualifiesForReview reports whether the visit establishes review eligibility.
func (v *Visit) QualifiesForReview() bool {
	return v != nil && (v.Status == StatusScheduled || v.Status == StatusCompleted)
}

// Clone copies the persistent fields without pending events.
func (v *Visit) Clone() *Visit {
	if v == nil {
		return nil
	}
	return &Visit{
		ID:         v.ID,
		PropertyID: v.PropertyID,
		BuyerID:    v.BuyerID,
		Date:       v.Date,
		Time:       v.Time,
		Status:     v.Status,
		Notes:      v.Notes,
		CreatedAt:  v.CreatedAt,
		UpdatedAt:  v.UpdatedAt,
	}
}
