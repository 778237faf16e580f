package visits

import (
	"time"

	"iasrentals/internal/domain/properties"
	"iasrentals/internal/domain/user"
)

const (
	EventVisitScheduled = "visit.scheduled"
	EventVisitCancelled = "visit.cancelled"
	EventVisitCompleted = "visit.completed"
)

type VisitScheduled struct {
	VisitID    ID            `json:"visit_id"`
	PropertyID properties.ID `json:"property_id"`
	OwnerID    user.ID       `json:"owner_id"`
	BuyerID    user.ID       `json:"buyer_id"`
	Date       string        `json:"visit_date"`
	Time       string        `json:"visit_time"`
	At         time.Time     `json:"at"`
}

func (e VisitScheduled) EventName() string     { return EventVisitScheduled }
func (e VisitScheduled) AggregateID() string   { return string(e.VisitID) }
func (e VisitScheduled) OccurredAt() time.Time { return e.At }

type VisitCancelled struct {
	VisitID     ID            `json:"visit_id"`
	PropertyID  properties.ID `json:"property_id"`
	OwnerID     user.ID       `json:"owner_id"`
	BuyerID     user.ID       `json:"buyer_id"`
	CancelledBy user.ID       `json:"cancelled_by"`
	Date        string        `json:"visit_date"`
	Time        string        `json:"visit_time"`
	At          time.Time     `json:"at"`
}

func (e VisitCancelled) EventName() string     { return EventVisitCancelled }
func (e VisitCancelled) AggregateID() string   { return string(e.VisitID) }
func (e VisitCancelled) OccurredAt() time.Time { return e.At }

type VisitCompleted struct {
	VisitID    ID            `json:"visit_id"`
	PropertyID properties.ID `json:"property_id"`
	OwnerID    user.ID       `json:"owner_id"`
	BuyerID    user.ID       `json:"buyer_id"`
	At         time.Time     `json:"at"`
}

func (e VisitCompleted) EventName() string     { return EventVisitCompleted }
func (e VisitCompleted) AggregateID() string   { return string(e.VisitID) }
func (e VisitCompleted) OccurredAt() time.Time { return e.At }
