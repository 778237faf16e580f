package reviews

import (
	"time"

	"iasrentals/internal/domain/properties"
	"iasrentals/internal/domain/user"
)

const EventReviewCreated = "review.created"

type ReviewCreated struct {
	ReviewID   ID            `json:"review_id"`
	OwnerID    user.ID       `json:"owner_id"`
	BuyerID    user.ID       `json:"buyer_id"`
	PropertyID properties.ID `json:"property_id"`
	Rating     int           `json:"rating"`
	At         time.Time     `json:"at"`
}

func (e ReviewCreated) EventName() string     { return EventReviewCreated }
func (e ReviewCreated) AggregateID() string   { return string(e.ReviewID) }
func (e ReviewCreated) OccurredAt() time.Time { return e.At }
