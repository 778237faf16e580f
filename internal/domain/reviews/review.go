package reviews

import (
	"context"
	"math"
	"strings"
	"time"

	"iasrentals/internal/domain/properties"
	"iasrentals/internal/domain/shared/events"
	"iasrentals/internal/domain/shared/fault"
	"iasrentals/internal/domain/user"
	"iasrentals/internal/domain/visits"
)

var (
	ErrInvalidRating    = fault.New(fault.BadRequest, "reviews: rating must be between 1 and 5")
	ErrDuplicateReview  = fault.New(fault.BadRequest, "reviews: you have already reviewed this owner for this property")
	ErrVisitNotOwned    = fault.New(fault.BadRequest, "reviews: visit does not exist or does not belong to you")
	ErrVisitRequired    = fault.New(fault.BadRequest, "reviews: you must have visited the property to review it")
	ErrOwnerNotFound    = fault.New(fault.NotFound, "reviews: owner not found")
	ErrPropertyNotFound = fault.New(fault.NotFound, "reviews: property not found or does not belong to this owner")
	ErrBuyersOnly       = fault.New(fault.Forbidden, "reviews: only buyers can leave reviews")
	ErrIDRequired       = fault.New(fault.BadRequest, "reviews: id is required")
)

const (
	MinRating = 1
	MaxRating = 5
)

type ID string

// Review is immutable once created.
type Review struct {
	ID         ID
	OwnerID    user.ID
	BuyerID    user.ID
	PropertyID properties.ID
	VisitID    visits.ID
	Rating     int
	Comment    string
	CreatedAt  time.Time
	events.EventRecorder
}

// Criteria filters Repository.Find. Empty fields do not constrain the result.
type Criteria struct {
	OwnerID    user.ID
	BuyerID    user.ID
	PropertyID properties.ID
	Limit      int
}

func (c Criteria) Matches(r *Review) bool {
	if r == nil {
		return false
	}
	if c.OwnerID != "" && r.OwnerID != c.OwnerID {
		return false
	}
	if c.BuyerID != "" && r.BuyerID != c.BuyerID {
		return false
	}
	if c.PropertyID != "" && r.PropertyID != c.PropertyID {
		return false
	}
	return true
}

// Repository persists reviews. Insert rejects a second review for the same
// (buyer, owner, property) with ErrDuplicateReview, atomically with respect
// to concurrent inserts. Find returns newest first.
type Repository interface {
	Insert(ctx context.Context, review *Review) error
	Find(ctx context.Context, criteria Criteria) ([]*Review, error)
}

type CreateParams struct {
	ID         ID
	OwnerID    user.ID
	BuyerID    user.ID
	PropertyID properties.ID
	VisitID    visits.ID
	Rating     int
	Comment    string
	Now        time.Time
}

func ValidateRating(rating int) error {
	if rating < MinRating || rating > MaxRating {
		return ErrInvalidRating
	}
	return nil
}

func New(params CreateParams) (*Review, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, ErrIDRequired
	}
	if err := ValidateRating(params.Rating); err != nil {
		return nil, err
	}
	now := params.Now
	if now.IsZero() {
		now = time.Now()
	}
	review := &Review{
		ID:         params.ID,
		OwnerID:    params.OwnerID,
		BuyerID:    params.BuyerID,
		PropertyID: params.PropertyID,
		VisitID:    params.VisitID,
		Rating:     params.Rating,
		Comment:    strings.TrimSpace(params.Comment),
		CreatedAt:  now.UTC(),
	}
	review.Record(ReviewCreated{
		ReviewID:   review.ID,
		OwnerID:    review.OwnerID,
		BuyerID:    review.BuyerID,
		PropertyID: review.PropertyID,
		Rating:     review.Rating,
		At:         review.CreatedAt,
	})
	return review, nil
}

func (r *Review) Clone() *Review {
	if r == nil {
		return nil
	}
	return &Review{
		ID:         r.ID,
		OwnerID:    r.OwnerID,
		BuyerID:    r.BuyerID,
		PropertyID: r.PropertyID,
		VisitID:    r.VisitID,
		Rating:     r.Rating,
		Comment:    r.Comment,
		CreatedAt:  r.CreatedAt,
	}
}

// AverageRating returns the mean rating rounded to one decimal, 0 for none.
func AverageRating(list []*Review) float64 {
	if len(list) == 0 {
		return 0
	}
	total := 0
	for _, r := range list {
		total += r.Rating
	}
	avg := float64(total) / float64(len(list))
	return math.Round(avg*10) / 10
}
