package dto

import (
	"time"

	domainreviews "iasrentals/internal/domain/reviews"
)

// Review is a review enriched with buyer name and property title.
type Review struct {
	ID            string    `json:"id"`
	OwnerID       string    `json:"owner_id"`
	BuyerID       string    `json:"buyer_id"`
	PropertyID    string    `json:"property_id"`
	VisitID       string    `json:"visit_id,omitempty"`
	Rating        int       `json:"rating"`
	Comment       string    `json:"comment,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	BuyerName     string    `json:"buyer_name,omitempty"`
	PropertyTitle string    `json:"property_title,omitempty"`
}

type OwnerReviews struct {
	OwnerID       string   `json:"owner_id"`
	AverageRating float64  `json:"average_rating"`
	TotalReviews  int      `json:"total_reviews"`
	Reviews       []Review `json:"reviews"`
}

func MapReview(review *domainreviews.Review, buyerName, propertyTitle string) Review {
	if review == nil {
		return Review{}
	}
	return Review{
		ID:            string(review.ID),
		OwnerID:       string(review.OwnerID),
		BuyerID:       string(review.BuyerID),
		PropertyID:    string(review.PropertyID),
		VisitID:       string(review.VisitID),
		Rating:        review.Rating,
		Comment:       review.Comment,
		CreatedAt:     review.CreatedAt,
		BuyerName:     buyerName,
		PropertyTitle: propertyTitle,
	}
}
