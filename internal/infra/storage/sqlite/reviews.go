package sqlite

import (
	"context"
	"strings"

	"github.com/huandu/go-sqlbuilder"

	domainproperties "iasrentals/internal/domain/properties"
	domainreviews "iasrentals/internal/domain/reviews"
	domainuser "iasrentals/internal/domain/user"
	domainvisits "iasrentals/internal/domain/visits"
)

type ReviewRepository struct {
	db *DB
}

func NewReviewRepository(db *DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

func (r *ReviewRepository) Insert(ctx context.Context, review *domainreviews.Review) error {
	if review == nil || strings.TrimSpace(string(review.ID)) == "" {
		return domainreviews.ErrIDRequired
	}
	_, err := r.db.conn(ctx).ExecContext(ctx, `
		INSERT INTO reviews (id, owner_id, buyer_id, property_id, visit_id, rating, comment, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		string(review.ID), string(review.OwnerID), string(review.BuyerID), string(review.PropertyID),
		string(review.VisitID), review.Rating, review.Comment, toNanos(review.CreatedAt))
	if isUniqueViolation(err) {
		return domainreviews.ErrDuplicateReview
	}
	return err
}

// Find returns matching reviews newest first; equal timestamps keep the
// later insert first.
func (r *ReviewRepository) Find(ctx context.Context, c domainreviews.Criteria) ([]*domainreviews.Review, error) {
	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select("id", "owner_id", "buyer_id", "property_id", "visit_id", "rating", "comment", "created_at").From("reviews")
	var where []string
	if c.OwnerID != "" {
		where = append(where, sb.Equal("owner_id", string(c.OwnerID)))
	}
	if c.BuyerID != "" {
		where = append(where, sb.Equal("buyer_id", string(c.BuyerID)))
	}
	if c.PropertyID != "" {
		where = append(where, sb.Equal("property_id", string(c.PropertyID)))
	}
	if len(where) > 0 {
		sb.Where(where...)
	}
	sb.OrderBy("created_at DESC", "rowid DESC")
	if c.Limit > 0 {
		sb.Limit(c.Limit)
	}
	query, args := sb.Build()
	rows, err := r.db.conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*domainreviews.Review, 0)
	for rows.Next() {
		var (
			review                                    domainreviews.Review
			id, ownerID, buyerID, propertyID, visitID string
			createdAt                                 int64
		)
		if err := rows.Scan(&id, &ownerID, &buyerID, &propertyID, &visitID, &review.Rating, &review.Comment, &createdAt); err != nil {
			return nil, err
		}
		review.ID = domainreviews.ID(id)
		review.OwnerID = domainuser.ID(ownerID)
		review.BuyerID = domainuser.ID(buyerID)
		review.PropertyID = domainproperties.ID(propertyID)
		review.VisitID = domainvisits.ID(visitID)
		review.CreatedAt = fromNanos(createdAt)
		out = append(out, &review)
	}
	return out, rows.Err()
}

var _ domainreviews.Repository = (*ReviewRepository)(nil)
