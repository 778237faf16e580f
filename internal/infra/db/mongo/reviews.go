package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainproperties "iasrentals/internal/domain/properties"
	domainreviews "iasrentals/internal/domain/reviews"
	domainuser "iasrentals/internal/domain/user"
	domainvisits "iasrentals/internal/domain/visits"
)

// ReviewRepository stores immutable reviews, unique per
// (buyer, owner, property).
type ReviewRepository struct {
	col *mongo.Collection
}

func NewReviewRepository(db *mongo.Database) *ReviewRepository {
	return &ReviewRepository{col: db.Collection("reviews")}
}

func (r *ReviewRepository) ensureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "buyer_id", Value: 1}, {Key: "owner_id", Value: 1}, {Key: "property_id", Value: 1}},
			Options: options.Index().SetName("uniq_review_triple").SetUnique(true),
		},
		{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "property_id", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	return err
}

func (r *ReviewRepository) Insert(ctx context.Context, review *domainreviews.Review) error {
	if review == nil || review.ID == "" {
		return domainreviews.ErrIDRequired
	}
	_, err := r.col.InsertOne(ctx, newReviewDocument(review))
	if mongo.IsDuplicateKeyError(err) {
		return domainreviews.ErrDuplicateReview
	}
	return err
}

func (r *ReviewRepository) Find(ctx context.Context, c domainreviews.Criteria) ([]*domainreviews.Review, error) {
	filter := bson.M{}
	if c.OwnerID != "" {
		filter["owner_id"] = string(c.OwnerID)
	}
	if c.BuyerID != "" {
		filter["buyer_id"] = string(c.BuyerID)
	}
	if c.PropertyID != "" {
		filter["property_id"] = string(c.PropertyID)
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	if c.Limit > 0 {
		opts.SetLimit(int64(c.Limit))
	}
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var docs []reviewDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*domainreviews.Review, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

type reviewDocument struct {
	ID         string    `bson:"_id"`
	OwnerID    string    `bson:"owner_id"`
	BuyerID    string    `bson:"buyer_id"`
	PropertyID string    `bson:"property_id"`
	VisitID    string    `bson:"visit_id,omitempty"`
	Rating     int       `bson:"rating"`
	Comment    string    `bson:"comment,omitempty"`
	CreatedAt  time.Time `bson:"created_at"`
}

func newReviewDocument(r *domainreviews.Review) reviewDocument {
	return reviewDocument{
		ID:         string(r.ID),
		OwnerID:    string(r.OwnerID),
		BuyerID:    string(r.BuyerID),
		PropertyID: string(r.PropertyID),
		VisitID:    string(r.VisitID),
		Rating:     r.Rating,
		Comment:    r.Comment,
		CreatedAt:  r.CreatedAt,
	}
}

func (d reviewDocument) toDomain() *domainreviews.Review {
	return &domainreviews.Review{
		ID:         domainreviews.ID(d.ID),
		OwnerID:    domainuser.ID(d.OwnerID),
		BuyerID:    domainuser.ID(d.BuyerID),
		PropertyID: domainproperties.ID(d.PropertyID),
		VisitID:    domainvisits.ID(d.VisitID),
		Rating:     d.Rating,
		Comment:    d.Comment,
		CreatedAt:  d.CreatedAt.UTC(),
	}
}

var _ domainreviews.Repository = (*ReviewRepository)(nil)
