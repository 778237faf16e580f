package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainproperties "iasrentals/internal/domain/properties"
	domainuser "iasrentals/internal/domain/user"
	domainvisits "iasrentals/internal/domain/visits"
)

// VisitRepository stores visits. A partial unique index over
// (property_id, visit_date, visit_time) restricted to scheduled visits
// keeps a slot to a single active booking.
type VisitRepository struct {
	col *mongo.Collection
}

func NewVisitRepository(db *mongo.Database) *VisitRepository {
	return &VisitRepository{col: db.Collection("visits")}
}

func (r *VisitRepository) ensureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "property_id", Value: 1}, {Key: "visit_date", Value: 1}, {Key: "visit_time", Value: 1}},
			Options: options.Index().
				SetName("uniq_scheduled_slot").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"status": string(domainvisits.StatusScheduled)}),
		},
		{Keys: bson.D{{Key: "buyer_id", Value: 1}, {Key: "status", Value: 1}}},
	})
	return err
}

func (r *VisitRepository) ByID(ctx context.Context, id domainvisits.ID) (*domainvisits.Visit, error) {
	var doc visitDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainvisits.ErrNotFound
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

func (r *VisitRepository) Insert(ctx context.Context, v *domainvisits.Visit) error {
	if v == nil || v.ID == "" {
		return domainvisits.ErrIDRequired
	}
	_, err := r.col.InsertOne(ctx, newVisitDocument(v))
	if mongo.IsDuplicateKeyError(err) {
		return domainvisits.ErrSlotTaken
	}
	return err
}

func (r *VisitRepository) UpdateStatus(ctx context.Context, v *domainvisits.Visit) error {
	res, err := r.col.UpdateByID(ctx, string(v.ID), bson.M{"$set": bson.M{
		"status":     string(v.Status),
		"updated_at": v.UpdatedAt,
	}})
	if mongo.IsDuplicateKeyError(err) {
		return domainvisits.ErrSlotTaken
	}
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domainvisits.ErrNotFound
	}
	return nil
}

func (r *VisitRepository) Find(ctx context.Context, criteria domainvisits.Criteria) ([]*domainvisits.Visit, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "visit_date", Value: 1},
		{Key: "visit_time", Value: 1},
		{Key: "created_at", Value: 1},
	})
	if criteria.Limit > 0 {
		opts.SetLimit(int64(criteria.Limit))
	}
	cur, err := r.col.Find(ctx, visitFilter(criteria), opts)
	if err != nil {
		return nil, err
	}
	var docs []visitDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*domainvisits.Visit, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func visitFilter(c domainvisits.Criteria) bson.M {
	filter := bson.M{}
	if len(c.PropertyIDs) > 0 {
		ids := make(bson.A, 0, len(c.PropertyIDs))
		for _, id := range c.PropertyIDs {
			ids = append(ids, string(id))
		}
		filter["property_id"] = bson.M{"$in": ids}
	}
	if c.BuyerID != "" {
		filter["buyer_id"] = string(c.BuyerID)
	}
	if c.Date != "" {
		filter["visit_date"] = c.Date
	}
	if c.Time != "" {
		filter["visit_time"] = c.Time
	}
	if len(c.Statuses) > 0 {
		statuses := make(bson.A, 0, len(c.Statuses))
		for _, s := range c.Statuses {
			statuses = append(statuses, string(s))
		}
		filter["status"] = bson.M{"$in": statuses}
	}
	return filter
}

type visitDocument struct {
	ID         string    `bson:"_id"`
	PropertyID string    `bson:"property_id"`
	BuyerID    string    `bson:"buyer_id"`
	Date       string    `bson:"visit_date"`
	Time       string    `bson:"visit_time"`
	Status     string    `bson:"status"`
	Notes      string    `bson:"notes,omitempty"`
	CreatedAt  time.Time `bson:"created_at"`
	UpdatedAt  time.Time `bson:"updated_at"`
}

func newVisitDocument(v *domainvisits.Visit) visitDocument {
	return visitDocument{
		ID:         string(v.ID),
		PropertyID: string(v.PropertyID),
		BuyerID:    string(v.BuyerID),
		Date:       v.Date,
		Time:       v.Time,
		Status:     string(v.Status),
		Notes:      v.Notes,
		CreatedAt:  v.CreatedAt,
		UpdatedAt:  v.UpdatedAt,
	}
}

func (d visitDocument) toDomain() *domainvisits.Visit {
	return &domainvisits.Visit{
		ID:         domainvisits.ID(d.ID),
		PropertyID: domainproperties.ID(d.PropertyID),
		BuyerID:    domainuser.ID(d.BuyerID),
		Date:       d.Date,
		Time:       d.Time,
		Status:     domainvisits.Status(d.Status),
		Notes:      d.Notes,
		CreatedAt:  d.CreatedAt.UTC(),
		UpdatedAt:  d.UpdatedAt.UTC(),
	}
}

var _ domainvisits.Repository = (*VisitRepository)(nil)
