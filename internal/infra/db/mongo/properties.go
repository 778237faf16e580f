package mongo

import (
	"context"
	"errors"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainproperties "iasrentals/internal/domain/properties"
	domainuser "iasrentals/internal/domain/user"
)

type PropertyRepository struct {
	col *mongo.Collection
}

func NewPropertyRepository(db *mongo.Database) *PropertyRepository {
	return &PropertyRepository{col: db.Collection("properties")}
}

func (r *PropertyRepository) ensureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "transaction", Value: 1}, {Key: "price.amount", Value: 1}}},
	})
	return err
}

func (r *PropertyRepository) ByID(ctx context.Context, id domainproperties.ID) (*domainproperties.Property, error) {
	var doc propertyDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainproperties.ErrNotFound
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

func (r *PropertyRepository) Save(ctx context.Context, p *domainproperties.Property) error {
	if p == nil || p.ID == "" {
		return domainproperties.ErrIDRequired
	}
	doc := newPropertyDocument(p)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	return err
}

func (r *PropertyRepository) ListByOwner(ctx context.Context, ownerID domainuser.ID) ([]*domainproperties.Property, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	return r.find(ctx, bson.M{"owner_id": string(ownerID)}, opts)
}

func (r *PropertyRepository) Search(ctx context.Context, params domainproperties.SearchParams) ([]*domainproperties.Property, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	return r.find(ctx, searchFilter(params), opts)
}

func (r *PropertyRepository) Count(ctx context.Context) (int, error) {
	n, err := r.col.CountDocuments(ctx, bson.M{})
	return int(n), err
}

func (r *PropertyRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*domainproperties.Property, error) {
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var docs []propertyDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*domainproperties.Property, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func searchFilter(params domainproperties.SearchParams) bson.M {
	params = params.Normalized()
	filter := bson.M{}
	if tx := params.TransactionFilter(); tx != "" {
		filter["transaction"] = string(tx)
	}
	if params.TwoPlusRooms {
		filter["rooms"] = bson.M{"$gte": 2}
	}
	lower, upper := params.PriceRange.Bounds()
	if lower != nil || upper != nil {
		price := bson.M{}
		if lower != nil {
			price["$gte"] = *lower
		}
		if upper != nil {
			price["$lte"] = *upper
		}
		filter["price.amount"] = price
	}
	if params.Query != "" {
		pattern := containsPattern(params.Query)
		filter["$or"] = bson.A{
			bson.M{"city": pattern},
			bson.M{"description": pattern},
			bson.M{"address": pattern},
		}
	}
	return filter
}

func containsPattern(q string) bson.M {
	return bson.M{"$regex": regexp.QuoteMeta(q), "$options": "i"}
}

type priceDocument struct {
	Amount   float64 `bson:"amount"`
	Currency string  `bson:"currency"`
	Period   string  `bson:"period"`
}

type imageDocument struct {
	ID        string `bson:"id"`
	URL       string `bson:"url"`
	IsPrimary bool   `bson:"is_primary"`
	Order     int    `bson:"order"`
}

// propertyDocument is the single stored shape; optional attributes are
// nullable fields rather than alternate names.
type propertyDocument struct {
	ID           string          `bson:"_id"`
	OwnerID      string          `bson:"owner_id"`
	Title        string          `bson:"title"`
	Description  string          `bson:"description"`
	Address      string          `bson:"address"`
	City         string          `bson:"city"`
	Price        priceDocument   `bson:"price"`
	Transaction  string          `bson:"transaction"`
	PropertyType string          `bson:"property_type"`
	Rooms        int             `bson:"rooms"`
	Bathrooms    int             `bson:"bathrooms"`
	AreaSqM      float64         `bson:"area_sqm"`
	Floor        *int            `bson:"floor"`
	YearBuilt    *int            `bson:"year_built"`
	HasParking   bool            `bson:"has_parking"`
	HasElevator  bool            `bson:"has_elevator"`
	HasBalcony   bool            `bson:"has_balcony"`
	IsFurnished  bool            `bson:"is_furnished"`
	IsVerified   bool            `bson:"is_verified"`
	Images       []imageDocument `bson:"images"`
	CreatedAt    time.Time       `bson:"created_at"`
}

func newPropertyDocument(p *domainproperties.Property) propertyDocument {
	images := make([]imageDocument, 0, len(p.Images))
	for _, img := range p.Images {
		images = append(images, imageDocument{ID: img.ID, URL: img.URL, IsPrimary: img.IsPrimary, Order: img.Order})
	}
	return propertyDocument{
		ID:           string(p.ID),
		OwnerID:      string(p.OwnerID),
		Title:        p.Title,
		Description:  p.Description,
		Address:      p.Address,
		City:         p.City,
		Price:        priceDocument{Amount: p.Price.Amount, Currency: p.Price.Currency, Period: p.Price.Period},
		Transaction:  string(p.Transaction),
		PropertyType: p.PropertyType,
		Rooms:        p.Rooms,
		Bathrooms:    p.Bathrooms,
		AreaSqM:      p.AreaSqM,
		Floor:        p.Floor,
		YearBuilt:    p.YearBuilt,
		HasParking:   p.HasParking,
		HasElevator:  p.HasElevator,
		HasBalcony:   p.HasBalcony,
		IsFurnished:  p.IsFurnished,
		IsVerified:   p.IsVerified,
		Images:       images,
		CreatedAt:    p.CreatedAt,
	}
}

func (d propertyDocument) toDomain() *domainproperties.Property {
	images := make([]domainproperties.Image, 0, len(d.Images))
	for _, img := range d.Images {
		images = append(images, domainproperties.Image{ID: img.ID, URL: img.URL, IsPrimary: img.IsPrimary, Order: img.Order})
	}
	return &domainproperties.Property{
		ID:           domainproperties.ID(d.ID),
		OwnerID:      domainuser.ID(d.OwnerID),
		Title:        d.Title,
		Description:  d.Description,
		Address:      d.Address,
		City:         d.City,
		Price:        domainproperties.Price{Amount: d.Price.Amount, Currency: d.Price.Currency, Period: d.Price.Period},
		Transaction:  domainproperties.Transaction(d.Transaction),
		PropertyType: d.PropertyType,
		Rooms:        d.Rooms,
		Bathrooms:    d.Bathrooms,
		AreaSqM:      d.AreaSqM,
		Floor:        d.Floor,
		YearBuilt:    d.YearBuilt,
		HasParking:   d.HasParking,
		HasElevator:  d.HasElevator,
		HasBalcony:   d.HasBalcony,
		IsFurnished:  d.IsFurnished,
		IsVerified:   d.IsVerified,
		Images:       images,
		CreatedAt:    d.CreatedAt.UTC(),
	}
}

var _ domainproperties.Repository = (*PropertyRepository)(nil)
