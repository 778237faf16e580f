package properties

import (
	"context"
	"fmt"
	"strings"
	"time"

	"iasrentals/internal/domain/shared/fault"
	"iasrentals/internal/domain/user"
)

var (
	ErrNotFound           = fault.New(fault.NotFound, "properties: property not found")
	ErrIDRequired         = fault.New(fault.BadRequest, "properties: id is required")
	ErrOwnerRequired      = fault.New(fault.BadRequest, "properties: owner is required")
	ErrTitleRequired      = fault.New(fault.BadRequest, "properties: title is required")
	ErrAddressRequired    = fault.New(fault.BadRequest, "properties: address is required")
	ErrCityRequired       = fault.New(fault.BadRequest, "properties: city is required")
	ErrInvalidPrice       = fault.New(fault.BadRequest, "properties: price must be non-negative")
	ErrInvalidRooms       = fault.New(fault.BadRequest, "properties: rooms must be at least 1")
	ErrInvalidBathrooms   = fault.New(fault.BadRequest, "properties: bathrooms must be non-negative")
	ErrInvalidArea        = fault.New(fault.BadRequest, "properties: area must be non-negative")
	ErrInvalidTransaction = fault.New(fault.BadRequest, "properties: transaction type must be 'rent' or 'sale'")
	ErrImageURLRequired   = fault.New(fault.BadRequest, "properties: image url is required")
	ErrNotOwner           = fault.New(fault.Forbidden, "properties: only the owner can modify this property")
)

type ID string

type Transaction string

const (
	TransactionRent Transaction = "rent"
	TransactionSale Transaction = "sale"
)

func ParseTransaction(raw string) (Transaction, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "rent":
		return TransactionRent, nil
	case "sale":
		return TransactionSale, nil
	default:
		return "", ErrInvalidTransaction
	}
}

const (
	DefaultCurrency   = "RON"
	DefaultRentPeriod = "lună"
	SalePeriod        = "one-time"
)

type Price struct {
	Amount   float64
	Currency string
	Period   string
}

type Image struct {
	ID        string
	URL       string
	IsPrimary bool
	Order     int
}

type Property struct {
	ID           ID
	OwnerID      user.ID
	Title        string
	Description  string
	Address      string
	City         string
	Price        Price
	Transaction  Transaction
	PropertyType string
	Rooms        int
	Bathrooms    int
	AreaSqM      float64
	Floor        *int
	YearBuilt    *int
	HasParking   bool
	HasElevator  bool
	HasBalcony   bool
	IsFurnished  bool
	IsVerified   bool
	Images       []Image
	CreatedAt    time.Time
}

type Repository interface {
	ByID(ctx context.Context, id ID) (*Property, error)
	Save(ctx context.Context, property *Property) error
	ListByOwner(ctx context.Context, ownerID user.ID) ([]*Property, error)
	Search(ctx context.Context, params SearchParams) ([]*Property, error)
	Count(ctx context.Context) (int, error)
}

type CreateParams struct {
	ID           ID
	OwnerID      user.ID
	Title        string
	Description  string
	Address      string
	City         string
	Price        Price
	Transaction  Transaction
	PropertyType string
	Rooms        int
	Bathrooms    int
	AreaSqM      float64
	Floor        *int
	YearBuilt    *int
	HasParking   bool
	HasElevator  bool
	HasBalcony   bool
	IsFurnished  bool
	IsVerified   bool
	Now          time.Time
}

func NewProperty(params CreateParams) (*Property, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, ErrIDRequired
	}
	if strings.TrimSpace(string(params.OwnerID)) == "" {
		return nil, ErrOwnerRequired
	}
	if strings.TrimSpace(params.Title) == "" {
		return nil, ErrTitleRequired
	}
	if strings.TrimSpace(params.Address) == "" {
		return nil, ErrAddressRequired
	}
	if strings.TrimSpace(params.City) == "" {
		return nil, ErrCityRequired
	}
	if params.Price.Amount < 0 {
		return nil, ErrInvalidPrice
	}
	if params.Rooms < 1 {
		return nil, ErrInvalidRooms
	}
	if params.Bathrooms < 0 {
		return nil, ErrInvalidBathrooms
	}
	if params.AreaSqM < 0 {
		return nil, ErrInvalidArea
	}
	transaction, err := ParseTransaction(string(params.Transaction))
	if err != nil {
		return nil, err
	}

	price := params.Price
	price.Currency = strings.ToUpper(strings.TrimSpace(price.Currency))
	if price.Currency == "" {
		price.Currency = DefaultCurrency
	}
	price.Period = strings.TrimSpace(price.Period)
	switch {
	case transaction == TransactionSale:
		price.Period = SalePeriod
	case price.Period == "":
		price.Period = DefaultRentPeriod
	}

	propertyType := strings.TrimSpace(params.PropertyType)
	if propertyType == "" {
		propertyType = "apartment"
	}

	now := params.Now
	if now.IsZero() {
		now = time.Now()
	}

	return &Property{
		ID:           params.ID,
		OwnerID:      params.OwnerID,
		Title:        strings.TrimSpace(params.Title),
		Description:  strings.TrimSpace(params.Description),
		Address:      strings.TrimSpace(params.Address),
		City:         strings.TrimSpace(params.City),
		Price:        price,
		Transaction:  transaction,
		PropertyType: propertyType,
		Rooms:        params.Rooms,
		Bathrooms:    params.Bathrooms,
		AreaSqM:      params.AreaSqM,
		Floor:        copyInt(params.Floor),
		YearBuilt:    copyInt(params.YearBuilt),
		HasParking:   params.HasParking,
		HasElevator:  params.HasElevator,
		HasBalcony:   params.HasBalcony,
		IsFurnished:  params.IsFurnished,
		IsVerified:   params.IsVerified,
		CreatedAt:    now.UTC(),
	}, nil
}

// BelongsTo reports whether ownerID owns the property.
func (p *Property) BelongsTo(ownerID user.ID) bool {
	return p != nil && p.OwnerID == ownerID
}

// AddImage appends an image; the first image attached becomes primary.
func (p *Property) AddImage(id, url string) (Image, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return Image{}, ErrImageURLRequired
	}
	image := Image{
		ID:        id,
		URL:       url,
		IsPrimary: len(p.Images) == 0,
		Order:     len(p.Images),
	}
	p.Images = append(p.Images, image)
	return image, nil
}

// PrimaryImageURL returns the primary image url, or "" when none is attached.
func (p *Property) PrimaryImageURL() string {
	for _, img := range p.Images {
		if img.IsPrimary {
			return img.URL
		}
	}
	return ""
}

// OrderedImages returns images primary first, then by order.
func (p *Property) OrderedImages() []Image {
	out := make([]Image, 0, len(p.Images))
	for _, img := range p.Images {
		if img.IsPrimary {
			out = append(out, img)
		}
	}
	for _, img := range p.Images {
		if !img.IsPrimary {
			out = append(out, img)
		}
	}
	return out
}

// DisplayPrice renders the price as shown on listing cards: "500 RON/lună"
// for rentals and "85000 EUR" for sales. The amount is truncated.
func (p *Property) DisplayPrice() string {
	amount := int64(p.Price.Amount)
	if p.Transaction == TransactionRent {
		return fmt.Sprintf("%d %s/%s", amount, p.Price.Currency, p.Price.Period)
	}
	return fmt.Sprintf("%d %s", amount, p.Price.Currency)
}

func (p *Property) Clone() *Property {
	if p == nil {
		return nil
	}
	cp := *p
	cp.Floor = copyInt(p.Floor)
	cp.YearBuilt = copyInt(p.YearBuilt)
	cp.Images = append([]Image(nil), p.Images...)
	return &cp
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}
