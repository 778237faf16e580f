package dto

import (
	"time"

	domainproperties "iasrentals/internal/domain/properties"
	domainuser "iasrentals/internal/domain/user"
)

// ListingItem is one card in the listing search results.
type ListingItem struct {
	ID          string `json:"id"`
	Price       string `json:"price"`
	Description string `json:"description"`
	Image       string `json:"image,omitempty"`
	Location    string `json:"location"`
	Rooms       int    `json:"rooms"`
	Type        string `json:"type"`
}

type ListingCollection struct {
	Listings []ListingItem `json:"listings"`
	Total    int           `json:"total"`
}

type PropertyImage struct {
	ID        string `json:"id"`
	URL       string `json:"image_url"`
	IsPrimary bool   `json:"is_primary"`
	Order     int    `json:"order"`
}

// PropertyDetails is the full property payload with the owner card.
type PropertyDetails struct {
	ID            string          `json:"id"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	Address       string          `json:"address"`
	Location      string          `json:"location"`
	Price         float64         `json:"price"`
	PriceCurrency string          `json:"price_currency"`
	PricePeriod   string          `json:"price_period"`
	Type          string          `json:"type"`
	PropertyType  string          `json:"property_type"`
	Rooms         int             `json:"rooms"`
	Bathrooms     int             `json:"bathrooms"`
	Surface       float64         `json:"surface"`
	Floor         *int            `json:"floor"`
	YearBuilt     *int            `json:"year_built"`
	HasParking    bool            `json:"has_parking"`
	HasElevator   bool            `json:"has_elevator"`
	HasBalcony    bool            `json:"has_balcony"`
	IsFurnished   bool            `json:"is_furnished"`
	IsVerified    bool            `json:"is_verified"`
	MonthlyCost   string          `json:"monthly_cost"`
	Images        []PropertyImage `json:"images"`
	Owner         OwnerCard       `json:"owner"`
	CreatedAt     time.Time       `json:"created_at"`
}

func MapListingItem(prop *domainproperties.Property) ListingItem {
	if prop == nil {
		return ListingItem{}
	}
	return ListingItem{
		ID:          string(prop.ID),
		Price:       prop.DisplayPrice(),
		Description: prop.Description,
		Image:       prop.PrimaryImageURL(),
		Location:    prop.City,
		Rooms:       prop.Rooms,
		Type:        string(prop.Transaction),
	}
}

func MapPropertyImage(img domainproperties.Image) PropertyImage {
	return PropertyImage{ID: img.ID, URL: img.URL, IsPrimary: img.IsPrimary, Order: img.Order}
}

func MapPropertyDetails(prop *domainproperties.Property, owner *domainuser.User) PropertyDetails {
	if prop == nil {
		return PropertyDetails{}
	}
	ordered := prop.OrderedImages()
	images := make([]PropertyImage, 0, len(ordered))
	for _, img := range ordered {
		images = append(images, MapPropertyImage(img))
	}
	return PropertyDetails{
		ID:            string(prop.ID),
		Title:         prop.Title,
		Description:   prop.Description,
		Address:       prop.Address,
		Location:      prop.City,
		Price:         prop.Price.Amount,
		PriceCurrency: prop.Price.Currency,
		PricePeriod:   prop.Price.Period,
		Type:          string(prop.Transaction),
		PropertyType:  prop.PropertyType,
		Rooms:         prop.Rooms,
		Bathrooms:     prop.Bathrooms,
		Surface:       prop.AreaSqM,
		Floor:         prop.Floor,
		YearBuilt:     prop.YearBuilt,
		HasParking:    prop.HasParking,
		HasElevator:   prop.HasElevator,
		HasBalcony:    prop.HasBalcony,
		IsFurnished:   prop.IsFurnished,
		IsVerified:    prop.IsVerified,
		MonthlyCost:   prop.DisplayPrice(),
		Images:        images,
		Owner:         MapOwnerCard(owner),
		CreatedAt:     prop.CreatedAt,
	}
}
