package properties

import (
	"context"

	"iasrentals/internal/app/dto"
	"iasrentals/internal/app/handlers/support"
	"iasrentals/internal/app/queries"
	"iasrentals/internal/app/uow"
	domainproperties "iasrentals/internal/domain/properties"
)

const searchListingsKey = "properties.search"

// SearchListingsQuery filters the public catalog. Unknown price ranges do
// not constrain the result.
type SearchListingsQuery struct {
	Query        string
	PriceRange   string
	ForSale      bool
	ForRent      bool
	TwoPlusRooms bool
}

func (SearchListingsQuery) Key() string { return searchListingsKey }

type SearchListingsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *SearchListingsHandler) Handle(ctx context.Context, q SearchListingsQuery) (dto.ListingCollection, error) {
	unit, ctx, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.ListingCollection{}, err
	}
	defer unit.Close(ctx)

	found, err := unit.Properties().Search(ctx, domainproperties.SearchParams{
		Query:        q.Query,
		PriceRange:   domainproperties.PriceRange(q.PriceRange),
		ForSale:      q.ForSale,
		ForRent:      q.ForRent,
		TwoPlusRooms: q.TwoPlusRooms,
	}.Normalized())
	if err != nil {
		return dto.ListingCollection{}, err
	}
	return collect(found), nil
}

func collect(list []*domainproperties.Property) dto.ListingCollection {
	items := make([]dto.ListingItem, 0, len(list))
	for _, prop := range list {
		items = append(items, dto.MapListingItem(prop))
	}
	return dto.ListingCollection{Listings: items, Total: len(items)}
}

var _ queries.Handler[SearchListingsQuery, dto.ListingCollection] = (*SearchListingsHandler)(nil)
