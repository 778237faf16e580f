package visits

import (
	"context"

	"iasrentals/internal/app/dto"
	"iasrentals/internal/app/handlers/support"
	domainvisits "iasrentals/internal/domain/visits"
)

func enrich(ctx context.Context, lookup *support.Lookup, visit *domainvisits.Visit) (dto.Visit, error) {
	display := dto.VisitDisplay{}
	prop, err := lookup.Property(ctx, visit.PropertyID)
	if err != nil {
		return dto.Visit{}, err
	}
	if prop != nil {
		display.OwnerID = string(prop.OwnerID)
		display.PropertyTitle = prop.Title
		display.PropertyAddress = prop.Address
	}
	if display.BuyerName, err = lookup.UserName(ctx, visit.BuyerID); err != nil {
		return dto.Visit{}, err
	}
	return dto.MapVisit(visit, display), nil
}
