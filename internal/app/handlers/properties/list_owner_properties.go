package properties

import (
	"context"
	"strings"

	"iasrentals/internal/app/dto"
	"iasrentals/internal/app/handlers/support"
	"iasrentals/internal/app/queries"
	"iasrentals/internal/app/uow"
	domainuser "iasrentals/internal/domain/user"
)

const listOwnerPropertiesKey = "properties.by_owner"

type ListOwnerPropertiesQuery struct {
	OwnerID string `validate:"required"`
}

func (ListOwnerPropertiesQuery) Key() string { return listOwnerPropertiesKey }

type ListOwnerPropertiesHandler struct {
	UoWFactory uow.UoWFactory
}

// Handle returns the owner's properties newest first.
func (h *ListOwnerPropertiesHandler) Handle(ctx context.Context, q ListOwnerPropertiesQuery) (dto.ListingCollection, error) {
	unit, ctx, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.ListingCollection{}, err
	}
	defer unit.Close(ctx)

	owner, err := unit.Users().ByID(ctx, domainuser.ID(strings.TrimSpace(q.OwnerID)))
	if err != nil {
		return dto.ListingCollection{}, err
	}
	list, err := unit.Properties().ListByOwner(ctx, owner.ID)
	if err != nil {
		return dto.ListingCollection{}, err
	}
	return collect(list), nil
}

var _ queries.Handler[ListOwnerPropertiesQuery, dto.ListingCollection] = (*ListOwnerPropertiesHandler)(nil)
