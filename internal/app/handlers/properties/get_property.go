package properties

import (
	"context"
	"strings"

	"iasrentals/internal/app/dto"
	"iasrentals/internal/app/handlers/support"
	"iasrentals/internal/app/queries"
	"iasrentals/internal/app/uow"
	domainproperties "iasrentals/internal/domain/properties"
)

const getPropertyKey = "properties.get"

type GetPropertyQuery struct {
	ID string `validate:"required"`
}

func (GetPropertyQuery) Key() string { return getPropertyKey }

type GetPropertyHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetPropertyHandler) Handle(ctx context.Context, q GetPropertyQuery) (dto.PropertyDetails, error) {
	unit, ctx, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.PropertyDetails{}, err
	}
	defer unit.Close(ctx)

	prop, err := unit.Properties().ByID(ctx, domainproperties.ID(strings.TrimSpace(q.ID)))
	if err != nil {
		return dto.PropertyDetails{}, err
	}
	owner, err := support.NewLookup(unit).User(ctx, prop.OwnerID)
	if err != nil {
		return dto.PropertyDetails{}, err
	}
	return dto.MapPropertyDetails(prop, owner), nil
}

var _ queries.Handler[GetPropertyQuery, dto.PropertyDetails] = (*GetPropertyHandler)(nil)
