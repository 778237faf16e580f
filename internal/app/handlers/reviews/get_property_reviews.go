package reviews

import (
	"context"
	"strings"

	"iasrentals/internal/app/dto"
	"iasrentals/internal/app/handlers/support"
	"iasrentals/internal/app/queries"
	"iasrentals/internal/app/uow"
	domainproperties "iasrentals/internal/domain/properties"
	domainreviews "iasrentals/internal/domain/reviews"
)

const getPropertyReviewsKey = "reviews.by_property"

type GetPropertyReviewsQuery struct {
	PropertyID string `validate:"required"`
}

func (GetPropertyReviewsQuery) Key() string { return getPropertyReviewsKey }

type GetPropertyReviewsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetPropertyReviewsHandler) Handle(ctx context.Context, q GetPropertyReviewsQuery) ([]dto.Review, error) {
	unit, ctx, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	defer unit.Close(ctx)

	prop, err := unit.Properties().ByID(ctx, domainproperties.ID(strings.TrimSpace(q.PropertyID)))
	if err != nil {
		return nil, err
	}
	list, err := unit.Reviews().Find(ctx, domainreviews.Criteria{PropertyID: prop.ID})
	if err != nil {
		return nil, err
	}
	lookup := support.NewLookup(unit)
	lookup.Remember(nil, []*domainproperties.Property{prop})
	return enrichAll(ctx, lookup, list)
}

var _ queries.Handler[GetPropertyReviewsQuery, []dto.Review] = (*GetPropertyReviewsHandler)(nil)
