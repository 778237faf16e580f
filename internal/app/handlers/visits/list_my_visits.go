package visits

import (
	"context"

	"iasrentals/internal/app/dto"
	"iasrentals/internal/app/handlers/support"
	"iasrentals/internal/app/queries"
	"iasrentals/internal/app/uow"
	domainproperties "iasrentals/internal/domain/properties"
	domainuser "iasrentals/internal/domain/user"
	domainvisits "iasrentals/internal/domain/visits"
)

const listMyVisitsKey = "visits.mine"

// ListMyVisitsQuery lists scheduled visits from the actor's side: booked by
// a buyer, or on the properties of an owner.
type ListMyVisitsQuery struct {
	ActorID   string          `validate:"required"`
	ActorRole domainuser.Role `validate:"required,oneof=buyer owner"`
}

func (ListMyVisitsQuery) Key() string { return listMyVisitsKey }

type ListMyVisitsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListMyVisitsHandler) Handle(ctx context.Context, q ListMyVisitsQuery) ([]dto.Visit, error) {
	unit, ctx, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	defer unit.Close(ctx)

	actor := domainuser.ID(q.ActorID)
	criteria := domainvisits.Criteria{Statuses: []domainvisits.Status{domainvisits.StatusScheduled}}
	lookup := support.NewLookup(unit)

	switch q.ActorRole {
	case domainuser.RoleOwner:
		owned, err := unit.Properties().ListByOwner(ctx, actor)
		if err != nil {
			return nil, err
		}
		if len(owned) == 0 {
			return []dto.Visit{}, nil
		}
		lookup.Remember(nil, owned)
		criteria.PropertyIDs = make([]domainproperties.ID, 0, len(owned))
		for _, prop := range owned {
			criteria.PropertyIDs = append(criteria.PropertyIDs, prop.ID)
		}
	default:
		criteria.BuyerID = actor
	}

	found, err := unit.Visits().Find(ctx, criteria)
	if err != nil {
		return nil, err
	}
	out := make([]dto.Visit, 0, len(found))
	for _, visit := range found {
		item, err := enrich(ctx, lookup, visit)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

var _ queries.Handler[ListMyVisitsQuery, []dto.Visit] = (*ListMyVisitsHandler)(nil)
