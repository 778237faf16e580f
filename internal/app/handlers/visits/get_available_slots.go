package visits

import (
	"context"
	"strings"

	"iasrentals/internal/app/dto"
	"iasrentals/internal/app/handlers/support"
	"iasrentals/internal/app/queries"
	"iasrentals/internal/app/uow"
	domainproperties "iasrentals/internal/domain/properties"
	domainvisits "iasrentals/internal/domain/visits"
)

const getAvailableSlotsKey = "visits.available_slots"

// GetAvailableSlotsQuery asks for the slot grid of one property on one date.
// Date is used as an opaque key.
type GetAvailableSlotsQuery struct {
	PropertyID string `validate:"required"`
	Date       string `validate:"required"`
}

func (GetAvailableSlotsQuery) Key() string { return getAvailableSlotsKey }

type GetAvailableSlotsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetAvailableSlotsHandler) Handle(ctx context.Context, q GetAvailableSlotsQuery) (dto.AvailableSlots, error) {
	unit, ctx, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.AvailableSlots{}, err
	}
	defer unit.Close(ctx)

	propertyID := domainproperties.ID(strings.TrimSpace(q.PropertyID))
	date := strings.TrimSpace(q.Date)
	if _, err := unit.Properties().ByID(ctx, propertyID); err != nil {
		return dto.AvailableSlots{}, err
	}
	booked, err := unit.Visits().Find(ctx, domainvisits.Criteria{
		PropertyIDs: []domainproperties.ID{propertyID},
		Date:        date,
		Statuses:    []domainvisits.Status{domainvisits.StatusScheduled},
	})
	if err != nil {
		return dto.AvailableSlots{}, err
	}
	return dto.AvailableSlots{
		PropertyID: string(propertyID),
		Date:       date,
		Slots:      dto.MapSlots(domainvisits.AvailableSlots(domainvisits.BookedTimes(booked))),
	}, nil
}

var _ queries.Handler[GetAvailableSlotsQuery, dto.AvailableSlots] = (*GetAvailableSlotsHandler)(nil)
