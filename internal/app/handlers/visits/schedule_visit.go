package visits

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"iasrentals/internal/app/commands"
	"iasrentals/internal/app/dto"
	"iasrentals/internal/app/handlers/support"
	"iasrentals/internal/app/middleware"
	"iasrentals/internal/app/outbox"
	"iasrentals/internal/app/uow"
	domainproperties "iasrentals/internal/domain/properties"
	domainuser "iasrentals/internal/domain/user"
	domainvisits "iasrentals/internal/domain/visits"
)

const scheduleVisitKey = "visits.schedule"

type ScheduleVisitCommand struct {
	PropertyID      string `validate:"required"`
	BuyerID         string `validate:"required"`
	Date            string `validate:"required"`
	Time            string `validate:"required"`
	Notes           string `validate:"max=2000"`
	IdempotencyKeyV string
}

func (ScheduleVisitCommand) Key() string { return scheduleVisitKey }

// IdempotencyKey scopes the client key to the buyer so keys never collide
// across accounts.
func (c ScheduleVisitCommand) IdempotencyKey() string {
	return middleware.ScopedIdempotencyKey(c.BuyerID, c.IdempotencyKeyV)
}

func (ScheduleVisitCommand) ResultPrototype() any { return &dto.Visit{} }

// ScheduleVisitHandler books a slot for a buyer. The pre-check gives the
// common case a clean Conflict; the repository's scheduled-slot constraint
// settles races between concurrent bookings.
type ScheduleVisitHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
	Now        func() time.Time
}

func (h *ScheduleVisitHandler) Handle(ctx context.Context, cmd ScheduleVisitCommand) (*dto.Visit, error) {
	unit, ctx, err := support.BeginUnit(ctx, h.UoWFactory, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer unit.Close(ctx)

	propertyID := domainproperties.ID(strings.TrimSpace(cmd.PropertyID))
	prop, err := unit.Properties().ByID(ctx, propertyID)
	if err != nil {
		return nil, err
	}

	visit, err := domainvisits.Schedule(domainvisits.ScheduleParams{
		ID:         domainvisits.ID(uuid.NewString()),
		PropertyID: prop.ID,
		OwnerID:    prop.OwnerID,
		BuyerID:    domainuser.ID(cmd.BuyerID),
		Date:       cmd.Date,
		Time:       cmd.Time,
		Notes:      cmd.Notes,
		Now:        nowOr(h.Now),
	})
	if err != nil {
		return nil, err
	}

	existing, err := unit.Visits().Find(ctx, domainvisits.Criteria{
		PropertyIDs: []domainproperties.ID{prop.ID},
		Date:        visit.Date,
		Time:        visit.Time,
		Statuses:    []domainvisits.Status{domainvisits.StatusScheduled},
		Limit:       1,
	})
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, domainvisits.ErrSlotTaken
	}
	if err := unit.Visits().Insert(ctx, visit); err != nil {
		return nil, err
	}
	if err := outbox.Drain(ctx, h.Outbox, h.Encoder, visit); err != nil {
		return nil, err
	}

	lookup := support.NewLookup(unit)
	lookup.Remember(nil, []*domainproperties.Property{prop})
	result, err := enrich(ctx, lookup, visit)
	if err != nil {
		return nil, err
	}
	if err := unit.Commit(ctx); err != nil {
		return nil, err
	}

	if h.Logger != nil {
		h.Logger.Info("visit scheduled", "visit_id", visit.ID, "property_id", visit.PropertyID, "buyer_id", visit.BuyerID, "date", visit.Date, "time", visit.Time)
	}
	return &result, nil
}

var _ commands.Handler[ScheduleVisitCommand, *dto.Visit] = (*ScheduleVisitHandler)(nil)
var _ middleware.IdempotentCommand = ScheduleVisitCommand{}
