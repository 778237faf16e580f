package visits

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"iasrentals/internal/app/commands"
	"iasrentals/internal/app/dto"
	"iasrentals/internal/app/handlers/support"
	"iasrentals/internal/app/outbox"
	"iasrentals/internal/app/uow"
	domainproperties "iasrentals/internal/domain/properties"
	domainuser "iasrentals/internal/domain/user"
	domainvisits "iasrentals/internal/domain/visits"
)

const cancelVisitKey = "visits.cancel"

// CancelVisitCommand cancels a scheduled visit on behalf of its buyer or the
// property owner. Cancelling a visit that is no longer scheduled fails.
type CancelVisitCommand struct {
	VisitID string `validate:"required"`
	ActorID string `validate:"required"`
}

func (CancelVisitCommand) Key() string { return cancelVisitKey }

type CancelVisitHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
	Now        func() time.Time
}

func (h *CancelVisitHandler) Handle(ctx context.Context, cmd CancelVisitCommand) (dto.StatusMessage, error) {
	unit, ctx, err := support.BeginUnit(ctx, h.UoWFactory, uow.TxOptions{})
	if err != nil {
		return dto.StatusMessage{}, err
	}
	defer unit.Close(ctx)

	visit, ownerID, err := loadManagedVisit(ctx, unit, domainvisits.ID(cmd.VisitID))
	if err != nil {
		return dto.StatusMessage{}, err
	}
	actor := domainuser.ID(cmd.ActorID)
	if !visit.CanBeManagedBy(actor, ownerID) {
		return dto.StatusMessage{}, domainvisits.ErrNotAllowed
	}
	if err := visit.Cancel(actor, ownerID, nowOr(h.Now)); err != nil {
		return dto.StatusMessage{}, err
	}
	if err := unit.Visits().UpdateStatus(ctx, visit); err != nil {
		return dto.StatusMessage{}, err
	}
	if err := outbox.Drain(ctx, h.Outbox, h.Encoder, visit); err != nil {
		return dto.StatusMessage{}, err
	}
	if err := unit.Commit(ctx); err != nil {
		return dto.StatusMessage{}, err
	}
	if h.Logger != nil {
		h.Logger.Info("visit cancelled", "visit_id", visit.ID, "actor_id", actor)
	}
	return dto.StatusMessage{Success: true, Message: "visit cancelled"}, nil
}

// loadManagedVisit returns the visit and the owner of its property. A
// missing property yields an empty owner, leaving only the buyer in charge.
func loadManagedVisit(ctx context.Context, unit uow.UnitOfWork, id domainvisits.ID) (*domainvisits.Visit, domainuser.ID, error) {
	visit, err := unit.Visits().ByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	prop, err := unit.Properties().ByID(ctx, visit.PropertyID)
	switch {
	case err == nil:
		return visit, prop.OwnerID, nil
	case errors.Is(err, domainproperties.ErrNotFound):
		return visit, "", nil
	default:
		return nil, "", err
	}
}

func nowOr(fn func() time.Time) time.Time {
	if fn != nil {
		return fn()
	}
	return time.Now()
}

var _ commands.Handler[CancelVisitCommand, dto.StatusMessage] = (*CancelVisitHandler)(nil)
