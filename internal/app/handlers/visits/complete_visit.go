package visits

import (
	"context"
	"log/slog"
	"time"

	"iasrentals/internal/app/commands"
	"iasrentals/internal/app/dto"
	"iasrentals/internal/app/handlers/support"
	"iasrentals/internal/app/outbox"
	"iasrentals/internal/app/uow"
	domainuser "iasrentals/internal/domain/user"
	domainvisits "iasrentals/internal/domain/visits"
)

const completeVisitKey = "visits.complete"

// CompleteVisitCommand marks a scheduled visit as completed. Only the owner
// of the visited property may do this.
type CompleteVisitCommand struct {
	VisitID string `validate:"required"`
	ActorID string `validate:"required"`
}

func (CompleteVisitCommand) Key() string { return completeVisitKey }

type CompleteVisitHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
	Now        func() time.Time
}

func (h *CompleteVisitHandler) Handle(ctx context.Context, cmd CompleteVisitCommand) (*dto.Visit, error) {
	unit, ctx, err := support.BeginUnit(ctx, h.UoWFactory, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer unit.Close(ctx)

	visit, ownerID, err := loadManagedVisit(ctx, unit, domainvisits.ID(cmd.VisitID))
	if err != nil {
		return nil, err
	}
	if ownerID == "" || ownerID != domainuser.ID(cmd.ActorID) {
		return nil, domainvisits.ErrNotAllowed
	}
	if err := visit.Complete(ownerID, nowOr(h.Now)); err != nil {
		return nil, err
	}
	if err := unit.Visits().UpdateStatus(ctx, visit); err != nil {
		return nil, err
	}
	if err := outbox.Drain(ctx, h.Outbox, h.Encoder, visit); err != nil {
		return nil, err
	}
	result, err := enrich(ctx, support.NewLookup(unit), visit)
	if err != nil {
		return nil, err
	}
	if err := unit.Commit(ctx); err != nil {
		return nil, err
	}
	if h.Logger != nil {
		h.Logger.Info("visit completed", "visit_id", visit.ID, "owner_id", ownerID)
	}
	return &result, nil
}

var _ commands.Handler[CompleteVisitCommand, *dto.Visit] = (*CompleteVisitHandler)(nil)
