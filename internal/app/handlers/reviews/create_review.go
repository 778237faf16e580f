package reviews

import (
	"context"
	"errors"
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
	domainreviews "iasrentals/internal/domain/reviews"
	domainuser "iasrentals/internal/domain/user"
	domainvisits "iasrentals/internal/domain/visits"
)

const createReviewKey = "reviews.create"

// CreateReviewCommand leaves a review of an owner for one of their
// properties. VisitID is optional; without it a qualifying visit of the
// buyer to the property is looked up.
type CreateReviewCommand struct {
	ActorID         string          `validate:"required"`
	ActorRole       domainuser.Role `validate:"required"`
	OwnerID         string          `validate:"required"`
	PropertyID      string          `validate:"required"`
	VisitID         string
	Rating          int
	Comment         string `validate:"max=2000"`
	IdempotencyKeyV string
}

func (CreateReviewCommand) Key() string { return createReviewKey }

func (c CreateReviewCommand) IdempotencyKey() string {
	return middleware.ScopedIdempotencyKey(c.ActorID, c.IdempotencyKeyV)
}

func (CreateReviewCommand) ResultPrototype() any { return &dto.Review{} }

// CheckRole allows buyers only.
func (c CreateReviewCommand) CheckRole() error {
	if c.ActorRole != domainuser.RoleBuyer {
		return domainreviews.ErrBuyersOnly
	}
	return nil
}

type CreateReviewHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
	Now        func() time.Time
}

func (h *CreateReviewHandler) Handle(ctx context.Context, cmd CreateReviewCommand) (*dto.Review, error) {
	if err := cmd.CheckRole(); err != nil {
		return nil, err
	}
	unit, ctx, err := support.BeginUnit(ctx, h.UoWFactory, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer unit.Close(ctx)

	buyerID := domainuser.ID(cmd.ActorID)
	owner, err := findOwner(ctx, unit, domainuser.ID(strings.TrimSpace(cmd.OwnerID)))
	if err != nil {
		return nil, err
	}
	prop, err := unit.Properties().ByID(ctx, domainproperties.ID(strings.TrimSpace(cmd.PropertyID)))
	switch {
	case errors.Is(err, domainproperties.ErrNotFound):
		return nil, domainreviews.ErrPropertyNotFound
	case err != nil:
		return nil, err
	case !prop.BelongsTo(owner.ID):
		return nil, domainreviews.ErrPropertyNotFound
	}

	visitID, err := qualifyingVisit(ctx, unit, buyerID, prop.ID, domainvisits.ID(strings.TrimSpace(cmd.VisitID)))
	if err != nil {
		return nil, err
	}

	existing, err := unit.Reviews().Find(ctx, domainreviews.Criteria{
		OwnerID:    owner.ID,
		BuyerID:    buyerID,
		PropertyID: prop.ID,
		Limit:      1,
	})
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, domainreviews.ErrDuplicateReview
	}

	review, err := domainreviews.New(domainreviews.CreateParams{
		ID:         domainreviews.ID(uuid.NewString()),
		OwnerID:    owner.ID,
		BuyerID:    buyerID,
		PropertyID: prop.ID,
		VisitID:    visitID,
		Rating:     cmd.Rating,
		Comment:    cmd.Comment,
		Now:        h.now(),
	})
	if err != nil {
		return nil, err
	}
	if err := unit.Reviews().Insert(ctx, review); err != nil {
		return nil, err
	}
	if err := outbox.Drain(ctx, h.Outbox, h.Encoder, review); err != nil {
		return nil, err
	}

	lookup := support.NewLookup(unit)
	lookup.Remember([]*domainuser.User{owner}, []*domainproperties.Property{prop})
	result, err := enrich(ctx, lookup, review)
	if err != nil {
		return nil, err
	}
	if err := unit.Commit(ctx); err != nil {
		return nil, err
	}
	if h.Logger != nil {
		h.Logger.Info("review created", "review_id", review.ID, "owner_id", owner.ID, "property_id", prop.ID, "rating", review.Rating)
	}
	return &result, nil
}

// qualifyingVisit checks the explicit visit, or picks the buyer's earliest
// scheduled or completed visit to the property.
func qualifyingVisit(ctx context.Context, unit uow.UnitOfWork, buyerID domainuser.ID, propertyID domainproperties.ID, explicit domainvisits.ID) (domainvisits.ID, error) {
	if explicit != "" {
		visit, err := unit.Visits().ByID(ctx, explicit)
		if errors.Is(err, domainvisits.ErrNotFound) {
			return "", domainreviews.ErrVisitNotOwned
		}
		if err != nil {
			return "", err
		}
		if visit.BuyerID != buyerID || visit.PropertyID != propertyID {
			return "", domainreviews.ErrVisitNotOwned
		}
		return visit.ID, nil
	}
	found, err := unit.Visits().Find(ctx, domainvisits.Criteria{
		PropertyIDs: []domainproperties.ID{propertyID},
		BuyerID:     buyerID,
		Statuses:    []domainvisits.Status{domainvisits.StatusScheduled, domainvisits.StatusCompleted},
		Limit:       1,
	})
	if err != nil {
		return "", err
	}
	if len(found) == 0 {
		return "", domainreviews.ErrVisitRequired
	}
	return found[0].ID, nil
}

func (h *CreateReviewHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

var _ commands.Handler[CreateReviewCommand, *dto.Review] = (*CreateReviewHandler)(nil)
var _ middleware.IdempotentCommand = CreateReviewCommand{}
