package reviews

import (
	"context"
	"strings"

	"iasrentals/internal/app/dto"
	"iasrentals/internal/app/handlers/support"
	"iasrentals/internal/app/queries"
	"iasrentals/internal/app/uow"
	domainreviews "iasrentals/internal/domain/reviews"
	domainuser "iasrentals/internal/domain/user"
)

const getOwnerReviewsKey = "reviews.by_owner"

type GetOwnerReviewsQuery struct {
	OwnerID string `validate:"required"`
}

func (GetOwnerReviewsQuery) Key() string { return getOwnerReviewsKey }

// GetOwnerReviewsHandler summarises reviews left for a user. Any existing
// account is accepted; one without reviews gets an empty summary.
type GetOwnerReviewsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetOwnerReviewsHandler) Handle(ctx context.Context, q GetOwnerReviewsQuery) (dto.OwnerReviews, error) {
	unit, ctx, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.OwnerReviews{}, err
	}
	defer unit.Close(ctx)

	owner, err := findUser(ctx, unit, domainuser.ID(strings.TrimSpace(q.OwnerID)))
	if err != nil {
		return dto.OwnerReviews{}, err
	}
	list, err := unit.Reviews().Find(ctx, domainreviews.Criteria{OwnerID: owner.ID})
	if err != nil {
		return dto.OwnerReviews{}, err
	}
	lookup := support.NewLookup(unit)
	lookup.Remember([]*domainuser.User{owner}, nil)
	items, err := enrichAll(ctx, lookup, list)
	if err != nil {
		return dto.OwnerReviews{}, err
	}
	return dto.OwnerReviews{
		OwnerID:       string(owner.ID),
		AverageRating: domainreviews.AverageRating(list),
		TotalReviews:  len(list),
		Reviews:       items,
	}, nil
}

var _ queries.Handler[GetOwnerReviewsQuery, dto.OwnerReviews] = (*GetOwnerReviewsHandler)(nil)
