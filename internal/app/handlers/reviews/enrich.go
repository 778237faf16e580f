package reviews

import (
	"context"
	"errors"

	"iasrentals/internal/app/dto"
	"iasrentals/internal/app/handlers/support"
	"iasrentals/internal/app/uow"
	domainreviews "iasrentals/internal/domain/reviews"
	domainuser "iasrentals/internal/domain/user"
)

func enrich(ctx context.Context, lookup *support.Lookup, review *domainreviews.Review) (dto.Review, error) {
	buyerName, err := lookup.UserName(ctx, review.BuyerID)
	if err != nil {
		return dto.Review{}, err
	}
	title, err := lookup.PropertyTitle(ctx, review.PropertyID)
	if err != nil {
		return dto.Review{}, err
	}
	return dto.MapReview(review, buyerName, title), nil
}

func enrichAll(ctx context.Context, lookup *support.Lookup, list []*domainreviews.Review) ([]dto.Review, error) {
	out := make([]dto.Review, 0, len(list))
	for _, review := range list {
		item, err := enrich(ctx, lookup, review)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

// findUser resolves id to any existing account.
func findUser(ctx context.Context, unit uow.UnitOfWork, id domainuser.ID) (*domainuser.User, error) {
	user, err := unit.Users().ByID(ctx, id)
	if errors.Is(err, domainuser.ErrNotFound) {
		return nil, domainreviews.ErrOwnerNotFound
	}
	return user, err
}

// findOwner resolves id to a user holding the owner role.
func findOwner(ctx context.Context, unit uow.UnitOfWork, id domainuser.ID) (*domainuser.User, error) {
	owner, err := findUser(ctx, unit, id)
	if err != nil {
		return nil, err
	}
	if !owner.HasRole(domainuser.RoleOwner) {
		return nil, domainreviews.ErrOwnerNotFound
	}
	return owner, nil
}
