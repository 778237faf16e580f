package stats

import (
	"context"

	"iasrentals/internal/app/dto"
	"iasrentals/internal/app/handlers/support"
	"iasrentals/internal/app/queries"
	"iasrentals/internal/app/uow"
	domainuser "iasrentals/internal/domain/user"
)

const getPlatformStatsKey = "stats.platform"

type GetPlatformStatsQuery struct{}

func (GetPlatformStatsQuery) Key() string { return getPlatformStatsKey }

type GetPlatformStatsHandler struct {
	UoWFactory uow.UoWFactory
}

// Handle counts listings, verified owners and active accounts.
func (h *GetPlatformStatsHandler) Handle(ctx context.Context, _ GetPlatformStatsQuery) (dto.PlatformStats, error) {
	unit, ctx, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.PlatformStats{}, err
	}
	defer unit.Close(ctx)

	listings, err := unit.Properties().Count(ctx)
	if err != nil {
		return dto.PlatformStats{}, err
	}
	landlords, err := unit.Users().Count(ctx, domainuser.CountFilter{Role: domainuser.RoleOwner, VerifiedOnly: true})
	if err != nil {
		return dto.PlatformStats{}, err
	}
	active, err := unit.Users().Count(ctx, domainuser.CountFilter{ActiveOnly: true})
	if err != nil {
		return dto.PlatformStats{}, err
	}
	return dto.PlatformStats{TotalListings: listings, VerifiedLandlords: landlords, ActiveUsers: active}, nil
}

var _ queries.Handler[GetPlatformStatsQuery, dto.PlatformStats] = (*GetPlatformStatsHandler)(nil)
