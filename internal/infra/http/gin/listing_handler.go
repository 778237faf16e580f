package ginserver

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	gin "github.com/gin-gonic/gin"

	"iasrentals/internal/app/dto"
	propertiesapp "iasrentals/internal/app/handlers/properties"
	statsapp "iasrentals/internal/app/handlers/stats"
	"iasrentals/internal/app/queries"
)

// ListingHandler serves the public catalog.
type ListingHandler struct {
	Queries queries.Bus
	Logger  *slog.Logger
}

func (h ListingHandler) Search(c *gin.Context) {
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "listing handler unavailable"})
		return
	}
	query := propertiesapp.SearchListingsQuery{
		Query:        c.Query("search"),
		PriceRange:   c.Query("price"),
		ForSale:      parseFlag(c.Query("forSale")),
		ForRent:      parseFlag(c.Query("forRent")),
		TwoPlusRooms: parseFlag(c.Query("twoPlusRooms")),
	}
	result, err := queries.Ask[propertiesapp.SearchListingsQuery, dto.ListingCollection](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type StatsHandler struct {
	Queries queries.Bus
	Logger  *slog.Logger
}

func (h StatsHandler) Platform(c *gin.Context) {
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "stats handler unavailable"})
		return
	}
	result, err := queries.Ask[statsapp.GetPlatformStatsQuery, dto.PlatformStats](c.Request.Context(), h.Queries, statsapp.GetPlatformStatsQuery{})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// parseFlag accepts the usual boolean spellings; anything else is false.
func parseFlag(raw string) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(raw))
	return err == nil && v
}

var (
	_ ListingHTTP = ListingHandler{}
	_ StatsHTTP   = StatsHandler{}
)
