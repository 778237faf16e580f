package properties

import "strings"

// PriceRange is one of the fixed listing price buckets.
type PriceRange string

const (
	PriceAny        PriceRange = ""
	PriceUpTo500    PriceRange = "0-500"
	Price500To1000  PriceRange = "500-1000"
	Price1000To2000 PriceRange = "1000-2000"
	PriceFrom2000   PriceRange = "2000+"
)

// Contains reports whether amount falls in the bucket. Bucket edges are
// inclusive on both sides; unknown buckets match everything.
func (r PriceRange) Contains(amount float64) bool {
	switch r {
	case PriceUpTo500:
		return amount <= 500
	case Price500To1000:
		return amount >= 500 && amount <= 1000
	case Price1000To2000:
		return amount >= 1000 && amount <= 2000
	case PriceFrom2000:
		return amount >= 2000
	default:
		return true
	}
}

// Bounds returns the inclusive limits of the bucket for storage queries.
// A nil bound is open.
func (r PriceRange) Bounds() (lower, upper *float64) {
	bound := func(v float64) *float64 { return &v }
	switch r {
	case PriceUpTo500:
		return nil, bound(500)
	case Price500To1000:
		return bound(500), bound(1000)
	case Price1000To2000:
		return bound(1000), bound(2000)
	case PriceFrom2000:
		return bound(2000), nil
	default:
		return nil, nil
	}
}

// SearchParams describe the listing filters.
type SearchParams struct {
	Query        string
	PriceRange   PriceRange
	ForSale      bool
	ForRent      bool
	TwoPlusRooms bool
}

// Normalized returns a sanitized copy of params.
func (p SearchParams) Normalized() SearchParams {
	normalized := p
	normalized.Query = strings.ToLower(strings.TrimSpace(normalized.Query))
	normalized.PriceRange = PriceRange(strings.TrimSpace(string(normalized.PriceRange)))
	return normalized
}

// TransactionFilter returns the single transaction type the flags select,
// or "" when both or neither are set.
func (p SearchParams) TransactionFilter() Transaction {
	switch {
	case p.ForSale && !p.ForRent:
		return TransactionSale
	case p.ForRent && !p.ForSale:
		return TransactionRent
	default:
		return ""
	}
}

// Matches applies the filters to a single property. Query matches
// case-insensitively against city, description and address.
func (p SearchParams) Matches(prop *Property) bool {
	if prop == nil {
		return false
	}
	params := p.Normalized()
	if tx := params.TransactionFilter(); tx != "" && prop.Transaction != tx {
		return false
	}
	if params.TwoPlusRooms && prop.Rooms < 2 {
		return false
	}
	if params.Query != "" {
		haystacks := []string{prop.City, prop.Description, prop.Address}
		found := false
		for _, h := range haystacks {
			if strings.Contains(strings.ToLower(h), params.Query) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return params.PriceRange.Contains(prop.Price.Amount)
}
