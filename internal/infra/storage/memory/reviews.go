package memory

import (
	"context"
	"sort"
	"sync"

	domainreviews "iasrentals/internal/domain/reviews"
)

type reviewKey struct {
	buyer    string
	owner    string
	property string
}

// ReviewRepository stores reviews with a unique (buyer, owner, property) index.
type ReviewRepository struct {
	mu     sync.RWMutex
	items  []*domainreviews.Review
	unique map[reviewKey]struct{}
}

func NewReviewRepository() *ReviewRepository {
	return &ReviewRepository{unique: make(map[reviewKey]struct{})}
}

func (r *ReviewRepository) Insert(ctx context.Context, review *domainreviews.Review) error {
	if review == nil || review.ID == "" {
		return domainreviews.ErrIDRequired
	}
	key := reviewKey{buyer: string(review.BuyerID), owner: string(review.OwnerID), property: string(review.PropertyID)}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.unique[key]; exists {
		return domainreviews.ErrDuplicateReview
	}
	r.unique[key] = struct{}{}
	r.items = append(r.items, review.Clone())
	return nil
}

// Find returns matching reviews newest first.
func (r *ReviewRepository) Find(ctx context.Context, criteria domainreviews.Criteria) ([]*domainreviews.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domainreviews.Review, 0)
	for i := len(r.items) - 1; i >= 0; i-- {
		if review := r.items[i]; criteria.Matches(review) {
			out = append(out, review.Clone())
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if criteria.Limit > 0 && len(out) > criteria.Limit {
		out = out[:criteria.Limit]
	}
	return out, nil
}

func (r *ReviewRepository) clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = nil
	r.unique = make(map[reviewKey]struct{})
}

var _ domainreviews.Repository = (*ReviewRepository)(nil)
