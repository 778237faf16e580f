package memory

import (
	"context"
	"sort"
	"sync"

	domainvisits "iasrentals/internal/domain/visits"
)

// VisitRepository keeps visits in memory. Insert checks the scheduled-slot
// index and stores the visit under the same lock.
type VisitRepository struct {
	mu        sync.RWMutex
	items     map[domainvisits.ID]*domainvisits.Visit
	scheduled map[slotKey]domainvisits.ID
}

type slotKey struct {
	property string
	date     string
	time     string
}

func keyOf(v *domainvisits.Visit) slotKey {
	return slotKey{property: string(v.PropertyID), date: v.Date, time: v.Time}
}

func NewVisitRepository() *VisitRepository {
	return &VisitRepository{
		items:     make(map[domainvisits.ID]*domainvisits.Visit),
		scheduled: make(map[slotKey]domainvisits.ID),
	}
}

func (r *VisitRepository) ByID(ctx context.Context, id domainvisits.ID) (*domainvisits.Visit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	visit, ok := r.items[id]
	if !ok {
		return nil, domainvisits.ErrNotFound
	}
	return visit.Clone(), nil
}

func (r *VisitRepository) Insert(ctx context.Context, visit *domainvisits.Visit) error {
	if visit == nil || visit.ID == "" {
		return domainvisits.ErrIDRequired
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if visit.Status == domainvisits.StatusScheduled {
		if _, taken := r.scheduled[keyOf(visit)]; taken {
			return domainvisits.ErrSlotTaken
		}
		r.scheduled[keyOf(visit)] = visit.ID
	}
	r.items[visit.ID] = visit.Clone()
	return nil
}

func (r *VisitRepository) UpdateStatus(ctx context.Context, visit *domainvisits.Visit) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.items[visit.ID]
	if !ok {
		return domainvisits.ErrNotFound
	}
	key := keyOf(stored)
	if visit.Status == domainvisits.StatusScheduled {
		if holder, taken := r.scheduled[key]; taken && holder != visit.ID {
			return domainvisits.ErrSlotTaken
		}
		r.scheduled[key] = visit.ID
	} else if r.scheduled[key] == visit.ID {
		delete(r.scheduled, key)
	}
	stored.Status = visit.Status
	stored.UpdatedAt = visit.UpdatedAt
	return nil
}

func (r *VisitRepository) Find(ctx context.Context, criteria domainvisits.Criteria) ([]*domainvisits.Visit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domainvisits.Visit, 0)
	for _, visit := range r.items {
		if criteria.Matches(visit) {
			out = append(out, visit.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		if a.Time != b.Time {
			return a.Time < b.Time
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
	if criteria.Limit > 0 && len(out) > criteria.Limit {
		out = out[:criteria.Limit]
	}
	return out, nil
}

func (r *VisitRepository) clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = make(map[domainvisits.ID]*domainvisits.Visit)
	r.scheduled = make(map[slotKey]domainvisits.ID)
}

var _ domainvisits.Repository = (*VisitRepository)(nil)
