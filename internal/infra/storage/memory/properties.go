package memory

import (
	"context"
	"sort"
	"sync"

	domainproperties "iasrentals/internal/domain/properties"
	domainuser "iasrentals/internal/domain/user"
)

type PropertyRepository struct {
	mu    sync.RWMutex
	items map[domainproperties.ID]*domainproperties.Property
}

func NewPropertyRepository() *PropertyRepository {
	return &PropertyRepository{items: make(map[domainproperties.ID]*domainproperties.Property)}
}

func (r *PropertyRepository) ByID(ctx context.Context, id domainproperties.ID) (*domainproperties.Property, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	prop, ok := r.items[id]
	if !ok {
		return nil, domainproperties.ErrNotFound
	}
	return prop.Clone(), nil
}

func (r *PropertyRepository) Save(ctx context.Context, property *domainproperties.Property) error {
	if property == nil || property.ID == "" {
		return domainproperties.ErrIDRequired
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[property.ID] = property.Clone()
	return nil
}

// ListByOwner returns the owner's properties newest first.
func (r *PropertyRepository) ListByOwner(ctx context.Context, ownerID domainuser.ID) ([]*domainproperties.Property, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domainproperties.Property, 0)
	for _, prop := range r.items {
		if prop.OwnerID == ownerID {
			out = append(out, prop.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Search returns matching properties in creation order.
func (r *PropertyRepository) Search(ctx context.Context, params domainproperties.SearchParams) ([]*domainproperties.Property, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	normalized := params.Normalized()
	out := make([]*domainproperties.Property, 0, len(r.items))
	for _, prop := range r.items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if normalized.Matches(prop) {
			out = append(out, prop.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *PropertyRepository) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items), nil
}

func (r *PropertyRepository) clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = make(map[domainproperties.ID]*domainproperties.Property)
}

var _ domainproperties.Repository = (*PropertyRepository)(nil)
