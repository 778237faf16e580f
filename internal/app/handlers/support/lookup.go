package support

import (
	"context"
	"errors"

	"iasrentals/internal/app/uow"
	domainproperties "iasrentals/internal/domain/properties"
	domainuser "iasrentals/internal/domain/user"
)

// Lookup resolves display fields for response payloads, caching each user
// and property for the lifetime of one request.
type Lookup struct {
	unit       uow.UnitOfWork
	users      map[domainuser.ID]*domainuser.User
	properties map[domainproperties.ID]*domainproperties.Property
}

func NewLookup(unit uow.UnitOfWork) *Lookup {
	return &Lookup{
		unit:       unit,
		users:      make(map[domainuser.ID]*domainuser.User),
		properties: make(map[domainproperties.ID]*domainproperties.Property),
	}
}

// Remember seeds the cache with already loaded entities.
func (l *Lookup) Remember(users []*domainuser.User, props []*domainproperties.Property) {
	for _, u := range users {
		if u != nil {
			l.users[u.ID] = u
		}
	}
	for _, p := range props {
		if p != nil {
			l.properties[p.ID] = p
		}
	}
}

// User returns nil without error when the user no longer exists.
func (l *Lookup) User(ctx context.Context, id domainuser.ID) (*domainuser.User, error) {
	if u, ok := l.users[id]; ok {
		return u, nil
	}
	u, err := l.unit.Users().ByID(ctx, id)
	if err != nil && !errors.Is(err, domainuser.ErrNotFound) {
		return nil, err
	}
	l.users[id] = u
	return u, nil
}

// Property returns nil without error when the property no longer exists.
func (l *Lookup) Property(ctx context.Context, id domainproperties.ID) (*domainproperties.Property, error) {
	if p, ok := l.properties[id]; ok {
		return p, nil
	}
	p, err := l.unit.Properties().ByID(ctx, id)
	if err != nil && !errors.Is(err, domainproperties.ErrNotFound) {
		return nil, err
	}
	l.properties[id] = p
	return p, nil
}

func (l *Lookup) UserName(ctx context.Context, id domainuser.ID) (string, error) {
	u, err := l.User(ctx, id)
	if err != nil || u == nil {
		return "", err
	}
	return u.Name, nil
}

func (l *Lookup) PropertyTitle(ctx context.Context, id domainproperties.ID) (string, error) {
	p, err := l.Property(ctx, id)
	if err != nil || p == nil {
		return "", err
	}
	return p.Title, nil
}
