package memory

import (
	"context"
	"errors"

	"iasrentals/internal/app/uow"
	domainproperties "iasrentals/internal/domain/properties"
	domainreviews "iasrentals/internal/domain/reviews"
	domainuser "iasrentals/internal/domain/user"
	domainvisits "iasrentals/internal/domain/visits"
)

var ErrFactoryMisconfigured = errors.New("memory: unit of work factory misconfigured")

// Store groups the in-memory repositories of one process.
type Store struct {
	Users      *UserRepository
	Properties *PropertyRepository
	Visits     *VisitRepository
	Reviews    *ReviewRepository
	Sessions   *SessionStore
}

func NewStore() *Store {
	return &Store{
		Users:      NewUserRepository(),
		Properties: NewPropertyRepository(),
		Visits:     NewVisitRepository(),
		Reviews:    NewReviewRepository(),
		Sessions:   NewSessionStore(),
	}
}

func (s *Store) Factory() Factory {
	return Factory{
		UsersRepo:      s.Users,
		PropertiesRepo: s.Properties,
		VisitsRepo:     s.Visits,
		ReviewsRepo:    s.Reviews,
	}
}

// Clear drops every stored entity.
func (s *Store) Clear(ctx context.Context) error {
	s.Users.clear()
	s.Properties.clear()
	s.Visits.clear()
	s.Reviews.clear()
	s.Sessions.clear()
	return nil
}

// Factory hands out units over shared repositories. Units provide no
// rollback; uniqueness is still enforced by each repository's own lock.
type Factory struct {
	UsersRepo      domainuser.Repository
	PropertiesRepo domainproperties.Repository
	VisitsRepo     domainvisits.Repository
	ReviewsRepo    domainreviews.Repository
}

func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.UsersRepo == nil || f.PropertiesRepo == nil || f.VisitsRepo == nil || f.ReviewsRepo == nil {
		return nil, ErrFactoryMisconfigured
	}
	return &Unit{factory: f}, nil
}

type Unit struct {
	factory Factory
}

func (u *Unit) Users() domainuser.Repository            { return u.factory.UsersRepo }
func (u *Unit) Properties() domainproperties.Repository { return u.factory.PropertiesRepo }
func (u *Unit) Visits() domainvisits.Repository         { return u.factory.VisitsRepo }
func (u *Unit) Reviews() domainreviews.Repository       { return u.factory.ReviewsRepo }
func (u *Unit) Commit(ctx context.Context) error        { return nil }
func (u *Unit) Rollback(ctx context.Context) error      { return nil }

var _ uow.UoWFactory = Factory{}
