package sqlite

import (
	"context"
	"database/sql"

	"iasrentals/internal/app/uow"
	domainproperties "iasrentals/internal/domain/properties"
	domainreviews "iasrentals/internal/domain/reviews"
	domainuser "iasrentals/internal/domain/user"
	domainvisits "iasrentals/internal/domain/visits"
)

// Store groups the SQLite repositories over one database.
type Store struct {
	DB         *DB
	Users      *UserRepository
	Properties *PropertyRepository
	Visits     *VisitRepository
	Reviews    *ReviewRepository
	Sessions   *SessionStore
}

func NewStore(db *DB) *Store {
	return &Store{
		DB:         db,
		Users:      NewUserRepository(db),
		Properties: NewPropertyRepository(db),
		Visits:     NewVisitRepository(db),
		Reviews:    NewReviewRepository(db),
		Sessions:   NewSessionStore(db),
	}
}

func (s *Store) Factory() Factory {
	return Factory{store: s}
}

// Factory begins SQLite transactions. Read-only units skip the transaction
// and read straight from the pool.
type Factory struct {
	store *Store
}

func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if opts.ReadOnly {
		return &Unit{store: f.store}, nil
	}
	tx, err := f.store.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &Unit{store: f.store, tx: tx}, nil
}

type Unit struct {
	store *Store
	tx    *sql.Tx
}

func (u *Unit) Users() domainuser.Repository            { return u.store.Users }
func (u *Unit) Properties() domainproperties.Repository { return u.store.Properties }
func (u *Unit) Visits() domainvisits.Repository         { return u.store.Visits }
func (u *Unit) Reviews() domainreviews.Repository       { return u.store.Reviews }

func (u *Unit) Commit(ctx context.Context) error {
	if u.tx == nil {
		return nil
	}
	return u.tx.Commit()
}

func (u *Unit) Rollback(ctx context.Context) error {
	if u.tx == nil {
		return nil
	}
	return u.tx.Rollback()
}

func (u *Unit) InjectContext(ctx context.Context) context.Context {
	if u.tx == nil {
		return ctx
	}
	return withTx(ctx, u.tx)
}

var (
	_ uow.UoWFactory      = Factory{}
	_ uow.ContextInjector = (*Unit)(nil)
)
