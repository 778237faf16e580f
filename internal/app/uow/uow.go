package uow

import (
	"context"

	domainproperties "iasrentals/internal/domain/properties"
	domainreviews "iasrentals/internal/domain/reviews"
	domainuser "iasrentals/internal/domain/user"
	domainvisits "iasrentals/internal/domain/visits"
)

// UnitOfWork exposes repositories bound to one transaction.
type UnitOfWork interface {
	Users() domainuser.Repository
	Properties() domainproperties.Repository
	Visits() domainvisits.Repository
	Reviews() domainreviews.Repository

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// UoWFactory starts unit of work instances.
type UoWFactory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

type TxOptions struct {
	ReadOnly bool
}

// ContextInjector is implemented by units whose repositories find the
// active transaction through the context.
type ContextInjector interface {
	InjectContext(ctx context.Context) context.Context
}

// Bind returns a context carrying unit and, when supported, its transaction.
func Bind(ctx context.Context, unit UnitOfWork) context.Context {
	if injector, ok := unit.(ContextInjector); ok {
		ctx = injector.InjectContext(ctx)
	}
	return ContextWithUnitOfWork(ctx, unit)
}
