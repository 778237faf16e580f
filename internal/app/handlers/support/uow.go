package support

import (
	"context"

	"iasrentals/internal/app/uow"
)

// Unit is a unit of work either inherited from the context or started by the
// caller. Commit and Close only act on units the caller started.
type Unit struct {
	uow.UnitOfWork
	managed bool
	done    bool
}

// BeginUnit reuses the unit bound to ctx or starts a new one from factory.
func BeginUnit(ctx context.Context, factory uow.UoWFactory, opts uow.TxOptions) (*Unit, context.Context, error) {
	if unit, ok := uow.FromContext(ctx); ok {
		return &Unit{UnitOfWork: unit}, ctx, nil
	}
	if factory == nil {
		return nil, ctx, uow.ErrUnitOfWorkMissing
	}
	unit, err := factory.Begin(ctx, opts)
	if err != nil {
		return nil, ctx, err
	}
	return &Unit{UnitOfWork: unit, managed: true}, uow.Bind(ctx, unit), nil
}

// BeginReadOnlyUnit starts a read-only unit when ctx carries none.
func BeginReadOnlyUnit(ctx context.Context, factory uow.UoWFactory) (*Unit, context.Context, error) {
	return BeginUnit(ctx, factory, uow.TxOptions{ReadOnly: true})
}

func (u *Unit) Commit(ctx context.Context) error {
	if !u.managed || u.done {
		return nil
	}
	if err := u.UnitOfWork.Commit(ctx); err != nil {
		return err
	}
	u.done = true
	return nil
}

// Close rolls back a managed unit that was not done.
func (u *Unit) Close(ctx context.Context) {
	if u == nil || !u.managed || u.done {
		return
	}
	_ = u.UnitOfWork.Rollback(ctx)
	u.done = true
}
