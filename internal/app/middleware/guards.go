package middleware

import (
	"context"

	"iasrentals/internal/app/commands"
	"iasrentals/internal/app/queries"
)

// Authorizer rejects messages the caller may not send.
type Authorizer interface {
	Authorize(ctx context.Context, message any) error
}

// Validator rejects malformed messages.
type Validator interface {
	Validate(ctx context.Context, message any) error
}

type checkFunc func(ctx context.Context, message any) error

func guardCommands(check checkFunc) CommandMiddleware {
	return func(next commands.Bus) commands.Bus {
		nextFn := wrapCommand(next)
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			if err := check(ctx, cmd); err != nil {
				return nil, err
			}
			return nextFn(ctx, cmd)
		})
	}
}

func guardQueries(check checkFunc) QueryMiddleware {
	return func(next queries.Bus) queries.Bus {
		nextFn := wrapQuery(next)
		return queryFunc(func(ctx context.Context, q queries.Query) (any, error) {
			if err := check(ctx, q); err != nil {
				return nil, err
			}
			return nextFn(ctx, q)
		})
	}
}

func Authorization(a Authorizer) CommandMiddleware {
	if a == nil {
		panic("middleware: authorizer required")
	}
	return guardCommands(a.Authorize)
}

func QueryAuthorization(a Authorizer) QueryMiddleware {
	if a == nil {
		panic("middleware: authorizer required")
	}
	return guardQueries(a.Authorize)
}

func Validation(v Validator) CommandMiddleware {
	if v == nil {
		panic("middleware: validator required")
	}
	return guardCommands(v.Validate)
}

func QueryValidation(v Validator) QueryMiddleware {
	if v == nil {
		panic("middleware: validator required")
	}
	return guardQueries(v.Validate)
}
