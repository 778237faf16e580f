package authz

import "context"

// RoleChecked is implemented by messages restricted to a caller role.
type RoleChecked interface {
	CheckRole() error
}

// Policy rejects role-restricted messages before they reach a handler.
type Policy struct{}

func (Policy) Authorize(ctx context.Context, message any) error {
	if checked, ok := message.(RoleChecked); ok {
		return checked.CheckRole()
	}
	return nil
}
