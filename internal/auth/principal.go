package auth

import (
	"context"

	"flora-kart/internal/model"

	"github.com/google/uuid"
)

// Principal is the authenticated caller.
type Principal struct {
	ID   uuid.UUID
	Role model.Role
}

// System acts for trusted server-side callers such as the payment callback.
var System = Principal{Role: model.RoleAdmin}

func (p Principal) IsAdmin() bool {
	return p.Role == model.RoleAdmin
}

type principalKey struct{}

// WithPrincipal returns a context carrying p.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the principal stored by WithPrincipal.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}
