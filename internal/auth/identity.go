package auth

import (
	"context"

	"github.com/robostack/teamhub/internal/model"
)

// Identity is the request-scoped caller context: current user, current team
// and role. Every query in the application is scoped by it explicitly rather
// than by an ambient session.
type Identity struct {
	UserID string
	TeamID string // empty until the user joins a team
	Role   model.Role
}

func (id Identity) OnTeam() bool {
	return id.TeamID != ""
}

type identityKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}
