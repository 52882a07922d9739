package auth

import (
	"context"

	"github.com/frahmantamala/crm-management/internal/authz"
)

type ctxKey string

const actorKey ctxKey = "actor"

// ContextWithActor stores the resolved actor on the request context.
func ContextWithActor(ctx context.Context, actor *authz.Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// ActorFromContext returns the actor placed by the auth middleware, or
// (nil, false) if the request never passed authentication.
func ActorFromContext(ctx context.Context) (*authz.Actor, bool) {
	actor, ok := ctx.Value(actorKey).(*authz.Actor)
	return actor, ok
}
