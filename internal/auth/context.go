package auth

import (
	"context"

	"github.com/yishak-cs/cafe-pos/internal/models"
)

type actorKey struct{}

// WithActor returns a copy of ctx carrying the authenticated actor
func WithActor(ctx context.Context, actor models.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFrom returns the actor stored by WithActor
func ActorFrom(ctx context.Context) (models.Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(models.Actor)
	return actor, ok
}
