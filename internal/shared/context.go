package shared

import "context"

type contextKey string

const actorKey contextKey = "actor"

// SystemActor identifies mutations performed by the service itself,
// such as order completion and automatic reorders.
const SystemActor = "system"

// ContextWithActor stores the acting identity for audit trail rows.
func ContextWithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// ActorFromContext returns the acting identity, defaulting to SystemActor.
func ActorFromContext(ctx context.Context) string {
	if actor, ok := ctx.Value(actorKey).(string); ok && actor != "" {
		return actor
	}
	return SystemActor
}
