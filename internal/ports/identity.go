package ports

import "context"

type contextKey string

const ownerKey contextKey = "tonify_owner_id"

// WithOwnerID stores the authenticated owner identifier on the context.
func WithOwnerID(ctx context.Context, ownerID string) context.Context {
	if ownerID == "" {
		return ctx
	}
	return context.WithValue(ctx, ownerKey, ownerID)
}

// OwnerIDFromContext returns the owner identifier, or "" when absent. The
// core treats absence as the save-requires-identity condition; it never
// fabricates an identity.
func OwnerIDFromContext(ctx context.Context) string {
	if value, ok := ctx.Value(ownerKey).(string); ok {
		return value
	}
	return ""
}
