package appctx

import "context"

// ContextKey is the shared type for request-context keys. Keeping it in a
// tiny package avoids import cycles between middlewares and utils.
type ContextKey string

func (c ContextKey) String() string { return string(c) }

// ContextKeyIsAdmin is true when the request carries a valid admin token.
var ContextKeyIsAdmin = ContextKey("IsAdmin")

func GetBool(ctx context.Context, key ContextKey) (bool, bool) {
	v, ok := ctx.Value(key).(bool)
	return v, ok
}

func Set(ctx context.Context, key ContextKey, value any) context.Context {
	return context.WithValue(ctx, key, value)
}
