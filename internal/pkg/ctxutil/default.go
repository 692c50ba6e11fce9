package ctxutil

import (
	"context"
	"time"
)

type nowKey struct{}

// Default returns context.Background() when ctx is nil.
func Default(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

// WithNow pins the wall clock seen by Now for everything derived from ctx.
func WithNow(ctx context.Context, now time.Time) context.Context {
	return context.WithValue(Default(ctx), nowKey{}, now.UTC())
}

// Now returns the pinned clock from ctx, or time.Now().UTC().
func Now(ctx context.Context) time.Time {
	if ctx != nil {
		if t, ok := ctx.Value(nowKey{}).(time.Time); ok {
			return t
		}
	}
	return time.Now().UTC()
}
