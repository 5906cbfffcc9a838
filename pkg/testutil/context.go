package testutil

import (
	"context"
	"time"

	"recouvro/pkg/requestcontext"
)

// AuthedContext builds a request context pinned to a fixed instant and
// carrying a bailiff identity, the way the middleware chain would.
func AuthedContext(bailiffName string, at time.Time) context.Context {
	ctx := requestcontext.WithTime(context.Background(), at)
	ctx = requestcontext.WithBailiffName(ctx, bailiffName)
	ctx = requestcontext.WithRequestID(ctx, "test-request")
	return ctx
}
