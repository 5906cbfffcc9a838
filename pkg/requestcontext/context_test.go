package requestcontext_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"recouvro/pkg/requestcontext"
	"recouvro/pkg/testutil"
)

func TestRequestScopedValues(t *testing.T) {
	fixed := time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)

	testutil.Given(t, "a context built the way the middleware chain builds it", func(t *testing.T) {
		ctx := testutil.AuthedContext("Me Kaddour", fixed)

		testutil.Then(t, "accessors return the injected values", func(t *testing.T) {
			assert.Equal(t, "Me Kaddour", requestcontext.BailiffName(ctx))
			assert.Equal(t, fixed, requestcontext.Now(ctx))
			assert.Equal(t, "test-request", requestcontext.RequestID(ctx))
		})

		testutil.When(t, "client metadata is attached", func(t *testing.T) {
			assert.Empty(t, requestcontext.ClientIP(ctx))
			assert.Empty(t, requestcontext.UserAgent(ctx))

			ctx := requestcontext.WithClientMetadata(ctx, "10.0.0.7", "Firefox on Linux")

			testutil.Then(t, "accessors surface it", func(t *testing.T) {
				assert.Equal(t, "10.0.0.7", requestcontext.ClientIP(ctx))
				assert.Equal(t, "Firefox on Linux", requestcontext.UserAgent(ctx))
			})
		})
	})

	testutil.Given(t, "a bare context", func(t *testing.T) {
		ctx := context.Background()

		testutil.Then(t, "accessors fall back to zero values", func(t *testing.T) {
			assert.Empty(t, requestcontext.BailiffName(ctx))
			assert.Empty(t, requestcontext.RequestID(ctx))
		})

		testutil.Then(t, "Now falls back to the wall clock", func(t *testing.T) {
			assert.WithinDuration(t, time.Now(), requestcontext.Now(ctx), time.Minute)
		})
	})
}
