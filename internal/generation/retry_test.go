package generation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSleepContext(t *testing.T) {
	t.Parallel()

	t.Run("waits for the delay", func(t *testing.T) {
		t.Parallel()

		start := time.Now()
		err := sleepContext(context.Background(), 5*time.Millisecond)

		assert.NoError(t, err)
		assert.GreaterOrEqual(t, time.Since(start), 5*time.Millisecond)
	})

	t.Run("returns early when the context is cancelled", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		start := time.Now()
		err := sleepContext(ctx, time.Minute)

		assert.ErrorIs(t, err, context.Canceled)
		assert.Less(t, time.Since(start), time.Second)
	})

	t.Run("honours a deadline that expires mid-sleep", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
		defer cancel()

		err := sleepContext(ctx, time.Minute)

		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestNewServiceUsesRealSleeperByDefault(t *testing.T) {
	t.Parallel()

	svc, err := NewService(modelFactoryFunc(nil), DefaultRetryConfig())
	if !assert.NoError(t, err) {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, svc.sleep(ctx, time.Minute), context.Canceled)
}

// modelFactoryFunc adapts a function to ModelFactory.
type modelFactoryFunc func(ctx context.Context, apiKey string) (Model, error)

func (f modelFactoryFunc) ForCredential(ctx context.Context, apiKey string) (Model, error) {
	return f(ctx, apiKey)
}
