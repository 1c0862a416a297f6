package embed

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyEmbedder fails a fixed number of calls before succeeding.
type flakyEmbedder struct {
	inner    Embedder
	failures int
	calls    int
}

func (f *flakyEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, errors.New("transient failure")
	}
	return f.inner.EmbedBatch(ctx, texts)
}

func (f *flakyEmbedder) Dimensions() int   { return f.inner.Dimensions() }
func (f *flakyEmbedder) ModelName() string { return f.inner.ModelName() }
func (f *flakyEmbedder) Close() error      { return f.inner.Close() }

func TestWithRetry_DisabledReturnsInner(t *testing.T) {
	inner := NewStaticEmbedder(64)
	wrapped := WithRetry(inner, DefaultRetryConfig())
	assert.Same(t, Embedder(inner), wrapped)
}

func TestRetryEmbedder_RecoversFromTransientFailure(t *testing.T) {
	flaky := &flakyEmbedder{inner: NewStaticEmbedder(64), failures: 2}
	wrapped := WithRetry(flaky, RetryConfig{
		MaxRetries:   3,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
	})

	vectors, err := wrapped.EmbedBatch(context.Background(), []string{"text"})
	require.NoError(t, err)
	assert.Len(t, vectors, 1)
	assert.Equal(t, 3, flaky.calls)
}

func TestRetryEmbedder_ExhaustsRetries(t *testing.T) {
	flaky := &flakyEmbedder{inner: NewStaticEmbedder(64), failures: 10}
	wrapped := WithRetry(flaky, RetryConfig{
		MaxRetries:   2,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
	})

	_, err := wrapped.EmbedBatch(context.Background(), []string{"text"})
	require.Error(t, err)
	assert.Equal(t, 3, flaky.calls, "initial attempt plus two retries")
}

func TestRetryEmbedder_ContextCancelStopsBackoff(t *testing.T) {
	flaky := &flakyEmbedder{inner: NewStaticEmbedder(64), failures: 10}
	wrapped := WithRetry(flaky, RetryConfig{
		MaxRetries:   5,
		InitialDelay: time.Hour,
		MaxDelay:     time.Hour,
		Multiplier:   2.0,
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := wrapped.EmbedBatch(ctx, []string{"text"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, flaky.calls, "cancel during backoff should prevent further attempts")
}

func TestRetryEmbedder_DelegatedAccessors(t *testing.T) {
	inner := NewStaticEmbedder(64)
	wrapped := WithRetry(inner, RetryConfig{MaxRetries: 1, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 2})

	assert.Equal(t, inner.Dimensions(), wrapped.Dimensions())
	assert.Equal(t, inner.ModelName(), wrapped.ModelName())
	assert.NoError(t, wrapped.Close())
}
