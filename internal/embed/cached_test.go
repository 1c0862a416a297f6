package embed

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingEmbedder records every batch it receives.
type countingEmbedder struct {
	inner   Embedder
	batches [][]string
	err     error
}

func (c *countingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	c.batches = append(c.batches, append([]string(nil), texts...))
	if c.err != nil {
		return nil, c.err
	}
	return c.inner.EmbedBatch(ctx, texts)
}

func (c *countingEmbedder) Dimensions() int   { return c.inner.Dimensions() }
func (c *countingEmbedder) ModelName() string { return c.inner.ModelName() }
func (c *countingEmbedder) Close() error      { return c.inner.Close() }

func TestCachedEmbedder_ServesRepeatsFromCache(t *testing.T) {
	counting := &countingEmbedder{inner: NewStaticEmbedder(64)}
	cached := NewCachedEmbedder(counting, 100)
	ctx := context.Background()

	first, err := cached.EmbedBatch(ctx, []string{"alpha", "beta"})
	require.NoError(t, err)

	second, err := cached.EmbedBatch(ctx, []string{"alpha", "beta"})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, counting.batches, 1, "second call should not reach the inner embedder")

	hits, misses := cached.Stats()
	assert.Equal(t, 2, hits)
	assert.Equal(t, 2, misses)
}

func TestCachedEmbedder_PartialHitOnlyForwardsMisses(t *testing.T) {
	counting := &countingEmbedder{inner: NewStaticEmbedder(64)}
	cached := NewCachedEmbedder(counting, 100)
	ctx := context.Background()

	_, err := cached.EmbedBatch(ctx, []string{"alpha"})
	require.NoError(t, err)

	vectors, err := cached.EmbedBatch(ctx, []string{"alpha", "gamma"})
	require.NoError(t, err)
	require.Len(t, vectors, 2)

	require.Len(t, counting.batches, 2)
	assert.Equal(t, []string{"gamma"}, counting.batches[1])
}

func TestCachedEmbedder_PreservesOrder(t *testing.T) {
	static := NewStaticEmbedder(64)
	cached := NewCachedEmbedder(static, 100)
	ctx := context.Background()

	// Prime the cache with the middle text only.
	_, err := cached.EmbedBatch(ctx, []string{"middle"})
	require.NoError(t, err)

	got, err := cached.EmbedBatch(ctx, []string{"left", "middle", "right"})
	require.NoError(t, err)

	want, err := static.EmbedBatch(ctx, []string{"left", "middle", "right"})
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestCachedEmbedder_InnerErrorPropagates(t *testing.T) {
	failing := &countingEmbedder{inner: NewStaticEmbedder(64), err: errors.New("service down")}
	cached := NewCachedEmbedder(failing, 100)

	_, err := cached.EmbedBatch(context.Background(), []string{"text"})
	assert.Error(t, err)
}

func TestCachedEmbedder_EmptyBatch(t *testing.T) {
	cached := NewCachedEmbedder(NewStaticEmbedder(64), 100)
	vectors, err := cached.EmbedBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, vectors)
}

func TestCachedEmbedder_KeyIncludesModel(t *testing.T) {
	cached := NewCachedEmbedder(NewStaticEmbedder(64), 100)
	k1 := cached.cacheKey("text")
	k2 := cached.cacheKey("text")
	k3 := cached.cacheKey("other")
	assert.Equal(t, k1, k2)
	assert.NotEqual(t, k1, k3)
}
