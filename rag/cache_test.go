package rag

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BaSui01/agentflow/internal/cache"
	"github.com/BaSui01/agentflow/types"
)

func newTestCacheBackend(t *testing.T) (*miniredis.Miniredis, *cache.Manager) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)

	store, err := cache.NewManager(cache.Config{
		Addr:       mr.Addr(),
		DefaultTTL: time.Minute,
	}, zap.NewNop())
	require.NoError(t, err)

	return mr, store
}

func setupRetrievalCache(t *testing.T) (*miniredis.Miniredis, *RetrievalCache) {
	mr, store := newTestCacheBackend(t)
	return mr, NewRetrievalCache(store, 3600, zap.NewNop())
}

func TestRetrievalCache_MissThenHit(t *testing.T) {
	mr, rc := setupRetrievalCache(t)
	defer mr.Close()

	ctx := context.Background()
	vec := []float64{0.1, 0.2, 0.3}

	_, ok := rc.Get(ctx, "docs", vec, 5, nil)
	assert.False(t, ok)

	want := []types.Chunk{{DocID: "d1", Text: "hello", Score: 0.9}}
	require.NoError(t, rc.Set(ctx, "docs", vec, 5, nil, want))

	got, ok := rc.Get(ctx, "docs", vec, 5, nil)
	require.True(t, ok)
	assert.Equal(t, want, got)
}

func TestRetrievalCache_InvalidateDropsEntries(t *testing.T) {
	mr, rc := setupRetrievalCache(t)
	defer mr.Close()

	ctx := context.Background()
	vec := []float64{0.1, 0.2, 0.3}

	require.NoError(t, rc.Set(ctx, "docs", vec, 5, nil, []types.Chunk{{DocID: "d1"}}))
	_, ok := rc.Get(ctx, "docs", vec, 5, nil)
	require.True(t, ok)

	require.NoError(t, rc.Invalidate(ctx, "docs"))

	_, ok = rc.Get(ctx, "docs", vec, 5, nil)
	assert.False(t, ok, "entry bound to the old generation should no longer be reachable")
}

func TestRetrievalCache_DifferentFilterDifferentKey(t *testing.T) {
	mr, rc := setupRetrievalCache(t)
	defer mr.Close()

	ctx := context.Background()
	vec := []float64{0.1, 0.2, 0.3}

	require.NoError(t, rc.Set(ctx, "docs", vec, 5, map[string]any{"lang": "en"}, []types.Chunk{{DocID: "en-doc"}}))

	_, ok := rc.Get(ctx, "docs", vec, 5, map[string]any{"lang": "zh"})
	assert.False(t, ok)

	got, ok := rc.Get(ctx, "docs", vec, 5, map[string]any{"lang": "en"})
	require.True(t, ok)
	assert.Equal(t, "en-doc", got[0].DocID)
}
