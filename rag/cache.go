package rag

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/agentflow/internal/cache"
	"github.com/BaSui01/agentflow/types"
)

// RetrievalCache memoizes Query results, keyed by collection, query vector,
// k and filter predicate. Entries bind to the collection's generation
// counter, so a single write-path Invalidate call drops every entry for
// that collection in O(1) without a key scan. Invalidate bumps the
// generation, which changes every future cache key for that collection and
// leaves the stale entries to expire on their own TTL. Pipeline itself only
// reads and populates the cache; whoever writes chunks to the collection
// calls Invalidate.
type RetrievalCache struct {
	store  *cache.Manager
	ttl    int // seconds
	logger *zap.Logger
}

// NewRetrievalCache wraps an internal/cache.Manager as a RAG retrieval cache.
func NewRetrievalCache(store *cache.Manager, ttlSeconds int, logger *zap.Logger) *RetrievalCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttlSeconds <= 0 {
		ttlSeconds = 3600
	}
	return &RetrievalCache{store: store, ttl: ttlSeconds, logger: logger}
}

func (c *RetrievalCache) generationKey(collection string) string {
	return fmt.Sprintf("rag:gen:%s", collection)
}

func (c *RetrievalCache) generation(ctx context.Context, collection string) int64 {
	val, err := c.store.Get(ctx, c.generationKey(collection))
	if err != nil {
		return 0
	}
	gen, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0
	}
	return gen
}

// Invalidate bumps the collection's generation, logically dropping every
// cache entry bound to it. Must be called after any AddChunks or
// DeleteByFilter against that collection.
func (c *RetrievalCache) Invalidate(ctx context.Context, collection string) error {
	next := c.generation(ctx, collection) + 1
	if err := c.store.Set(ctx, c.generationKey(collection), strconv.FormatInt(next, 10), 0); err != nil {
		return fmt.Errorf("bump generation for %s: %w", collection, err)
	}
	c.logger.Debug("retrieval cache invalidated", zap.String("collection", collection), zap.Int64("generation", next))
	return nil
}

func (c *RetrievalCache) queryKey(ctx context.Context, collection string, vector []float64, k int, filter map[string]any) string {
	gen := c.generation(ctx, collection)

	h := sha256.New()
	fmt.Fprintf(h, "gen=%d;k=%d;", gen, k)
	for _, v := range vector {
		fmt.Fprintf(h, "%.8f,", v)
	}
	h.Write([]byte{';'})

	keys := make([]string, 0, len(filter))
	for k := range filter {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(h, "%s=%v;", k, filter[k])
	}

	return fmt.Sprintf("rag:query:%s:%s", collection, hex.EncodeToString(h.Sum(nil)))
}

// Get returns the cached chunks for this exact query, or false on a miss
// (including a miss caused by the generation having moved on).
func (c *RetrievalCache) Get(ctx context.Context, collection string, vector []float64, k int, filter map[string]any) ([]types.Chunk, bool) {
	key := c.queryKey(ctx, collection, vector, k, filter)

	var chunks []types.Chunk
	if err := c.store.GetJSON(ctx, key, &chunks); err != nil {
		return nil, false
	}
	return chunks, true
}

// Set stores the result of a Query call under its cache key.
func (c *RetrievalCache) Set(ctx context.Context, collection string, vector []float64, k int, filter map[string]any, chunks []types.Chunk) error {
	key := c.queryKey(ctx, collection, vector, k, filter)
	return c.store.SetJSON(ctx, key, chunks, time.Duration(c.ttl)*time.Second)
}
