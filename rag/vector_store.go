package rag

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/BaSui01/agentflow/types"
)

// Tokenizer counts and encodes tokens for the context-block truncation the
// RAG pipeline performs before handing chunks to the LLM. Adapted from
// llm/tokenizer via LLMTokenizerAdapter rather than redefined from scratch.
type Tokenizer interface {
	CountTokens(text string) int
	Encode(text string) []int
}

// ChunkRecord is one vector-bearing fragment as given to AddChunks — the
// write-side counterpart to types.Chunk, the read-side shape Query returns.
// ID is the store's primary key for the fragment; DocID/ChunkIx are carried
// through so Query results can be rebuilt as types.Chunk without a second
// lookup.
type ChunkRecord struct {
	ID       string
	DocID    string
	ChunkIx  int
	Vector   []float64
	Text     string
	Metadata map[string]any
}

// VectorStore is the narrow contract every retrieval backend implements:
// add vector-bearing chunks to a named collection, query it for the nearest
// neighbours of a vector (optionally constrained by a metadata filter), and
// delete by that same filter. Collections are created implicitly on first
// write.
type VectorStore interface {
	AddChunks(ctx context.Context, collection string, chunks []ChunkRecord) error
	Query(ctx context.Context, collection string, vector []float64, k int, filter map[string]any) ([]types.Chunk, error)
	DeleteByFilter(ctx context.Context, collection string, filter map[string]any) error
}

// matchesFilter reports whether metadata satisfies every key/value pair in
// filter. An empty filter matches everything.
func matchesFilter(metadata map[string]any, filter map[string]any) bool {
	for k, want := range filter {
		got, ok := metadata[k]
		if !ok {
			return false
		}
		if fmt.Sprint(got) != fmt.Sprint(want) {
			return false
		}
	}
	return true
}

// ====== In-memory vector store (tests, small collections, local dev) ======

// VectorStoreConfig controls the in-memory store's per-collection index.
type VectorStoreConfig struct {
	IndexType IndexType // IndexFlat (default, exact) or IndexHNSW (approximate)
	HNSW      HNSWConfig
}

// DefaultVectorStoreConfig returns a flat, exact-search configuration.
func DefaultVectorStoreConfig() VectorStoreConfig {
	return VectorStoreConfig{IndexType: IndexFlat, HNSW: DefaultHNSWConfig()}
}

type memoryCollection struct {
	mu      sync.RWMutex
	records map[string]ChunkRecord
	hnsw    *HNSWIndex // nil when IndexType is IndexFlat
}

// InMemoryVectorStore implements VectorStore entirely in process memory.
// Each collection keeps its own index; IndexFlat does exact brute-force
// cosine search (correct under any metadata filter), IndexHNSW does
// approximate nearest-neighbour search via vector_index.go's graph index,
// over-fetching before applying the metadata filter since the HNSW graph
// has no notion of payload predicates.
type InMemoryVectorStore struct {
	mu          sync.RWMutex
	collections map[string]*memoryCollection
	cfg         VectorStoreConfig
	logger      *zap.Logger
}

// NewInMemoryVectorStore creates an in-memory VectorStore.
func NewInMemoryVectorStore(cfg VectorStoreConfig, logger *zap.Logger) *InMemoryVectorStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.IndexType == "" {
		cfg.IndexType = IndexFlat
	}
	return &InMemoryVectorStore{
		collections: make(map[string]*memoryCollection),
		cfg:         cfg,
		logger:      logger,
	}
}

func (s *InMemoryVectorStore) collection(name string) *memoryCollection {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[name]
	if !ok {
		c = &memoryCollection{records: make(map[string]ChunkRecord)}
		if s.cfg.IndexType == IndexHNSW {
			c.hnsw = NewHNSWIndex(s.cfg.HNSW, s.logger)
		}
		s.collections[name] = c
	}
	return c
}

// AddChunks implements VectorStore.
func (s *InMemoryVectorStore) AddChunks(ctx context.Context, collection string, chunks []ChunkRecord) error {
	if len(chunks) == 0 {
		return nil
	}

	c := s.collection(collection)
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, chunk := range chunks {
		if chunk.ID == "" {
			return fmt.Errorf("chunk has empty id")
		}
		if len(chunk.Vector) == 0 {
			return fmt.Errorf("chunk %s has no vector", chunk.ID)
		}

		if c.hnsw != nil {
			if _, exists := c.records[chunk.ID]; exists {
				_ = c.hnsw.Delete(chunk.ID)
			}
			if err := c.hnsw.Add(chunk.Vector, chunk.ID); err != nil {
				return fmt.Errorf("index chunk %s: %w", chunk.ID, err)
			}
		}
		c.records[chunk.ID] = chunk
	}

	s.logger.Debug("chunks added",
		zap.String("collection", collection), zap.Int("count", len(chunks)))
	return nil
}

// Query implements VectorStore.
func (s *InMemoryVectorStore) Query(ctx context.Context, collection string, vector []float64, k int, filter map[string]any) ([]types.Chunk, error) {
	if k <= 0 {
		return []types.Chunk{}, nil
	}

	s.mu.Lock()
	c, ok := s.collections[collection]
	s.mu.Unlock()
	if !ok {
		return []types.Chunk{}, nil
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.hnsw != nil {
		return s.queryHNSW(c, vector, k, filter)
	}
	return s.queryFlat(c, vector, k, filter)
}

func (s *InMemoryVectorStore) queryFlat(c *memoryCollection, vector []float64, k int, filter map[string]any) ([]types.Chunk, error) {
	type scored struct {
		rec   ChunkRecord
		score float64
	}

	candidates := make([]scored, 0, len(c.records))
	for _, rec := range c.records {
		if !matchesFilter(rec.Metadata, filter) {
			continue
		}
		candidates = append(candidates, scored{rec: rec, score: cosineSimilarity(vector, rec.Vector)})
	}

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].score > candidates[j].score })

	if k > len(candidates) {
		k = len(candidates)
	}
	out := make([]types.Chunk, 0, k)
	for _, cand := range candidates[:k] {
		out = append(out, toChunk(cand.rec, cand.score))
	}
	return out, nil
}

func (s *InMemoryVectorStore) queryHNSW(c *memoryCollection, vector []float64, k int, filter map[string]any) ([]types.Chunk, error) {
	overfetch := k * 5
	if overfetch < k {
		overfetch = k
	}
	if overfetch > c.hnsw.Size() {
		overfetch = c.hnsw.Size()
	}
	if overfetch == 0 {
		return []types.Chunk{}, nil
	}

	results, err := c.hnsw.Search(vector, overfetch)
	if err != nil {
		return nil, err
	}

	out := make([]types.Chunk, 0, k)
	for _, r := range results {
		rec, ok := c.records[r.ID]
		if !ok || !matchesFilter(rec.Metadata, filter) {
			continue
		}
		out = append(out, toChunk(rec, r.Score))
		if len(out) == k {
			break
		}
	}
	return out, nil
}

// DeleteByFilter implements VectorStore.
func (s *InMemoryVectorStore) DeleteByFilter(ctx context.Context, collection string, filter map[string]any) error {
	s.mu.Lock()
	c, ok := s.collections[collection]
	s.mu.Unlock()
	if !ok {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	deleted := 0
	for id, rec := range c.records {
		if !matchesFilter(rec.Metadata, filter) {
			continue
		}
		if c.hnsw != nil {
			_ = c.hnsw.Delete(id)
		}
		delete(c.records, id)
		deleted++
	}

	s.logger.Debug("chunks deleted by filter",
		zap.String("collection", collection), zap.Int("deleted", deleted))
	return nil
}

func toChunk(rec ChunkRecord, score float64) types.Chunk {
	return types.Chunk{
		DocID:    rec.DocID,
		ChunkIx:  rec.ChunkIx,
		Text:     rec.Text,
		Score:    score,
		Metadata: rec.Metadata,
	}
}

// cosineSimilarity returns 0 for mismatched dimensions or zero vectors
// rather than erroring, so a single malformed embedding can't abort a scan.
func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0.0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
