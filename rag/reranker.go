package rag

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/BaSui01/agentflow/llm/rerank"
	"github.com/BaSui01/agentflow/types"
)

// RerankWeights controls the hybrid combination of the two reranker scores.
type RerankWeights struct {
	BGE          float64
	CrossEncoder float64
}

// DefaultRerankWeights matches the spec's hybrid rerank formula:
// final = 0.6·bge + 0.4·cross_encoder.
func DefaultRerankWeights() RerankWeights {
	return RerankWeights{BGE: 0.6, CrossEncoder: 0.4}
}

// Reranker re-scores a chunk list against the query, combining a BGE-style
// and a cross-encoder-style rerank.Provider. Either provider may be nil, in
// which case that side contributes zero and the other's score is used
// directly (still scaled by its weight, so callers who only configure one
// provider should set that provider's weight to 1 and the other's to 0).
type Reranker struct {
	bge          rerank.Provider
	crossEncoder rerank.Provider
	weights      RerankWeights
	topM         int
	logger       *zap.Logger
}

// NewReranker creates a hybrid reranker. topM is the number of chunks kept
// after reranking (spec default 5).
func NewReranker(bge, crossEncoder rerank.Provider, weights RerankWeights, topM int, logger *zap.Logger) *Reranker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if topM <= 0 {
		topM = 5
	}
	return &Reranker{bge: bge, crossEncoder: crossEncoder, weights: weights, topM: topM, logger: logger}
}

// Rerank scores chunks against query and returns the top-M in descending
// combined-score order. Chunks are untouched except for Score, which is
// overwritten with the combined relevance score.
func (r *Reranker) Rerank(ctx context.Context, query string, chunks []types.Chunk) ([]types.Chunk, error) {
	if len(chunks) == 0 {
		return chunks, nil
	}

	bgeScores := r.scoreWith(ctx, r.bge, query, chunks)
	ceScores := r.scoreWith(ctx, r.crossEncoder, query, chunks)

	out := make([]types.Chunk, len(chunks))
	copy(out, chunks)
	for i := range out {
		out[i].Score = r.weights.BGE*bgeScores[i] + r.weights.CrossEncoder*ceScores[i]
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Score > out[j].Score })

	if r.topM < len(out) {
		out = out[:r.topM]
	}
	return out, nil
}

// scoreWith returns a relevance score per chunk, in input order. A nil
// provider, or one that errors, scores everything zero rather than failing
// the whole rerank — a single flaky reranker shouldn't sink the other.
func (r *Reranker) scoreWith(ctx context.Context, p rerank.Provider, query string, chunks []types.Chunk) []float64 {
	scores := make([]float64, len(chunks))
	if p == nil {
		return scores
	}

	docs := make([]rerank.Document, len(chunks))
	for i, c := range chunks {
		docs[i] = rerank.Document{Text: c.Text, ID: fmt.Sprintf("%s#%d", c.DocID, c.ChunkIx)}
	}

	resp, err := p.Rerank(ctx, &rerank.RerankRequest{Query: query, Documents: docs, TopN: len(docs)})
	if err != nil {
		r.logger.Warn("rerank provider call failed, scoring as zero", zap.String("provider", p.Name()), zap.Error(err))
		return scores
	}

	for _, res := range resp.Results {
		if res.Index >= 0 && res.Index < len(scores) {
			scores[res.Index] = res.RelevanceScore
		}
	}
	return scores
}
