package rag

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/BaSui01/agentflow/types"
)

// EmbeddingProvider embeds a single query string into a vector. The
// embedding model's weights are out of scope for this core; callers supply
// a thin client against whatever embedding service is configured.
type EmbeddingProvider interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Completer is the narrow slice of llm.Manager the RAG pipeline needs for
// synthesis — kept as an interface so tests can supply a stub instead of a
// real Manager.
type Completer interface {
	Complete(ctx context.Context, req *CompletionRequest) (string, error)
}

// CompletionRequest is the pipeline's view of an LLM chat completion
// request, independent of the concrete llm.ChatRequest shape so this
// package doesn't need to import llm directly.
type CompletionRequest struct {
	Model       string
	Messages    []types.Message
	Temperature float32
	MaxTokens   int
}

// PipelineConfig mirrors spec §6's RAG config block.
type PipelineConfig struct {
	EmbeddingModelID string
	DefaultK         int // top-K retrieved before rerank, default 10
	RerankerEnabled  bool
	RerankWeights    RerankWeights
	SynthesisModel   string
	ContextTokenCap  int // 0 disables truncation
}

// DefaultPipelineConfig returns spec defaults: K=10, hybrid rerank weights.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		DefaultK:      10,
		RerankWeights: DefaultRerankWeights(),
	}
}

// Pipeline implements the RAG strategy: embed query → vector retrieve →
// rerank → synthesize (spec §4.5).
type Pipeline struct {
	store     VectorStore
	embedder  EmbeddingProvider
	reranker  *Reranker
	cache     *RetrievalCache
	completer Completer
	tokenizer Tokenizer
	cfg       PipelineConfig
	logger    *zap.Logger
}

// NewPipeline wires a RAG pipeline. cache and reranker may be nil to skip
// caching / reranking respectively.
func NewPipeline(store VectorStore, embedder EmbeddingProvider, completer Completer, reranker *Reranker, cache *RetrievalCache, tokenizer Tokenizer, cfg PipelineConfig, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DefaultK <= 0 {
		cfg.DefaultK = 10
	}
	return &Pipeline{
		store:     store,
		embedder:  embedder,
		reranker:  reranker,
		cache:     cache,
		completer: completer,
		tokenizer: tokenizer,
		cfg:       cfg,
		logger:    logger,
	}
}

// Run executes the full RAG pipeline against one collection and returns a
// RAGResult. filter restricts retrieval to chunks whose metadata matches it
// (nil for no restriction).
func (p *Pipeline) Run(ctx context.Context, collection, question string, filter map[string]any) (*types.RAGResult, error) {
	if strings.TrimSpace(question) == "" {
		return nil, &types.Error{Code: types.ErrInvalidRequest, Kind: types.KindInvalidInput, Message: "question is empty"}
	}

	vector, err := p.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	chunks, err := p.retrieve(ctx, collection, vector, p.cfg.DefaultK, filter)
	if err != nil {
		return nil, fmt.Errorf("retrieve chunks: %w", err)
	}

	if p.cfg.RerankerEnabled && p.reranker != nil {
		chunks, err = p.reranker.Rerank(ctx, question, chunks)
		if err != nil {
			return nil, fmt.Errorf("rerank chunks: %w", err)
		}
	}

	contextBlock := p.buildContext(chunks)

	answer, err := p.synthesize(ctx, question, contextBlock)
	if err != nil {
		return nil, fmt.Errorf("synthesize answer: %w", err)
	}

	return &types.RAGResult{
		Question: question,
		Answer:   answer,
		Sources:  chunks,
	}, nil
}

func (p *Pipeline) retrieve(ctx context.Context, collection string, vector []float64, k int, filter map[string]any) ([]types.Chunk, error) {
	if p.cache != nil {
		if cached, ok := p.cache.Get(ctx, collection, vector, k, filter); ok {
			return cached, nil
		}
	}

	chunks, err := p.store.Query(ctx, collection, vector, k, filter)
	if err != nil {
		return nil, err
	}

	if p.cache != nil {
		if err := p.cache.Set(ctx, collection, vector, k, filter, chunks); err != nil {
			p.logger.Warn("failed to populate retrieval cache", zap.Error(err))
		}
	}
	return chunks, nil
}

// buildContext renders the surviving chunks, in rank order, as a numbered
// context block the synthesis prompt can cite by index. Truncates to the
// configured token budget, dropping lowest-ranked chunks first.
func (p *Pipeline) buildContext(chunks []types.Chunk) string {
	var b strings.Builder
	budget := p.cfg.ContextTokenCap

	for i, c := range chunks {
		entry := fmt.Sprintf("[%d] (%s#%d) %s\n", i+1, c.DocID, c.ChunkIx, c.Text)
		if budget > 0 && p.tokenizer != nil {
			if p.tokenizer.CountTokens(b.String()+entry) > budget {
				break
			}
		}
		b.WriteString(entry)
	}
	return b.String()
}

const synthesisSystemPrompt = `You answer questions using only the numbered context entries provided. Cite the entries you rely on using their [n] markers. If the context does not contain the answer, say so plainly.`

func (p *Pipeline) synthesize(ctx context.Context, question, contextBlock string) (string, error) {
	model := p.cfg.SynthesisModel

	messages := []types.Message{
		types.NewSystemMessage(synthesisSystemPrompt),
		types.NewUserMessage(fmt.Sprintf("Context:\n%s\nQuestion: %s", contextBlock, question)),
	}

	return p.completer.Complete(ctx, &CompletionRequest{Model: model, Messages: messages})
}
