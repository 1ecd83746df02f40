// Copyright 2025-2026 AgentFlow Authors. All rights reserved.
// Use of this source code is governed by the project license.

/*
Package rag implements the retrieval half of the RAG strategy: a vector
store abstraction, a retrieval cache bound to collection mutations, a
weighted two-stage reranker, and the pipeline that ties embed → query →
rerank → synthesize together.

# Core interfaces

  - VectorStore — AddChunks / Query / DeleteByFilter against a named
    collection, implemented in-memory (tests, small corpora) or against
    Qdrant over its REST API.
  - Reranker — combines a BGE-style and a cross-encoder-style rerank.Provider
    into a single weighted relevance score.
  - Tokenizer — chunk/context token counting, adapted from llm/tokenizer so
    the pipeline can truncate a context block to a token budget without a
    second tokenizer implementation.

Document ingestion and format parsing (PDF/DOCX extraction) and the
embedding model itself are black boxes outside this package; Pipeline is
handed already-chunked, already-embedded input and an EmbeddingProvider for
the query side only.
*/
package rag
