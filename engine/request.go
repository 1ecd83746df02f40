package engine

import (
	"time"

	"github.com/BaSui01/agentflow/types"
)

// Request is the inbound shape spec §6 names: a required query string,
// an optional free-form context map (the strategy adapters read
// conversation_id for Chat and collection and filter for RAG; other keys
// pass through untouched to whichever strategy handles the query), and an
// optional deadline expressed either as an absolute time
// or a millisecond budget from now.
type Request struct {
	QueryText string
	Context   map[string]any
	Deadline  time.Time
	TimeoutMs int
}

// Response carries the single typed strategy result plus the routing
// decision that produced it, for observability. Result is one of
// *types.ResearchResult, *types.CodeResult, *types.ChatResult,
// *types.RAGResult, *types.DomainResult, or *types.WorkflowRunResult.
type Response struct {
	Result   any
	Decision *types.RoutingDecision
}
