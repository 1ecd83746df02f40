package types

import "time"

// TaskKind is the closed enumeration of dispatch categories a query can
// be routed to. New kinds are additive.
type TaskKind string

const (
	TaskResearch       TaskKind = "research"
	TaskCode           TaskKind = "code"
	TaskChat           TaskKind = "chat"
	TaskRAG            TaskKind = "rag"
	TaskDomainWeather  TaskKind = "domain_weather"
	TaskDomainFinance  TaskKind = "domain_finance"
	TaskDomainRouting  TaskKind = "domain_routing"
	TaskWorkflow       TaskKind = "workflow"
)

// RoutingMethod records which path inside the router produced a decision.
type RoutingMethod string

const (
	MethodKeyword         RoutingMethod = "keyword"
	MethodLLM             RoutingMethod = "llm"
	MethodKeywordFallback RoutingMethod = "keyword_fallback"
)

// ToolRecommendation is one entry in a RoutingDecision's tools_needed list.
type ToolRecommendation struct {
	Name       string         `json:"name"`
	Confidence float64        `json:"confidence"`
	Params     map[string]any `json:"params,omitempty"`
}

// RoutingDecision is the router's immutable verdict on a single query.
//
// Invariants: PrimaryTask is always set; Confidence is in [0,1]; when
// MultiIntent is true at least two distinct task kinds appear across
// ToolsNeeded.
type RoutingDecision struct {
	Query               string               `json:"query"`
	PrimaryTask         TaskKind             `json:"primary_task"`
	Confidence          float64              `json:"confidence"`
	Reasoning           string               `json:"reasoning"`
	Method              RoutingMethod        `json:"method"`
	ToolsNeeded         []ToolRecommendation `json:"tools_needed,omitempty"`
	MultiIntent         bool                 `json:"multi_intent"`
	FollowUpQuestions   []string             `json:"follow_up_questions,omitempty"`
	EstimatedDurationMs int                  `json:"estimated_duration_ms,omitempty"`
}

// Source is one scraped document surfaced by the Research strategy.
type Source struct {
	URL               string         `json:"url"`
	Title             string         `json:"title"`
	Snippet           string         `json:"snippet"`
	CredibilityScore  float64        `json:"credibility_score"`
	CredibilityDetail string         `json:"credibility_details,omitempty"`
	Metadata          map[string]any `json:"metadata,omitempty"`
}

// ResearchResult is the Research strategy's return shape. Sources is ordered
// by final rank (credibility, then optional rerank).
type ResearchResult struct {
	Query   string   `json:"query"`
	Plan    []string `json:"plan"`
	Sources []Source `json:"sources"`
	Summary string   `json:"summary"`
}

// CodeResult is the Code strategy's return shape. Code is the exact string
// that was executed.
type CodeResult struct {
	Problem     string `json:"problem"`
	Code        string `json:"code"`
	Stdout      string `json:"stdout"`
	Stderr      string `json:"stderr"`
	Success     bool   `json:"success"`
	Explanation string `json:"explanation,omitempty"`
	Truncated   bool   `json:"truncated"`
}

// Chunk is one embedded text fragment returned by a vector-search query.
type Chunk struct {
	DocID    string         `json:"doc_id"`
	ChunkIx  int            `json:"chunk_ix"`
	Text     string         `json:"text"`
	Score    float64        `json:"score"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// RAGResult is the RAG strategy's return shape.
type RAGResult struct {
	Question string  `json:"question"`
	Answer   string  `json:"answer"`
	Sources  []Chunk `json:"sources"`
}

// ChatResult is the Chat strategy's return shape.
type ChatResult struct {
	Message string `json:"message"`
}

// DomainResult is the shared return shape for the Weather/Finance/Routing
// domain strategies.
type DomainResult struct {
	Kind             TaskKind       `json:"kind"`
	Entity           string         `json:"entity"`
	ProviderPayload  map[string]any `json:"provider_payload,omitempty"`
	FormattedSummary string         `json:"formatted_summary"`
}

// ExecutionStatus is a TaskNode's lifecycle status during a workflow run.
// Transitions are monotonic with respect to terminality: once a node is
// succeeded, failed or skipped it never transitions again.
type ExecutionStatus string

const (
	StatusPending   ExecutionStatus = "pending"
	StatusRunning   ExecutionStatus = "running"
	StatusSucceeded ExecutionStatus = "succeeded"
	StatusFailed    ExecutionStatus = "failed"
	StatusSkipped   ExecutionStatus = "skipped"
)

// TaskNode is one node of a WorkflowPlan's dependency DAG.
type TaskNode struct {
	ID           string          `json:"id"`
	Kind         TaskKind        `json:"kind"`
	InputTemplate string         `json:"input_template"`
	DependsOn    []string        `json:"depends_on,omitempty"`
	RetryBudget  int             `json:"retry_budget"`
	TimeoutMs    int             `json:"timeout_ms"`
}

// WorkflowPlan is a directed acyclic graph of TaskNodes. Invariants: acyclic;
// every DependsOn id exists among Nodes; a node only starts once every
// dependency has reached StatusSucceeded.
type WorkflowPlan struct {
	Query string     `json:"query"`
	Nodes []TaskNode `json:"nodes"`
}

// ExecutionRecord is the per-node bookkeeping kept during a workflow run.
type ExecutionRecord struct {
	NodeID   string          `json:"node_id"`
	Status   ExecutionStatus `json:"status"`
	Attempts int             `json:"attempts"`
	Result   any             `json:"result,omitempty"`
	Error    string          `json:"error,omitempty"`
	StartedAt time.Time      `json:"started_at,omitempty"`
	EndedAt   time.Time      `json:"ended_at,omitempty"`
}

// WorkflowRunResult is the engine-level outcome of a completed workflow run:
// the aggregated answer plus every node's terminal record.
type WorkflowRunResult struct {
	Query   string                     `json:"query"`
	Answer  string                     `json:"answer"`
	Records map[string]ExecutionRecord `json:"records"`
}
