package workflow

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/agentflow/types"
)

// Config tunes the scheduler's concurrency cap and per-node defaults.
type Config struct {
	// MaxConcurrentNodes bounds how many nodes may be running at once.
	MaxConcurrentNodes int
	// DefaultTimeout applies to a node whose TimeoutMs is unset (<= 0).
	DefaultTimeout time.Duration
}

// DefaultConfig matches the spec's stated default of 10 concurrent nodes.
func DefaultConfig() Config {
	return Config{MaxConcurrentNodes: 10, DefaultTimeout: 30 * time.Second}
}

// Executor runs WorkflowPlans via topological-wave scheduling: nodes whose
// dependencies have all succeeded launch concurrently up to Config's cap;
// a node whose retry budget is exhausted is marked failed and everything
// that transitively depends on it is marked skipped.
type Executor struct {
	nodeExecutor NodeExecutor
	aggregator   *Aggregator
	config       Config
	logger       *zap.Logger
}

// NewExecutor builds an Executor. aggregator may be nil, in which case Run
// falls back to a deterministic textual summary instead of an LLM one.
func NewExecutor(nodeExecutor NodeExecutor, aggregator *Aggregator, config Config, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.MaxConcurrentNodes <= 0 {
		config.MaxConcurrentNodes = DefaultConfig().MaxConcurrentNodes
	}
	if config.DefaultTimeout <= 0 {
		config.DefaultTimeout = DefaultConfig().DefaultTimeout
	}
	return &Executor{nodeExecutor: nodeExecutor, aggregator: aggregator, config: config, logger: logger.With(zap.String("component", "workflow_executor"))}
}

// runState is the per-run bookkeeping the scheduler mutates under a
// single lock, matching the spec's "the run's scheduler is the sole
// writer and uses a single lock around status transitions."
type runState struct {
	mu       sync.Mutex
	records  map[string]*types.ExecutionRecord
	launched map[string]bool
	inFlight int
}

type nodeDone struct{ nodeID string }

// Run executes plan to termination (every node reaches a terminal status)
// and returns the aggregated result. The returned channel carries every
// node's lifecycle events and is closed once Run has finished producing
// them; it is safe to range over concurrently from another goroutine or
// to drain after Run returns.
func (e *Executor) Run(ctx context.Context, plan *types.WorkflowPlan) (*types.WorkflowRunResult, <-chan Event, error) {
	if err := ValidatePlan(plan); err != nil {
		return nil, nil, err
	}

	st := &runState{
		records:  make(map[string]*types.ExecutionRecord, len(plan.Nodes)),
		launched: make(map[string]bool, len(plan.Nodes)),
	}
	for _, n := range plan.Nodes {
		st.records[n.ID] = &types.ExecutionRecord{NodeID: n.ID, Status: types.StatusPending}
	}

	events := make(chan Event, eventsBufferFor(len(plan.Nodes)))
	done := make(chan nodeDone, len(plan.Nodes))

	total := len(plan.Nodes)
	terminal := 0

	launchReadyAndSkip := func() {
		st.mu.Lock()
		defer st.mu.Unlock()
		for _, n := range plan.Nodes {
			rec := st.records[n.ID]
			if rec.Status != types.StatusPending || st.launched[n.ID] {
				continue
			}
			ready, skip := depStatus(n, st.records)
			if skip {
				rec.Status = types.StatusSkipped
				st.launched[n.ID] = true
				terminal++
				emit(events, Event{NodeID: n.ID, Type: EventSkipped, At: time.Now()})
				continue
			}
			if !ready || st.inFlight >= e.config.MaxConcurrentNodes {
				continue
			}
			st.launched[n.ID] = true
			st.inFlight++
			go e.runNode(ctx, n, st, events, done)
		}
	}

	launchReadyAndSkip()
	cancelled := false
	for terminal < total {
		st.mu.Lock()
		inFlight := st.inFlight
		st.mu.Unlock()
		if cancelled && inFlight == 0 {
			break
		}
		select {
		case <-done:
			st.mu.Lock()
			st.inFlight--
			terminal++
			st.mu.Unlock()
			if !cancelled {
				launchReadyAndSkip()
			}
		case <-ctx.Done():
			// Stop launching new nodes but keep draining in-flight ones:
			// their attemptCtx is derived from ctx, so they return
			// promptly, and we must not close events while they might
			// still emit on it.
			cancelled = true
		}
	}
	close(events)
	if cancelled {
		return nil, events, ctx.Err()
	}

	finalRecords := make(map[string]types.ExecutionRecord, total)
	st.mu.Lock()
	for id, rec := range st.records {
		finalRecords[id] = *rec
	}
	st.mu.Unlock()

	answer := e.aggregate(ctx, plan.Query, finalRecords)
	return &types.WorkflowRunResult{Query: plan.Query, Answer: answer, Records: finalRecords}, events, nil
}

// depStatus reports whether node's dependencies are all succeeded
// (ready), or whether at least one has reached a terminal failure state
// (skip, which takes precedence over ready).
func depStatus(node types.TaskNode, records map[string]*types.ExecutionRecord) (ready bool, skip bool) {
	ready = true
	for _, dep := range node.DependsOn {
		switch records[dep].Status {
		case types.StatusFailed, types.StatusSkipped:
			return false, true
		case types.StatusSucceeded:
		default:
			ready = false
		}
	}
	return ready, false
}

// runNode executes one node to its terminal status: started, zero or
// more attempt-failed events while its retry budget lasts, then either
// succeeded or failed (no dedicated "failed" event per the spec's
// enumerated set; the terminal ExecutionRecord.Status carries that).
func (e *Executor) runNode(ctx context.Context, node types.TaskNode, st *runState, events chan<- Event, done chan<- nodeDone) {
	st.mu.Lock()
	rec := st.records[node.ID]
	rec.Status = types.StatusRunning
	rec.StartedAt = time.Now()
	st.mu.Unlock()
	emit(events, Event{NodeID: node.ID, Type: EventStarted, At: rec.StartedAt})

	input := substitute(node.InputTemplate, node.DependsOn, st)

	attempts := node.RetryBudget + 1
	if attempts < 1 {
		attempts = 1
	}
	timeout := time.Duration(node.TimeoutMs) * time.Millisecond
	if timeout <= 0 {
		timeout = e.config.DefaultTimeout
	}

	var result any
	var lastErr error
	attempt := 0
	for attempt = 1; attempt <= attempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, timeout)
		result, lastErr = e.nodeExecutor.Execute(attemptCtx, node.Kind, input)
		cancel()
		if lastErr == nil {
			break
		}
		e.logger.Warn("node attempt failed", zap.String("node_id", node.ID), zap.Int("attempt", attempt), zap.Error(lastErr))
		emit(events, Event{NodeID: node.ID, Type: EventAttemptFailed, Attempt: attempt, Err: lastErr.Error(), At: time.Now()})
	}

	st.mu.Lock()
	rec.EndedAt = time.Now()
	if lastErr == nil {
		rec.Status = types.StatusSucceeded
		rec.Result = result
		rec.Attempts = attempt
	} else {
		rec.Status = types.StatusFailed
		rec.Error = lastErr.Error()
		rec.Attempts = attempts
	}
	st.mu.Unlock()

	if lastErr == nil {
		emit(events, Event{NodeID: node.ID, Type: EventSucceeded, At: rec.EndedAt})
	}
	done <- nodeDone{nodeID: node.ID}
}

// substitute replaces each dependency id's placeholder, written as
// "{{node_id}}", in template with that dependency's stringified result.
func substitute(template string, dependsOn []string, st *runState) string {
	if len(dependsOn) == 0 {
		return template
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	out := template
	for _, dep := range dependsOn {
		placeholder := "{{" + dep + "}}"
		out = strings.ReplaceAll(out, placeholder, fmt.Sprint(st.records[dep].Result))
	}
	return out
}

// aggregate never fails the run: it prefers the LLM-backed aggregator,
// and falls back to a deterministic summary if none is configured or it
// errors.
func (e *Executor) aggregate(ctx context.Context, query string, records map[string]types.ExecutionRecord) string {
	if e.aggregator != nil {
		if answer, err := e.aggregator.Aggregate(ctx, query, records); err == nil {
			return answer
		} else {
			e.logger.Warn("aggregation failed, falling back to summary", zap.Error(err))
		}
	}
	return fallbackSummary(records)
}

func fallbackSummary(records map[string]types.ExecutionRecord) string {
	var succeeded, failed, skipped []string
	for id, rec := range records {
		switch rec.Status {
		case types.StatusSucceeded:
			succeeded = append(succeeded, id)
		case types.StatusFailed:
			failed = append(failed, fmt.Sprintf("%s (%s)", id, rec.Error))
		case types.StatusSkipped:
			skipped = append(skipped, id)
		}
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Workflow completed: %d succeeded", len(succeeded))
	if len(failed) > 0 {
		fmt.Fprintf(&b, ", %d failed (%s)", len(failed), strings.Join(failed, "; "))
	}
	if len(skipped) > 0 {
		fmt.Fprintf(&b, ", %d skipped", len(skipped))
	}
	b.WriteString(".")
	return b.String()
}
