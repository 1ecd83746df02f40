package engine

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/agentflow/router"
	"github.com/BaSui01/agentflow/strategy"
	"github.com/BaSui01/agentflow/types"
)

// Engine is the single top-level facade: Query(ctx, Request) -> *Response.
// It builds nothing itself — the caller constructs and injects the
// router, the strategy dispatcher (already wired with every strategy
// handler plus RegisterWorkflow), and a logger.
type Engine struct {
	router     router.Router
	dispatcher *strategy.Dispatcher
	logger     *zap.Logger
}

// NewEngine wires router and dispatcher into an Engine. Both must already
// be fully configured (dispatcher's handlers registered, including
// RegisterWorkflow if multi-intent queries are to be supported).
func NewEngine(r router.Router, d *strategy.Dispatcher, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{router: r, dispatcher: d, logger: logger}
}

// Query implements spec §6's outer contract. An empty or whitespace-only
// query short-circuits to a clarification Chat result with no routing
// decision attached, since there is nothing to route. Otherwise it
// applies the request's deadline, routes, and dispatches. A routing or
// dispatch error is logged (dispatch errors with their error kind) and returned to the
// caller unchanged; Query filters no error kind itself, since the
// strategies absorb their recoverable failures into degraded results
// before an error can reach it.
func (e *Engine) Query(ctx context.Context, req Request) (*Response, error) {
	queryText := strings.TrimSpace(req.QueryText)
	if queryText == "" {
		return &Response{
			Result: &types.ChatResult{
				Message: "I didn't receive a question — could you rephrase it?",
			},
		}, nil
	}

	var cancel context.CancelFunc = func() {}
	switch {
	case !req.Deadline.IsZero():
		ctx, cancel = context.WithDeadline(ctx, req.Deadline)
	case req.TimeoutMs > 0:
		ctx, cancel = context.WithTimeout(ctx, time.Duration(req.TimeoutMs)*time.Millisecond)
	}
	defer cancel()

	decision, err := e.router.Route(ctx, queryText, req.Context)
	if err != nil {
		e.logger.Error("routing failed", zap.Error(err))
		return nil, err
	}

	result, err := e.dispatcher.Dispatch(ctx, decision, queryText, req.Context)
	if err != nil {
		// Every strategy handler is designed to degrade gracefully rather
		// than error (see strategy/adapters.go), so an error reaching here
		// is always one of the terminal kinds §7 says should raise: full
		// LLM provider exhaustion, an unparseable workflow decomposition,
		// or a dispatcher wiring mistake (no handler registered).
		e.logger.Error("strategy dispatch failed",
			zap.String("task", string(decision.PrimaryTask)),
			zap.String("error_kind", string(types.GetErrorKind(err))),
			zap.Error(err))
		return nil, err
	}

	return &Response{Result: result, Decision: decision}, nil
}
