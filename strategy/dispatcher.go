package strategy

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/BaSui01/agentflow/types"
)

// Handler executes one strategy against a query. context carries
// strategy-specific parameters the dispatcher itself doesn't interpret
// (e.g. RAG's collection name, Chat's conversation id) — each adapter in
// adapters.go knows which keys its own strategy needs.
type Handler func(ctx context.Context, query string, context map[string]any) (any, error)

// Dispatcher maps RoutingDecision.PrimaryTask to a registered Handler.
// Per §4.2, dispatch is a pure table lookup — no branching logic beyond
// the MultiIntent short-circuit to the workflow handler.
type Dispatcher struct {
	handlers map[types.TaskKind]Handler
	workflow Handler // optional; invoked instead of the table lookup when MultiIntent is set
	logger   *zap.Logger
}

// NewDispatcher builds an empty Dispatcher. Register handlers with
// Register/RegisterWorkflow before calling Dispatch.
func NewDispatcher(logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{handlers: make(map[types.TaskKind]Handler), logger: logger}
}

// Register binds kind to h. Intended to be called once per kind at
// startup, before any Dispatch call.
func (d *Dispatcher) Register(kind types.TaskKind, h Handler) {
	d.handlers[kind] = h
}

// RegisterWorkflow sets the handler invoked whenever a RoutingDecision has
// MultiIntent set, regardless of PrimaryTask.
func (d *Dispatcher) RegisterWorkflow(h Handler) {
	d.workflow = h
}

// Dispatch routes decision to its registered strategy (or the workflow
// handler, if MultiIntent) and returns that strategy's typed result.
func (d *Dispatcher) Dispatch(ctx context.Context, decision *types.RoutingDecision, query string, context map[string]any) (any, error) {
	if decision.MultiIntent {
		if d.workflow == nil {
			return nil, fmt.Errorf("strategy: query is multi-intent but no workflow handler is registered")
		}
		return d.workflow(ctx, query, context)
	}

	h, ok := d.handlers[decision.PrimaryTask]
	if !ok {
		return nil, fmt.Errorf("strategy: no handler registered for task kind %q", decision.PrimaryTask)
	}
	return h(ctx, query, context)
}
