// Package strategy implements the Strategy Dispatcher (§4.2): a pure
// table lookup from RoutingDecision.PrimaryTask to the concrete strategy
// pipeline, handing off to the Workflow Engine instead when MultiIntent
// is set. Strategies register once at startup.
package strategy
