// Package router classifies an incoming query into a RoutingDecision.
// Three routers share the Router interface: KeywordRouter (deterministic,
// non-suspending), LLMRouter (structured-output classification), and
// Hybrid, which composes the two per the keyword-confidence threshold and
// caches decisions in DecisionCache.
package router
