// Package domain implements the Weather, Finance, and Routing strategies
// (§4.7): regex/heuristic entity extraction (or an optional LLM call),
// primary-provider invocation with a configurable fallback provider,
// and formatting into a types.DomainResult. Missing or unparseable
// entities are reported through FormattedSummary, not an error.
package domain
