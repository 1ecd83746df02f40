// Package chat implements the Chat strategy (§4.6): a single LLM
// completion against an ordered, in-memory message history kept per
// conversation identifier, truncated to a configured token budget.
package chat
