package chat

import (
	"sync"

	"github.com/BaSui01/agentflow/types"
)

// Tokenizer counts tokens for history truncation. A narrow seam so this
// package doesn't depend on a specific tokenizer implementation (the
// engine typically wires in rag's tiktoken adapter).
type Tokenizer interface {
	CountTokens(text string) int
}

// History keeps an ordered message list per conversation identifier,
// mutex-guarded the same way
// _examples/BaSui01-agentflow/agent/conversation.ConversationTree guards
// its branch map — simplified here to a flat per-conversation list since
// §4.6 asks for history, not branching/rollback.
type History struct {
	mu            sync.Mutex
	conversations map[string][]types.Message
	tokenizer     Tokenizer
	tokenBudget   int // 0 disables truncation
}

// NewHistory builds a History. tokenBudget <= 0 disables truncation.
func NewHistory(tokenizer Tokenizer, tokenBudget int) *History {
	return &History{
		conversations: make(map[string][]types.Message),
		tokenizer:     tokenizer,
		tokenBudget:   tokenBudget,
	}
}

// Append adds msg to conversationID's history and truncates from the
// front (oldest first) until the remaining history fits the token budget.
func (h *History) Append(conversationID string, msg types.Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.conversations[conversationID] = append(h.conversations[conversationID], msg)
	h.truncateLocked(conversationID)
}

// Messages returns a copy of conversationID's current history.
func (h *History) Messages(conversationID string) []types.Message {
	h.mu.Lock()
	defer h.mu.Unlock()

	msgs := h.conversations[conversationID]
	out := make([]types.Message, len(msgs))
	copy(out, msgs)
	return out
}

// truncateLocked drops the oldest messages until the conversation's total
// token count fits h.tokenBudget. Must be called with h.mu held.
func (h *History) truncateLocked(conversationID string) {
	if h.tokenBudget <= 0 || h.tokenizer == nil {
		return
	}
	msgs := h.conversations[conversationID]
	for len(msgs) > 1 && h.totalTokens(msgs) > h.tokenBudget {
		msgs = msgs[1:]
	}
	h.conversations[conversationID] = msgs
}

func (h *History) totalTokens(msgs []types.Message) int {
	total := 0
	for _, m := range msgs {
		total += h.tokenizer.CountTokens(m.Content)
	}
	return total
}
