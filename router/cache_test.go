package router

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/agentflow/types"
)

func TestDecisionCache_MissThenHit(t *testing.T) {
	c := NewDecisionCache(10, 3600)

	_, ok := c.Get("hello", LangEN)
	assert.False(t, ok)

	want := &types.RoutingDecision{Query: "hello", PrimaryTask: types.TaskChat}
	c.Set("hello", LangEN, want)

	got, ok := c.Get("hello", LangEN)
	require.True(t, ok)
	assert.Equal(t, want, got)
}

func TestDecisionCache_LanguageIsPartOfTheKey(t *testing.T) {
	c := NewDecisionCache(10, 3600)
	c.Set("q", LangEN, &types.RoutingDecision{Query: "q", PrimaryTask: types.TaskChat})

	_, ok := c.Get("q", LangZH)
	assert.False(t, ok, "same query text under a different language hint is a different cache entry")
}

func TestDecisionCache_ExpiresAfterTTL(t *testing.T) {
	c := NewDecisionCache(10, 0)
	c.ttl = time.Millisecond
	c.Set("q", LangEN, &types.RoutingDecision{Query: "q", PrimaryTask: types.TaskChat})

	time.Sleep(5 * time.Millisecond)
	_, ok := c.Get("q", LangEN)
	assert.False(t, ok)
}

func TestDecisionCache_EvictsOverCapacity(t *testing.T) {
	c := NewDecisionCache(2, 3600)
	c.Set("a", LangEN, &types.RoutingDecision{Query: "a"})
	c.Set("b", LangEN, &types.RoutingDecision{Query: "b"})
	c.Set("c", LangEN, &types.RoutingDecision{Query: "c"})

	_, aOk := c.Get("a", LangEN)
	_, cOk := c.Get("c", LangEN)
	assert.False(t, aOk, "oldest entry should have been evicted")
	assert.True(t, cOk)
}
