package router

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/BaSui01/agentflow/types"
)

type cacheEntry struct {
	decision *types.RoutingDecision
	expires  time.Time
}

// DecisionCache caches RoutingDecisions keyed by a hash of query +
// language hint (§3), with LRU eviction bounding the entry count and a
// per-entry TTL on top, since golang-lru doesn't expire entries on its
// own. Safe for concurrent use; eviction is single-writer under a
// read/write lock per §5.
type DecisionCache struct {
	mu  sync.RWMutex
	lru *lru.Cache[string, cacheEntry]
	ttl time.Duration
}

// NewDecisionCache builds a cache bounded to maxEntries with the given
// TTL in seconds.
func NewDecisionCache(maxEntries int, ttlSeconds int) *DecisionCache {
	if maxEntries <= 0 {
		maxEntries = 1000
	}
	c, _ := lru.New[string, cacheEntry](maxEntries)
	return &DecisionCache{lru: c, ttl: time.Duration(ttlSeconds) * time.Second}
}

func cacheKey(query string, lang Language) string {
	sum := sha256.Sum256([]byte(string(lang) + "\x00" + query))
	return hex.EncodeToString(sum[:])
}

// Get returns a cached decision if present and not expired.
func (c *DecisionCache) Get(query string, lang Language) (*types.RoutingDecision, bool) {
	key := cacheKey(query, lang)

	c.mu.RLock()
	entry, ok := c.lru.Get(key)
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if time.Now().After(entry.expires) {
		c.mu.Lock()
		c.lru.Remove(key)
		c.mu.Unlock()
		return nil, false
	}
	return entry.decision, true
}

// Set stores decision under query+lang's key with the cache's configured
// TTL.
func (c *DecisionCache) Set(query string, lang Language, decision *types.RoutingDecision) {
	key := cacheKey(query, lang)
	entry := cacheEntry{decision: decision, expires: time.Now().Add(c.ttl)}

	c.mu.Lock()
	c.lru.Add(key, entry)
	c.mu.Unlock()
}
