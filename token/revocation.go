package token

import (
	"sync"
	"time"

	"github.com/jrsteele09/go-oauth2-core/oauth2"
)

// RevocationList remembers revoked token ids until the token would have
// expired anyway. Self-contained JWT copies of a token are checked against it.
type RevocationList interface {
	Add(id oauth2.TokenID, exp time.Time)
	IsRevoked(id oauth2.TokenID) bool
	Cleanup() int // Remove expired entries
}

// InMemoryRevocationList is a simple in-memory implementation
type InMemoryRevocationList struct {
	revoked map[oauth2.TokenID]time.Time
	nowTime func() time.Time
	mu      sync.RWMutex
}

func NewInMemoryRevocationList(nowTime func() time.Time) *InMemoryRevocationList {
	if nowTime == nil {
		nowTime = time.Now
	}
	return &InMemoryRevocationList{
		revoked: make(map[oauth2.TokenID]time.Time),
		nowTime: nowTime,
	}
}

func (c *InMemoryRevocationList) Add(id oauth2.TokenID, exp time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.revoked[id] = exp
}

func (c *InMemoryRevocationList) IsRevoked(id oauth2.TokenID) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, exists := c.revoked[id]
	return exists
}

func (c *InMemoryRevocationList) Cleanup() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.nowTime()
	removed := 0
	for id, exp := range c.revoked {
		if !now.Before(exp) {
			delete(c.revoked, id)
			removed++
		}
	}
	return removed
}
