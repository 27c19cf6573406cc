// internal/cache/cache.go
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/newthinker/scribe/internal/core"
)

// Cache stores generation results keyed by request fingerprint. It is
// constructed at process start and passed in explicitly; there is no
// package-level instance.
type Cache interface {
	Get(key string) (*core.GenerationResult, bool)
	Set(key string, result *core.GenerationResult)
}

// Fingerprint derives a stable key from every field of the request that
// affects generated content.
func Fingerprint(req core.GenerationRequest) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%s\x00%g\x00%g\x00%d\x00%t\x00%s",
		req.Prompt, req.SystemPrompt, req.Temperature, req.TopP,
		req.MaxTokens, req.JSONMode, strings.Join(req.StopSequences, "\x00"))
	return hex.EncodeToString(h.Sum(nil))
}

type entry struct {
	result    core.GenerationResult
	expiresAt time.Time
}

// Memory is a TTL-bounded in-memory cache.
type Memory struct {
	mu         sync.Mutex
	entries    map[string]entry
	order      []string // insertion order for eviction
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
}

// NewMemory creates an in-memory cache with the given TTL and capacity.
func NewMemory(ttl time.Duration, maxEntries int) *Memory {
	if maxEntries <= 0 {
		maxEntries = 256
	}
	return &Memory{
		entries:    make(map[string]entry),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// Get returns a copy of the cached result if present and unexpired.
func (m *Memory) Get(key string) (*core.GenerationResult, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return nil, false
	}
	if m.ttl > 0 && m.now().After(e.expiresAt) {
		delete(m.entries, key)
		return nil, false
	}
	result := e.result
	return &result, true
}

// Set stores a result, evicting the oldest entry at capacity.
func (m *Memory) Set(key string, result *core.GenerationResult) {
	if result == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.entries[key]; !exists {
		if len(m.entries) >= m.maxEntries && len(m.order) > 0 {
			oldest := m.order[0]
			delete(m.entries, oldest)
			m.order = m.order[1:]
		}
		m.order = append(m.order, key)
	}
	m.entries[key] = entry{
		result:    *result,
		expiresAt: m.now().Add(m.ttl),
	}
}
