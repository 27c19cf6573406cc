package client

import (
	"sync"
	"time"

	"github.com/newthinker/scribe/internal/core"
)

// ProviderStats holds rolling usage totals for one provider.
type ProviderStats struct {
	Requests         int64
	Failures         int64
	PromptTokens     int64
	CompletionTokens int64
	TotalTokens      int64
	CostUSD          float64
	TotalLatency     time.Duration
}

// statsBook accumulates per-provider totals behind a mutex so concurrent
// generations never lose an update.
type statsBook struct {
	mu   sync.Mutex
	book map[core.ProviderKind]*ProviderStats
}

func newStatsBook() *statsBook {
	return &statsBook{book: make(map[core.ProviderKind]*ProviderStats)}
}

func (s *statsBook) get(kind core.ProviderKind) *ProviderStats {
	st, ok := s.book[kind]
	if !ok {
		st = &ProviderStats{}
		s.book[kind] = st
	}
	return st
}

// RecordSuccess accumulates one successful generation.
func (s *statsBook) RecordSuccess(result *core.GenerationResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.get(result.Provider)
	st.Requests++
	st.PromptTokens += int64(result.PromptTokens)
	st.CompletionTokens += int64(result.CompletionTokens)
	st.TotalTokens += int64(result.TotalTokens)
	st.CostUSD += result.CostUSD
	st.TotalLatency += result.ResponseTime
}

// RecordFailure accumulates one failed attempt against a provider.
func (s *statsBook) RecordFailure(kind core.ProviderKind) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.get(kind)
	st.Requests++
	st.Failures++
}

// Snapshot returns a copy of all totals.
func (s *statsBook) Snapshot() map[core.ProviderKind]ProviderStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make(map[core.ProviderKind]ProviderStats, len(s.book))
	for kind, st := range s.book {
		result[kind] = *st
	}
	return result
}
