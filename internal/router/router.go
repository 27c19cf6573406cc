// internal/router/router.go
package router

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/newthinker/scribe/internal/core"
	"github.com/newthinker/scribe/internal/provider"
	"go.uber.org/zap"
)

// defaultCooldown is applied when a throttling backend gives no
// retry-after hint.
const defaultCooldown = 30 * time.Second

// epsilon guards the balanced ratio against zero-cost providers.
const epsilon = 1e-6

// Candidate pairs a registered adapter with its configuration.
type Candidate struct {
	Config   provider.Config
	Provider provider.Provider
}

// Router owns the configured set of provider adapters and selects among
// them per request, failing over across the ranked remainder.
type Router struct {
	mu         sync.RWMutex
	candidates map[core.ProviderKind]Candidate
	limiter    *limiter
	logger     *zap.Logger
	now        func() time.Time
}

// New creates an empty router.
func New(logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	now := time.Now
	return &Router{
		candidates: make(map[core.ProviderKind]Candidate),
		limiter:    newLimiter(now),
		logger:     logger,
		now:        now,
	}
}

// Register adds one backend. Registering the same kind twice is a
// configuration error, never a silent overwrite.
func (r *Router) Register(cfg provider.Config, p provider.Provider) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.candidates[cfg.Kind]; exists {
		return core.ErrDuplicateProvider
	}
	r.candidates[cfg.Kind] = Candidate{Config: cfg, Provider: p}
	return nil
}

// Candidates returns all registered candidates in unspecified order.
func (r *Router) Candidates() []Candidate {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Candidate, 0, len(r.candidates))
	for _, c := range r.candidates {
		result = append(result, c)
	}
	return result
}

// SelectOrdering returns the full candidate list sorted by the strategy's
// comparator. Ties always break toward the lower priority value.
func (r *Router) SelectOrdering(strategy core.Strategy) []Candidate {
	candidates := r.Candidates()

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i].Config, candidates[j].Config
		switch strategy {
		case core.StrategyCost:
			if a.CostPer1KTokens != b.CostPer1KTokens {
				return a.CostPer1KTokens < b.CostPer1KTokens
			}
		case core.StrategyQuality:
			if a.QualityScore != b.QualityScore {
				return a.QualityScore > b.QualityScore
			}
		case core.StrategyPriority:
			return a.Priority < b.Priority
		default: // balanced
			ra := a.QualityScore / max(a.CostPer1KTokens, epsilon)
			rb := b.QualityScore / max(b.CostPer1KTokens, epsilon)
			if ra != rb {
				return ra > rb
			}
		}
		return a.Priority < b.Priority
	})

	return candidates
}

// Dispatch tries ordered candidates until one succeeds or all fail.
// At most one outbound call per candidate; the first success returns
// immediately. Per-attempt retries belong to the client layer, keeping
// this loop deterministic and boundable.
func (r *Router) Dispatch(ctx context.Context, req core.GenerationRequest, strategy core.Strategy) (*core.GenerationResult, error) {
	ordering := r.SelectOrdering(strategy)
	if len(ordering) == 0 {
		return nil, core.ErrNoProviders
	}

	var attempts []core.Attempt
	for _, c := range ordering {
		kind := c.Config.Kind

		if !r.limiter.Acquire(kind, c.Config.RateLimitRPM) {
			attempts = append(attempts, core.Attempt{Provider: kind, Reason: "rate limited locally"})
			continue
		}

		callCtx := ctx
		var cancel context.CancelFunc
		if c.Config.Timeout > 0 {
			callCtx, cancel = context.WithTimeout(ctx, c.Config.Timeout)
		}
		result, err := c.Provider.Generate(callCtx, req)
		if cancel != nil {
			cancel()
		}
		if err == nil {
			return result, nil
		}

		attempts = append(attempts, core.Attempt{Provider: kind, Reason: err.Error()})

		var rle *core.RateLimitError
		if errors.As(err, &rle) {
			cooldown := rle.RetryAfter
			if cooldown <= 0 {
				cooldown = defaultCooldown
			}
			r.limiter.Block(kind, r.now().Add(cooldown))
			r.logger.Warn("provider rate limited, cooling down",
				zap.String("provider", string(kind)),
				zap.Duration("cooldown", cooldown))
			continue
		}

		// Timeouts count as unreachable backends.
		r.logger.Warn("provider failed, trying next candidate",
			zap.String("provider", string(kind)),
			zap.Error(err))
	}

	return nil, &core.GenerationError{Attempts: attempts}
}

// setNow overrides the clock, for tests.
func (r *Router) setNow(now func() time.Time) {
	r.now = now
	r.limiter.now = now
}
