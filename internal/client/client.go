// internal/client/client.go
package client

import (
	"context"
	"errors"
	"time"

	"github.com/newthinker/scribe/internal/cache"
	"github.com/newthinker/scribe/internal/core"
	"github.com/newthinker/scribe/internal/metrics"
	"github.com/newthinker/scribe/internal/router"
	"go.uber.org/zap"
)

const retryBackoff = 500 * time.Millisecond

// Client is the caller-facing entry point for generation. It wraps the
// router's dispatch with a bounded retry loop, a result cache, and usage
// accounting.
type Client struct {
	router     *router.Router
	cache      cache.Cache
	metrics    *metrics.Registry
	stats      *statsBook
	maxRetries int
	logger     *zap.Logger
}

// Options configures optional collaborators.
type Options struct {
	Cache      cache.Cache       // nil disables caching
	Metrics    *metrics.Registry // nil disables metric emission
	MaxRetries int               // applied uniformly across the whole dispatch
}

// New creates a routed client.
func New(r *router.Router, opts Options, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		router:     r,
		cache:      opts.Cache,
		metrics:    opts.Metrics,
		stats:      newStatsBook(),
		maxRetries: opts.MaxRetries,
		logger:     logger,
	}
}

// Generate dispatches the request under the given strategy, retrying the
// whole dispatch up to the configured retry budget. An empty strategy
// defaults to balanced.
func (c *Client) Generate(ctx context.Context, req core.GenerationRequest, strategy core.Strategy) (*core.GenerationResult, error) {
	if strategy == "" {
		strategy = core.StrategyBalanced
	}

	var key string
	if c.cache != nil {
		key = cache.Fingerprint(req)
		if result, ok := c.cache.Get(key); ok {
			c.logger.Debug("cache hit", zap.String("provider", string(result.Provider)))
			return result, nil
		}
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, c.recordFailure(lastErr)
			case <-time.After(retryBackoff * time.Duration(attempt)):
			}
			c.logger.Info("retrying dispatch",
				zap.Int("attempt", attempt),
				zap.String("strategy", string(strategy)))
		}

		result, err := c.router.Dispatch(ctx, req, strategy)
		if err == nil {
			c.recordSuccess(result)
			if c.cache != nil {
				c.cache.Set(key, result)
			}
			return result, nil
		}
		lastErr = err
	}

	return nil, c.recordFailure(lastErr)
}

// EstimateCost returns the cheapest candidate's projected cost under the
// given strategy ordering. No network call is made.
func (c *Client) EstimateCost(req core.GenerationRequest, strategy core.Strategy) (float64, error) {
	if strategy == "" {
		strategy = core.StrategyBalanced
	}
	ordering := c.router.SelectOrdering(strategy)
	if len(ordering) == 0 {
		return 0, core.ErrNoProviders
	}

	cheapest := ordering[0].Provider.EstimateCost(req)
	for _, cand := range ordering[1:] {
		if est := cand.Provider.EstimateCost(req); est < cheapest {
			cheapest = est
		}
	}
	return cheapest, nil
}

// Stats returns a snapshot of rolling per-provider usage totals.
func (c *Client) Stats() map[core.ProviderKind]ProviderStats {
	return c.stats.Snapshot()
}

func (c *Client) recordSuccess(result *core.GenerationResult) {
	c.stats.RecordSuccess(result)
	if c.metrics != nil {
		c.metrics.RecordLLMCall(string(result.Provider), "success",
			result.PromptTokens, result.CompletionTokens,
			result.CostUSD, result.ResponseTime.Seconds())
	}
}

func (c *Client) recordFailure(err error) error {
	var genErr *core.GenerationError
	if errors.As(err, &genErr) {
		for _, a := range genErr.Attempts {
			c.stats.RecordFailure(a.Provider)
			if c.metrics != nil {
				c.metrics.RecordLLMCall(string(a.Provider), "failure", 0, 0, 0, 0)
			}
		}
	}
	return err
}
