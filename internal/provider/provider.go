package provider

import (
	"context"
	"time"

	"github.com/newthinker/scribe/internal/core"
)

// Provider defines the interface every LLM backend adapter implements.
// Adapters are safe for concurrent use; the only state they hold is
// immutable configuration and a reusable client.
type Provider interface {
	// Name returns the provider name (matches its kind).
	Name() string

	// Kind returns the provider kind.
	Kind() core.ProviderKind

	// Generate performs one generation call. The request is never mutated.
	// Errors are one of *core.ProviderError or *core.RateLimitError.
	Generate(ctx context.Context, req core.GenerationRequest) (*core.GenerationResult, error)

	// EstimateCost returns the projected USD cost of serving the request
	// without making a network call.
	EstimateCost(req core.GenerationRequest) float64

	// ValidateReachability probes the backend. It never returns an error;
	// detail goes to the adapter's logger.
	ValidateReachability(ctx context.Context) bool
}

// Config holds the registration-time settings for one backend.
// Immutable once constructed; the registry owns the only instance.
type Config struct {
	Kind            core.ProviderKind
	Model           string
	MaxRetries      int
	Timeout         time.Duration
	Priority        int // lower = preferred tie-break
	CostPer1KTokens float64
	RateLimitRPM    int
	QualityScore    float64 // static, in [0,1]
}

// ApproxTokens estimates token count for text when a backend omits usage
// data. Roughly four characters per token; never returns zero for
// non-empty text.
func ApproxTokens(text string) int {
	if text == "" {
		return 0
	}
	n := len(text) / 4
	if n == 0 {
		n = 1
	}
	return n
}

// Cost computes the USD cost of a token total at the configured rate.
func (c Config) Cost(totalTokens int) float64 {
	if c.CostPer1KTokens <= 0 {
		return 0
	}
	return float64(totalTokens) / 1000.0 * c.CostPer1KTokens
}
