// internal/provider/factory/factory.go
package factory

import (
	"fmt"
	"time"

	"github.com/newthinker/scribe/internal/config"
	"github.com/newthinker/scribe/internal/core"
	"github.com/newthinker/scribe/internal/provider"
	"github.com/newthinker/scribe/internal/provider/claude"
	"github.com/newthinker/scribe/internal/provider/ollama"
	"github.com/newthinker/scribe/internal/provider/openai"
	"go.uber.org/zap"
)

// New creates a provider adapter based on configuration.
func New(kind core.ProviderKind, cfg config.ProviderConfig, logger *zap.Logger) (provider.Config, provider.Provider, error) {
	pcfg := provider.Config{
		Kind:            kind,
		Model:           cfg.Model,
		MaxRetries:      cfg.MaxRetries,
		Timeout:         time.Duration(cfg.TimeoutSeconds) * time.Second,
		Priority:        cfg.Priority,
		CostPer1KTokens: cfg.CostPer1KTokens,
		RateLimitRPM:    cfg.RateLimitRPM,
		QualityScore:    cfg.QualityScore,
	}

	switch kind {
	case core.ProviderClaude:
		p, err := claude.New(cfg.APIKey, pcfg, logger)
		return pcfg, p, err
	case core.ProviderOpenAI:
		p, err := openai.New(cfg.APIKey, pcfg, logger)
		return pcfg, p, err
	case core.ProviderOllama:
		// Local models never bill; force zero cost regardless of config.
		pcfg.CostPer1KTokens = 0
		p, err := ollama.New(cfg.Endpoint, pcfg, logger)
		return pcfg, p, err
	default:
		return pcfg, nil, core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown provider kind: %s", kind))
	}
}
