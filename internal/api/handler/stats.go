// internal/api/handler/stats.go
package handler

import (
	"net/http"

	"github.com/newthinker/scribe/internal/api/response"
	"github.com/newthinker/scribe/internal/client"
	"github.com/newthinker/scribe/internal/core"
)

// UsageSource defines the interface needed from client.Client.
type UsageSource interface {
	Stats() map[core.ProviderKind]client.ProviderStats
}

// StatsHandler exposes rolling per-provider usage totals.
type StatsHandler struct {
	source UsageSource
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(source UsageSource) *StatsHandler {
	return &StatsHandler{source: source}
}

type providerUsage struct {
	Requests         int64   `json:"requests"`
	Failures         int64   `json:"failures"`
	PromptTokens     int64   `json:"prompt_tokens"`
	CompletionTokens int64   `json:"completion_tokens"`
	TotalTokens      int64   `json:"total_tokens"`
	CostUSD          float64 `json:"cost_usd"`
	AvgLatencyMS     int64   `json:"avg_latency_ms"`
}

// Providers returns usage totals partitioned by provider.
func (h *StatsHandler) Providers(w http.ResponseWriter, r *http.Request) {
	stats := h.source.Stats()

	result := make(map[string]providerUsage, len(stats))
	for kind, s := range stats {
		usage := providerUsage{
			Requests:         s.Requests,
			Failures:         s.Failures,
			PromptTokens:     s.PromptTokens,
			CompletionTokens: s.CompletionTokens,
			TotalTokens:      s.TotalTokens,
			CostUSD:          s.CostUSD,
		}
		if succeeded := s.Requests - s.Failures; succeeded > 0 {
			usage.AvgLatencyMS = s.TotalLatency.Milliseconds() / succeeded
		}
		result[string(kind)] = usage
	}

	response.JSON(w, http.StatusOK, result)
}
