// internal/provider/claude/claude.go
package claude

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/newthinker/scribe/internal/core"
	"github.com/newthinker/scribe/internal/provider"
	"go.uber.org/zap"
)

// Adapter implements the provider interface for Claude/Anthropic.
type Adapter struct {
	client anthropic.Client
	cfg    provider.Config
	logger *zap.Logger
}

// New creates a new Claude adapter.
func New(apiKey string, cfg provider.Config, logger *zap.Logger) (*Adapter, error) {
	if apiKey == "" {
		return nil, core.WrapError(core.ErrConfigMissing, fmt.Errorf("claude API key required"))
	}
	if cfg.Model == "" {
		cfg.Model = "claude-sonnet-4-20250514"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &Adapter{client: client, cfg: cfg, logger: logger}, nil
}

// Name returns the provider name.
func (a *Adapter) Name() string {
	return string(core.ProviderClaude)
}

// Kind returns the provider kind.
func (a *Adapter) Kind() core.ProviderKind {
	return core.ProviderClaude
}

// Generate sends a generation request to the Claude API.
func (a *Adapter) Generate(ctx context.Context, req core.GenerationRequest) (*core.GenerationResult, error) {
	maxTokens := int64(req.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(a.cfg.Model),
		MaxTokens: maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	}

	system := req.SystemPrompt
	if req.JSONMode {
		// The API has no native JSON mode; steer via the system prompt.
		if system != "" {
			system += "\n\n"
		}
		system += "Respond with a single valid JSON object and nothing else."
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}
	if req.Temperature > 0 {
		params.Temperature = anthropic.Float(req.Temperature)
	}
	if req.TopP > 0 {
		params.TopP = anthropic.Float(req.TopP)
	}
	if len(req.StopSequences) > 0 {
		params.StopSequences = req.StopSequences
	}

	start := time.Now()
	resp, err := a.client.Messages.New(ctx, params)
	elapsed := time.Since(start)
	if err != nil {
		return nil, a.classify(err)
	}

	content := ""
	if len(resp.Content) > 0 && resp.Content[0].Type == "text" {
		content = resp.Content[0].Text
	}

	promptTokens := int(resp.Usage.InputTokens)
	completionTokens := int(resp.Usage.OutputTokens)
	if promptTokens == 0 && completionTokens == 0 {
		promptTokens = provider.ApproxTokens(req.SystemPrompt + req.Prompt)
		completionTokens = provider.ApproxTokens(content)
	}
	total := promptTokens + completionTokens

	return &core.GenerationResult{
		Content:          content,
		Provider:         core.ProviderClaude,
		Model:            a.cfg.Model,
		PromptTokens:     promptTokens,
		CompletionTokens: completionTokens,
		TotalTokens:      total,
		ResponseTime:     elapsed,
		CostUSD:          a.cfg.Cost(total),
		Metadata: map[string]any{
			"stop_reason": string(resp.StopReason),
		},
	}, nil
}

// EstimateCost projects the cost of a request from its prompt length and
// token budget, without a network call.
func (a *Adapter) EstimateCost(req core.GenerationRequest) float64 {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	return a.cfg.Cost(provider.ApproxTokens(req.SystemPrompt+req.Prompt) + maxTokens)
}

// ValidateReachability issues a minimal one-token generation to confirm
// the configured model answers.
func (a *Adapter) ValidateReachability(ctx context.Context) bool {
	_, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.cfg.Model),
		MaxTokens: 1,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock("ping")),
		},
	})
	if err != nil {
		a.logger.Warn("claude reachability probe failed",
			zap.String("model", a.cfg.Model),
			zap.Error(err))
		return false
	}
	return true
}

// classify maps SDK errors to the error taxonomy.
func (a *Adapter) classify(err error) error {
	var apierr *anthropic.Error
	if errors.As(err, &apierr) {
		switch apierr.StatusCode {
		case http.StatusTooManyRequests:
			return &core.RateLimitError{
				Provider:   core.ProviderClaude,
				RetryAfter: retryAfter(apierr.Response),
			}
		case http.StatusNotFound:
			return &core.ProviderError{
				Provider: core.ProviderClaude,
				Kind:     core.FailureModelNotFound,
				Message:  fmt.Sprintf("model %s not found", a.cfg.Model),
				Cause:    err,
			}
		default:
			return &core.ProviderError{
				Provider: core.ProviderClaude,
				Kind:     core.FailureBackend,
				Message:  fmt.Sprintf("API returned status %d", apierr.StatusCode),
				Cause:    err,
			}
		}
	}
	return &core.ProviderError{
		Provider: core.ProviderClaude,
		Kind:     core.FailureUnreachable,
		Message:  "backend unreachable",
		Cause:    err,
	}
}

func retryAfter(resp *http.Response) time.Duration {
	if resp == nil {
		return 0
	}
	secs, err := strconv.Atoi(resp.Header.Get("Retry-After"))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
