// internal/provider/openai/openai.go
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/newthinker/scribe/internal/core"
	"github.com/newthinker/scribe/internal/provider"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Adapter implements the provider interface for OpenAI.
type Adapter struct {
	client *openai.Client
	cfg    provider.Config
	logger *zap.Logger
}

// New creates a new OpenAI adapter.
func New(apiKey string, cfg provider.Config, logger *zap.Logger) (*Adapter, error) {
	if apiKey == "" {
		return nil, core.WrapError(core.ErrConfigMissing, fmt.Errorf("openai API key required"))
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	client := openai.NewClient(apiKey)
	return &Adapter{client: client, cfg: cfg, logger: logger}, nil
}

// Name returns the provider name.
func (a *Adapter) Name() string {
	return string(core.ProviderOpenAI)
}

// Kind returns the provider kind.
func (a *Adapter) Kind() core.ProviderKind {
	return core.ProviderOpenAI
}

// Generate sends a generation request to the OpenAI API.
func (a *Adapter) Generate(ctx context.Context, req core.GenerationRequest) (*core.GenerationResult, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if req.SystemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.SystemPrompt,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	chatReq := openai.ChatCompletionRequest{
		Model:       a.cfg.Model,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: float32(req.Temperature),
		TopP:        float32(req.TopP),
		Stop:        req.StopSequences,
	}
	if req.JSONMode {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	start := time.Now()
	resp, err := a.client.CreateChatCompletion(ctx, chatReq)
	elapsed := time.Since(start)
	if err != nil {
		return nil, a.classify(err)
	}

	content := ""
	finishReason := ""
	if len(resp.Choices) > 0 {
		content = resp.Choices[0].Message.Content
		finishReason = string(resp.Choices[0].FinishReason)
	}

	promptTokens := resp.Usage.PromptTokens
	completionTokens := resp.Usage.CompletionTokens
	if promptTokens == 0 && completionTokens == 0 {
		promptTokens = provider.ApproxTokens(req.SystemPrompt + req.Prompt)
		completionTokens = provider.ApproxTokens(content)
	}
	total := promptTokens + completionTokens

	return &core.GenerationResult{
		Content:          content,
		Provider:         core.ProviderOpenAI,
		Model:            a.cfg.Model,
		PromptTokens:     promptTokens,
		CompletionTokens: completionTokens,
		TotalTokens:      total,
		ResponseTime:     elapsed,
		CostUSD:          a.cfg.Cost(total),
		Metadata: map[string]any{
			"finish_reason": finishReason,
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

// ValidateReachability lists models to confirm the backend answers and the
// configured model is provisioned.
func (a *Adapter) ValidateReachability(ctx context.Context) bool {
	models, err := a.client.ListModels(ctx)
	if err != nil {
		a.logger.Warn("openai reachability probe failed", zap.Error(err))
		return false
	}
	for _, m := range models.Models {
		if m.ID == a.cfg.Model {
			return true
		}
	}
	a.logger.Warn("openai reachable but model not listed",
		zap.String("model", a.cfg.Model))
	return false
}

// classify maps SDK errors to the error taxonomy.
func (a *Adapter) classify(err error) error {
	var apierr *openai.APIError
	if errors.As(err, &apierr) {
		switch apierr.HTTPStatusCode {
		case http.StatusTooManyRequests:
			return &core.RateLimitError{Provider: core.ProviderOpenAI}
		case http.StatusNotFound:
			return &core.ProviderError{
				Provider: core.ProviderOpenAI,
				Kind:     core.FailureModelNotFound,
				Message:  fmt.Sprintf("model %s not found", a.cfg.Model),
				Cause:    err,
			}
		default:
			return &core.ProviderError{
				Provider: core.ProviderOpenAI,
				Kind:     core.FailureBackend,
				Message:  fmt.Sprintf("API returned status %d", apierr.HTTPStatusCode),
				Cause:    err,
			}
		}
	}
	return &core.ProviderError{
		Provider: core.ProviderOpenAI,
		Kind:     core.FailureUnreachable,
		Message:  "backend unreachable",
		Cause:    err,
	}
}
