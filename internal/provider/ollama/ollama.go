// internal/provider/ollama/ollama.go
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/newthinker/scribe/internal/core"
	"github.com/newthinker/scribe/internal/provider"
	"go.uber.org/zap"
)

// Adapter implements the provider interface for Ollama. Local models are
// zero-cost: CostUSD is always 0 regardless of configured pricing.
type Adapter struct {
	endpoint string
	cfg      provider.Config
	client   *http.Client
	logger   *zap.Logger
}

// New creates a new Ollama adapter.
func New(endpoint string, cfg provider.Config, logger *zap.Logger) (*Adapter, error) {
	if endpoint == "" {
		endpoint = "http://localhost:11434"
	}
	if cfg.Model == "" {
		cfg.Model = "qwen2.5:32b"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{
		endpoint: endpoint,
		cfg:      cfg,
		client: &http.Client{
			Timeout: 5 * time.Minute, // LLM inference can be slow
		},
		logger: logger,
	}, nil
}

// Name returns the provider name.
func (a *Adapter) Name() string {
	return string(core.ProviderOllama)
}

// Kind returns the provider kind.
func (a *Adapter) Kind() core.ProviderKind {
	return core.ProviderOllama
}

// ollamaRequest represents the request to Ollama API.
type ollamaRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Options  ollamaOptions   `json:"options,omitempty"`
	Format   string          `json:"format,omitempty"`
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaOptions struct {
	NumPredict  int      `json:"num_predict,omitempty"`
	Temperature float64  `json:"temperature,omitempty"`
	TopP        float64  `json:"top_p,omitempty"`
	Stop        []string `json:"stop,omitempty"`
}

// ollamaResponse represents the response from Ollama API.
type ollamaResponse struct {
	Model           string        `json:"model"`
	Message         ollamaMessage `json:"message"`
	Done            bool          `json:"done"`
	DoneReason      string        `json:"done_reason,omitempty"`
	PromptEvalCount int           `json:"prompt_eval_count,omitempty"`
	EvalCount       int           `json:"eval_count,omitempty"`
}

// Generate sends a generation request to the Ollama API.
func (a *Adapter) Generate(ctx context.Context, req core.GenerationRequest) (*core.GenerationResult, error) {
	messages := make([]ollamaMessage, 0, 2)
	if req.SystemPrompt != "" {
		messages = append(messages, ollamaMessage{Role: "system", Content: req.SystemPrompt})
	}
	messages = append(messages, ollamaMessage{Role: "user", Content: req.Prompt})

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	ollamaReq := ollamaRequest{
		Model:    a.cfg.Model,
		Messages: messages,
		Stream:   false,
		Options: ollamaOptions{
			NumPredict:  maxTokens,
			Temperature: req.Temperature,
			TopP:        req.TopP,
			Stop:        req.StopSequences,
		},
	}
	if req.JSONMode {
		ollamaReq.Format = "json"
	}

	body, err := json.Marshal(ollamaReq)
	if err != nil {
		return nil, &core.ProviderError{
			Provider: core.ProviderOllama,
			Kind:     core.FailureBackend,
			Message:  "marshaling request",
			Cause:    err,
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", a.endpoint+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, &core.ProviderError{
			Provider: core.ProviderOllama,
			Kind:     core.FailureBackend,
			Message:  "creating request",
			Cause:    err,
		}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := a.client.Do(httpReq)
	elapsed := time.Since(start)
	if err != nil {
		return nil, &core.ProviderError{
			Provider: core.ProviderOllama,
			Kind:     core.FailureUnreachable,
			Message:  "backend unreachable",
			Cause:    err,
		}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &core.RateLimitError{
			Provider:   core.ProviderOllama,
			RetryAfter: retryAfter(resp),
		}
	case resp.StatusCode == http.StatusNotFound:
		return nil, &core.ProviderError{
			Provider: core.ProviderOllama,
			Kind:     core.FailureModelNotFound,
			Message:  fmt.Sprintf("model %s not found", a.cfg.Model),
		}
	case resp.StatusCode != http.StatusOK:
		return nil, &core.ProviderError{
			Provider: core.ProviderOllama,
			Kind:     core.FailureBackend,
			Message:  fmt.Sprintf("API returned status %d", resp.StatusCode),
		}
	}

	var ollamaResp ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&ollamaResp); err != nil {
		return nil, &core.ProviderError{
			Provider: core.ProviderOllama,
			Kind:     core.FailureBackend,
			Message:  "decoding response",
			Cause:    err,
		}
	}

	content := ollamaResp.Message.Content

	// Older Ollama versions omit eval counts; fall back to the heuristic.
	promptTokens := ollamaResp.PromptEvalCount
	completionTokens := ollamaResp.EvalCount
	if promptTokens == 0 && completionTokens == 0 {
		promptTokens = provider.ApproxTokens(req.SystemPrompt + req.Prompt)
		completionTokens = provider.ApproxTokens(content)
	}

	return &core.GenerationResult{
		Content:          content,
		Provider:         core.ProviderOllama,
		Model:            a.cfg.Model,
		PromptTokens:     promptTokens,
		CompletionTokens: completionTokens,
		TotalTokens:      promptTokens + completionTokens,
		ResponseTime:     elapsed,
		CostUSD:          0, // local inference
		Metadata: map[string]any{
			"done_reason": ollamaResp.DoneReason,
		},
	}, nil
}

// EstimateCost always returns 0 for local models.
func (a *Adapter) EstimateCost(req core.GenerationRequest) float64 {
	return 0
}

// tagsResponse is the /api/tags payload.
type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// ValidateReachability checks the server answers and the configured model
// is pulled.
func (a *Adapter) ValidateReachability(ctx context.Context) bool {
	httpReq, err := http.NewRequestWithContext(ctx, "GET", a.endpoint+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := a.client.Do(httpReq)
	if err != nil {
		a.logger.Warn("ollama reachability probe failed",
			zap.String("endpoint", a.endpoint),
			zap.Error(err))
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		a.logger.Warn("ollama probe returned non-200",
			zap.Int("status", resp.StatusCode))
		return false
	}

	var tags tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return false
	}
	for _, m := range tags.Models {
		if m.Name == a.cfg.Model {
			return true
		}
	}
	a.logger.Warn("ollama reachable but model not pulled",
		zap.String("model", a.cfg.Model))
	return false
}

func retryAfter(resp *http.Response) time.Duration {
	secs, err := strconv.Atoi(resp.Header.Get("Retry-After"))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
