// internal/provider/openai/openai_test.go
package openai

import (
	"testing"

	"github.com/newthinker/scribe/internal/core"
	"github.com/newthinker/scribe/internal/provider"
)

func TestAdapter_ImplementsInterface(t *testing.T) {
	var _ provider.Provider = (*Adapter)(nil)
}

func TestNew_RequiresAPIKey(t *testing.T) {
	_, err := New("", provider.Config{Kind: core.ProviderOpenAI}, nil)
	if err == nil {
		t.Error("expected error for empty API key")
	}
}

func TestNew_DefaultModel(t *testing.T) {
	a, err := New("test-key", provider.Config{Kind: core.ProviderOpenAI}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.cfg.Model != "gpt-4o" {
		t.Errorf("expected default model gpt-4o, got %s", a.cfg.Model)
	}
}

func TestEstimateCost_ScalesWithBudget(t *testing.T) {
	a, err := New("test-key", provider.Config{
		Kind:            core.ProviderOpenAI,
		CostPer1KTokens: 2.0,
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	small := a.EstimateCost(core.GenerationRequest{Prompt: "hi", MaxTokens: 100})
	large := a.EstimateCost(core.GenerationRequest{Prompt: "hi", MaxTokens: 4000})
	if large <= small {
		t.Errorf("expected larger budget to cost more: %f vs %f", small, large)
	}
}
