// internal/provider/claude/claude_test.go
package claude

import (
	"testing"

	"github.com/newthinker/scribe/internal/core"
	"github.com/newthinker/scribe/internal/provider"
)

func TestAdapter_ImplementsInterface(t *testing.T) {
	var _ provider.Provider = (*Adapter)(nil)
}

func TestNew_RequiresAPIKey(t *testing.T) {
	_, err := New("", provider.Config{Kind: core.ProviderClaude}, nil)
	if err == nil {
		t.Error("expected error for empty API key")
	}
}

func TestNew_DefaultModel(t *testing.T) {
	a, err := New("test-key", provider.Config{Kind: core.ProviderClaude}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.cfg.Model == "" {
		t.Error("expected a default model")
	}
}

func TestEstimateCost_NoNetworkCall(t *testing.T) {
	a, err := New("test-key", provider.Config{
		Kind:            core.ProviderClaude,
		CostPer1KTokens: 4.0,
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	est := a.EstimateCost(core.GenerationRequest{Prompt: "write a design doc", MaxTokens: 1000})
	if est <= 0 {
		t.Errorf("expected positive estimate, got %f", est)
	}
}
