package provider

import (
	"strings"
	"testing"
)

func TestApproxTokens(t *testing.T) {
	if got := ApproxTokens(""); got != 0 {
		t.Errorf("empty text should be 0 tokens, got %d", got)
	}
	if got := ApproxTokens("ab"); got != 1 {
		t.Errorf("short text should round up to 1 token, got %d", got)
	}
	if got := ApproxTokens(strings.Repeat("a", 400)); got != 100 {
		t.Errorf("400 chars should be 100 tokens, got %d", got)
	}
}

func TestConfig_Cost(t *testing.T) {
	cfg := Config{CostPer1KTokens: 3.0}
	if got := cfg.Cost(2000); got != 6.0 {
		t.Errorf("expected 6.0, got %f", got)
	}

	free := Config{CostPer1KTokens: 0}
	if got := free.Cost(100000); got != 0 {
		t.Errorf("zero-cost config must always cost 0, got %f", got)
	}
}
