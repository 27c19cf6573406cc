package core

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestError_IsMatchesByCode(t *testing.T) {
	wrapped := WrapError(ErrSessionNotFound, fmt.Errorf("id abc"))
	if !errors.Is(wrapped, ErrSessionNotFound) {
		t.Error("wrapped error should match its base by code")
	}
	if errors.Is(wrapped, ErrInvalidState) {
		t.Error("wrapped error should not match a different code")
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("boom")
	wrapped := WrapError(ErrConfigInvalid, cause)
	if !errors.Is(wrapped, cause) {
		t.Error("expected cause to be reachable via Unwrap")
	}
}

func TestProviderError_Message(t *testing.T) {
	err := &ProviderError{
		Provider: ProviderClaude,
		Kind:     FailureUnreachable,
		Message:  "backend unreachable",
	}
	msg := err.Error()
	if !strings.Contains(msg, "claude") || !strings.Contains(msg, "unreachable") {
		t.Errorf("unexpected message: %s", msg)
	}
}

func TestRateLimitError_Message(t *testing.T) {
	err := &RateLimitError{Provider: ProviderOpenAI, RetryAfter: 5 * time.Second}
	if !strings.Contains(err.Error(), "retry after 5s") {
		t.Errorf("expected retry-after in message, got %s", err.Error())
	}

	noHint := &RateLimitError{Provider: ProviderOpenAI}
	if strings.Contains(noHint.Error(), "retry after") {
		t.Errorf("expected no retry-after without hint, got %s", noHint.Error())
	}
}

func TestGenerationError_ListsAllAttempts(t *testing.T) {
	err := &GenerationError{Attempts: []Attempt{
		{Provider: ProviderClaude, Reason: "rate limited"},
		{Provider: ProviderOpenAI, Reason: "status 500"},
		{Provider: ProviderOllama, Reason: "unreachable"},
	}}
	msg := err.Error()
	for _, want := range []string{"claude", "openai", "ollama", "all 3 providers"} {
		if !strings.Contains(msg, want) {
			t.Errorf("expected %q in aggregate message: %s", want, msg)
		}
	}
}
