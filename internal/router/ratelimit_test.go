package router

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/newthinker/scribe/internal/core"
)

func TestLimiter_AcquiresUpToRPM(t *testing.T) {
	now := time.Now()
	l := newLimiter(func() time.Time { return now })

	for i := 0; i < 3; i++ {
		if !l.Acquire(core.ProviderClaude, 3) {
			t.Fatalf("call %d should be granted", i)
		}
	}
	if l.Acquire(core.ProviderClaude, 3) {
		t.Error("fourth call within the window should be denied")
	}
}

func TestLimiter_WindowSlides(t *testing.T) {
	now := time.Now()
	l := newLimiter(func() time.Time { return now })

	if !l.Acquire(core.ProviderClaude, 1) {
		t.Fatal("first call should be granted")
	}
	if l.Acquire(core.ProviderClaude, 1) {
		t.Error("window full, expected denial")
	}

	now = now.Add(61 * time.Second)
	if !l.Acquire(core.ProviderClaude, 1) {
		t.Error("expected a grant after the window slid past the recorded call")
	}
}

func TestLimiter_BlockUntil(t *testing.T) {
	now := time.Now()
	l := newLimiter(func() time.Time { return now })

	until := now.Add(30 * time.Second)
	l.Block(core.ProviderOpenAI, until)

	if l.Acquire(core.ProviderOpenAI, 100) {
		t.Error("blocked provider must be denied before the deadline")
	}

	now = until
	if !l.Acquire(core.ProviderOpenAI, 100) {
		t.Error("provider must be eligible again at the deadline")
	}
}

func TestLimiter_ZeroRPMMeansUnlimited(t *testing.T) {
	l := newLimiter(nil)
	for i := 0; i < 100; i++ {
		if !l.Acquire(core.ProviderOllama, 0) {
			t.Fatal("rpm 0 should never deny")
		}
	}
}

func TestLimiter_ConcurrentAcquiresNeverOversubscribe(t *testing.T) {
	now := time.Now()
	l := newLimiter(func() time.Time { return now })

	var wg sync.WaitGroup
	var granted int32
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Acquire(core.ProviderClaude, 1) {
				atomic.AddInt32(&granted, 1)
			}
		}()
	}
	wg.Wait()

	if granted != 1 {
		t.Fatalf("an rpm budget of 1 must grant exactly one concurrent acquire, got %d", granted)
	}
	if n := len(l.calls[core.ProviderClaude]); n != 1 {
		t.Fatalf("window must hold exactly the granted call, got %d", n)
	}
}
