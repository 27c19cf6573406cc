package session

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/newthinker/scribe/internal/core"
)

func TestMemoryStore_SaveLoad(t *testing.T) {
	store := NewMemoryStore(10)
	ctx := context.Background()

	if _, err := store.Load(ctx, "missing"); !errors.Is(err, core.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}

	s := &Session{ID: "s1", Status: StatusDraft}
	if err := store.Save(ctx, s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	loaded, err := store.Load(ctx, "s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loaded.Status != StatusDraft {
		t.Errorf("unexpected status %s", loaded.Status)
	}

	// stores copies both ways
	loaded.Status = StatusAbandoned
	again, _ := store.Load(ctx, "s1")
	if again.Status != StatusDraft {
		t.Error("mutating a loaded session must not affect the store")
	}
}

func TestMemoryStore_EvictsOldest(t *testing.T) {
	store := NewMemoryStore(2)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		store.Save(ctx, &Session{ID: fmt.Sprintf("s%d", i)})
	}

	if _, err := store.Load(ctx, "s1"); !errors.Is(err, core.ErrSessionNotFound) {
		t.Error("oldest session must be evicted at capacity")
	}
	if _, err := store.Load(ctx, "s3"); err != nil {
		t.Errorf("newest session must survive: %v", err)
	}
}

func TestMemoryStore_ListNewestFirst(t *testing.T) {
	store := NewMemoryStore(10)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		store.Save(ctx, &Session{ID: fmt.Sprintf("s%d", i)})
	}

	sessions, err := store.List(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sessions) != 3 {
		t.Fatalf("expected 3 sessions, got %d", len(sessions))
	}
	if sessions[0].ID != "s3" || sessions[2].ID != "s1" {
		t.Errorf("expected newest first, got %s..%s", sessions[0].ID, sessions[2].ID)
	}
}

func TestMemoryStore_SaveOverwritesWithoutEvicting(t *testing.T) {
	store := NewMemoryStore(2)
	ctx := context.Background()

	store.Save(ctx, &Session{ID: "s1", Status: StatusDraft})
	store.Save(ctx, &Session{ID: "s2", Status: StatusDraft})
	store.Save(ctx, &Session{ID: "s1", Status: StatusAwaitingAnswers})

	if _, err := store.Load(ctx, "s2"); err != nil {
		t.Error("overwriting an existing session must not evict another")
	}
	s, _ := store.Load(ctx, "s1")
	if s.Status != StatusAwaitingAnswers {
		t.Errorf("expected overwrite, got %s", s.Status)
	}
}
