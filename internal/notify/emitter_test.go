package notify

import (
	"testing"
	"time"
)

func TestEmitterSuccessDefaults(t *testing.T) {
	hub := NewHub(nil)
	emitter := NewEmitter(hub)

	emitter.Success("Engine Started", "")

	snap := hub.Snapshot()
	if len(snap) != 1 {
		t.Fatalf("expected exactly one notification, got %d", len(snap))
	}
	n := snap[0]
	if n.Kind != KindSuccess {
		t.Fatalf("expected kind success, got %s", n.Kind)
	}
	if n.Title != "Engine Started" {
		t.Fatalf("unexpected title %q", n.Title)
	}
	if n.Duration != 4000*time.Millisecond {
		t.Fatalf("expected 4000ms duration, got %v", n.Duration)
	}
	if n.ID == "" {
		t.Fatal("expected a generated id")
	}
}

func TestEmitterErrorCarriesMessage(t *testing.T) {
	hub := NewHub(nil)
	emitter := NewEmitter(hub)

	emitter.Error("Error", "Failed to toggle engine")

	snap := hub.Snapshot()
	if len(snap) != 1 {
		t.Fatalf("expected one notification, got %d", len(snap))
	}
	n := snap[0]
	if n.Kind != KindError {
		t.Fatalf("expected kind error, got %s", n.Kind)
	}
	if n.Duration != 5000*time.Millisecond {
		t.Fatalf("expected 5000ms duration, got %v", n.Duration)
	}
	if n.Message != "Failed to toggle engine" {
		t.Fatalf("unexpected message %q", n.Message)
	}
}

func TestEmitterGeneratesDistinctIDs(t *testing.T) {
	hub := NewHub(nil)
	emitter := NewEmitter(hub)

	for i := 0; i < 50; i++ {
		emitter.Info("tick", "")
	}

	seen := make(map[string]struct{})
	for _, n := range hub.Snapshot() {
		if _, dup := seen[n.ID]; dup {
			t.Fatalf("duplicate id generated: %s", n.ID)
		}
		seen[n.ID] = struct{}{}
	}
	if len(seen) != 50 {
		t.Fatalf("expected 50 notifications, got %d", len(seen))
	}
}
