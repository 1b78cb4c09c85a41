package session

import (
	"context"
	"testing"
	"time"

	"github.com/flowscope/flowscope/pkg/flow"
)

func base() flow.Snapshot {
	return flow.Snapshot{
		Nodes: []flow.Node{{ID: "n1", Parent: "p0"}},
		Containers: []flow.Container{
			{ID: "p0", Children: []string{"n1"}},
			{ID: "p1", Collapsed: true},
		},
	}
}

func TestGenerateID(t *testing.T) {
	a, err := GenerateID()
	if err != nil {
		t.Fatalf("GenerateID: %v", err)
	}
	b, err := GenerateID()
	if err != nil {
		t.Fatalf("GenerateID: %v", err)
	}
	if a == b {
		t.Error("IDs should be unique")
	}
	if len(a) < 32 {
		t.Errorf("ID too short: %d chars", len(a))
	}
}

func TestViewStateApply(t *testing.T) {
	s := base()
	view := ViewState{Collapsed: map[string]bool{"p0": true, "p1": false}}

	out := view.Apply(s)
	if !out.Containers[0].Collapsed || out.Containers[1].Collapsed {
		t.Errorf("overrides not applied: %+v", out.Containers)
	}
	// Input untouched
	if s.Containers[0].Collapsed || !s.Containers[1].Collapsed {
		t.Error("Apply must not mutate the base snapshot")
	}
}

func TestViewStateApplyEmpty(t *testing.T) {
	s := base()
	out := ViewState{}.Apply(s)
	if out.Containers[1].Collapsed != true {
		t.Error("empty view should keep the snapshot's own flags")
	}
}

func TestToggle(t *testing.T) {
	sess, err := New("g1", DefaultTTL)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// First toggle flips relative to the base flag.
	state, ok := sess.Toggle(base(), "p0")
	if !ok || !state {
		t.Errorf("toggle p0 = %v, %v; want collapsed", state, ok)
	}
	// Second toggle flips the override.
	state, ok = sess.Toggle(base(), "p0")
	if !ok || state {
		t.Errorf("second toggle p0 = %v, %v; want expanded", state, ok)
	}
	// Base-collapsed container expands on first toggle.
	state, ok = sess.Toggle(base(), "p1")
	if !ok || state {
		t.Errorf("toggle p1 = %v, %v; want expanded", state, ok)
	}
	// Unknown container
	if _, ok := sess.Toggle(base(), "ghost"); ok {
		t.Error("toggle of unknown container should report failure")
	}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	sess, err := New("g1", DefaultTTL)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := store.Set(ctx, sess); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err := store.Get(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil || got.GraphID != "g1" {
		t.Fatalf("got %+v", got)
	}

	// Returned session is a copy
	got.GraphID = "mutated"
	again, _ := store.Get(ctx, sess.ID)
	if again.GraphID != "g1" {
		t.Error("Get should return an isolated copy")
	}

	if err := store.Delete(ctx, sess.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got, _ := store.Get(ctx, sess.ID); got != nil {
		t.Error("Get after Delete should return nil")
	}
}

func TestMemoryStoreCollapsedMapIsolation(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	sess, err := New("g1", DefaultTTL)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	sess.View.Collapsed = map[string]bool{"c0": false}
	if err := store.Set(ctx, sess); err != nil {
		t.Fatalf("Set: %v", err)
	}

	// Mutating the caller's session after Set must not reach the store.
	sess.View.Collapsed["c0"] = true
	got, err := store.Get(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.View.Collapsed["c0"] {
		t.Error("Set must deep-copy the Collapsed map")
	}

	// Toggling a Get copy without calling Set must not reach the store.
	if _, ok := got.Toggle(base(), "p0"); !ok {
		t.Fatal("Toggle failed")
	}
	again, err := store.Get(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if _, ok := again.View.Collapsed["p0"]; ok {
		t.Error("Get must deep-copy the Collapsed map")
	}
}

func TestSessionClone(t *testing.T) {
	sess, err := New("g1", DefaultTTL)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	sess.View.Collapsed = map[string]bool{"c0": true}

	clone := sess.Clone()
	clone.View.Collapsed["c1"] = true
	if _, ok := sess.View.Collapsed["c1"]; ok {
		t.Error("Clone shares the Collapsed map")
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	sess, err := New("g1", -time.Minute)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := store.Set(ctx, sess); err != nil {
		t.Fatalf("Set: %v", err)
	}

	if _, err := store.Get(ctx, sess.ID); err != ErrExpired {
		t.Errorf("Get expired = %v, want ErrExpired", err)
	}
}

func TestMemoryStoreCleanup(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	live, _ := New("g1", DefaultTTL)
	dead, _ := New("g2", -time.Minute)
	_ = store.Set(ctx, live)
	_ = store.Set(ctx, dead)

	if err := store.Cleanup(ctx); err != nil {
		t.Fatalf("Cleanup: %v", err)
	}
	if got, _ := store.Get(ctx, live.ID); got == nil {
		t.Error("Cleanup removed a live session")
	}
	if len(store.sessions) != 1 {
		t.Errorf("sessions after cleanup = %d, want 1", len(store.sessions))
	}
}
