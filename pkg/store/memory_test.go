package store

import (
	"context"
	"testing"
	"time"

	"github.com/flowscope/flowscope/pkg/errors"
	"github.com/flowscope/flowscope/pkg/flow"
)

func doc(name string) *Document {
	return &Document{
		Name: name,
		Snapshot: flow.Snapshot{
			Nodes: []flow.Node{{ID: "n1", ShortLabel: name}},
		},
	}
}

func TestMemoryStoreSaveAssignsIdentity(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	d := doc("first")
	if err := s.Save(ctx, d); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if d.ID == "" {
		t.Error("Save should assign an ID")
	}
	if d.CreatedAt.IsZero() || d.UpdatedAt.IsZero() {
		t.Error("Save should set timestamps")
	}

	got, err := s.Get(ctx, d.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "first" || got.Snapshot.NodeCount() != 1 {
		t.Errorf("got %+v", got)
	}
}

func TestMemoryStoreUpdateKeepsCreatedAt(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	d := doc("v1")
	if err := s.Save(ctx, d); err != nil {
		t.Fatalf("Save: %v", err)
	}
	created := d.CreatedAt

	time.Sleep(time.Millisecond)
	d.Name = "v2"
	if err := s.Save(ctx, d); err != nil {
		t.Fatalf("Save update: %v", err)
	}

	got, err := s.Get(ctx, d.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "v2" {
		t.Errorf("Name = %s, want v2", got.Name)
	}
	if !got.CreatedAt.Equal(created) {
		t.Error("update should keep CreatedAt")
	}
	if !got.UpdatedAt.After(created) {
		t.Error("update should advance UpdatedAt")
	}
}

func TestMemoryStoreGetIsolation(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	d := doc("iso")
	if err := s.Save(ctx, d); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, _ := s.Get(ctx, d.ID)
	got.Snapshot.Nodes[0].ShortLabel = "mutated"

	again, _ := s.Get(ctx, d.ID)
	if again.Snapshot.Nodes[0].ShortLabel != "iso" {
		t.Error("Get should return an isolated copy")
	}
}

func TestMemoryStoreNotFound(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if _, err := s.Get(ctx, "missing"); !errors.Is(err, errors.ErrCodeGraphNotFound) {
		t.Errorf("Get missing: %v", err)
	}
	if err := s.Delete(ctx, "missing"); !errors.Is(err, errors.ErrCodeGraphNotFound) {
		t.Errorf("Delete missing: %v", err)
	}
}

func TestMemoryStoreList(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	a := doc("a")
	if err := s.Save(ctx, a); err != nil {
		t.Fatalf("Save a: %v", err)
	}
	time.Sleep(time.Millisecond)
	b := doc("b")
	if err := s.Save(ctx, b); err != nil {
		t.Fatalf("Save b: %v", err)
	}

	list, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("len = %d, want 2", len(list))
	}
	if list[0].Name != "b" || list[1].Name != "a" {
		t.Errorf("order = %s, %s; want newest first", list[0].Name, list[1].Name)
	}
	if list[0].NodeCount != 1 {
		t.Errorf("NodeCount = %d, want 1", list[0].NodeCount)
	}

	if err := s.Delete(ctx, a.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	list, _ = s.List(ctx)
	if len(list) != 1 {
		t.Errorf("len after delete = %d, want 1", len(list))
	}
}
