package pipeline

import (
	"context"
	"io"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/flowscope/flowscope/pkg/bridge/styles"
	"github.com/flowscope/flowscope/pkg/cache"
	"github.com/flowscope/flowscope/pkg/flow"
	"github.com/flowscope/flowscope/pkg/layout"
)

func testSnapshot() flow.Snapshot {
	return flow.Snapshot{
		Nodes: []flow.Node{
			{ID: "n1", ShortLabel: "source", Parent: "p0"},
			{ID: "n2", ShortLabel: "map", Parent: "p0"},
			{ID: "n3", ShortLabel: "sink"},
		},
		Containers: []flow.Container{
			{ID: "c0", Label: "cluster", Children: []string{"p0"}},
			{ID: "p0", Label: "process", Parent: "c0", Children: []string{"n1", "n2"}},
		},
		Edges: []flow.Edge{
			{ID: "e1", Source: "n1", Target: "n2", Type: flow.EdgeTypeStream},
			{ID: "e2", Source: "n2", Target: "n3", Type: flow.EdgeTypeNetwork},
		},
	}
}

func testGeometry() layout.Result {
	return layout.Result{
		"c0": {X: 10, Y: 10, Width: 300, Height: 220},
		"p0": {X: 30, Y: 40, Width: 240, Height: 160},
		"n1": {X: 50, Y: 70, Width: 180, Height: 60},
		"n2": {X: 50, Y: 150, Width: 180, Height: 60},
		"n3": {X: 400, Y: 100, Width: 180, Height: 60},
	}
}

// stubEngine returns fixed geometry and counts invocations.
func stubEngine(calls *int) layout.Engine {
	return layout.Func(func(ctx context.Context, s flow.Snapshot, opts layout.Options) (layout.Result, error) {
		*calls++
		return testGeometry(), nil
	})
}

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func TestExecute(t *testing.T) {
	calls := 0
	runner := NewRunner(nil, nil, quietLogger(), stubEngine(&calls))
	defer runner.Close()

	result, err := runner.Execute(context.Background(), testSnapshot(), Options{})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if result.SnapshotHash == "" {
		t.Error("SnapshotHash should be set")
	}
	if calls != 1 {
		t.Errorf("engine calls = %d, want 1", calls)
	}
	if result.CacheInfo.LayoutHit {
		t.Error("first run should not hit the cache")
	}
	if result.Stats.NodeCount != 3 || result.Stats.ContainerCount != 2 {
		t.Errorf("stats = %+v", result.Stats)
	}
	if result.Stats.ElementCount != 5 || result.Stats.EdgeCount != 2 {
		t.Errorf("stats = %+v", result.Stats)
	}
	if result.Graph == nil || len(result.Graph.Elements) != 5 {
		t.Fatalf("graph = %+v", result.Graph)
	}
}

func TestExecuteLayoutCached(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}

	calls := 0
	runner := NewRunner(fc, nil, quietLogger(), stubEngine(&calls))
	defer runner.Close()

	ctx := context.Background()
	s := testSnapshot()

	first, err := runner.Execute(ctx, s, Options{})
	if err != nil {
		t.Fatalf("first Execute: %v", err)
	}
	second, err := runner.Execute(ctx, s, Options{})
	if err != nil {
		t.Fatalf("second Execute: %v", err)
	}

	if calls != 1 {
		t.Errorf("engine calls = %d, want 1 (second run should be cached)", calls)
	}
	if first.CacheInfo.LayoutHit || !second.CacheInfo.LayoutHit {
		t.Errorf("cache info: first=%+v second=%+v", first.CacheInfo, second.CacheInfo)
	}

	// Cached and fresh geometry must convert identically.
	a, _ := first.Graph.Marshal()
	b, _ := second.Graph.Marshal()
	if string(a) != string(b) {
		t.Error("cached layout produced a different render graph")
	}
}

func TestExecuteRefreshBypassesCache(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}

	calls := 0
	runner := NewRunner(fc, nil, quietLogger(), stubEngine(&calls))
	defer runner.Close()

	ctx := context.Background()
	s := testSnapshot()

	if _, err := runner.Execute(ctx, s, Options{}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if _, err := runner.Execute(ctx, s, Options{Refresh: true}); err != nil {
		t.Fatalf("Execute refresh: %v", err)
	}
	if calls != 2 {
		t.Errorf("engine calls = %d, want 2 with Refresh", calls)
	}
}

func TestExecuteOptionChangesMissCache(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}

	calls := 0
	runner := NewRunner(fc, nil, quietLogger(), stubEngine(&calls))
	defer runner.Close()

	ctx := context.Background()
	s := testSnapshot()

	if _, err := runner.Execute(ctx, s, Options{}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	opts := Options{Layout: layout.Options{NodeWidth: 240}}
	if _, err := runner.Execute(ctx, s, opts); err != nil {
		t.Fatalf("Execute with options: %v", err)
	}
	if calls != 2 {
		t.Errorf("engine calls = %d, want 2 for changed layout options", calls)
	}
}

func TestExecuteInvalidSnapshot(t *testing.T) {
	runner := NewRunner(nil, nil, quietLogger(), stubEngine(new(int)))
	s := flow.Snapshot{
		Nodes: []flow.Node{{ID: "dup"}, {ID: "dup"}},
	}
	if _, err := runner.Execute(context.Background(), s, Options{}); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestExecuteInvalidOptions(t *testing.T) {
	runner := NewRunner(nil, nil, quietLogger(), stubEngine(new(int)))
	opts := Options{Layout: layout.Options{NodeWidth: -1}}
	if _, err := runner.Execute(context.Background(), testSnapshot(), opts); err == nil {
		t.Fatal("expected options error")
	}
}

func TestRenderKeyOptsStyleHash(t *testing.T) {
	plain := Options{}
	styled := Options{
		EdgeStyles: map[string]styles.EdgeStyle{"alert": {Stroke: "#112233"}},
	}
	if plain.RenderKeyOpts().StyleHash != "" {
		t.Error("no custom styles should mean no style hash")
	}
	if styled.RenderKeyOpts().StyleHash == "" {
		t.Error("custom styles should produce a style hash")
	}
}

func TestLayoutKeyOptsMapping(t *testing.T) {
	opts := Options{Layout: layout.Options{NodeWidth: 240, RankSep: 80}}
	ko := opts.LayoutKeyOpts()
	if ko.NodeWidth != 240 || ko.RankSep != 80 {
		t.Errorf("LayoutKeyOpts = %+v", ko)
	}
}
