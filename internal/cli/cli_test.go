package cli

import (
	"io"
	"path/filepath"
	"testing"
)

func TestCacheDirXDG(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg-cache")

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir: %v", err)
	}
	if dir != filepath.Join("/tmp/xdg-cache", appName) {
		t.Errorf("cacheDir = %s", dir)
	}
}

func TestCacheDirHomeFallback(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")
	t.Setenv("HOME", "/tmp/home")

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir: %v", err)
	}
	if dir != filepath.Join("/tmp/home", ".cache", appName) {
		t.Errorf("cacheDir = %s", dir)
	}
}

func TestConfigDirXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-config")

	dir, err := configDir()
	if err != nil {
		t.Fatalf("configDir: %v", err)
	}
	if dir != filepath.Join("/tmp/xdg-config", appName) {
		t.Errorf("configDir = %s", dir)
	}
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()

	want := map[string]bool{
		"render":     false,
		"serve":      false,
		"explore":    false,
		"cache":      false,
		"completion": false,
	}
	for _, cmd := range root.Commands() {
		if _, ok := want[cmd.Name()]; ok {
			want[cmd.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		name   string
		output string
		input  string
		want   string
	}{
		{"explicit output wins", "out.json", "graph.json", "out.json"},
		{"stdout marker", "-", "graph.json", "-"},
		{"derived from input", "", "graph.json", "graph.render.json"},
		{"derived without extension", "", "graph", "graph.render.json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := outputPath(tt.output, tt.input); got != tt.want {
				t.Errorf("outputPath(%q, %q) = %q, want %q", tt.output, tt.input, got, tt.want)
			}
		})
	}
}

func TestPipelineOptionsFlagOverrides(t *testing.T) {
	cfg := defaultConfig()
	opts := pipelineOptions(cfg, &renderOpts{nodeWidth: 240, labels: true, refresh: true})

	if opts.Layout.NodeWidth != 240 {
		t.Errorf("NodeWidth = %v, want flag override 240", opts.Layout.NodeWidth)
	}
	if opts.Layout.NodeHeight != cfg.Layout.NodeHeight {
		t.Errorf("NodeHeight = %v, want config default %v", opts.Layout.NodeHeight, cfg.Layout.NodeHeight)
	}
	if !opts.ShowPropertyLabels || !opts.Refresh {
		t.Error("labels and refresh flags not forwarded")
	}
}
