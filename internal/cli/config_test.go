package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := (&CLI{}).loadConfig()
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Addr = %s", cfg.Server.Addr)
	}
	if cfg.Store.Backend != "memory" || cfg.Cache.Backend != "file" {
		t.Errorf("backends = %s/%s", cfg.Store.Backend, cfg.Cache.Backend)
	}
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	content := `
[server]
addr = ":9090"

[store]
backend = "mongo"
mongo_uri = "mongodb://db:27017"

[layout]
node_width = 240.0
`
	appDir := filepath.Join(dir, appName)
	if err := os.MkdirAll(appDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(appDir, configFile), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := (&CLI{}).loadConfig()
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("Addr = %s", cfg.Server.Addr)
	}
	if cfg.Store.Backend != "mongo" || cfg.Store.MongoURI != "mongodb://db:27017" {
		t.Errorf("store = %+v", cfg.Store)
	}
	if cfg.Layout.NodeWidth != 240 {
		t.Errorf("NodeWidth = %v", cfg.Layout.NodeWidth)
	}
	// Sections absent from the file keep their defaults.
	if cfg.Cache.Backend != "file" {
		t.Errorf("Cache.Backend = %s", cfg.Cache.Backend)
	}
}

func TestLoadConfigInvalidTOML(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	appDir := filepath.Join(dir, appName)
	if err := os.MkdirAll(appDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(appDir, configFile), []byte("not [valid"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := (&CLI{}).loadConfig(); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoadConfigExplicitPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.toml")
	if err := os.WriteFile(path, []byte("[server]\naddr = \":7070\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := (&CLI{ConfigPath: path}).loadConfig()
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Server.Addr != ":7070" {
		t.Errorf("Addr = %s", cfg.Server.Addr)
	}

	// An explicit path that does not exist is an error.
	if _, err := (&CLI{ConfigPath: filepath.Join(t.TempDir(), "missing.toml")}).loadConfig(); err == nil {
		t.Error("expected error for missing explicit config")
	}
}
