package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/flowscope/flowscope/pkg/layout"
	"github.com/flowscope/flowscope/pkg/store"
)

// configFile is the name of the config file inside the config directory.
const configFile = "config.toml"

// Config holds optional user configuration loaded from
// ~/.config/flowscope/config.toml. All fields have working defaults so the
// file is never required.
type Config struct {
	Server ServerConfig `toml:"server"`
	Store  StoreConfig  `toml:"store"`
	Cache  CacheConfig  `toml:"cache"`
	Layout LayoutConfig `toml:"layout"`
	Render RenderConfig `toml:"render"`
}

// ServerConfig configures the serve command.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// StoreConfig selects and configures the graph store backend.
type StoreConfig struct {
	Backend         string `toml:"backend"` // "memory" or "mongo"
	MongoURI        string `toml:"mongo_uri"`
	MongoDatabase   string `toml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection"`
}

// CacheConfig selects and configures the layout cache backend.
type CacheConfig struct {
	Backend       string `toml:"backend"` // "file", "redis", or "none"
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
}

// RenderConfig sets default conversion options for the render and explore
// commands. Flags still win over these.
type RenderConfig struct {
	ShowPropertyLabels bool `toml:"show_property_labels"`
	EnableAnimations   bool `toml:"enable_animations"`
}

// LayoutConfig overrides the layout engine's default spacing.
type LayoutConfig struct {
	NodeWidth  float64 `toml:"node_width"`
	NodeHeight float64 `toml:"node_height"`
	RankSep    float64 `toml:"rank_sep"`
	NodeSep    float64 `toml:"node_sep"`
}

// defaultConfig returns the built-in configuration.
func defaultConfig() Config {
	return Config{
		Server: ServerConfig{Addr: ":8080"},
		Store: StoreConfig{
			Backend:         "memory",
			MongoURI:        "mongodb://localhost:27017",
			MongoDatabase:   store.DefaultMongoDatabase,
			MongoCollection: store.DefaultMongoCollection,
		},
		Cache: CacheConfig{
			Backend:   "file",
			RedisAddr: "localhost:6379",
		},
		Layout: LayoutConfig{
			NodeWidth:  layout.DefaultNodeWidth,
			NodeHeight: layout.DefaultNodeHeight,
			RankSep:    layout.DefaultRankSep,
			NodeSep:    layout.DefaultNodeSep,
		},
	}
}

// loadConfig resolves the config file location and merges it over the
// defaults. An explicit --config path must exist; the XDG default may be
// missing.
func (c *CLI) loadConfig() (Config, error) {
	if c.ConfigPath != "" {
		return loadConfigFile(c.ConfigPath, true)
	}
	dir, err := configDir()
	if err != nil {
		return defaultConfig(), nil
	}
	return loadConfigFile(filepath.Join(dir, configFile), false)
}

// loadConfigFile reads one config file and merges it over the defaults.
func loadConfigFile(path string, required bool) (Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) && !required {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// layoutOptions converts the config's layout section into engine options.
func (c LayoutConfig) layoutOptions() layout.Options {
	return layout.Options{
		NodeWidth:  c.NodeWidth,
		NodeHeight: c.NodeHeight,
		RankSep:    c.RankSep,
		NodeSep:    c.NodeSep,
	}
}
