package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/flowscope/flowscope/internal/server"
	"github.com/flowscope/flowscope/pkg/cache"
	"github.com/flowscope/flowscope/pkg/pipeline"
	"github.com/flowscope/flowscope/pkg/session"
	"github.com/flowscope/flowscope/pkg/store"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr         string // listen address, e.g. ":8080"
	storeBackend string // "memory" or "mongo"
	mongoURI     string
	cacheBackend string // "file", "redis", or "none"
	redisAddr    string
}

// serveCommand creates the serve command. It wires a store, a cache, and the
// render pipeline into the HTTP server and blocks until the context is
// cancelled.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the render pipeline and graph store over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), &opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default from config, else :8080)")
	cmd.Flags().StringVar(&opts.storeBackend, "store", "", "graph store backend: memory (default), mongo")
	cmd.Flags().StringVar(&opts.mongoURI, "mongo-uri", "", "MongoDB connection URI (store=mongo)")
	cmd.Flags().StringVar(&opts.cacheBackend, "cache", "", "layout cache backend: file (default), redis, none")
	cmd.Flags().StringVar(&opts.redisAddr, "redis-addr", "", "Redis address (cache=redis)")

	return cmd
}

// runServe assembles the server from config plus flags and runs it with
// graceful shutdown.
func (c *CLI) runServe(ctx context.Context, opts *serveOpts) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	applyServeFlags(&cfg, opts)

	graphs, err := c.newStore(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer graphs.Close(context.Background())

	layoutCache, err := c.newServeCache(ctx, cfg.Cache)
	if err != nil {
		return err
	}

	runner := pipeline.NewRunner(layoutCache, nil, c.Logger, nil)
	defer runner.Close()

	srv := server.NewServer(server.Config{
		Store:    graphs,
		Sessions: session.NewMemoryStore(),
		Runner:   runner,
		Logger:   c.Logger,
	})

	httpSrv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		c.Logger.Info("listening", "addr", cfg.Server.Addr, "store", cfg.Store.Backend, "cache", cfg.Cache.Backend)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		c.Logger.Info("server stopped")
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// applyServeFlags overlays non-empty flags onto the loaded config.
func applyServeFlags(cfg *Config, opts *serveOpts) {
	if opts.addr != "" {
		cfg.Server.Addr = opts.addr
	}
	if opts.storeBackend != "" {
		cfg.Store.Backend = opts.storeBackend
	}
	if opts.mongoURI != "" {
		cfg.Store.MongoURI = opts.mongoURI
	}
	if opts.cacheBackend != "" {
		cfg.Cache.Backend = opts.cacheBackend
	}
	if opts.redisAddr != "" {
		cfg.Cache.RedisAddr = opts.redisAddr
	}
}

// newStore constructs the graph store from the config.
func (c *CLI) newStore(ctx context.Context, cfg StoreConfig) (store.Store, error) {
	switch cfg.Backend {
	case "memory", "":
		return store.NewMemoryStore(), nil
	case "mongo":
		sp := newSpinnerWithContext(ctx, "Connecting to MongoDB")
		sp.Start()
		s, err := store.NewMongoStore(ctx, store.MongoOptions{
			URI:        cfg.MongoURI,
			Database:   cfg.MongoDatabase,
			Collection: cfg.MongoCollection,
		})
		if err != nil {
			sp.StopWithError(fmt.Sprintf("MongoDB unreachable at %s", cfg.MongoURI))
			return nil, err
		}
		sp.StopWithSuccess(fmt.Sprintf("Connected to MongoDB at %s", cfg.MongoURI))
		return s, nil
	default:
		return nil, fmt.Errorf("unknown store backend: %s (must be 'memory' or 'mongo')", cfg.Backend)
	}
}

// newServeCache constructs the layout cache from the config.
func (c *CLI) newServeCache(ctx context.Context, cfg CacheConfig) (cache.Cache, error) {
	switch cfg.Backend {
	case "file", "":
		dir, err := cacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
		return cache.NewFileCache(dir)
	case "redis":
		sp := newSpinnerWithContext(ctx, "Connecting to Redis")
		sp.Start()
		rc, err := cache.NewRedisCache(ctx, cache.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			sp.StopWithError(fmt.Sprintf("Redis unreachable at %s", cfg.RedisAddr))
			return nil, err
		}
		sp.StopWithSuccess(fmt.Sprintf("Connected to Redis at %s", cfg.RedisAddr))
		return rc, nil
	case "none":
		return cache.NewNullCache(), nil
	default:
		return nil, fmt.Errorf("unknown cache backend: %s (must be 'file', 'redis', or 'none')", cfg.Backend)
	}
}
