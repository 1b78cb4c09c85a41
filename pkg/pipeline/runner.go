package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/flowscope/flowscope/pkg/bridge"
	"github.com/flowscope/flowscope/pkg/cache"
	"github.com/flowscope/flowscope/pkg/errors"
	"github.com/flowscope/flowscope/pkg/flow"
	"github.com/flowscope/flowscope/pkg/layout"
	"github.com/flowscope/flowscope/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache, engine, and logger - it
// doesn't store pipeline results. Multiple goroutines can safely use the
// same Runner with different snapshots and options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
	Engine layout.Engine
}

// NewRunner creates a runner with the given cache, keyer, and engine.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
// If engine is nil, the Graphviz engine is used.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger, engine layout.Engine) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	if engine == nil {
		engine = layout.NewGraphvizEngine()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
		Engine: engine,
	}
}

// Execute runs the complete layout → convert pipeline with caching.
func (r *Runner) Execute(ctx context.Context, s flow.Snapshot, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	if err := s.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidGraph, err, "invalid snapshot")
	}

	data, err := flow.MarshalSnapshot(s)
	if err != nil {
		return nil, fmt.Errorf("serialize snapshot: %w", err)
	}
	result := &Result{SnapshotHash: cache.Hash(data)}
	result.Stats.NodeCount = s.NodeCount()
	result.Stats.ContainerCount = s.ContainerCount()

	// Stage 1: Layout
	layoutStart := time.Now()
	geo, layoutHit, err := r.ComputeLayoutWithCacheInfo(ctx, s, result.SnapshotHash, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Layout = geo
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.CacheInfo.LayoutHit = layoutHit

	opts.Logger.Info("computed layout",
		"elements", geo.Len(),
		"cached", layoutHit,
		"duration", result.Stats.LayoutTime)

	// Stage 2: Convert
	convertStart := time.Now()
	observability.Pipeline().OnConvertStart(ctx, s.NodeCount(), s.ContainerCount())
	graph, err := bridge.Convert(s, geo, bridge.Options{
		Styles: opts.StyleConfig(),
		Logger: opts.Logger,
	})
	result.Stats.ConvertTime = time.Since(convertStart)
	if err != nil {
		observability.Pipeline().OnConvertComplete(ctx, 0, 0, result.Stats.ConvertTime, err)
		return nil, fmt.Errorf("convert: %w", err)
	}
	observability.Pipeline().OnConvertComplete(ctx,
		len(graph.Elements), len(graph.Edges), result.Stats.ConvertTime, nil)

	result.Graph = graph
	result.Stats.ElementCount = len(graph.Elements)
	result.Stats.EdgeCount = len(graph.Edges)

	opts.Logger.Info("converted render graph",
		"elements", result.Stats.ElementCount,
		"edges", result.Stats.EdgeCount,
		"duration", result.Stats.ConvertTime)

	return result, nil
}

// ComputeLayoutWithCacheInfo runs the layout stage with caching and returns
// cache hit info. The snapshot hash is computed by the caller so Execute
// hashes the snapshot exactly once.
func (r *Runner) ComputeLayoutWithCacheInfo(ctx context.Context, s flow.Snapshot, snapshotHash string, opts Options) (layout.Result, bool, error) {
	cacheKey := r.Keyer.LayoutKey(snapshotHash, opts.LayoutKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var cached layout.Result
			if err := json.Unmarshal(data, &cached); err == nil {
				observability.Cache().OnCacheHit(ctx, "layout")
				return cached, true, nil
			}
			// Corrupt entry, fall through to recompute
		}
		observability.Cache().OnCacheMiss(ctx, "layout")
	}

	observability.Pipeline().OnLayoutStart(ctx, "graphviz", s.NodeCount())
	start := time.Now()
	geo, err := r.Engine.Compute(ctx, s, opts.Layout)
	observability.Pipeline().OnLayoutComplete(ctx, "graphviz", time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	if data, err := json.Marshal(geo); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLLayout); err == nil {
			observability.Cache().OnCacheSet(ctx, "layout", len(data))
		}
	}

	return geo, false, nil
}

// ComputeLayout is a convenience wrapper that discards the cache hit info.
func (r *Runner) ComputeLayout(ctx context.Context, s flow.Snapshot, opts Options) (layout.Result, error) {
	data, err := flow.MarshalSnapshot(s)
	if err != nil {
		return nil, fmt.Errorf("serialize snapshot: %w", err)
	}
	geo, _, err := r.ComputeLayoutWithCacheInfo(ctx, s, cache.Hash(data), opts)
	return geo, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
