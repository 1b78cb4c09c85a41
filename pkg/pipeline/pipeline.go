// Package pipeline provides the core render pipeline for FlowScope.
//
// This package implements the complete layout → convert pipeline that can be
// used by CLI, API, and embedding components. By centralizing this logic, we
// ensure consistent behavior across all entry points and avoid code
// duplication.
//
// # Architecture
//
// The pipeline consists of two stages:
//
//  1. Layout: Compute absolute geometry for the snapshot's visible elements
//  2. Convert: Transform snapshot plus geometry into a flat render graph
//
// Layout is the expensive stage and is cached by snapshot hash; conversion
// is a pure in-memory pass and always runs fresh.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger, nil)
//	result, err := runner.Execute(ctx, snapshot, pipeline.Options{
//	    EnableAnimations: true,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	out, _ := result.Graph.Marshal()
package pipeline

import (
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"

	"github.com/flowscope/flowscope/pkg/bridge"
	"github.com/flowscope/flowscope/pkg/bridge/styles"
	"github.com/flowscope/flowscope/pkg/cache"
	"github.com/flowscope/flowscope/pkg/errors"
	"github.com/flowscope/flowscope/pkg/layout"
)

// Options contains all configuration for one pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Layout options forwarded to the engine. Zero fields use engine
	// defaults.
	Layout layout.Options `json:"layout"`

	// Edge styling options.
	ShowPropertyLabels bool                        `json:"show_property_labels,omitempty"`
	EnableAnimations   bool                        `json:"enable_animations,omitempty"`
	EdgeStyles         map[string]styles.EdgeStyle `json:"edge_styles,omitempty"`

	// Refresh bypasses the cache read (the result is still written back).
	Refresh bool `json:"refresh,omitempty"`

	// Logger overrides the runner's logger for this run.
	Logger *log.Logger `json:"-"`
}

// ValidateAndSetDefaults checks option consistency.
func (o *Options) ValidateAndSetDefaults() error {
	for _, f := range []float64{
		o.Layout.NodeWidth, o.Layout.NodeHeight,
		o.Layout.RankSep, o.Layout.NodeSep,
		o.Layout.CollapsedWidth, o.Layout.CollapsedHeight,
	} {
		if f < 0 {
			return errors.New(errors.ErrCodeInvalidInput, "layout dimensions must not be negative")
		}
	}
	for tag := range o.EdgeStyles {
		if err := errors.ValidateStyleTag(tag); err != nil {
			return err
		}
	}
	return nil
}

// StyleConfig returns the style configuration for the convert stage.
func (o *Options) StyleConfig() styles.Config {
	return styles.Config{
		Edges:              o.EdgeStyles,
		ShowPropertyLabels: o.ShowPropertyLabels,
		EnableAnimations:   o.EnableAnimations,
	}
}

// LayoutKeyOpts returns cache key options for the layout stage.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		NodeWidth:       o.Layout.NodeWidth,
		NodeHeight:      o.Layout.NodeHeight,
		RankSep:         o.Layout.RankSep,
		NodeSep:         o.Layout.NodeSep,
		CollapsedWidth:  o.Layout.CollapsedWidth,
		CollapsedHeight: o.Layout.CollapsedHeight,
	}
}

// RenderKeyOpts returns cache key options for the convert stage.
func (o *Options) RenderKeyOpts() cache.RenderKeyOpts {
	opts := cache.RenderKeyOpts{
		ShowPropertyLabels: o.ShowPropertyLabels,
		EnableAnimations:   o.EnableAnimations,
	}
	if len(o.EdgeStyles) > 0 {
		if data, err := json.Marshal(o.EdgeStyles); err == nil {
			opts.StyleHash = cache.Hash(data)
		}
	}
	return opts
}

// Stats records per-stage timing and element counts for one run.
type Stats struct {
	LayoutTime  time.Duration `json:"layout_time"`
	ConvertTime time.Duration `json:"convert_time"`

	NodeCount      int `json:"node_count"`
	ContainerCount int `json:"container_count"`
	ElementCount   int `json:"element_count"`
	EdgeCount      int `json:"edge_count"`
}

// CacheInfo reports which stages were served from cache.
type CacheInfo struct {
	LayoutHit bool `json:"layout_hit"`
}

// Result is the output of one pipeline run.
type Result struct {
	// Graph is the flat render graph, ready for the renderer.
	Graph *bridge.RenderGraph `json:"graph"`

	// Layout is the absolute geometry the graph was converted from.
	Layout layout.Result `json:"layout"`

	// SnapshotHash identifies the input snapshot for cache keys and
	// API responses.
	SnapshotHash string `json:"snapshot_hash"`

	Stats     Stats     `json:"stats"`
	CacheInfo CacheInfo `json:"cache_info"`
}
