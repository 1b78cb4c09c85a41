// Package layout computes absolute positions and sizes for the elements of a
// flow snapshot.
//
// The bridge (pkg/bridge) treats layout as an oracle: it consumes an
// already-computed, immutable [Result] and never invokes an engine itself.
// Callers run an [Engine] per render cycle and hand its Result to the bridge.
//
// The default engine shells the graph through Graphviz (goccy/go-graphviz):
// containers become nested cluster subgraphs, collapsed containers become
// plain fixed-size nodes, and positions are read back from the attributed
// DOT output.
package layout

import (
	"context"

	"github.com/flowscope/flowscope/pkg/flow"
)

// Geometry is an element's absolute position and size.
// Coordinates use a top-left origin with y increasing downward, matching the
// renderer's coordinate space.
type Geometry struct {
	X      float64 `json:"x" bson:"x"`
	Y      float64 `json:"y" bson:"y"`
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`
}

// Result maps element IDs to their computed geometry.
// A Result is an immutable snapshot of one layout run; lookups on elements
// the engine never saw simply report absence, and the bridge decides whether
// that absence is fatal.
type Result map[string]Geometry

// Geometry returns the geometry for an element and whether it exists.
func (r Result) Geometry(id string) (Geometry, bool) {
	g, ok := r[id]
	return g, ok
}

// Len returns the number of elements with computed geometry.
func (r Result) Len() int { return len(r) }

// Options configures a layout run.
type Options struct {
	// NodeWidth and NodeHeight are the sizing hints for operator nodes,
	// in pixels. Zero values use the defaults.
	NodeWidth  float64 `json:"node_width,omitempty"`
	NodeHeight float64 `json:"node_height,omitempty"`

	// RankSep and NodeSep control layer and sibling spacing, in pixels.
	// Zero values use the defaults.
	RankSep float64 `json:"rank_sep,omitempty"`
	NodeSep float64 `json:"node_sep,omitempty"`

	// CollapsedWidth and CollapsedHeight are the fixed footprint used for
	// collapsed containers, which are laid out as plain nodes.
	CollapsedWidth  float64 `json:"collapsed_width,omitempty"`
	CollapsedHeight float64 `json:"collapsed_height,omitempty"`
}

// Default sizing hints, in pixels.
const (
	DefaultNodeWidth  = 180.0
	DefaultNodeHeight = 60.0
	DefaultRankSep    = 50.0
	DefaultNodeSep    = 30.0

	DefaultCollapsedWidth  = 200.0
	DefaultCollapsedHeight = 80.0
)

// setDefaults fills zero option fields with defaults.
func (o *Options) setDefaults() {
	if o.NodeWidth == 0 {
		o.NodeWidth = DefaultNodeWidth
	}
	if o.NodeHeight == 0 {
		o.NodeHeight = DefaultNodeHeight
	}
	if o.RankSep == 0 {
		o.RankSep = DefaultRankSep
	}
	if o.NodeSep == 0 {
		o.NodeSep = DefaultNodeSep
	}
	if o.CollapsedWidth == 0 {
		o.CollapsedWidth = DefaultCollapsedWidth
	}
	if o.CollapsedHeight == 0 {
		o.CollapsedHeight = DefaultCollapsedHeight
	}
}

// Engine computes a layout for the currently visible elements of a snapshot.
type Engine interface {
	Compute(ctx context.Context, s flow.Snapshot, opts Options) (Result, error)
}

// Func adapts a plain function to the Engine interface.
// This is the stub point for tests and embedders with their own layout.
type Func func(ctx context.Context, s flow.Snapshot, opts Options) (Result, error)

// Compute implements Engine.
func (f Func) Compute(ctx context.Context, s flow.Snapshot, opts Options) (Result, error) {
	return f(ctx, s, opts)
}
