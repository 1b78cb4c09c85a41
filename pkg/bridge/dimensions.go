package bridge

import (
	"github.com/flowscope/flowscope/pkg/flow"
	"github.com/flowscope/flowscope/pkg/layout"
)

// Renderer footprint constants, in pixels.
//
// Collapsed containers are uniform-sized placeholders regardless of subtree
// size. Expanded containers the oracle reported a degenerate size for fall
// back to the minimum footprint instead of rendering zero-area.
const (
	CollapsedWidth  = 200.0
	CollapsedHeight = 80.0

	MinContainerWidth  = 220.0
	MinContainerHeight = 120.0
)

// containerSize returns the container's effective render dimensions.
func containerSize(c flow.Container, geo layout.Result) (width, height float64) {
	if c.Collapsed {
		return CollapsedWidth, CollapsedHeight
	}
	if g, ok := geo.Geometry(c.ID); ok && g.Width > 0 && g.Height > 0 {
		return g.Width, g.Height
	}
	return MinContainerWidth, MinContainerHeight
}

// childCount returns the badge count shown on a collapsed container. It
// counts direct children only, never the transitive subtree, so the badge
// stays O(1) per container.
func childCount(c flow.Container) int {
	return len(c.Children)
}
