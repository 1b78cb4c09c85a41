package bridge

import (
	"encoding/json"

	"github.com/flowscope/flowscope/pkg/bridge/styles"
)

// Element kinds emitted by the bridge.
const (
	KindNode      = "node"
	KindContainer = "container"
)

// ExtentParent marks an element as clipped to its parent's bounds,
// per the renderer's nesting contract.
const ExtentParent = "parent"

// EdgeTypeSmoothstep is the renderer edge shape used for all edges.
const EdgeTypeSmoothstep = "smoothstep"

// Position is a coordinate pair in renderer space. For elements with a
// parent it is relative to the parent's top-left corner; for root elements
// it is absolute.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// RenderElement is a positioned, sized, styled record for one node or
// container, ready for direct consumption by the renderer.
type RenderElement struct {
	ID       string            `json:"id"`
	Kind     string            `json:"kind"`
	Position Position          `json:"position"`
	Width    float64           `json:"width"`
	Height   float64           `json:"height"`
	Parent   string            `json:"parentId,omitempty"`
	Extent   string            `json:"extent,omitempty"`
	Data     map[string]any    `json:"data"`
	Style    map[string]string `json:"style,omitempty"`
}

// RenderEdge is a styled edge record between two visible nodes.
type RenderEdge struct {
	ID         string            `json:"id"`
	Source     string            `json:"source"`
	Target     string            `json:"target"`
	Type       string            `json:"type"`
	Animated   bool              `json:"animated,omitempty"`
	Label      string            `json:"label,omitempty"`
	LabelStyle map[string]string `json:"labelStyle,omitempty"`
	Style      styles.EdgeStyle  `json:"style"`
}

// RenderGraph is the flat output of one conversion pass. Elements are
// ordered so that every container precedes its descendants; the renderer
// may consume the list front to back without forward references.
type RenderGraph struct {
	Elements []RenderElement `json:"elements"`
	Edges    []RenderEdge    `json:"edges"`
}

// Marshal serializes the graph as JSON. Output is deterministic for a
// deterministic input: element order is fixed by the conversion pass and
// map keys serialize sorted.
func (g *RenderGraph) Marshal() ([]byte, error) {
	return json.Marshal(g)
}

// MarshalIndent serializes the graph as indented JSON for inspection.
func (g *RenderGraph) MarshalIndent() ([]byte, error) {
	return json.MarshalIndent(g, "", "  ")
}
