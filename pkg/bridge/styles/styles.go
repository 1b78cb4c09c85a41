// Package styles supplies the visual styling tables consumed by the bridge
// converters.
//
// Styling is a pure mapping: given an edge (or node) style tag and a
// [Config], the package returns the style record to attach to the render
// output. Unknown tags fall back to a default style so a style miss can
// never fail a render pass.
package styles

// Edge style tags recognized by the default table. These match the edge
// types of the flow model; callers may extend the table with their own tags
// via [Config.Edges].
const (
	TagStream     = "stream"
	TagPersistent = "persistent"
	TagNetwork    = "network"
	TagCycle      = "cycle"
)

// EdgeStyle describes the stroke styling for a rendered edge.
// Animated is promoted onto the render edge record by the converter rather
// than serialized inside the style bag.
type EdgeStyle struct {
	Stroke          string `json:"stroke"`
	StrokeWidth     int    `json:"strokeWidth"`
	StrokeDasharray string `json:"strokeDasharray,omitempty"`
	Animated        bool   `json:"-"`
}

// Config configures edge styling for a conversion pass.
// The zero value is usable: the default style table, no property labels,
// no animations.
type Config struct {
	// Edges maps style tags to styles. Nil means DefaultEdgeStyles.
	// Tags absent from the table resolve to DefaultEdgeStyle.
	Edges map[string]EdgeStyle

	// ShowPropertyLabels attaches edge property labels to the output.
	ShowPropertyLabels bool

	// EnableAnimations allows animated edges. When false, the Animated
	// flag of every resolved style is suppressed.
	EnableAnimations bool
}

// DefaultEdgeStyle is the fallback for unknown style tags.
var DefaultEdgeStyle = EdgeStyle{Stroke: "#666666", StrokeWidth: 2}

// DefaultEdgeStyles is the built-in edge style table.
var DefaultEdgeStyles = map[string]EdgeStyle{
	TagStream:     {Stroke: "#666666", StrokeWidth: 2},
	TagPersistent: {Stroke: "#008800", StrokeWidth: 3},
	TagNetwork:    {Stroke: "#880088", StrokeWidth: 2, StrokeDasharray: "5,5", Animated: true},
	TagCycle:      {Stroke: "#ff0000", StrokeWidth: 2, Animated: true},
}

// ResolveEdge returns the style for the given tag and whether the tag was
// found in the table. A miss returns the default style and false; callers
// treat the miss as cosmetic and keep rendering.
func (c Config) ResolveEdge(tag string) (EdgeStyle, bool) {
	table := c.Edges
	if table == nil {
		table = DefaultEdgeStyles
	}
	style, ok := table[tag]
	if !ok {
		style = DefaultEdgeStyle
	}
	if !c.EnableAnimations {
		style.Animated = false
	}
	return style, ok
}

// EdgeLabelStyle is the styling bag attached to edge property labels.
var EdgeLabelStyle = map[string]string{
	"fontSize":   "10px",
	"fontFamily": "monospace",
	"fill":       "#333333",
}

// NodeBase returns the base card styling shared by all rendered nodes.
// Type-specific coloring is applied downstream by the renderer's palette;
// the bridge only ships the structural card style.
func NodeBase() map[string]string {
	return map[string]string{
		"color":        "#2d3748",
		"border":       "1px solid rgba(0, 0, 0, 0.1)",
		"borderRadius": "12px",
		"padding":      "12px 16px",
		"fontSize":     "13px",
		"fontWeight":   "500",
	}
}

// ContainerBase returns the base styling for rendered containers.
func ContainerBase() map[string]string {
	return map[string]string{
		"border":       "1px dashed rgba(0, 0, 0, 0.25)",
		"borderRadius": "8px",
		"background":   "rgba(240, 240, 245, 0.5)",
		"fontSize":     "12px",
	}
}
