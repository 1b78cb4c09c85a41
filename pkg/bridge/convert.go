package bridge

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/flowscope/flowscope/pkg/bridge/styles"
	"github.com/flowscope/flowscope/pkg/flow"
	"github.com/flowscope/flowscope/pkg/layout"
)

// Options configures one conversion pass.
type Options struct {
	// Styles supplies edge styling. The zero value uses the default table
	// with labels and animations off.
	Styles styles.Config

	// Logger receives debug records for absorbed fallbacks (incomplete
	// hierarchies, style misses). Nil disables logging.
	Logger *log.Logger
}

// Convert transforms a snapshot plus its layout result into a flat render
// graph. It reads the snapshot, never mutates it, and holds no state across
// calls; two passes over identical inputs produce byte-identical output.
//
// The returned error is non-nil only for structural failures (a visible
// element missing from the layout result). Cosmetic fallbacks are absorbed.
func Convert(s flow.Snapshot, geo layout.Result, opts Options) (*RenderGraph, error) {
	parents := BuildParentMap(s)
	containers := SortContainers(s.VisibleContainers(), parents, opts.Logger)

	visible := make(map[string]bool, len(containers))
	for _, c := range containers {
		visible[c.ID] = true
	}

	graph := &RenderGraph{
		Elements: make([]RenderElement, 0, len(containers)+len(s.Nodes)),
		Edges:    []RenderEdge{},
	}

	// Containers first, in ancestor-before-descendant order, so every
	// parent's record exists before any element that nests inside it.
	for _, c := range containers {
		el, err := convertContainer(c, parents, visible, geo, opts.Logger)
		if err != nil {
			return nil, err
		}
		graph.Elements = append(graph.Elements, el)
	}
	nodes := s.VisibleNodes()
	for _, n := range nodes {
		el, err := convertNode(n, parents, visible, geo, opts.Logger)
		if err != nil {
			return nil, err
		}
		graph.Elements = append(graph.Elements, el)
	}

	// One visibility set for the edge filter instead of per-endpoint
	// ancestor walks.
	visibleNodes := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		visibleNodes[n.ID] = true
	}
	for i, e := range s.Edges {
		if !visibleNodes[e.Source] || !visibleNodes[e.Target] {
			continue
		}
		graph.Edges = append(graph.Edges, convertEdge(e, i, opts))
	}

	return graph, nil
}

// resolveParent returns the element's effective parent for positioning.
// A parent reference outside the visible container set degrades the element
// to root-level rather than failing the pass.
func resolveParent(id string, parents map[string]string, visible map[string]bool, logger *log.Logger) string {
	parent := parents[id]
	if parent == "" {
		return ""
	}
	if !visible[parent] {
		if logger != nil {
			logger.Debug("parent not in container set, positioning as root",
				"element", id, "parent", parent)
		}
		return ""
	}
	return parent
}

func position(id, parent string, geo layout.Result) (Position, error) {
	if parent == "" {
		return rootPosition(id, geo)
	}
	return childPosition(id, parent, geo)
}

func convertNode(n flow.Node, parents map[string]string, visible map[string]bool, geo layout.Result, logger *log.Logger) (RenderElement, error) {
	parent := resolveParent(n.ID, parents, visible, logger)
	pos, err := position(n.ID, parent, geo)
	if err != nil {
		return RenderElement{}, err
	}
	g, _ := geo.Geometry(n.ID)

	data := map[string]any{
		"label":    n.DisplayLabel(),
		"nodeType": n.Type,
	}
	if n.ShortLabel != "" {
		data["shortLabel"] = n.ShortLabel
	}
	if n.FullLabel != "" {
		data["fullLabel"] = n.FullLabel
	}
	// Caller-supplied properties overlay last, so they win on collision.
	for k, v := range n.Props {
		data[k] = v
	}

	el := RenderElement{
		ID:       n.ID,
		Kind:     KindNode,
		Position: pos,
		Width:    g.Width,
		Height:   g.Height,
		Parent:   parent,
		Data:     data,
		Style:    styles.NodeBase(),
	}
	if parent != "" {
		el.Extent = ExtentParent
	}
	return el, nil
}

func convertContainer(c flow.Container, parents map[string]string, visible map[string]bool, geo layout.Result, logger *log.Logger) (RenderElement, error) {
	parent := resolveParent(c.ID, parents, visible, logger)
	pos, err := position(c.ID, parent, geo)
	if err != nil {
		return RenderElement{}, err
	}
	width, height := containerSize(c, geo)

	data := map[string]any{
		"label":         c.DisplayLabel(),
		"containerType": c.Type,
		"collapsed":     c.Collapsed,
	}
	if c.Collapsed {
		data["childCount"] = childCount(c)
	}

	el := RenderElement{
		ID:       c.ID,
		Kind:     KindContainer,
		Position: pos,
		Width:    width,
		Height:   height,
		Parent:   parent,
		Data:     data,
		Style:    styles.ContainerBase(),
	}
	if parent != "" {
		el.Extent = ExtentParent
	}
	return el, nil
}

func convertEdge(e flow.Edge, idx int, opts Options) RenderEdge {
	style, found := opts.Styles.ResolveEdge(e.Type)
	if !found && opts.Logger != nil {
		opts.Logger.Debug("no style entry for edge type, using default",
			"edge", e.ID, "type", e.Type)
	}

	id := e.ID
	if id == "" {
		id = fmt.Sprintf("e%d", idx)
	}
	re := RenderEdge{
		ID:       id,
		Source:   e.Source,
		Target:   e.Target,
		Type:     EdgeTypeSmoothstep,
		Animated: style.Animated,
		Style:    style,
	}
	if opts.Styles.ShowPropertyLabels && e.Label != "" {
		re.Label = e.Label
		re.LabelStyle = styles.EdgeLabelStyle
	}
	return re
}
