package layout

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/flowscope/flowscope/pkg/flow"
)

// pointsPerInch converts between Graphviz size attributes (inches) and
// coordinate attributes (points). Points map 1:1 onto renderer pixels.
const pointsPerInch = 72.0

// GraphvizEngine lays out snapshots with the dot algorithm.
//
// Visible expanded containers become nested cluster subgraphs, collapsed
// containers become fixed-size plain nodes, and geometry is read back from
// the attributed DOT output. Coordinates are flipped from Graphviz's
// bottom-left origin to the renderer's top-left origin.
type GraphvizEngine struct{}

// NewGraphvizEngine returns a dot-backed layout engine.
func NewGraphvizEngine() *GraphvizEngine {
	return &GraphvizEngine{}
}

// Compute implements [Engine].
func (e *GraphvizEngine) Compute(ctx context.Context, s flow.Snapshot, opts Options) (Result, error) {
	opts.setDefaults()
	dot := buildDOT(s, opts)

	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.Format("dot"), &buf); err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	return parseDOTLayout(buf.String())
}

// buildDOT renders the visible elements of a snapshot as a DOT digraph.
// Expanded containers nest as cluster subgraphs; collapsed containers and
// operator nodes are emitted with fixed sizes so dot only decides placement.
func buildDOT(s flow.Snapshot, opts Options) string {
	nodes := s.VisibleNodes()
	containers := s.VisibleContainers()

	visible := make(map[string]bool, len(containers))
	for _, c := range containers {
		visible[c.ID] = true
	}

	visibleNodes := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		visibleNodes[n.ID] = true
	}

	// Group children under their visible parent. Elements whose parent is
	// unknown or invisible are laid out at the root.
	childNodes := make(map[string][]flow.Node)
	childContainers := make(map[string][]flow.Container)
	for _, n := range nodes {
		p := n.Parent
		if !visible[p] {
			p = ""
		}
		childNodes[p] = append(childNodes[p], n)
	}
	for _, c := range containers {
		p := c.Parent
		if !visible[p] {
			p = ""
		}
		childContainers[p] = append(childContainers[p], c)
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  compound=true;\n")
	fmt.Fprintf(&buf, "  ranksep=%.4f;\n", opts.RankSep/pointsPerInch)
	fmt.Fprintf(&buf, "  nodesep=%.4f;\n", opts.NodeSep/pointsPerInch)
	buf.WriteString("  node [shape=box, fixedsize=true];\n")
	buf.WriteString("\n")

	var emit func(parent string, indent string)
	emit = func(parent string, indent string) {
		for _, n := range childNodes[parent] {
			fmt.Fprintf(&buf, "%s%q [label=%q, width=%.4f, height=%.4f];\n",
				indent, n.ID, n.DisplayLabel(),
				opts.NodeWidth/pointsPerInch, opts.NodeHeight/pointsPerInch)
		}
		for _, c := range childContainers[parent] {
			if c.Collapsed {
				fmt.Fprintf(&buf, "%s%q [label=%q, width=%.4f, height=%.4f];\n",
					indent, c.ID, c.DisplayLabel(),
					opts.CollapsedWidth/pointsPerInch, opts.CollapsedHeight/pointsPerInch)
				continue
			}
			fmt.Fprintf(&buf, "%ssubgraph %q {\n", indent, "cluster_"+c.ID)
			fmt.Fprintf(&buf, "%s  label=%q;\n", indent, c.DisplayLabel())
			emit(c.ID, indent+"  ")
			fmt.Fprintf(&buf, "%s}\n", indent)
		}
	}
	emit("", "  ")

	buf.WriteString("\n")
	for _, e := range s.Edges {
		if !visibleNodes[e.Source] || !visibleNodes[e.Target] {
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.Source, e.Target)
	}

	buf.WriteString("}\n")
	return buf.String()
}

var (
	dotSubgraphRe = regexp.MustCompile(`^subgraph\s+("(?:[^"\\]|\\.)*"|[^\s{]+)\s*\{`)
	dotNameRe     = regexp.MustCompile(`^\s*("(?:[^"\\]|\\.)*"|[A-Za-z0-9_.]+)\s*\[`)
	dotPosRe      = regexp.MustCompile(`\bpos="(-?[0-9.]+),(-?[0-9.]+)"`)
	dotWidthRe    = regexp.MustCompile(`\bwidth="?(-?[0-9.]+)"?`)
	dotHeightRe   = regexp.MustCompile(`\bheight="?(-?[0-9.]+)"?`)
	dotBBRe       = regexp.MustCompile(`\bbb="(-?[0-9.]+),(-?[0-9.]+),(-?[0-9.]+),(-?[0-9.]+)"`)
)

type dotRect struct {
	llx, lly, urx, ury float64
}

// parseDOTLayout extracts element geometry from dot's attributed output.
//
// dot reports node centers in points with a bottom-left origin and node
// sizes in inches; cluster bounding boxes come from the bb attribute of
// each cluster's graph statement. Statements may wrap across lines, so
// lines are accumulated until a terminator is seen.
func parseDOTLayout(out string) (Result, error) {
	type rawNode struct {
		cx, cy, w, h float64
	}

	var (
		stack    []string
		rootBB   *dotRect
		clusters = make(map[string]dotRect)
		rawNodes = make(map[string]rawNode)
		stmt     strings.Builder
	)

	process := func(s string) error {
		if strings.Contains(s, "->") {
			return nil
		}
		m := dotNameRe.FindStringSubmatch(s)
		if m == nil {
			return nil
		}
		name, err := dotUnquote(m[1])
		if err != nil {
			return fmt.Errorf("layout output: %w", err)
		}
		switch name {
		case "graph":
			bm := dotBBRe.FindStringSubmatch(s)
			if bm == nil {
				return nil
			}
			r := dotRect{
				llx: parseF(bm[1]), lly: parseF(bm[2]),
				urx: parseF(bm[3]), ury: parseF(bm[4]),
			}
			if len(stack) == 0 {
				rootBB = &r
			} else {
				clusters[stack[len(stack)-1]] = r
			}
		case "node", "edge":
			// Default attribute statements carry no geometry.
		default:
			pm := dotPosRe.FindStringSubmatch(s)
			wm := dotWidthRe.FindStringSubmatch(s)
			hm := dotHeightRe.FindStringSubmatch(s)
			if pm == nil || wm == nil || hm == nil {
				return nil
			}
			rawNodes[name] = rawNode{
				cx: parseF(pm[1]), cy: parseF(pm[2]),
				w: parseF(wm[1]) * pointsPerInch,
				h: parseF(hm[1]) * pointsPerInch,
			}
		}
		return nil
	}

	for _, line := range strings.Split(out, "\n") {
		trimmed := strings.TrimSpace(line)
		if m := dotSubgraphRe.FindStringSubmatch(trimmed); m != nil {
			name, err := dotUnquote(m[1])
			if err != nil {
				return nil, fmt.Errorf("layout output: %w", err)
			}
			stack = append(stack, strings.TrimPrefix(name, "cluster_"))
			continue
		}
		if trimmed == "}" {
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
			continue
		}
		if strings.HasSuffix(trimmed, "{") {
			continue // graph opening
		}
		stmt.WriteString(" ")
		stmt.WriteString(trimmed)
		if !strings.HasSuffix(trimmed, ";") {
			continue // statement wraps to the next line
		}
		s := stmt.String()
		stmt.Reset()
		if err := process(s); err != nil {
			return nil, err
		}
	}

	if rootBB == nil {
		return nil, fmt.Errorf("layout output: no graph bounding box")
	}
	total := rootBB.ury - rootBB.lly

	result := make(Result, len(rawNodes)+len(clusters))
	for id, n := range rawNodes {
		result[id] = Geometry{
			X:      n.cx - n.w/2 - rootBB.llx,
			Y:      total - (n.cy - rootBB.lly + n.h/2),
			Width:  n.w,
			Height: n.h,
		}
	}
	for id, r := range clusters {
		result[id] = Geometry{
			X:      r.llx - rootBB.llx,
			Y:      total - (r.ury - rootBB.lly),
			Width:  r.urx - r.llx,
			Height: r.ury - r.lly,
		}
	}
	return result, nil
}

func dotUnquote(s string) (string, error) {
	if !strings.HasPrefix(s, `"`) {
		return s, nil
	}
	return strconv.Unquote(s)
}

func parseF(s string) float64 {
	f, _ := strconv.ParseFloat(s, 64)
	return f
}
