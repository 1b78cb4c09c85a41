package bridge

import (
	"slices"

	"github.com/charmbracelet/log"

	"github.com/flowscope/flowscope/pkg/flow"
)

// BuildParentMap returns the immediate-parent mapping for every currently
// visible node and container. Root-level elements are absent from the map.
// The map may reference a parent that is not itself a visible container
// (a truncated chain); converters treat such elements as root-level.
func BuildParentMap(s flow.Snapshot) map[string]string {
	parents := make(map[string]string)
	for _, n := range s.VisibleNodes() {
		if n.Parent != "" {
			parents[n.ID] = n.Parent
		}
	}
	for _, c := range s.VisibleContainers() {
		if c.Parent != "" {
			parents[c.ID] = c.Parent
		}
	}
	return parents
}

// containerDepth returns the container's distance to a root, following the
// parent map. The walk is bounded by the container count. A chain that
// leaves the known container set, or that exceeds the bound, reports depth
// 0 with ok=false; the container is then ordered as if it were a root.
func containerDepth(id string, parents map[string]string, known map[string]bool) (int, bool) {
	depth := 0
	cur := id
	for steps := 0; ; steps++ {
		p, has := parents[cur]
		if !has {
			return depth, true
		}
		if !known[p] || steps >= len(known) {
			return 0, false
		}
		depth++
		cur = p
	}
}

// SortContainers orders containers so that every ancestor precedes its
// descendants. Containers with no ancestor relationship keep their input
// order, so the output is deterministic for a deterministic input.
//
// Containers whose ancestor chain is incomplete sort at depth 0. This is a
// defensive fallback for inconsistent hierarchies, not a correctness
// guarantee; it is logged so the inconsistency is visible.
func SortContainers(containers []flow.Container, parents map[string]string, logger *log.Logger) []flow.Container {
	known := make(map[string]bool, len(containers))
	for _, c := range containers {
		known[c.ID] = true
	}

	type ranked struct {
		c     flow.Container
		depth int
	}
	rs := make([]ranked, len(containers))
	for i, c := range containers {
		depth, ok := containerDepth(c.ID, parents, known)
		if !ok && logger != nil {
			logger.Debug("incomplete ancestor chain, ordering container as root",
				"container", c.ID, "parent", parents[c.ID])
		}
		rs[i] = ranked{c: c, depth: depth}
	}

	slices.SortStableFunc(rs, func(a, b ranked) int {
		return a.depth - b.depth
	})

	out := make([]flow.Container, len(rs))
	for i, r := range rs {
		out[i] = r.c
	}
	return out
}
