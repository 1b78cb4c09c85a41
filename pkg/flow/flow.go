// Package flow defines the hierarchical dataflow-graph model that FlowScope
// converts into renderable elements.
//
// A graph consists of operator nodes, typed edges, and nested containers
// (process/cluster groupings) that can be expanded or collapsed. The model is
// owned by an external graph store; FlowScope consumes it as an immutable
// [Snapshot] value on each render cycle and never mutates it.
package flow

import (
	"errors"
	"fmt"
)

// Node types, matching the operator categories of the upstream dataflow IR.
const (
	NodeTypeSource      = "Source"
	NodeTypeTransform   = "Transform"
	NodeTypeJoin        = "Join"
	NodeTypeAggregation = "Aggregation"
	NodeTypeNetwork     = "Network"
	NodeTypeSink        = "Sink"
	NodeTypeTee         = "Tee"
)

// Container types. Containers group nodes by the location they execute on.
const (
	ContainerTypeProcess  = "Process"
	ContainerTypeCluster  = "Cluster"
	ContainerTypeExternal = "External"
)

// Edge types, used as style tags by the edge style processor.
const (
	EdgeTypeStream     = "stream"
	EdgeTypePersistent = "persistent"
	EdgeTypeNetwork    = "network"
	EdgeTypeCycle      = "cycle"
)

var (
	// ErrDuplicateID is returned by [Snapshot.Validate] when two elements
	// (nodes or containers) share an identifier. IDs are a single namespace
	// across both kinds.
	ErrDuplicateID = errors.New("duplicate element ID")

	// ErrUnknownParent is returned by [Snapshot.Validate] when an element
	// references a parent container that does not exist.
	ErrUnknownParent = errors.New("unknown parent container")

	// ErrUnknownEndpoint is returned by [Snapshot.Validate] when an edge
	// references a node that does not exist.
	ErrUnknownEndpoint = errors.New("unknown edge endpoint")

	// ErrContainerCycle is returned by [Snapshot.Validate] when a container's
	// parent chain loops back to itself. Containers cannot contain
	// themselves, directly or transitively.
	ErrContainerCycle = errors.New("container contains itself")

	// ErrChildMismatch is returned by [Snapshot.Validate] when a container
	// lists a child whose Parent field does not point back at the container.
	ErrChildMismatch = errors.New("child parent link mismatch")
)

// Node is a single dataflow operator.
type Node struct {
	ID         string         `json:"id" bson:"id"`
	ShortLabel string         `json:"short_label,omitempty" bson:"short_label,omitempty"` // Compact operator name (e.g., "map")
	FullLabel  string         `json:"full_label,omitempty" bson:"full_label,omitempty"`   // Full descriptive label
	Type       string         `json:"type,omitempty" bson:"type,omitempty"`               // One of the NodeType constants
	Parent     string         `json:"parent,omitempty" bson:"parent,omitempty"`           // Immediate parent container ID (empty = root)
	Hidden     bool           `json:"hidden,omitempty" bson:"hidden,omitempty"`           // Excluded from rendering when true
	Props      map[string]any `json:"props,omitempty" bson:"props,omitempty"`             // Caller extension properties, merged into render output
}

// DisplayLabel returns the preferred label for rendering.
// The fallback chain is full label → short label → ID.
func (n *Node) DisplayLabel() string {
	if n.FullLabel != "" {
		return n.FullLabel
	}
	if n.ShortLabel != "" {
		return n.ShortLabel
	}
	return n.ID
}

// Container is a visual grouping that can nest nodes and other containers
// and toggle between collapsed (placeholder) and expanded states.
type Container struct {
	ID        string   `json:"id" bson:"id"`
	Label     string   `json:"label,omitempty" bson:"label,omitempty"`
	Type      string   `json:"type,omitempty" bson:"type,omitempty"`         // One of the ContainerType constants
	Parent    string   `json:"parent,omitempty" bson:"parent,omitempty"`     // Immediate parent container ID (empty = root)
	Collapsed bool     `json:"collapsed,omitempty" bson:"collapsed,omitempty"`
	Children  []string `json:"children,omitempty" bson:"children,omitempty"` // Direct child element IDs (nodes and containers)
}

// DisplayLabel returns the container label, falling back to a typed default
// derived from the ID (e.g., "Process p0") when no label is set.
func (c *Container) DisplayLabel() string {
	if c.Label != "" {
		return c.Label
	}
	if c.Type != "" {
		return fmt.Sprintf("%s %s", c.Type, c.ID)
	}
	return c.ID
}

// Edge is a directed connection between two nodes.
type Edge struct {
	ID     string `json:"id,omitempty" bson:"id,omitempty"` // Optional; converters synthesize "e<n>" when empty
	Source string `json:"source" bson:"source"`
	Target string `json:"target" bson:"target"`
	Type   string `json:"type,omitempty" bson:"type,omitempty"`   // One of the EdgeType constants (style tag)
	Label  string `json:"label,omitempty" bson:"label,omitempty"` // Property label (shown when ShowPropertyLabels is set)
}

// Snapshot is an immutable view of the full graph universe at one point in
// time: every node, container, and edge plus their visibility and collapse
// flags. Slice order is preserved through serialization and conversion, which
// is what makes render output deterministic.
//
// Snapshots are plain values. Callers that mutate graph state between render
// cycles must hand the bridge a fresh snapshot rather than sharing one.
type Snapshot struct {
	Nodes      []Node      `json:"nodes" bson:"nodes"`
	Containers []Container `json:"containers,omitempty" bson:"containers,omitempty"`
	Edges      []Edge      `json:"edges,omitempty" bson:"edges,omitempty"`
}

// Node returns the node with the given ID and true, or a zero node and false.
func (s *Snapshot) Node(id string) (Node, bool) {
	for _, n := range s.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// Container returns the container with the given ID and true, or a zero
// container and false.
func (s *Snapshot) Container(id string) (Container, bool) {
	for _, c := range s.Containers {
		if c.ID == id {
			return c, true
		}
	}
	return Container{}, false
}

// NodeCount returns the number of nodes in the snapshot.
func (s *Snapshot) NodeCount() int { return len(s.Nodes) }

// EdgeCount returns the number of edges in the snapshot.
func (s *Snapshot) EdgeCount() int { return len(s.Edges) }

// ContainerCount returns the number of containers in the snapshot.
func (s *Snapshot) ContainerCount() int { return len(s.Containers) }

// Clone returns a deep copy of the snapshot. Mutating the copy (e.g., to
// apply per-viewer collapse overrides) leaves the original untouched.
func (s *Snapshot) Clone() Snapshot {
	out := Snapshot{
		Nodes:      make([]Node, len(s.Nodes)),
		Containers: make([]Container, len(s.Containers)),
		Edges:      make([]Edge, len(s.Edges)),
	}
	for i, n := range s.Nodes {
		if n.Props != nil {
			props := make(map[string]any, len(n.Props))
			for k, v := range n.Props {
				props[k] = v
			}
			n.Props = props
		}
		out.Nodes[i] = n
	}
	for i, c := range s.Containers {
		if c.Children != nil {
			c.Children = append([]string(nil), c.Children...)
		}
		out.Containers[i] = c
	}
	copy(out.Edges, s.Edges)
	return out
}

// Validate checks snapshot integrity and returns nil if valid.
// It verifies that:
//
//  1. Element IDs are non-empty and unique across nodes and containers
//  2. Parent references point at existing containers
//  3. Edges connect existing nodes
//  4. No container contains itself, directly or transitively
//  5. Listed children link back to their container via their Parent field
//
// Use this at trust boundaries (file import, API ingress). The bridge itself
// assumes a valid snapshot and does not re-validate.
func (s *Snapshot) Validate() error {
	containers := make(map[string]*Container, len(s.Containers))
	seen := make(map[string]bool, len(s.Nodes)+len(s.Containers))

	for i := range s.Containers {
		c := &s.Containers[i]
		if c.ID == "" {
			return fmt.Errorf("container %d: %w", i, ErrDuplicateID)
		}
		if seen[c.ID] {
			return fmt.Errorf("container %s: %w", c.ID, ErrDuplicateID)
		}
		seen[c.ID] = true
		containers[c.ID] = c
	}

	parentOf := make(map[string]string, len(s.Nodes)+len(s.Containers))

	for i := range s.Nodes {
		n := &s.Nodes[i]
		if n.ID == "" || seen[n.ID] {
			return fmt.Errorf("node %s: %w", n.ID, ErrDuplicateID)
		}
		seen[n.ID] = true
		if n.Parent != "" {
			if _, ok := containers[n.Parent]; !ok {
				return fmt.Errorf("node %s parent %s: %w", n.ID, n.Parent, ErrUnknownParent)
			}
			parentOf[n.ID] = n.Parent
		}
	}

	for _, c := range s.Containers {
		if c.Parent != "" {
			if _, ok := containers[c.Parent]; !ok {
				return fmt.Errorf("container %s parent %s: %w", c.ID, c.Parent, ErrUnknownParent)
			}
			parentOf[c.ID] = c.Parent
		}
	}

	for _, c := range s.Containers {
		for _, child := range c.Children {
			declared, ok := parentOf[child]
			if !ok && !seen[child] {
				return fmt.Errorf("container %s child %s: %w", c.ID, child, ErrUnknownParent)
			}
			if declared != c.ID {
				return fmt.Errorf("container %s child %s: %w", c.ID, child, ErrChildMismatch)
			}
		}
	}

	// Bounded walk: a chain longer than the container count must loop.
	for _, c := range s.Containers {
		cur := c.Parent
		for steps := 0; cur != ""; steps++ {
			if cur == c.ID {
				return fmt.Errorf("container %s: %w", c.ID, ErrContainerCycle)
			}
			if steps > len(s.Containers) {
				return fmt.Errorf("container %s: %w", c.ID, ErrContainerCycle)
			}
			cur = containers[cur].Parent
		}
	}

	for i, e := range s.Edges {
		if _, ok := s.Node(e.Source); !ok {
			return fmt.Errorf("edge %d source %s: %w", i, e.Source, ErrUnknownEndpoint)
		}
		if _, ok := s.Node(e.Target); !ok {
			return fmt.Errorf("edge %d target %s: %w", i, e.Target, ErrUnknownEndpoint)
		}
	}

	return nil
}
