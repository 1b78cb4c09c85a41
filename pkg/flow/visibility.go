package flow

// Parents returns the immediate-parent mapping for every element that has a
// parent container. Root-level elements are absent from the map. The map is
// rebuilt on every call; snapshots are cheap, short-lived views and any
// collapse or structural edit invalidates cached hierarchy data.
func (s *Snapshot) Parents() map[string]string {
	parents := make(map[string]string, len(s.Nodes)+len(s.Containers))
	for _, n := range s.Nodes {
		if n.Parent != "" {
			parents[n.ID] = n.Parent
		}
	}
	for _, c := range s.Containers {
		if c.Parent != "" {
			parents[c.ID] = c.Parent
		}
	}
	return parents
}

// containerIndex maps container IDs to their structs for ancestor walks.
func (s *Snapshot) containerIndex() map[string]*Container {
	byID := make(map[string]*Container, len(s.Containers))
	for i := range s.Containers {
		byID[s.Containers[i].ID] = &s.Containers[i]
	}
	return byID
}

// collapsedAncestor reports whether any strict ancestor of id is collapsed.
// The walk is bounded by the container count so a corrupt parent chain
// cannot loop forever; a parent reference outside the container set simply
// ends the walk (the element is treated as rooted there).
func collapsedAncestor(id string, parents map[string]string, byID map[string]*Container) bool {
	cur := parents[id]
	for steps := 0; cur != "" && steps <= len(byID); steps++ {
		c, ok := byID[cur]
		if !ok {
			return false
		}
		if c.Collapsed {
			return true
		}
		cur = c.Parent
	}
	return false
}

// NodeVisible reports whether the node should currently be rendered:
// not hidden, and no ancestor container collapsed.
func (s *Snapshot) NodeVisible(id string) bool {
	n, ok := s.Node(id)
	if !ok || n.Hidden {
		return false
	}
	return !collapsedAncestor(id, s.Parents(), s.containerIndex())
}

// ContainerVisible reports whether the container should currently be
// rendered. A collapsed container is itself visible (as a placeholder);
// only a collapsed ancestor hides it.
func (s *Snapshot) ContainerVisible(id string) bool {
	if _, ok := s.Container(id); !ok {
		return false
	}
	return !collapsedAncestor(id, s.Parents(), s.containerIndex())
}

// VisibleNodes returns the nodes to render, in snapshot order.
func (s *Snapshot) VisibleNodes() []Node {
	parents := s.Parents()
	byID := s.containerIndex()
	var out []Node
	for _, n := range s.Nodes {
		if n.Hidden || collapsedAncestor(n.ID, parents, byID) {
			continue
		}
		out = append(out, n)
	}
	return out
}

// VisibleContainers returns the containers to render, in snapshot order.
func (s *Snapshot) VisibleContainers() []Container {
	parents := s.Parents()
	byID := s.containerIndex()
	var out []Container
	for _, c := range s.Containers {
		if collapsedAncestor(c.ID, parents, byID) {
			continue
		}
		out = append(out, c)
	}
	return out
}
