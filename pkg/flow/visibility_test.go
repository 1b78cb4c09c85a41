package flow

import "testing"

func TestParents(t *testing.T) {
	s := twoLevel()
	parents := s.Parents()

	want := map[string]string{"n1": "p0", "n2": "p0", "p0": "c0"}
	if len(parents) != len(want) {
		t.Fatalf("parents = %v, want %v", parents, want)
	}
	for id, p := range want {
		if parents[id] != p {
			t.Errorf("parents[%s] = %s, want %s", id, parents[id], p)
		}
	}
	if _, ok := parents["n3"]; ok {
		t.Error("root node n3 should be absent from parent map")
	}
	if _, ok := parents["c0"]; ok {
		t.Error("root container c0 should be absent from parent map")
	}
}

func TestVisibility(t *testing.T) {
	tests := []struct {
		name           string
		mutate         func(*Snapshot)
		wantNodes      []string
		wantContainers []string
	}{
		{
			name:           "AllExpanded",
			mutate:         func(s *Snapshot) {},
			wantNodes:      []string{"n1", "n2", "n3"},
			wantContainers: []string{"c0", "p0"},
		},
		{
			name: "HiddenNode",
			mutate: func(s *Snapshot) {
				s.Nodes[1].Hidden = true
			},
			wantNodes:      []string{"n1", "n3"},
			wantContainers: []string{"c0", "p0"},
		},
		{
			name: "CollapsedLeafContainer",
			mutate: func(s *Snapshot) {
				s.Containers[1].Collapsed = true // p0
			},
			wantNodes:      []string{"n3"},
			wantContainers: []string{"c0", "p0"}, // p0 itself stays visible
		},
		{
			name: "CollapsedRootHidesSubtree",
			mutate: func(s *Snapshot) {
				s.Containers[0].Collapsed = true // c0
			},
			wantNodes:      []string{"n3"},
			wantContainers: []string{"c0"}, // p0 is inside the collapsed c0
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := twoLevel()
			tt.mutate(&s)

			var gotNodes []string
			for _, n := range s.VisibleNodes() {
				gotNodes = append(gotNodes, n.ID)
			}
			var gotContainers []string
			for _, c := range s.VisibleContainers() {
				gotContainers = append(gotContainers, c.ID)
			}

			if !equalStrings(gotNodes, tt.wantNodes) {
				t.Errorf("VisibleNodes() = %v, want %v", gotNodes, tt.wantNodes)
			}
			if !equalStrings(gotContainers, tt.wantContainers) {
				t.Errorf("VisibleContainers() = %v, want %v", gotContainers, tt.wantContainers)
			}
		})
	}
}

func TestVisibilityTruncatedChain(t *testing.T) {
	// A parent reference outside the container set ends the walk; the
	// element is treated as rooted there, not hidden.
	s := Snapshot{
		Nodes:      []Node{{ID: "n1", Parent: "ghost"}},
		Containers: nil,
	}
	if !s.NodeVisible("n1") {
		t.Error("node with unknown parent should be visible")
	}
}

func TestVisibilityCyclicChainTerminates(t *testing.T) {
	// Defensive: a cyclic parent map (invalid per Validate) must not hang.
	s := Snapshot{
		Nodes: []Node{{ID: "n1", Parent: "a"}},
		Containers: []Container{
			{ID: "a", Parent: "b"},
			{ID: "b", Parent: "a"},
		},
	}
	if !s.NodeVisible("n1") {
		t.Error("cyclic chain with no collapsed container should leave node visible")
	}

	s.Containers[1].Collapsed = true
	if s.NodeVisible("n1") {
		t.Error("collapsed ancestor in cyclic chain should hide node")
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
