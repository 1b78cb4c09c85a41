package bridge_test

import (
	"fmt"

	"github.com/flowscope/flowscope/pkg/bridge"
	"github.com/flowscope/flowscope/pkg/flow"
	"github.com/flowscope/flowscope/pkg/layout"
)

func ExampleConvert() {
	snapshot := flow.Snapshot{
		Nodes: []flow.Node{
			{ID: "n1", ShortLabel: "source", Parent: "A"},
		},
		Containers: []flow.Container{
			{ID: "A", Label: "A", Children: []string{"n1"}},
		},
	}
	geometry := layout.Result{
		"A":  {X: 0, Y: 0, Width: 200, Height: 100},
		"n1": {X: 50, Y: 30, Width: 180, Height: 60},
	}

	graph, err := bridge.Convert(snapshot, geometry, bridge.Options{})
	if err != nil {
		fmt.Println(err)
		return
	}
	for _, el := range graph.Elements {
		fmt.Printf("%s %s (%v,%v) %vx%v\n",
			el.Kind, el.ID, el.Position.X, el.Position.Y, el.Width, el.Height)
	}
	// Output:
	// container A (0,0) 200x100
	// node n1 (50,30) 180x60
}
