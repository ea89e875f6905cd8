package graph

import (
	"github.com/specialistvlad/appgraph/internal/node"
)

// inputs is the node.Inputs handed to a factory. values is a snapshot taken
// before the factory runs.
type inputs struct {
	node   *node.Node
	values []any
	graph  *Graph
}

func (in *inputs) Len() int {
	return len(in.values)
}

func (in *inputs) Dependency(i int) node.Dependency {
	return in.node.Dependencies[i]
}

func (in *inputs) Value(i int) any {
	return in.values[i]
}

func (in *inputs) Graph() node.Graph {
	return in.graph
}
