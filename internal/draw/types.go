package draw

import (
	"github.com/specialistvlad/appgraph/internal/interceptor"
	"github.com/specialistvlad/appgraph/internal/node"
	"github.com/specialistvlad/appgraph/internal/nodeid"
)

// NodeSpec is the declaration handed to Builder.AddNode.
type NodeSpec struct {
	Name             string
	Dependencies     []node.Dependency
	Factory          node.Factory
	Release          node.ReleaseFunc
	Interceptors     []interceptor.Interceptor
	InterceptorNodes []nodeid.ID
	Root             bool
	Tags             []string
}

// Draw is the immutable blueprint produced by Builder.Build.
type Draw struct {
	nodes []*node.Node
	// order is a topological order over every node: dependencies first.
	order []nodeid.ID
	// position maps a node to its index in order.
	position []int
	// dependents holds the reverse edges, keyed by the dependency's ID.
	dependents [][]node.Dependency
	// live marks roots and their transitive dependencies.
	live   []bool
	byName map[string]nodeid.ID
}
