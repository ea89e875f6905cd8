// Package node defines the static description of a single component slot in
// the application graph, and the lifecycle states a slot moves through.
package node

import (
	"context"

	"github.com/specialistvlad/appgraph/internal/interceptor"
	"github.com/specialistvlad/appgraph/internal/nodeid"
)

// Factory produces a node's raw value from its resolved dependencies.
type Factory func(ctx context.Context, in Inputs) (any, error)

// ReleaseFunc disposes of a node's raw value. It receives the value the
// factory returned, after every interceptor has been unwound.
type ReleaseFunc func(ctx context.Context, value any) error

// Node is a single vertex of the blueprint. It never points at other nodes:
// dependencies are expressed as IDs only.
type Node struct {
	// ID is assigned by the builder in declaration order.
	ID nodeid.ID
	// Name is the human-readable name used in logs and errors.
	Name string
	// Dependencies are ordered; the factory sees their values in this order.
	Dependencies []Dependency
	// Factory creates the raw value.
	Factory Factory
	// Release disposes of the raw value. Optional.
	Release ReleaseFunc
	// Interceptors are applied in order on init and unwound in reverse.
	Interceptors []interceptor.Interceptor
	// InterceptorNodes are nodes whose values are interceptors. They are
	// applied after the static Interceptors, in order.
	InterceptorNodes []nodeid.ID
	// Root nodes are always instantiated, together with their transitive
	// dependencies.
	Root bool
	// Tags name the contracts this node's value satisfies.
	Tags []string
}

// Edges returns every edge the engine must respect: the declared
// dependencies followed by the interceptor nodes as Direct edges.
func (n *Node) Edges() []Dependency {
	edges := make([]Dependency, 0, len(n.Dependencies)+len(n.InterceptorNodes))
	edges = append(edges, n.Dependencies...)
	for _, id := range n.InterceptorNodes {
		edges = append(edges, Dependency{ID: id, Kind: Direct})
	}
	return edges
}

// HasTag reports whether the node declares the given contract tag.
func (n *Node) HasTag(tag string) bool {
	for _, t := range n.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
