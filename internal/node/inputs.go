package node

import (
	"context"

	"github.com/specialistvlad/appgraph/internal/nodeid"
)

// Reader gives lock-free read access to the published values of a graph.
type Reader interface {
	// Get returns the current value of an initialized node.
	Get(id nodeid.ID) (any, error)
	// Generation increases every time a node publishes a new value or
	// stops serving its current one.
	Generation(id nodeid.ID) uint64
}

// Refresher re-instantiates a node and its dependents. It must not be called
// synchronously from inside a factory, interceptor or release function.
type Refresher interface {
	Refresh(ctx context.Context, id nodeid.ID) error
}

// Graph is the view of the running graph handed to factories.
type Graph interface {
	Reader
	Refresher
}

// Inputs carries the resolved dependencies of a node into its factory.
type Inputs interface {
	// Len returns the number of declared dependencies.
	Len() int
	// Dependency returns the i-th declared dependency.
	Dependency(i int) Dependency
	// Value returns the value of the i-th declared dependency as it was when
	// the factory was called.
	Value(i int) any
	// Graph returns the running graph.
	Graph() Graph
}
