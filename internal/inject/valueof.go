package inject

import (
	"fmt"
	"sync/atomic"

	"github.com/specialistvlad/appgraph/internal/node"
	"github.com/specialistvlad/appgraph/internal/nodeid"
)

// ValueOf is a handle on the current value of one node. It never owns the
// value: every Get observes whatever the graph has published, so holders
// keep working after the node is refreshed. Get is lock-free.
type ValueOf[T any] struct {
	reader node.Reader
	id     nodeid.ID
	cache  atomic.Pointer[cached[T]]
}

type cached[T any] struct {
	value      T
	generation uint64
}

// NewValueOf binds a handle to id.
func NewValueOf[T any](reader node.Reader, id nodeid.ID) *ValueOf[T] {
	return &ValueOf[T]{reader: reader, id: id}
}

// ValueOfDep builds a handle for the i-th dependency, which must be declared
// as a ValueOf edge.
func ValueOfDep[T any](in node.Inputs, i int) (*ValueOf[T], error) {
	dep := in.Dependency(i)
	if dep.Kind != node.ValueOf {
		return nil, &KindError{Index: i, Want: node.ValueOf, Got: dep.Kind}
	}
	return NewValueOf[T](in.Graph(), dep.ID), nil
}

// ID returns the node the handle is bound to.
func (v *ValueOf[T]) ID() nodeid.ID {
	return v.id
}

// Get returns the current value. It fails if the node holds no value or the
// value is not a T. The typed value is cached until the node publishes a
// new one or Refresh is called.
func (v *ValueOf[T]) Get() (T, error) {
	generation := v.reader.Generation(v.id)
	if c := v.cache.Load(); c != nil && c.generation == generation {
		return c.value, nil
	}

	var zero T
	raw, err := v.reader.Get(v.id)
	if err != nil {
		return zero, err
	}
	typed, ok := raw.(T)
	if !ok {
		return zero, &TypeError{Node: v.id, Want: typeName[T](), Got: raw}
	}
	// A publish racing with this read leaves the cache one generation
	// behind, which the next Get detects.
	v.cache.Store(&cached[T]{value: typed, generation: generation})
	return typed, nil
}

// MustGet is Get for callers that treat a missing value as a bug.
func (v *ValueOf[T]) MustGet() T {
	value, err := v.Get()
	if err != nil {
		panic(fmt.Sprintf("value of %s: %v", v.id, err))
	}
	return value
}

// Refresh drops the cached value, so the next Get reads the graph.
func (v *ValueOf[T]) Refresh() {
	v.cache.Store(nil)
}
