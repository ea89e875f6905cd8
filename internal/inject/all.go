package inject

import (
	"context"
	"iter"
	"slices"

	"github.com/specialistvlad/appgraph/internal/node"
)

// All is an immutable ordered collection. Once built it never changes, even
// if one of the nodes it was collected from is refreshed.
type All[T any] struct {
	values []T
}

// Of builds an All over values, in order.
func Of[T any](values ...T) All[T] {
	return All[T]{values: slices.Clone(values)}
}

// AllDeps collects the value of every All edge of in, in declaration order.
func AllDeps[T any](in node.Inputs) (All[T], error) {
	var values []T
	for i := 0; i < in.Len(); i++ {
		dep := in.Dependency(i)
		if dep.Kind != node.All {
			continue
		}
		typed, ok := in.Value(i).(T)
		if !ok {
			return All[T]{}, &TypeError{Node: dep.ID, Want: typeName[T](), Got: in.Value(i)}
		}
		values = append(values, typed)
	}
	return All[T]{values: values}, nil
}

// AllFactory returns a factory producing the All[T] of a node's All edges.
func AllFactory[T any]() node.Factory {
	return func(_ context.Context, in node.Inputs) (any, error) {
		return AllDeps[T](in)
	}
}

func (a All[T]) Len() int {
	return len(a.values)
}

// At returns the i-th value. It panics if i is out of range.
func (a All[T]) At(i int) T {
	return a.values[i]
}

// Values returns a copy of the collection.
func (a All[T]) Values() []T {
	return slices.Clone(a.values)
}

// Seq iterates over the collection in order.
func (a All[T]) Seq() iter.Seq[T] {
	return slices.Values(a.values)
}

// EqualFunc reports whether both collections hold the same number of
// values, pairwise equal under eq.
func (a All[T]) EqualFunc(b All[T], eq func(x, y T) bool) bool {
	return slices.EqualFunc(a.values, b.values, eq)
}

// Equal compares two collections element by element.
func Equal[T comparable](a, b All[T]) bool {
	return slices.Equal(a.values, b.values)
}
