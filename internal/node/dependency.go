package node

import (
	"fmt"

	"github.com/specialistvlad/appgraph/internal/nodeid"
)

// Kind tells the engine how a dependency is consumed.
type Kind int

const (
	// Direct dependencies hand their value to the factory. A refresh of the
	// dependency re-creates the dependent.
	Direct Kind = iota
	// ValueOf dependencies hand the factory a handle that observes the
	// current value. A refresh of the dependency notifies the dependent
	// instead of re-creating it.
	ValueOf
	// All dependencies are captured once into an immutable snapshot. A
	// refresh of the dependency does not reach the dependent.
	All
)

func (k Kind) String() string {
	switch k {
	case Direct:
		return "direct"
	case ValueOf:
		return "value_of"
	case All:
		return "all"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Propagates reports whether a refresh travels across an edge of this kind.
func (k Kind) Propagates() bool {
	return k == Direct
}

// Dependency is a single edge: the dependent needs ID.
type Dependency struct {
	ID   nodeid.ID
	Kind Kind
}

// On is shorthand for a Direct dependency.
func On(id nodeid.ID) Dependency {
	return Dependency{ID: id, Kind: Direct}
}

// OnValueOf is shorthand for a ValueOf dependency.
func OnValueOf(id nodeid.ID) Dependency {
	return Dependency{ID: id, Kind: ValueOf}
}

// OnAll turns every id into an All dependency, preserving order.
func OnAll(ids ...nodeid.ID) []Dependency {
	deps := make([]Dependency, len(ids))
	for i, id := range ids {
		deps[i] = Dependency{ID: id, Kind: All}
	}
	return deps
}
