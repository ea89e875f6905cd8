package graph

import (
	"sync/atomic"

	"github.com/specialistvlad/appgraph/internal/interceptor"
	"github.com/specialistvlad/appgraph/internal/node"
)

// instance is one fully-wrapped value of a node.
type instance struct {
	stack *interceptor.Stack
	// value is the outermost layer, captured before any unwind can touch
	// the stack.
	value any
}

// slot holds the mutable state of one node. state and current are written
// under the graph's writer lock and read lock-free.
type slot struct {
	node       *node.Node
	state      atomic.Int32
	current    atomic.Pointer[instance]
	generation atomic.Uint64
}

func newSlot(n *node.Node) *slot {
	s := &slot{node: n}
	s.state.Store(int32(node.New))
	return s
}

func (s *slot) getState() node.State {
	return node.State(s.state.Load())
}

func (s *slot) setState(st node.State) {
	s.state.Store(int32(st))
}

// publish swaps in a new instance and returns the previous one.
func (s *slot) publish(inst *instance) *instance {
	old := s.current.Swap(inst)
	s.generation.Add(1)
	return old
}

// fail marks the node FAILED. The generation moves so that cached handles
// read the graph again and see the failure.
func (s *slot) fail() {
	s.setState(node.Failed)
	s.generation.Add(1)
}

// retract removes the published instance and returns it.
func (s *slot) retract() *instance {
	old := s.current.Swap(nil)
	if old != nil {
		s.generation.Add(1)
	}
	return old
}
