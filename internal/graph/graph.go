package graph

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/specialistvlad/appgraph/internal/draw"
	"github.com/specialistvlad/appgraph/internal/node"
	"github.com/specialistvlad/appgraph/internal/nodeid"
)

// Status is the graph-level lifecycle state.
type Status int32

const (
	StatusNew Status = iota
	StatusInitialized
	StatusReleased
	// StatusFailed means a refresh could not restore the previous values.
	// Only Release is accepted afterwards.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusNew:
		return "NEW"
	case StatusInitialized:
		return "INITIALIZED"
	case StatusReleased:
		return "RELEASED"
	case StatusFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// Graph is a live instance of a Draw.
type Graph struct {
	id     string
	draw   *draw.Draw
	slots  []*slot
	status atomic.Int32

	// mu serializes Init, Refresh and Release.
	mu sync.Mutex
}

// New creates a graph with every node in the NEW state. Any number of graphs
// may share the same draw.
func New(d *draw.Draw) *Graph {
	nodes := d.Nodes()
	g := &Graph{
		id:    uuid.NewString(),
		draw:  d,
		slots: make([]*slot, len(nodes)),
	}
	for i, n := range nodes {
		g.slots[i] = newSlot(n)
	}
	return g
}

// ID identifies this graph instance in logs.
func (g *Graph) ID() string {
	return g.id
}

func (g *Graph) Draw() *draw.Draw {
	return g.draw
}

// Status returns the graph-level state.
func (g *Graph) Status() Status {
	return Status(g.status.Load())
}

// State returns the lifecycle state of a node. Unknown IDs report FAILED.
func (g *Graph) State(id nodeid.ID) node.State {
	s, ok := g.slot(id)
	if !ok {
		return node.Failed
	}
	return s.getState()
}

// Get returns the published value of a node. It never blocks: during a
// refresh it returns the previous value until the new one is swapped in.
func (g *Graph) Get(id nodeid.ID) (any, error) {
	s, ok := g.slot(id)
	if !ok {
		return nil, fmt.Errorf("unknown node %s", id)
	}
	inst := s.current.Load()
	if inst == nil || s.getState() == node.Failed {
		return nil, &InvalidStateError{Op: "get", Node: id, Name: s.node.Name, State: s.getState().String()}
	}
	return inst.value, nil
}

// Generation returns a counter that changes every time the node publishes or
// retracts a value, or fails.
func (g *Graph) Generation(id nodeid.ID) uint64 {
	s, ok := g.slot(id)
	if !ok {
		return 0
	}
	return s.generation.Load()
}

func (g *Graph) slot(id nodeid.ID) (*slot, bool) {
	if !id.Valid() || id.Index() >= len(g.slots) {
		return nil, false
	}
	return g.slots[id.Index()], true
}

func (g *Graph) graphStateError(op string) error {
	return &InvalidStateError{Op: op, Node: nodeid.None, Name: "graph", State: g.Status().String()}
}

func (g *Graph) withLogger(ctx context.Context) context.Context {
	return withGraphLogger(ctx, g.id)
}
