package graph

import (
	"context"

	"github.com/specialistvlad/appgraph/internal/draw"
	"github.com/specialistvlad/appgraph/internal/node"
	"github.com/specialistvlad/appgraph/internal/nodeid"
)

// RefreshableGraph is what the bootstrap hands back to the application once
// the graph is initialized.
type RefreshableGraph interface {
	node.Graph

	// Draw returns the blueprint the graph was created from.
	Draw() *draw.Draw

	// State returns the lifecycle state of a node.
	State(id nodeid.ID) node.State

	// Release tears the graph down. A second call is a no-op.
	Release(ctx context.Context) error
}

// RefreshListener is implemented by node values that depend on another node
// through a ValueOf edge and want to hear about its replacement. The engine
// calls GraphRefreshed after the refresh completed and the writer lock was
// released.
type RefreshListener interface {
	GraphRefreshed(ctx context.Context) error
}

var _ RefreshableGraph = (*Graph)(nil)
