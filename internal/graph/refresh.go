package graph

import (
	"context"
	"fmt"
	"slices"

	"github.com/specialistvlad/appgraph/internal/ctxlog"
	"github.com/specialistvlad/appgraph/internal/node"
	"github.com/specialistvlad/appgraph/internal/nodeid"
)

// Refresh re-instantiates id and every initialized node that depends on it
// through Direct edges, in topological order. Nodes outside that subset keep
// their values. Dependents reached through ValueOf edges are notified once
// the refresh completed, if their value implements RefreshListener.
//
// Refresh must not be called synchronously from a factory, interceptor or
// release function: the writer lock is not reentrant.
func (g *Graph) Refresh(ctx context.Context, id nodeid.ID) error {
	ctx = g.withLogger(ctx)

	listeners, err := g.refreshExclusive(ctx, id)
	if err != nil {
		return err
	}

	g.notify(ctx, listeners)
	return nil
}

func (g *Graph) refreshExclusive(ctx context.Context, id nodeid.ID) ([]RefreshListener, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.refreshLocked(ctx, id)
}

func (g *Graph) refreshLocked(ctx context.Context, id nodeid.ID) ([]RefreshListener, error) {
	s, ok := g.slot(id)
	if !ok {
		refreshes.WithLabelValues("rejected").Inc()
		return nil, fmt.Errorf("unknown node %s", id)
	}
	if g.Status() != StatusInitialized {
		refreshes.WithLabelValues("rejected").Inc()
		return nil, g.graphStateError("refresh")
	}
	if st := s.getState(); st != node.Initialized {
		refreshes.WithLabelValues("rejected").Inc()
		return nil, &InvalidStateError{Op: "refresh", Node: id, Name: s.node.Name, State: st.String()}
	}

	logger := ctxlog.FromContext(ctx)
	subset := g.refreshSubset(id)
	logger.Info("Refreshing node.", "node", s.node.Name, "subset", len(subset))

	pending := make(map[nodeid.ID]*instance, len(subset))
	resolve := func(dep nodeid.ID) (any, bool) {
		if inst, ok := pending[dep]; ok {
			return inst.value, true
		}
		return g.published(dep)
	}

	built := make([]nodeid.ID, 0, len(subset))
	for _, member := range subset {
		ms := g.slots[member.Index()]
		// The old value keeps serving until publish, so a built member is
		// INITIALIZED again before its dependents start.
		ms.setState(node.Initializing)
		inst, err := g.instantiate(ctx, ms, resolve)
		if err != nil {
			return nil, g.rollback(ctx, subset, built, pending, member, err)
		}
		ms.setState(node.Initialized)
		pending[member] = inst
		built = append(built, member)
	}

	// Every new value is ready: swap them in, then dispose of the old ones.
	replaced := make([]*instance, len(subset))
	for i, member := range subset {
		ms := g.slots[member.Index()]
		replaced[i] = ms.publish(pending[member])
		ms.setState(node.Initialized)
	}
	for i := len(subset) - 1; i >= 0; i-- {
		if replaced[i] == nil {
			continue
		}
		ms := g.slots[subset[i].Index()]
		if err := g.releaseInstance(ctx, ms.node, replaced[i]); err != nil {
			logger.Warn("Replaced value could not be released.", "node", ms.node.Name, "error", err)
		}
	}

	refreshes.WithLabelValues("success").Inc()
	logger.Info("Node refreshed.", "node", s.node.Name, "subset", len(subset))
	return g.listenersOf(subset), nil
}

// refreshSubset returns id and its initialized Direct dependents in
// topological order.
func (g *Graph) refreshSubset(id nodeid.ID) []nodeid.ID {
	cone := g.draw.Cone(id)
	subset := cone[:0]
	for _, member := range cone {
		if g.slots[member.Index()].getState() == node.Initialized {
			subset = append(subset, member)
		}
	}
	return subset
}

// rollback releases the new values built so far, last-first, and puts the
// subset back on its previous values. If a new value can not be released the
// graph is marked FAILED, and so is the node that value belonged to.
func (g *Graph) rollback(ctx context.Context, subset, built []nodeid.ID, pending map[nodeid.ID]*instance, failed nodeid.ID, cause error) error {
	logger := ctxlog.FromContext(ctx)
	name := g.draw.Name(failed)

	var failures []*NodeError
	for i := len(built) - 1; i >= 0; i-- {
		ms := g.slots[built[i].Index()]
		if err := g.releaseInstance(ctx, ms.node, pending[built[i]]); err != nil {
			failures = append(failures, &NodeError{Node: ms.node.ID, Name: ms.node.Name, Err: err})
			ms.fail()
		}
	}
	for _, member := range subset {
		ms := g.slots[member.Index()]
		if ms.getState() == node.Initializing {
			ms.setState(node.Initialized)
		}
	}

	err := &InitializationError{Node: failed, Name: name, Cause: cause, Rollback: releaseErrorOrNil(failures)}
	if len(failures) > 0 {
		g.status.Store(int32(StatusFailed))
		refreshes.WithLabelValues("failed").Inc()
		logger.Error("Refresh rollback failed, graph is unusable until released.", "node", name, "error", err)
		return err
	}

	refreshes.WithLabelValues("rolled_back").Inc()
	logger.Warn("Refresh failed, previous values restored.", "node", name, "error", err)
	return err
}

// listenersOf collects the values that observe a subset member through a
// ValueOf edge and were not re-created themselves, in topological order.
func (g *Graph) listenersOf(subset []nodeid.ID) []RefreshListener {
	var ids []nodeid.ID
	for _, member := range subset {
		for _, dependent := range g.draw.Dependents(member) {
			if dependent.Kind != node.ValueOf || slices.Contains(subset, dependent.ID) || slices.Contains(ids, dependent.ID) {
				continue
			}
			if g.slots[dependent.ID.Index()].getState() == node.Initialized {
				ids = append(ids, dependent.ID)
			}
		}
	}
	slices.SortFunc(ids, func(a, b nodeid.ID) int {
		return g.draw.Position(a) - g.draw.Position(b)
	})

	var listeners []RefreshListener
	for _, id := range ids {
		inst := g.slots[id.Index()].current.Load()
		if inst == nil {
			continue
		}
		if l, ok := inst.value.(RefreshListener); ok {
			listeners = append(listeners, l)
		} else if l, ok := inst.stack.Raw().(RefreshListener); ok {
			listeners = append(listeners, l)
		}
	}
	return listeners
}

// notify runs outside the writer lock, so listeners may read the graph.
func (g *Graph) notify(ctx context.Context, listeners []RefreshListener) {
	for _, l := range listeners {
		if err := l.GraphRefreshed(ctx); err != nil {
			ctxlog.FromContext(ctx).Warn("Refresh listener failed.", "listener", fmt.Sprintf("%T", l), "error", err)
		}
	}
}
