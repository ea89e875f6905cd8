package graph

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/appgraph/internal/ctxlog"
	"github.com/specialistvlad/appgraph/internal/interceptor"
	"github.com/specialistvlad/appgraph/internal/node"
	"github.com/specialistvlad/appgraph/internal/nodeid"
)

// Release tears down every node holding a value, in reverse topological
// order. Every node gets an attempt; the failures are returned together as a
// *ReleaseError. Releasing a released graph is a no-op.
func (g *Graph) Release(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.Status() == StatusReleased {
		return nil
	}

	ctx = g.withLogger(ctx)
	logger := ctxlog.FromContext(ctx)
	logger.Info("Releasing graph.", "status", g.Status().String())

	failures := g.releaseIDs(ctx, g.draw.Order())
	g.status.Store(int32(StatusReleased))

	if len(failures) > 0 {
		logger.Error("Graph released with errors.", "failures", len(failures))
		return releaseErrorOrNil(failures)
	}
	logger.Info("Graph released.")
	return nil
}

// releaseIDs releases, last-first, every node of ids that holds a value.
func (g *Graph) releaseIDs(ctx context.Context, ids []nodeid.ID) []*NodeError {
	var failures []*NodeError
	for i := len(ids) - 1; i >= 0; i-- {
		s := g.slots[ids[i].Index()]
		if s.current.Load() == nil {
			continue
		}

		prev := s.getState()
		s.setState(node.Releasing)
		inst := s.retract()

		if err := g.releaseInstance(ctx, s.node, inst); err != nil {
			failures = append(failures, &NodeError{Node: s.node.ID, Name: s.node.Name, Err: err})
		}

		if prev == node.Failed {
			s.setState(node.Failed)
		} else {
			s.setState(node.Released)
		}
	}
	return failures
}

// releaseInstance unwinds the interceptors of inst and then releases its raw
// value, even if unwinding failed.
func (g *Graph) releaseInstance(ctx context.Context, n *node.Node, inst *instance) error {
	ctx = ctxlog.WithScope(ctx, "node", n.Name, "node_id", n.ID.String())
	ctx = interceptor.WithTarget(ctx, n.Name)

	var errs []error
	if err := inst.stack.Unwind(ctx); err != nil {
		errs = append(errs, err)
	}
	if n.Release != nil {
		if err := callRelease(ctx, n, inst.stack.Raw()); err != nil {
			errs = append(errs, err)
		}
	}

	err := errors.Join(errs...)
	if err != nil {
		releaseErrors.Inc()
		ctxlog.FromContext(ctx).Warn("Node release failed.", "error", err)
		return err
	}
	ctxlog.FromContext(ctx).Debug("Node released.")
	return nil
}

func callRelease(ctx context.Context, n *node.Node, value any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("release panicked: %v", r)
		}
	}()
	return n.Release(ctx, value)
}
