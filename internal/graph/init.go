package graph

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/specialistvlad/appgraph/internal/ctxlog"
	"github.com/specialistvlad/appgraph/internal/interceptor"
	"github.com/specialistvlad/appgraph/internal/node"
	"github.com/specialistvlad/appgraph/internal/nodeid"
)

// resolver returns the value a dependency should be built against.
type resolver func(id nodeid.ID) (any, bool)

// Init instantiates every live node in topological order. On failure every
// node initialized so far is released in reverse order and the graph can
// not be initialized again.
func (g *Graph) Init(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.Status() != StatusNew {
		return g.graphStateError("init")
	}

	ctx = g.withLogger(ctx)
	logger := ctxlog.FromContext(ctx)
	start := time.Now()
	live := g.draw.LiveOrder()
	logger.Info("Initializing graph.", "nodes", g.draw.Len(), "live", len(live))

	initialized := make([]nodeid.ID, 0, len(live))
	for _, id := range live {
		s := g.slots[id.Index()]
		s.setState(node.Initializing)

		inst, err := g.instantiate(ctx, s, g.published)
		if err != nil {
			s.setState(node.New)
			rollback := g.releaseIDs(ctx, initialized)
			g.status.Store(int32(StatusReleased))

			initErr := &InitializationError{Node: id, Name: s.node.Name, Cause: err, Rollback: releaseErrorOrNil(rollback)}
			logger.Error("Graph initialization failed.", "node", s.node.Name, "error", initErr)
			return initErr
		}

		s.publish(inst)
		s.setState(node.Initialized)
		initialized = append(initialized, id)
	}

	g.status.Store(int32(StatusInitialized))
	logger.Info("Graph initialized.", "nodes", len(initialized), "elapsed", time.Since(start))
	return nil
}

// published resolves a dependency to its currently published value.
func (g *Graph) published(id nodeid.ID) (any, bool) {
	inst := g.slots[id.Index()].current.Load()
	if inst == nil {
		return nil, false
	}
	return inst.value, true
}

// instantiate runs the factory of s and wraps its output. The result is not
// published. If an interceptor fails, the raw value is released before the
// error is returned.
func (g *Graph) instantiate(ctx context.Context, s *slot, resolve resolver) (*instance, error) {
	n := s.node
	ctx = ctxlog.WithScope(ctx, "node", n.Name, "node_id", n.ID.String())
	ctx = interceptor.WithTarget(ctx, n.Name)
	logger := ctxlog.FromContext(ctx)

	values := make([]any, len(n.Dependencies))
	for i, dep := range n.Dependencies {
		v, ok := resolve(dep.ID)
		if !ok {
			return nil, fmt.Errorf("dependency %q is not initialized", g.draw.Name(dep.ID))
		}
		values[i] = v
	}

	chain := make(interceptor.Chain, 0, len(n.Interceptors)+len(n.InterceptorNodes))
	chain = append(chain, n.Interceptors...)
	for _, icID := range n.InterceptorNodes {
		v, ok := resolve(icID)
		if !ok {
			return nil, fmt.Errorf("interceptor node %q is not initialized", g.draw.Name(icID))
		}
		ic, ok := v.(interceptor.Interceptor)
		if !ok {
			return nil, fmt.Errorf("interceptor node %q produced %T, which is not an interceptor", g.draw.Name(icID), v)
		}
		chain = append(chain, ic)
	}

	start := time.Now()
	defer func() { nodeInitDuration.Observe(time.Since(start).Seconds()) }()

	raw, err := callFactory(ctx, n, &inputs{node: n, values: values, graph: g})
	if err != nil {
		nodeInits.WithLabelValues("error").Inc()
		return nil, err
	}

	stack, err := chain.Apply(ctx, raw)
	if err != nil {
		nodeInits.WithLabelValues("error").Inc()
		if n.Release != nil {
			if relErr := callRelease(ctx, n, raw); relErr != nil {
				releaseErrors.Inc()
				return nil, errors.Join(err, relErr)
			}
		}
		return nil, err
	}

	nodeInits.WithLabelValues("success").Inc()
	logger.Debug("Node instantiated.", "interceptors", stack.Depth())
	return &instance{stack: stack, value: stack.Value()}, nil
}

func callFactory(ctx context.Context, n *node.Node, in node.Inputs) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("factory panicked: %v", r)
		}
	}()
	return n.Factory(ctx, in)
}

func withGraphLogger(ctx context.Context, graphID string) context.Context {
	return ctxlog.WithScope(ctxlog.Unscoped(ctx), "graph_id", graphID)
}
