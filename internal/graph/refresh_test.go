package graph

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/specialistvlad/appgraph/internal/draw"
	"github.com/specialistvlad/appgraph/internal/inject"
	"github.com/specialistvlad/appgraph/internal/interceptor"
	"github.com/specialistvlad/appgraph/internal/node"
	"github.com/specialistvlad/appgraph/internal/nodeid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// serviceGraph is the canonical refresh scenario:
//
//	raw-env -> config -> pool -> repository -> service (root)
//	raw-env -> metrics (root)
type serviceGraph struct {
	*fixture
	rawEnv, config, pool, repository, service, metrics nodeid.ID
}

func newServiceGraph(t *testing.T, opts ...func(*draw.NodeSpec)) *serviceGraph {
	f := newFixture(t)
	sg := &serviceGraph{fixture: f}
	sg.rawEnv = f.add("raw-env", false)
	sg.config = f.add("config", false, node.On(sg.rawEnv))
	sg.pool = f.add("pool", false, node.On(sg.config))
	sg.repository = f.add("repository", false, node.On(sg.pool))
	spec := draw.NodeSpec{Name: "service", Root: true, Dependencies: []node.Dependency{node.On(sg.repository)}}
	for _, opt := range opts {
		opt(&spec)
	}
	sg.service = f.addSpec(spec)
	sg.metrics = f.add("metrics", true, node.On(sg.rawEnv))
	return sg
}

func (sg *serviceGraph) all() []nodeid.ID {
	return []nodeid.ID{sg.rawEnv, sg.config, sg.pool, sg.repository, sg.service, sg.metrics}
}

func TestRefreshPropagatesToDependents(t *testing.T) {
	ctx := context.Background()
	sg := newServiceGraph(t)
	g := sg.build()
	require.NoError(t, g.Init(ctx))
	sg.log.take()

	oldService := mustGet(t, g, sg.service)
	oldMetrics := mustGet(t, g, sg.metrics)
	oldRawEnv := mustGet(t, g, sg.rawEnv)
	metricsGen := g.Generation(sg.metrics)
	configGen := g.Generation(sg.config)

	require.NoError(t, g.Refresh(ctx, sg.config))

	want := []string{
		"init:config#2", "init:pool#2", "init:repository#2", "init:service#2",
		"release:service#1", "release:repository#1", "release:pool#1", "release:config#1",
	}
	if diff := cmp.Diff(want, sg.log.take()); diff != "" {
		t.Errorf("refresh events mismatch (-want +got):\n%s", diff)
	}

	assert.Same(t, oldMetrics, mustGet(t, g, sg.metrics), "sibling root must keep its identity")
	assert.Same(t, oldRawEnv, mustGet(t, g, sg.rawEnv), "dependencies outside the subset are reused")
	assert.Equal(t, metricsGen, g.Generation(sg.metrics))
	assert.Greater(t, g.Generation(sg.config), configGen)

	newService := mustGet(t, g, sg.service)
	assert.NotSame(t, oldService, newService)
	assert.Equal(t, 2, newService.gen)
	assert.Same(t, mustGet(t, g, sg.repository), newService.deps[0], "service must be built against the new repository")

	newConfig := mustGet(t, g, sg.config)
	assert.Same(t, oldRawEnv, newConfig.deps[0])

	for _, id := range sg.all() {
		assert.Equal(t, node.Initialized, g.State(id))
	}
	assert.Equal(t, StatusInitialized, g.Status())
}

func TestRefreshLeafOnlyTouchesLeaf(t *testing.T) {
	sg := newServiceGraph(t)
	g := sg.build()
	require.NoError(t, g.Init(context.Background()))
	sg.log.take()

	require.NoError(t, g.Refresh(context.Background(), sg.metrics))
	if diff := cmp.Diff([]string{"init:metrics#2", "release:metrics#1"}, sg.log.take()); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestRefreshSkipsDeadDependents(t *testing.T) {
	f := newFixture(t)
	a := f.add("a", false)
	f.add("dead", false, node.On(a))
	f.add("root", true, node.On(a))
	g := f.build()
	require.NoError(t, g.Init(context.Background()))
	f.log.take()

	require.NoError(t, g.Refresh(context.Background(), a))
	want := []string{"init:a#2", "init:root#2", "release:root#1", "release:a#1"}
	if diff := cmp.Diff(want, f.log.take()); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
	assert.Zero(t, f.gens["dead"])
}

func TestRefreshRejected(t *testing.T) {
	ctx := context.Background()

	t.Run("before init", func(t *testing.T) {
		sg := newServiceGraph(t)
		g := sg.build()
		err := g.Refresh(ctx, sg.config)
		var stateErr *InvalidStateError
		require.ErrorAs(t, err, &stateErr)
		assert.Equal(t, "NEW", stateErr.State)
		assert.Equal(t, nodeid.None, stateErr.Node)
	})

	t.Run("node never initialized", func(t *testing.T) {
		f := newFixture(t)
		f.add("root", true)
		dead := f.add("dead", false)
		g := f.build()
		require.NoError(t, g.Init(ctx))

		err := g.Refresh(ctx, dead)
		var stateErr *InvalidStateError
		require.ErrorAs(t, err, &stateErr)
		assert.Equal(t, dead, stateErr.Node)
		assert.Equal(t, "dead", stateErr.Name)
		assert.Equal(t, "NEW", stateErr.State)
	})

	t.Run("unknown node", func(t *testing.T) {
		sg := newServiceGraph(t)
		g := sg.build()
		require.NoError(t, g.Init(ctx))
		assert.Error(t, g.Refresh(ctx, nodeid.ID(42)))
	})

	t.Run("after release", func(t *testing.T) {
		sg := newServiceGraph(t)
		g := sg.build()
		require.NoError(t, g.Init(ctx))
		require.NoError(t, g.Release(ctx))

		var stateErr *InvalidStateError
		require.ErrorAs(t, g.Refresh(ctx, sg.config), &stateErr)
		assert.Equal(t, "RELEASED", stateErr.State)
	})
}

func TestRefreshRollback(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("pool unavailable")
	sg := newServiceGraph(t)
	sg.failInit["pool"] = failAt(2, boom)
	g := sg.build()
	require.NoError(t, g.Init(ctx))
	sg.log.take()

	before := make(map[nodeid.ID]*component)
	for _, id := range sg.all() {
		before[id] = mustGet(t, g, id)
	}
	rolledBack := testutil.ToFloat64(refreshes.WithLabelValues("rolled_back"))

	err := g.Refresh(ctx, sg.config)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	var initErr *InitializationError
	require.ErrorAs(t, err, &initErr)
	assert.Equal(t, sg.pool, initErr.Node)
	assert.NoError(t, initErr.Rollback)

	want := []string{"init:config#2", "fail:pool#2", "release:config#2"}
	if diff := cmp.Diff(want, sg.log.take()); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}

	for _, id := range sg.all() {
		assert.Same(t, before[id], mustGet(t, g, id), "node %s must keep its previous value", g.Draw().Name(id))
		assert.Equal(t, node.Initialized, g.State(id))
	}
	assert.Equal(t, StatusInitialized, g.Status())
	assert.Equal(t, rolledBack+1, testutil.ToFloat64(refreshes.WithLabelValues("rolled_back")))

	t.Run("graph stays usable", func(t *testing.T) {
		require.NoError(t, g.Refresh(ctx, sg.config))
		assert.Equal(t, 3, mustGet(t, g, sg.pool).gen)
		require.NoError(t, g.Release(ctx))
	})
}

func TestRefreshRollbackFailureMarksGraphFailed(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("repository unavailable")
	leak := errors.New("pool leaked")
	sg := newServiceGraph(t)
	sg.failInit["repository"] = failAt(2, boom)
	sg.failRelease["pool"] = failAt(2, leak)
	g := sg.build()
	require.NoError(t, g.Init(ctx))
	sg.log.take()
	oldConfig := mustGet(t, g, sg.config)
	poolHandle := inject.NewValueOf[*component](g, sg.pool)
	_, err := poolHandle.Get()
	require.NoError(t, err)
	poolGen := g.Generation(sg.pool)

	err = g.Refresh(ctx, sg.config)
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, err, leak)

	want := []string{"init:config#2", "init:pool#2", "fail:repository#2", "release:pool#2", "release:config#2"}
	if diff := cmp.Diff(want, sg.log.take()); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, StatusFailed, g.Status())
	assert.Equal(t, node.Failed, g.State(sg.pool))
	assert.Equal(t, node.Initialized, g.State(sg.config))
	assert.Same(t, oldConfig, mustGet(t, g, sg.config))

	_, err = g.Get(sg.pool)
	var stateErr *InvalidStateError
	require.ErrorAs(t, err, &stateErr)
	assert.Equal(t, "FAILED", stateErr.State)

	require.ErrorAs(t, g.Refresh(ctx, sg.metrics), &stateErr)
	assert.Equal(t, "FAILED", stateErr.State)
	require.ErrorAs(t, g.Init(ctx), &stateErr)

	t.Run("value handles observe the failure", func(t *testing.T) {
		_, err := poolHandle.Get()
		require.ErrorAs(t, err, &stateErr)
		assert.Equal(t, "pool", stateErr.Name)
		assert.NotEqual(t, poolGen, g.Generation(sg.pool))
	})

	t.Run("release still works", func(t *testing.T) {
		require.NoError(t, g.Release(ctx))
		want := []string{
			"release:metrics#1", "release:service#1", "release:repository#1",
			"release:pool#1", "release:config#1", "release:raw-env#1",
		}
		if diff := cmp.Diff(want, sg.log.take()); diff != "" {
			t.Errorf("events mismatch (-want +got):\n%s", diff)
		}
		assert.Equal(t, StatusReleased, g.Status())
		assert.Equal(t, node.Failed, g.State(sg.pool), "FAILED is terminal")
		assert.Equal(t, node.Released, g.State(sg.config))
	})
}

func TestRefreshInterceptorPanicRollsBack(t *testing.T) {
	ctx := context.Background()
	inits := 0
	panicking := interceptor.Func{OnInit: func(_ context.Context, value any) (any, error) {
		inits++
		if inits == 2 {
			panic("wrapper lost its handle")
		}
		return value, nil
	}}
	sg := newServiceGraph(t, func(spec *draw.NodeSpec) {
		spec.Interceptors = append(spec.Interceptors, panicking)
	})
	g := sg.build()
	require.NoError(t, g.Init(ctx))
	oldService := mustGet(t, g, sg.service)

	err := g.Refresh(ctx, sg.config)
	var stepErr *interceptor.StepError
	require.ErrorAs(t, err, &stepErr)
	assert.ErrorContains(t, err, "panicked: wrapper lost its handle")

	assert.Equal(t, StatusInitialized, g.Status())
	for _, id := range sg.all() {
		assert.Equal(t, node.Initialized, g.State(id), g.Draw().Name(id))
	}
	assert.Same(t, oldService, mustGet(t, g, sg.service))

	released := make(chan error, 1)
	go func() { released <- g.Release(ctx) }()
	select {
	case err := <-released:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Release blocked after a failed refresh")
	}
	assert.Equal(t, StatusReleased, g.Status())
}

func TestRefreshStatesFollowBuildOrder(t *testing.T) {
	ctx := context.Background()
	sg := newServiceGraph(t)
	var g *Graph
	var seen []node.State
	sg.failInit["repository"] = func(gen int) error {
		if gen == 2 {
			seen = []node.State{g.State(sg.config), g.State(sg.pool), g.State(sg.repository), g.State(sg.service)}
		}
		return nil
	}
	g = sg.build()
	require.NoError(t, g.Init(ctx))

	require.NoError(t, g.Refresh(ctx, sg.config))
	assert.Equal(t, []node.State{node.Initialized, node.Initialized, node.Initializing, node.Initialized}, seen,
		"only the member being rebuilt is INITIALIZING")
}

// listeningServer observes its handler through a ValueOf edge.
type listeningServer struct {
	graph    node.Graph
	handler  nodeid.ID
	log      *journal
	observed []any
}

func (s *listeningServer) GraphRefreshed(ctx context.Context) error {
	v, err := s.graph.Get(s.handler)
	if err != nil {
		return err
	}
	s.log.add("notified")
	s.observed = append(s.observed, v)
	return nil
}

func TestRefreshNotifiesValueOfDependents(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	handler := f.add("handler", false)
	var created int
	server := f.builder.MustAddNode(draw.NodeSpec{
		Name:         "server",
		Root:         true,
		Dependencies: []node.Dependency{node.OnValueOf(handler)},
		Factory: func(_ context.Context, in node.Inputs) (any, error) {
			created++
			return &listeningServer{graph: in.Graph(), handler: in.Dependency(0).ID, log: f.log}, nil
		},
	})
	g := f.build()
	require.NoError(t, g.Init(ctx))
	f.log.take()

	srv, err := g.Get(server)
	require.NoError(t, err)

	require.NoError(t, g.Refresh(ctx, handler))
	want := []string{"init:handler#2", "release:handler#1", "notified"}
	if diff := cmp.Diff(want, f.log.take()); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 1, created, "ValueOf dependents are not re-created")

	ls := srv.(*listeningServer)
	require.Len(t, ls.observed, 1)
	assert.Same(t, mustGet(t, g, handler), ls.observed[0])
	assert.Equal(t, 2, ls.observed[0].(*component).gen)
}

func TestRefreshDoesNotReachAllSnapshots(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	first := f.add("probe[0]", false)
	second := f.add("probe[1]", false)
	aggregate := f.add("aggregate", true, node.OnAll(first, second)...)
	g := f.build()
	require.NoError(t, g.Init(ctx))
	oldFirst := mustGet(t, g, first)
	f.log.take()

	require.NoError(t, g.Refresh(ctx, first))
	if diff := cmp.Diff([]string{"init:probe[0]#2", "release:probe[0]#1"}, f.log.take()); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}

	agg := mustGet(t, g, aggregate)
	assert.Equal(t, 1, agg.gen)
	assert.Same(t, oldFirst, agg.deps[0], "snapshot keeps the value captured at construction")
	assert.NotSame(t, mustGet(t, g, first), agg.deps[0])
}

func TestConcurrentReadsDuringRefresh(t *testing.T) {
	type wrapped struct{ inner any }
	ctx := context.Background()
	sg := newServiceGraph(t, func(spec *draw.NodeSpec) {
		spec.Interceptors = []interceptor.Interceptor{interceptor.Func{
			OnInit: func(_ context.Context, value any) (any, error) { return &wrapped{inner: value}, nil },
		}}
	})
	g := sg.build()
	require.NoError(t, g.Init(ctx))

	var stop atomic.Bool
	var reads, bad atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for !stop.Load() {
				v, err := g.Get(sg.service)
				w, ok := v.(*wrapped)
				if err != nil || !ok || w.inner == nil {
					bad.Add(1)
				}
				reads.Add(1)
			}
		}()
	}

	for i := 0; i < 50; i++ {
		require.NoError(t, g.Refresh(ctx, sg.config))
	}
	stop.Store(true)
	wg.Wait()

	assert.Zero(t, bad.Load(), "readers must only see fully wrapped values")
	assert.Positive(t, reads.Load())

	v, err := g.Get(sg.service)
	require.NoError(t, err)
	assert.Equal(t, 51, v.(*wrapped).inner.(*component).gen)
}

func TestRefreshMetrics(t *testing.T) {
	ctx := context.Background()
	sg := newServiceGraph(t)
	g := sg.build()

	inits := testutil.ToFloat64(nodeInits.WithLabelValues("success"))
	require.NoError(t, g.Init(ctx))
	assert.Equal(t, inits+6, testutil.ToFloat64(nodeInits.WithLabelValues("success")))

	succeeded := testutil.ToFloat64(refreshes.WithLabelValues("success"))
	rejected := testutil.ToFloat64(refreshes.WithLabelValues("rejected"))
	require.NoError(t, g.Refresh(ctx, sg.pool))
	assert.Error(t, g.Refresh(ctx, nodeid.ID(99)))
	assert.Equal(t, succeeded+1, testutil.ToFloat64(refreshes.WithLabelValues("success")))
	assert.Equal(t, rejected+1, testutil.ToFloat64(refreshes.WithLabelValues("rejected")))

	sg.failRelease["raw-env"] = failAt(1, errors.New("close failed"))
	released := testutil.ToFloat64(releaseErrors)
	assert.Error(t, g.Release(ctx))
	assert.Equal(t, released+1, testutil.ToFloat64(releaseErrors))
}
