package graph

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/specialistvlad/appgraph/internal/draw"
	"github.com/specialistvlad/appgraph/internal/interceptor"
	"github.com/specialistvlad/appgraph/internal/node"
	"github.com/specialistvlad/appgraph/internal/nodeid"
	"github.com/stretchr/testify/require"
)

// journal records lifecycle events in the order they happen.
type journal struct {
	mu      sync.Mutex
	entries []string
}

func (j *journal) add(format string, args ...any) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, fmt.Sprintf(format, args...))
}

// take returns the recorded entries and clears the journal.
func (j *journal) take() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	entries := j.entries
	j.entries = nil
	return entries
}

// component is the value every fixture node produces. gen counts how many
// times the node's factory ran.
type component struct {
	name string
	gen  int
	deps []any
}

type fixture struct {
	t           *testing.T
	builder     *draw.Builder
	log         *journal
	gens        map[string]int
	failInit    map[string]func(gen int) error
	failRelease map[string]func(gen int) error
}

func newFixture(t *testing.T) *fixture {
	return &fixture{
		t:           t,
		builder:     draw.NewBuilder(),
		log:         &journal{},
		gens:        make(map[string]int),
		failInit:    make(map[string]func(int) error),
		failRelease: make(map[string]func(int) error),
	}
}

func (f *fixture) add(name string, root bool, deps ...node.Dependency) nodeid.ID {
	return f.addSpec(draw.NodeSpec{Name: name, Root: root, Dependencies: deps})
}

// addSpec fills in the recording factory and release function.
func (f *fixture) addSpec(spec draw.NodeSpec) nodeid.ID {
	f.t.Helper()
	spec.Factory = f.factory(spec.Name)
	spec.Release = f.release(spec.Name)
	id, err := f.builder.AddNode(spec)
	require.NoError(f.t, err)
	return id
}

func (f *fixture) factory(name string) node.Factory {
	return func(ctx context.Context, in node.Inputs) (any, error) {
		f.gens[name]++
		gen := f.gens[name]
		if fail := f.failInit[name]; fail != nil {
			if err := fail(gen); err != nil {
				f.log.add("fail:%s#%d", name, gen)
				return nil, err
			}
		}
		c := &component{name: name, gen: gen}
		for i := 0; i < in.Len(); i++ {
			c.deps = append(c.deps, in.Value(i))
		}
		f.log.add("init:%s#%d", name, gen)
		return c, nil
	}
}

func (f *fixture) release(name string) node.ReleaseFunc {
	return func(ctx context.Context, value any) error {
		c := value.(*component)
		f.log.add("release:%s#%d", c.name, c.gen)
		if fail := f.failRelease[name]; fail != nil {
			return fail(c.gen)
		}
		return nil
	}
}

func (f *fixture) build() *Graph {
	f.t.Helper()
	d, err := f.builder.Build(context.Background())
	require.NoError(f.t, err)
	return New(d)
}

// failAt fails the gen-th call only.
func failAt(gen int, err error) func(int) error {
	return func(g int) error {
		if g == gen {
			return err
		}
		return nil
	}
}

func mustGet(t *testing.T, g *Graph, id nodeid.ID) *component {
	t.Helper()
	v, err := g.Get(id)
	require.NoError(t, err)
	c, ok := v.(*component)
	require.True(t, ok, "value of %s is %T", id, v)
	return c
}

// recordingInterceptor journals init and release and passes the value through.
func recordingInterceptor(log *journal, name string) interceptor.Interceptor {
	return interceptor.Func{
		OnInit: func(ctx context.Context, value any) (any, error) {
			log.add("wrap:%s:%s", name, interceptor.Target(ctx))
			return value, nil
		},
		OnRelease: func(ctx context.Context, wrapped any) error {
			log.add("unwrap:%s:%s", name, interceptor.Target(ctx))
			return nil
		},
	}
}
