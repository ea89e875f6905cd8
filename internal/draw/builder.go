package draw

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/specialistvlad/appgraph/internal/ctxlog"
	"github.com/specialistvlad/appgraph/internal/node"
	"github.com/specialistvlad/appgraph/internal/nodeid"
)

// ErrSealed is returned when a builder is used after Build succeeded.
var ErrSealed = errors.New("builder already built")

// Builder collects node declarations. All operations are concurrency-safe.
type Builder struct {
	mutex  sync.Mutex
	nodes  []*node.Node
	byName map[string]nodeid.ID
	sealed bool
}

// NewBuilder creates and returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		byName: make(map[string]nodeid.ID),
	}
}

// Next returns the ID the next successful AddNode call will assign.
func (b *Builder) Next() nodeid.ID {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return nodeid.ID(len(b.nodes))
}

// Len returns the number of declared nodes.
func (b *Builder) Len() int {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return len(b.nodes)
}

// AddNode declares a node and returns its ID. Dependencies may reference IDs
// that are declared later; they are validated by Build.
func (b *Builder) AddNode(spec NodeSpec) (nodeid.ID, error) {
	if err := nodeid.ValidateName(spec.Name); err != nil {
		return nodeid.None, err
	}
	if spec.Factory == nil {
		return nodeid.None, fmt.Errorf("node %q has no factory", spec.Name)
	}

	b.mutex.Lock()
	defer b.mutex.Unlock()

	if b.sealed {
		return nodeid.None, ErrSealed
	}
	if existing, ok := b.byName[spec.Name]; ok {
		return nodeid.None, fmt.Errorf("duplicate node name %q (already declared as %s)", spec.Name, existing)
	}

	id := nodeid.ID(len(b.nodes))
	b.nodes = append(b.nodes, &node.Node{
		ID:               id,
		Name:             spec.Name,
		Dependencies:     slices.Clone(spec.Dependencies),
		Factory:          spec.Factory,
		Release:          spec.Release,
		Interceptors:     slices.Clone(spec.Interceptors),
		InterceptorNodes: slices.Clone(spec.InterceptorNodes),
		Root:             spec.Root,
		Tags:             slices.Clone(spec.Tags),
	})
	b.byName[spec.Name] = id
	return id, nil
}

// MustAddNode is AddNode for composition roots, where a declaration error is
// a programmer error.
func (b *Builder) MustAddNode(spec NodeSpec) nodeid.ID {
	id, err := b.AddNode(spec)
	if err != nil {
		panic(err)
	}
	return id
}

// Lookup returns the ID of a declared node by name.
func (b *Builder) Lookup(name string) (nodeid.ID, bool) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	id, ok := b.byName[name]
	return id, ok
}

// Tagged returns the IDs of every declared node carrying tag, in declaration
// order.
func (b *Builder) Tagged(tag string) []nodeid.ID {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return tagged(b.nodes, tag)
}

// Build validates the declarations and freezes them into a Draw.
func (b *Builder) Build(ctx context.Context) (*Draw, error) {
	logger := ctxlog.FromContext(ctx)
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if b.sealed {
		return nil, ErrSealed
	}
	logger.Debug("Build: Starting blueprint construction.", "node_count", len(b.nodes))

	if err := checkDependencies(b.nodes); err != nil {
		return nil, err
	}
	logger.Debug("Build: Dependency references validated.")

	if err := detectCycles(b.nodes); err != nil {
		return nil, err
	}
	logger.Debug("Build: Cycle detection passed.")

	d := &Draw{
		nodes:  b.nodes,
		byName: b.byName,
	}
	d.order = topologicalOrder(b.nodes)
	d.position = make([]int, len(d.order))
	for i, id := range d.order {
		d.position[id] = i
	}
	d.dependents = reverseEdges(b.nodes)
	d.live = markLive(b.nodes)

	b.sealed = true
	logger.Debug("Build: Blueprint construction successful.", "node_count", len(d.nodes), "live_count", d.LiveCount())
	return d, nil
}

func checkDependencies(nodes []*node.Node) error {
	for _, n := range nodes {
		for _, dep := range n.Edges() {
			if dep.ID < 0 || int(dep.ID) >= len(nodes) {
				return &UnknownDependencyError{Node: n.ID, Name: n.Name, Dependency: dep.ID}
			}
		}
	}
	return nil
}

func tagged(nodes []*node.Node, tag string) []nodeid.ID {
	var ids []nodeid.ID
	for _, n := range nodes {
		if n.HasTag(tag) {
			ids = append(ids, n.ID)
		}
	}
	return ids
}
