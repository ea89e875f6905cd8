package draw

import (
	"slices"

	"github.com/specialistvlad/appgraph/internal/node"
	"github.com/specialistvlad/appgraph/internal/nodeid"
)

// Len returns the number of declared nodes.
func (d *Draw) Len() int {
	return len(d.nodes)
}

// Node returns the declaration of id. The result must not be modified.
func (d *Draw) Node(id nodeid.ID) (*node.Node, bool) {
	if id < 0 || int(id) >= len(d.nodes) {
		return nil, false
	}
	return d.nodes[id], true
}

// Nodes returns every declaration in declaration order.
func (d *Draw) Nodes() []*node.Node {
	return slices.Clone(d.nodes)
}

// Lookup finds a node by name.
func (d *Draw) Lookup(name string) (nodeid.ID, bool) {
	id, ok := d.byName[name]
	return id, ok
}

// Name returns the name of id, or its ID string when unknown.
func (d *Draw) Name(id nodeid.ID) string {
	if n, ok := d.Node(id); ok {
		return n.Name
	}
	return id.String()
}

// Order returns the topological order over every declared node.
func (d *Draw) Order() []nodeid.ID {
	return slices.Clone(d.order)
}

// Position returns the index of id in Order.
func (d *Draw) Position(id nodeid.ID) int {
	return d.position[id]
}

// Dependents returns the nodes that declare an edge to id, with the edge kind.
func (d *Draw) Dependents(id nodeid.ID) []node.Dependency {
	return slices.Clone(d.dependents[id])
}

// Live reports whether id is a root or needed by one.
func (d *Draw) Live(id nodeid.ID) bool {
	return d.live[id]
}

// LiveCount returns the number of live nodes.
func (d *Draw) LiveCount() int {
	count := 0
	for _, live := range d.live {
		if live {
			count++
		}
	}
	return count
}

// LiveOrder returns the live nodes in topological order.
func (d *Draw) LiveOrder() []nodeid.ID {
	order := make([]nodeid.ID, 0, len(d.order))
	for _, id := range d.order {
		if d.live[id] {
			order = append(order, id)
		}
	}
	return order
}

// Roots returns the root nodes in declaration order.
func (d *Draw) Roots() []nodeid.ID {
	var roots []nodeid.ID
	for _, n := range d.nodes {
		if n.Root {
			roots = append(roots, n.ID)
		}
	}
	return roots
}

// Tagged returns every node carrying tag, in declaration order.
func (d *Draw) Tagged(tag string) []nodeid.ID {
	return tagged(d.nodes, tag)
}

// Cone returns id and every node that transitively depends on it through
// edges a refresh travels across, in topological order.
func (d *Draw) Cone(id nodeid.ID) []nodeid.ID {
	visited := make(map[nodeid.ID]bool)
	var traverse func(id nodeid.ID)
	traverse = func(id nodeid.ID) {
		if visited[id] {
			return
		}
		visited[id] = true
		for _, dependent := range d.dependents[id] {
			if dependent.Kind.Propagates() {
				traverse(dependent.ID)
			}
		}
	}
	traverse(id)

	cone := make([]nodeid.ID, 0, len(visited))
	for member := range visited {
		cone = append(cone, member)
	}
	slices.SortFunc(cone, func(a, b nodeid.ID) int {
		return d.position[a] - d.position[b]
	})
	return cone
}
