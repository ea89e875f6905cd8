package draw

import (
	"container/heap"

	"github.com/specialistvlad/appgraph/internal/node"
	"github.com/specialistvlad/appgraph/internal/nodeid"
)

// idHeap is a min-heap of node IDs; it makes Kahn's algorithm pick ready
// nodes in declaration order.
type idHeap []nodeid.ID

func (h idHeap) Len() int           { return len(h) }
func (h idHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h idHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *idHeap) Push(x any)        { *h = append(*h, x.(nodeid.ID)) }
func (h *idHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// topologicalOrder assumes the relation is acyclic.
func topologicalOrder(nodes []*node.Node) []nodeid.ID {
	pending := make([]int, len(nodes))
	dependents := make([][]nodeid.ID, len(nodes))
	for _, n := range nodes {
		seen := make(map[nodeid.ID]bool)
		for _, dep := range n.Edges() {
			if seen[dep.ID] {
				continue
			}
			seen[dep.ID] = true
			pending[n.ID]++
			dependents[dep.ID] = append(dependents[dep.ID], n.ID)
		}
	}

	ready := &idHeap{}
	for _, n := range nodes {
		if pending[n.ID] == 0 {
			heap.Push(ready, n.ID)
		}
	}

	order := make([]nodeid.ID, 0, len(nodes))
	for ready.Len() > 0 {
		id := heap.Pop(ready).(nodeid.ID)
		order = append(order, id)
		for _, dependent := range dependents[id] {
			pending[dependent]--
			if pending[dependent] == 0 {
				heap.Push(ready, dependent)
			}
		}
	}
	return order
}

// reverseEdges indexes, for every node, who depends on it and how.
func reverseEdges(nodes []*node.Node) [][]node.Dependency {
	rev := make([][]node.Dependency, len(nodes))
	for _, n := range nodes {
		for _, dep := range n.Edges() {
			rev[dep.ID] = append(rev[dep.ID], node.Dependency{ID: n.ID, Kind: dep.Kind})
		}
	}
	return rev
}

// markLive flags the roots and everything they transitively need, over
// every kind of edge.
func markLive(nodes []*node.Node) []bool {
	live := make([]bool, len(nodes))
	var visit func(id nodeid.ID)
	visit = func(id nodeid.ID) {
		if live[id] {
			return
		}
		live[id] = true
		for _, dep := range nodes[id].Edges() {
			visit(dep.ID)
		}
	}
	for _, n := range nodes {
		if n.Root {
			visit(n.ID)
		}
	}
	return live
}
