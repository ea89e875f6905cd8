package draw

import (
	"github.com/specialistvlad/appgraph/internal/node"
	"github.com/specialistvlad/appgraph/internal/nodeid"
)

// detectCycles runs a depth-first search over the dependency relation, in
// declaration order, and reports the first cycle it closes.
func detectCycles(nodes []*node.Node) error {
	// permanent: fully visited and known not to be on a cycle.
	// onStack: in the current recursion stack; stack holds them in order.
	permanent := make([]bool, len(nodes))
	onStack := make([]bool, len(nodes))
	var stack []nodeid.ID

	var visit func(n *node.Node) *CycleError
	visit = func(n *node.Node) *CycleError {
		if permanent[n.ID] {
			return nil
		}
		if onStack[n.ID] {
			return cycleFrom(nodes, stack, n.ID)
		}

		onStack[n.ID] = true
		stack = append(stack, n.ID)

		for _, dep := range n.Edges() {
			if err := visit(nodes[dep.ID]); err != nil {
				return err
			}
		}

		stack = stack[:len(stack)-1]
		onStack[n.ID] = false
		permanent[n.ID] = true
		return nil
	}

	for _, n := range nodes {
		if err := visit(n); err != nil {
			return err
		}
	}
	return nil
}

// cycleFrom cuts the recursion stack at the first occurrence of closing and
// appends closing again.
func cycleFrom(nodes []*node.Node, stack []nodeid.ID, closing nodeid.ID) *CycleError {
	start := 0
	for i, id := range stack {
		if id == closing {
			start = i
			break
		}
	}

	cycle := make([]nodeid.ID, 0, len(stack)-start+1)
	cycle = append(cycle, stack[start:]...)
	cycle = append(cycle, closing)

	names := make([]string, len(cycle))
	for i, id := range cycle {
		names[i] = nodes[id].Name
	}
	return &CycleError{Cycle: cycle, Names: names}
}
