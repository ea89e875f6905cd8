package draw

import (
	"fmt"
	"strings"

	"github.com/specialistvlad/appgraph/internal/nodeid"
)

// UnknownDependencyError reports a dependency on an ID that was never declared.
type UnknownDependencyError struct {
	Node       nodeid.ID
	Name       string
	Dependency nodeid.ID
}

func (e *UnknownDependencyError) Error() string {
	return fmt.Sprintf("node %q (%s) depends on unknown node %s", e.Name, e.Node, e.Dependency)
}

// CycleError reports a dependency cycle. Cycle starts and ends with the same
// node, and each element depends on the next one.
type CycleError struct {
	Cycle []nodeid.ID
	Names []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle detected: %s", strings.Join(e.Names, " -> "))
}
