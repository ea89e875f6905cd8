package inject

import (
	"fmt"

	"github.com/specialistvlad/appgraph/internal/node"
	"github.com/specialistvlad/appgraph/internal/nodeid"
)

// TypeError reports a dependency value that does not have the requested type.
type TypeError struct {
	Node nodeid.ID
	Want string
	Got  any
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("node %s holds %T, want %s", e.Node, e.Got, e.Want)
}

// KindError reports a dependency consumed through the wrong helper.
type KindError struct {
	Index int
	Want  node.Kind
	Got   node.Kind
}

func (e *KindError) Error() string {
	return fmt.Sprintf("dependency %d is a %s edge, want %s", e.Index, e.Got, e.Want)
}

func typeName[T any]() string {
	var zero *T
	return fmt.Sprintf("%T", zero)[1:]
}
