package inject

import (
	"github.com/specialistvlad/appgraph/internal/node"
)

// Dep returns the i-th dependency value as a T.
func Dep[T any](in node.Inputs, i int) (T, error) {
	typed, ok := in.Value(i).(T)
	if !ok {
		var zero T
		return zero, &TypeError{Node: in.Dependency(i).ID, Want: typeName[T](), Got: in.Value(i)}
	}
	return typed, nil
}
