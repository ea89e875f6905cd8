package env

import (
	"context"
	"testing"

	"github.com/specialistvlad/appgraph/internal/draw"
	"github.com/specialistvlad/appgraph/internal/graph"
	"github.com/specialistvlad/appgraph/internal/node"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshot(t *testing.T) {
	e := Snapshot([]string{"HOME=/root", "EMPTY=", "broken", "=nokey", "URL=a=b", "HOME=/home"})

	assert.Equal(t, 3, e.Len())
	assert.Equal(t, "/home", e.Get("HOME"))
	assert.Equal(t, "a=b", e.Get("URL"))

	v, ok := e.Lookup("EMPTY")
	assert.True(t, ok)
	assert.Empty(t, v)
	_, ok = e.Lookup("broken")
	assert.False(t, ok)

	assert.Equal(t, []string{"EMPTY", "HOME", "URL"}, e.Keys())

	all := e.All()
	all["HOME"] = "changed"
	assert.Equal(t, "/home", e.Get("HOME"))
}

func TestModuleRefreshRereadsEnvironment(t *testing.T) {
	ctx := context.Background()
	environ := []string{"MODE=blue"}
	b := draw.NewBuilder()
	require.NoError(t, (&Module{Environ: func() []string { return environ }}).Register(b))
	id, ok := b.Lookup(NodeName)
	require.True(t, ok)

	var seen []string
	b.MustAddNode(draw.NodeSpec{
		Name:         "consumer",
		Root:         true,
		Dependencies: []node.Dependency{node.On(id)},
		Factory: func(_ context.Context, in node.Inputs) (any, error) {
			seen = append(seen, in.Value(0).(*RawEnv).Get("MODE"))
			return struct{}{}, nil
		},
	})
	d, err := b.Build(ctx)
	require.NoError(t, err)
	g := graph.New(d)
	require.NoError(t, g.Init(ctx))

	environ = []string{"MODE=green"}
	require.NoError(t, g.Refresh(ctx, id))
	assert.Equal(t, []string{"blue", "green"}, seen)
}
