// Package env exposes the process environment as a graph node, so that
// everything built from it can be refreshed when the environment is re-read.
package env

import (
	"context"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/specialistvlad/appgraph/internal/draw"
	"github.com/specialistvlad/appgraph/internal/node"
)

// NodeName is the name of the RawEnv node.
const NodeName = "env.raw"

// RawEnv is an immutable snapshot of environment variables.
type RawEnv struct {
	vars map[string]string
}

// Snapshot parses KEY=VALUE pairs as returned by os.Environ. Entries without
// '=' are skipped; a later duplicate wins.
func Snapshot(environ []string) *RawEnv {
	vars := make(map[string]string, len(environ))
	for _, e := range environ {
		key, value, ok := strings.Cut(e, "=")
		if !ok || key == "" {
			continue
		}
		vars[key] = value
	}
	return &RawEnv{vars: vars}
}

// Lookup returns the value of key and whether it was set.
func (e *RawEnv) Lookup(key string) (string, bool) {
	v, ok := e.vars[key]
	return v, ok
}

// Get returns the value of key, or "" if unset.
func (e *RawEnv) Get(key string) string {
	return e.vars[key]
}

// All returns a copy of every variable.
func (e *RawEnv) All() map[string]string {
	return maps.Clone(e.vars)
}

// Keys returns the variable names, sorted.
func (e *RawEnv) Keys() []string {
	return slices.Sorted(maps.Keys(e.vars))
}

func (e *RawEnv) Len() int {
	return len(e.vars)
}

// Module implements the registry.Module interface for this package.
type Module struct {
	// Environ supplies the variables. Defaults to os.Environ.
	Environ func() []string
}

// Register declares the RawEnv node.
func (m *Module) Register(b *draw.Builder) error {
	environ := m.Environ
	if environ == nil {
		environ = os.Environ
	}
	_, err := b.AddNode(draw.NodeSpec{
		Name: NodeName,
		Factory: func(context.Context, node.Inputs) (any, error) {
			return Snapshot(environ()), nil
		},
	})
	return err
}
