package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/appgraph/internal/ctxlog"
	"github.com/specialistvlad/appgraph/internal/draw"
	"github.com/specialistvlad/appgraph/internal/nodeid"
)

// ErrMissingNode is returned by Require when no node has the given name.
var ErrMissingNode = errors.New("required node is not declared")

// Module is the interface all modules must implement to be registered.
type Module interface {
	Register(b *draw.Builder) error
}

// ModuleFunc adapts a plain function to the Module interface.
type ModuleFunc func(b *draw.Builder) error

func (f ModuleFunc) Register(b *draw.Builder) error {
	return f(b)
}

// Supplier produces the blueprint a graph is created from.
type Supplier func(ctx context.Context) (*draw.Draw, error)

// Apply registers modules on b, in order. The first failure stops the walk.
func Apply(ctx context.Context, b *draw.Builder, modules ...Module) error {
	logger := ctxlog.FromContext(ctx)
	for _, m := range modules {
		name := fmt.Sprintf("%T", m)
		before := b.Len()
		if err := m.Register(b); err != nil {
			return fmt.Errorf("failed to register module %s: %w", name, err)
		}
		logger.Debug("Module registered.", "module", name, "nodes", b.Len()-before)
	}
	logger.Debug("All modules registered.", "modules", len(modules), "nodes", b.Len())
	return nil
}

// Compose returns a Supplier that registers modules on a fresh builder and
// builds it.
func Compose(modules ...Module) Supplier {
	return func(ctx context.Context) (*draw.Draw, error) {
		b := draw.NewBuilder()
		if err := Apply(ctx, b, modules...); err != nil {
			return nil, err
		}
		return b.Build(ctx)
	}
}

// Require returns the ID of a node an earlier module declared.
func Require(b *draw.Builder, name string) (nodeid.ID, error) {
	id, ok := b.Lookup(name)
	if !ok {
		return nodeid.None, fmt.Errorf("%w: %q", ErrMissingNode, name)
	}
	return id, nil
}
