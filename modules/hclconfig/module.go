package hclconfig

import (
	"context"
	"time"

	"github.com/specialistvlad/appgraph/internal/draw"
	"github.com/specialistvlad/appgraph/internal/inject"
	"github.com/specialistvlad/appgraph/internal/node"
	"github.com/specialistvlad/appgraph/internal/registry"
	"github.com/specialistvlad/appgraph/modules/env"
)

const (
	// ConfigNodeName is the name of the Config node.
	ConfigNodeName = "config.app"
	// WatcherNodeName is the name of the root Watcher node.
	WatcherNodeName = "config.watcher"

	// DefaultDebounce collapses the burst of events an editor save produces.
	DefaultDebounce = 200 * time.Millisecond
)

// Module implements the registry.Module interface for this package. It
// requires the env module to be registered first.
type Module struct {
	// Path is the HCL file to decode.
	Path string
	// Watch declares a root watcher that refreshes the config when Path
	// changes on disk.
	Watch bool
	// Debounce overrides DefaultDebounce.
	Debounce time.Duration
}

// Register declares the Config node and, if requested, the Watcher.
func (m *Module) Register(b *draw.Builder) error {
	envID, err := registry.Require(b, env.NodeName)
	if err != nil {
		return err
	}

	path := m.Path
	configID, err := b.AddNode(draw.NodeSpec{
		Name:         ConfigNodeName,
		Dependencies: []node.Dependency{node.On(envID)},
		Factory: func(ctx context.Context, in node.Inputs) (any, error) {
			raw, err := inject.Dep[*env.RawEnv](in, 0)
			if err != nil {
				return nil, err
			}
			return Decode(ctx, path, raw)
		},
	})
	if err != nil {
		return err
	}

	if !m.Watch {
		return nil
	}
	debounce := m.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	_, err = b.AddNode(draw.NodeSpec{
		Name:         WatcherNodeName,
		Root:         true,
		Dependencies: []node.Dependency{node.OnValueOf(configID)},
		Factory: func(ctx context.Context, in node.Inputs) (any, error) {
			config, err := inject.ValueOfDep[*Config](in, 0)
			if err != nil {
				return nil, err
			}
			return NewWatcher(ctx, path, debounce, config, in.Graph())
		},
		Release: func(ctx context.Context, value any) error {
			return value.(*Watcher).Close()
		},
	})
	return err
}
