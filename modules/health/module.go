package health

import (
	"context"
	"time"

	"github.com/specialistvlad/appgraph/internal/draw"
	"github.com/specialistvlad/appgraph/internal/inject"
	"github.com/specialistvlad/appgraph/internal/node"
	"github.com/specialistvlad/appgraph/internal/registry"
	"github.com/specialistvlad/appgraph/modules/hclconfig"
)

const (
	HandlerNodeName = "health.handler"
	ServerNodeName  = "health.server"
)

// Module implements the registry.Module interface. It collects the probes
// declared so far, so it must be registered after every module that
// contributes one.
type Module struct {
	// Addr is the listen address. An empty Addr disables the server, and
	// with it the handler.
	Addr string
	// ProbeTimeout overrides DefaultProbeTimeout.
	ProbeTimeout time.Duration
}

// Register declares the Handler and, if enabled, the root Server.
func (m *Module) Register(b *draw.Builder) error {
	configID, err := registry.Require(b, hclconfig.ConfigNodeName)
	if err != nil {
		return err
	}

	timeout := m.ProbeTimeout
	deps := append([]node.Dependency{node.On(configID)}, node.OnAll(b.Tagged(ProbeTag)...)...)
	handlerID, err := b.AddNode(draw.NodeSpec{
		Name:         HandlerNodeName,
		Dependencies: deps,
		Factory: func(_ context.Context, in node.Inputs) (any, error) {
			cfg, err := inject.Dep[*hclconfig.Config](in, 0)
			if err != nil {
				return nil, err
			}
			probes, err := inject.AllDeps[Probe](in)
			if err != nil {
				return nil, err
			}
			return NewHandler(cfg.Name, probes, timeout), nil
		},
	})
	if err != nil {
		return err
	}

	if m.Addr == "" {
		return nil
	}
	addr := m.Addr
	_, err = b.AddNode(draw.NodeSpec{
		Name:         ServerNodeName,
		Root:         true,
		Dependencies: []node.Dependency{node.OnValueOf(handlerID)},
		Factory: func(ctx context.Context, in node.Inputs) (any, error) {
			handler, err := inject.ValueOfDep[*Handler](in, 0)
			if err != nil {
				return nil, err
			}
			return NewServer(ctx, addr, handler)
		},
		Release: func(ctx context.Context, value any) error {
			return value.(*Server).Close(ctx)
		},
	})
	return err
}
