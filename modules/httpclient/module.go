// Package httpclient provides a shared outbound *http.Client built from the
// application config, and a health probe for the configured upstreams.
package httpclient

import (
	"context"
	"net/http"
	"time"

	"github.com/specialistvlad/appgraph/internal/draw"
	"github.com/specialistvlad/appgraph/internal/inject"
	"github.com/specialistvlad/appgraph/internal/node"
	"github.com/specialistvlad/appgraph/internal/registry"
	"github.com/specialistvlad/appgraph/modules/hclconfig"
	"github.com/specialistvlad/appgraph/modules/health"
)

const (
	// ClientNodeName is the name of the *http.Client node.
	ClientNodeName = "http.client"
	// ProbeNodeName is the name of the upstream probe node.
	ProbeNodeName = "http.probe.upstreams"

	// DefaultTimeout applies when the config sets none.
	DefaultTimeout = 10 * time.Second
)

// Module implements the registry.Module interface. It requires the
// hclconfig module to be registered first.
type Module struct{}

// Register declares the client and the upstream probe.
func (m *Module) Register(b *draw.Builder) error {
	configID, err := registry.Require(b, hclconfig.ConfigNodeName)
	if err != nil {
		return err
	}

	clientID, err := b.AddNode(draw.NodeSpec{
		Name:         ClientNodeName,
		Dependencies: []node.Dependency{node.On(configID)},
		Factory: func(_ context.Context, in node.Inputs) (any, error) {
			cfg, err := inject.Dep[*hclconfig.Config](in, 0)
			if err != nil {
				return nil, err
			}
			return NewClient(cfg), nil
		},
		Release: func(_ context.Context, value any) error {
			value.(*http.Client).CloseIdleConnections()
			return nil
		},
	})
	if err != nil {
		return err
	}

	_, err = b.AddNode(draw.NodeSpec{
		Name:         ProbeNodeName,
		Dependencies: []node.Dependency{node.OnValueOf(configID), node.OnValueOf(clientID)},
		Tags:         []string{health.ProbeTag},
		Factory: func(_ context.Context, in node.Inputs) (any, error) {
			cfg, err := inject.ValueOfDep[*hclconfig.Config](in, 0)
			if err != nil {
				return nil, err
			}
			client, err := inject.ValueOfDep[*http.Client](in, 1)
			if err != nil {
				return nil, err
			}
			return &UpstreamProbe{config: cfg, client: client}, nil
		},
	})
	return err
}

// NewClient creates a client configured by the http_client block.
func NewClient(cfg *hclconfig.Config) *http.Client {
	maxIdle := 100
	if cfg.HTTPClient != nil && cfg.HTTPClient.MaxIdleConns > 0 {
		maxIdle = cfg.HTTPClient.MaxIdleConns
	}
	return &http.Client{
		Timeout: cfg.ClientTimeout(DefaultTimeout),
		Transport: &http.Transport{
			MaxIdleConns:        maxIdle,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}
