package app

import (
	"github.com/specialistvlad/appgraph/internal/registry"
	"github.com/specialistvlad/appgraph/modules/env"
	"github.com/specialistvlad/appgraph/modules/hclconfig"
	"github.com/specialistvlad/appgraph/modules/health"
	"github.com/specialistvlad/appgraph/modules/httpclient"
)

// coreModules is the composition root: the definitive, ordered list of the
// modules compiled into the binary. Modules may only reference nodes of the
// modules listed before them, and health collects the probes of everything
// above it.
func coreModules(cfg *Config) []registry.Module {
	return []registry.Module{
		&env.Module{},
		&hclconfig.Module{Path: cfg.ConfigPath, Watch: cfg.Watch},
		&httpclient.Module{},
		&health.Module{Addr: cfg.HealthAddr()},
	}
}
