// Package hclconfig provides the application's settings as graph nodes: a
// Config decoded from an HCL file, and a Watcher that refreshes it when the
// file changes.
//
// Expressions in the file can read the environment through the `env` object
// and a few helper functions:
//
//	health {
//	  listen = lookup(env, "HEALTH_ADDR", ":8081")
//	}
//
//	upstream "billing" {
//	  url     = "http://${env.BILLING_HOST}/health"
//	  timeout = "2s"
//	}
package hclconfig

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/appgraph/internal/ctxlog"
	"github.com/specialistvlad/appgraph/modules/env"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// Config is the decoded settings file.
type Config struct {
	Name       string            `hcl:"name,optional"`
	Health     *HealthConfig     `hcl:"health,block"`
	HTTPClient *HTTPClientConfig `hcl:"http_client,block"`
	Upstreams  []*UpstreamConfig `hcl:"upstream,block"`
	Values     map[string]string `hcl:"values,optional"`

	// Source is the file the config was decoded from.
	Source string
}

// HealthConfig configures the health server.
type HealthConfig struct {
	Listen string `hcl:"listen,optional"`
}

// HTTPClientConfig configures the shared outbound HTTP client.
type HTTPClientConfig struct {
	Timeout      string `hcl:"timeout,optional"`
	MaxIdleConns int    `hcl:"max_idle_conns,optional"`
}

// UpstreamConfig names a dependency whose health endpoint is probed.
type UpstreamConfig struct {
	Name    string `hcl:"name,label"`
	URL     string `hcl:"url"`
	Timeout string `hcl:"timeout,optional"`
}

// Decode parses and decodes the HCL file at path.
func Decode(ctx context.Context, path string, raw *env.RawEnv) (*Config, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Decoding config file.", "path", path)

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
	}
	cfg, err := decodeBody(file.Body, raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", path, err)
	}
	cfg.Source = path

	logger.Debug("Successfully decoded config file.", "path", path, "upstreams", len(cfg.Upstreams))
	return cfg, nil
}

// DecodeBytes decodes an in-memory HCL document. filename is only used in
// diagnostics.
func DecodeBytes(src []byte, filename string, raw *env.RawEnv) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL %s: %w", filename, diags)
	}
	cfg, err := decodeBody(file.Body, raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode HCL %s: %w", filename, err)
	}
	cfg.Source = filename
	return cfg, nil
}

func decodeBody(body hcl.Body, raw *env.RawEnv) (*Config, error) {
	var cfg Config
	if diags := gohcl.DecodeBody(body, evalContext(raw), &cfg); diags.HasErrors() {
		return nil, diags
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// evalContext exposes the environment as the `env` object.
func evalContext(raw *env.RawEnv) *hcl.EvalContext {
	vars := make(map[string]cty.Value)
	if raw != nil {
		for key, value := range raw.All() {
			vars[key] = cty.StringVal(value)
		}
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": cty.ObjectVal(vars),
		},
		Functions: map[string]function.Function{
			"lookup": stdlib.LookupFunc,
			"upper":  stdlib.UpperFunc,
			"lower":  stdlib.LowerFunc,
		},
	}
}

func (c *Config) validate() error {
	if c.HTTPClient != nil {
		if _, err := parseTimeout(c.HTTPClient.Timeout); err != nil {
			return fmt.Errorf("http_client: %w", err)
		}
		if c.HTTPClient.MaxIdleConns < 0 {
			return fmt.Errorf("http_client: max_idle_conns must not be negative")
		}
	}
	seen := make(map[string]bool, len(c.Upstreams))
	for _, u := range c.Upstreams {
		if seen[u.Name] {
			return fmt.Errorf("upstream %q declared twice", u.Name)
		}
		seen[u.Name] = true
		if u.URL == "" {
			return fmt.Errorf("upstream %q: url must not be empty", u.Name)
		}
		if _, err := parseTimeout(u.Timeout); err != nil {
			return fmt.Errorf("upstream %q: %w", u.Name, err)
		}
	}
	return nil
}

// HealthListen returns the health server address, or "" when the health
// block is absent.
func (c *Config) HealthListen() string {
	if c.Health == nil {
		return ""
	}
	return c.Health.Listen
}

// ClientTimeout returns the outbound client timeout, or fallback if unset.
func (c *Config) ClientTimeout(fallback time.Duration) time.Duration {
	if c.HTTPClient == nil || c.HTTPClient.Timeout == "" {
		return fallback
	}
	d, _ := parseTimeout(c.HTTPClient.Timeout)
	return d
}

// TimeoutOr returns the probe timeout of the upstream, or fallback if unset.
func (u *UpstreamConfig) TimeoutOr(fallback time.Duration) time.Duration {
	if u.Timeout == "" {
		return fallback
	}
	d, _ := parseTimeout(u.Timeout)
	return d
}

func parseTimeout(raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q: %w", raw, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid timeout %q: must not be negative", raw)
	}
	return d, nil
}
