package httpclient

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/specialistvlad/appgraph/internal/graph"
	"github.com/specialistvlad/appgraph/internal/registry"
	"github.com/specialistvlad/appgraph/modules/env"
	"github.com/specialistvlad/appgraph/modules/hclconfig"
	"github.com/specialistvlad/appgraph/modules/health"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		c := NewClient(&hclconfig.Config{})
		assert.Equal(t, DefaultTimeout, c.Timeout)
		assert.Equal(t, 100, c.Transport.(*http.Transport).MaxIdleConns)
	})

	t.Run("configured", func(t *testing.T) {
		c := NewClient(&hclconfig.Config{HTTPClient: &hclconfig.HTTPClientConfig{Timeout: "2s", MaxIdleConns: 7}})
		assert.Equal(t, 2*time.Second, c.Timeout)
		assert.Equal(t, 7, c.Transport.(*http.Transport).MaxIdleConns)
	})
}

func TestUpstreamProbeFollowsConfig(t *testing.T) {
	ctx := context.Background()
	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer healthy.Close()
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer broken.Close()

	path := filepath.Join(t.TempDir(), "app.hcl")
	write := func(body string) {
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	}
	write(fmt.Sprintf(`
http_client {
  timeout = "1s"
}
upstream "billing" {
  url = "%s/health"
}
`, healthy.URL))

	d, err := registry.Compose(
		&env.Module{Environ: func() []string { return nil }},
		&hclconfig.Module{Path: path},
		&Module{},
		&health.Module{Addr: "127.0.0.1:0"},
	)(ctx)
	require.NoError(t, err)
	g := graph.New(d)
	require.NoError(t, g.Init(ctx))
	t.Cleanup(func() { _ = g.Release(ctx) })

	probeID, ok := d.Lookup(ProbeNodeName)
	require.True(t, ok)
	assert.True(t, d.Live(probeID), "collected by the health handler")
	v, err := g.Get(probeID)
	require.NoError(t, err)
	probe := v.(*UpstreamProbe)
	assert.Equal(t, "upstreams", probe.Name())
	require.NoError(t, probe.Check(ctx))

	clientID, _ := d.Lookup(ClientNodeName)
	oldClient, err := g.Get(clientID)
	require.NoError(t, err)

	write(fmt.Sprintf(`
upstream "billing" {
  url = "%s/health"
}
upstream "ledger" {
  url = "%s/health"
}
`, healthy.URL, broken.URL))
	configID, _ := d.Lookup(hclconfig.ConfigNodeName)
	require.NoError(t, g.Refresh(ctx, configID))

	newClient, err := g.Get(clientID)
	require.NoError(t, err)
	assert.NotSame(t, oldClient, newClient, "client is rebuilt from the new config")
	assert.Equal(t, DefaultTimeout, newClient.(*http.Client).Timeout)

	same, err := g.Get(probeID)
	require.NoError(t, err)
	assert.Same(t, probe, same, "probe follows through ValueOf handles")

	err = probe.Check(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `upstream "ledger"`)
	assert.Contains(t, err.Error(), "unhealthy status 500")
	assert.NotContains(t, err.Error(), `upstream "billing"`)
}
