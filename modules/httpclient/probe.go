package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/specialistvlad/appgraph/internal/inject"
	"github.com/specialistvlad/appgraph/modules/hclconfig"
)

// UpstreamProbe checks every configured upstream. It reads the config and
// the client through ValueOf handles, so it follows refreshes of either
// without being re-created.
type UpstreamProbe struct {
	config *inject.ValueOf[*hclconfig.Config]
	client *inject.ValueOf[*http.Client]
}

func (p *UpstreamProbe) Name() string {
	return "upstreams"
}

// Check requests every upstream URL and fails if any answers with an error
// status or not at all.
func (p *UpstreamProbe) Check(ctx context.Context) error {
	cfg, err := p.config.Get()
	if err != nil {
		return err
	}
	client, err := p.client.Get()
	if err != nil {
		return err
	}

	var errs []error
	for _, u := range cfg.Upstreams {
		if err := checkUpstream(ctx, client, u); err != nil {
			errs = append(errs, fmt.Errorf("upstream %q: %w", u.Name, err))
		}
	}
	return errors.Join(errs...)
}

func checkUpstream(ctx context.Context, client *http.Client, u *hclconfig.UpstreamConfig) error {
	timeout := u.TimeoutOr(client.Timeout)
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.URL, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("unhealthy status %d", resp.StatusCode)
	}
	return nil
}
