package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/specialistvlad/appgraph/internal/ctxlog"
	"github.com/specialistvlad/appgraph/internal/inject"
)

// DefaultProbeTimeout bounds a single probe.
const DefaultProbeTimeout = 5 * time.Second

// Handler runs the probes it was built with and renders a Report.
type Handler struct {
	service string
	probes  inject.All[Probe]
	timeout time.Duration
}

// NewHandler creates a handler over probes. A non-positive timeout means
// DefaultProbeTimeout.
func NewHandler(service string, probes inject.All[Probe], timeout time.Duration) *Handler {
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	return &Handler{service: service, probes: probes, timeout: timeout}
}

// Probes returns the probes the handler was built with.
func (h *Handler) Probes() inject.All[Probe] {
	return h.probes
}

// Check runs every probe in order.
func (h *Handler) Check(ctx context.Context) Report {
	report := Report{Service: h.service, Status: StatusOK, Checks: make([]Result, 0, h.probes.Len())}
	for p := range h.probes.Seq() {
		result := h.run(ctx, p)
		if result.Status != StatusOK {
			report.Status = StatusFail
		}
		report.Checks = append(report.Checks, result)
	}
	return report
}

func (h *Handler) run(ctx context.Context, p Probe) (result Result) {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	start := time.Now()
	result = Result{Name: p.Name(), Status: StatusOK}
	defer func() {
		if r := recover(); r != nil {
			result.Status = StatusFail
			result.Error = fmt.Sprintf("probe panicked: %v", r)
		}
		result.Duration = time.Since(start)
	}()

	if err := p.Check(ctx); err != nil {
		result.Status = StatusFail
		result.Error = err.Error()
	}
	return result
}

// ServeHTTP answers 200 with the report when every probe passes, 503
// otherwise.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := ctxlog.FromContext(r.Context())
	report := h.Check(r.Context())
	logger.Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr, "status", report.Status)

	w.Header().Set("Content-Type", "application/json")
	if report.Healthy() {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	if err := json.NewEncoder(w).Encode(report); err != nil {
		logger.Warn("Failed to write health report.", "error", err)
	}
}
