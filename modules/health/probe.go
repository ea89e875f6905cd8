// Package health serves the health and metrics endpoints of the application.
//
// Every node tagged ProbeTag whose value implements Probe is collected into
// the Handler. The Server reaches the Handler through a ValueOf handle, so
// it keeps listening while the Handler is replaced by a refresh.
package health

import (
	"context"
	"time"
)

// ProbeTag marks nodes whose value implements Probe.
const ProbeTag = "health.probe"

// Probe is a single health check.
type Probe interface {
	Name() string
	Check(ctx context.Context) error
}

const (
	StatusOK   = "ok"
	StatusFail = "fail"
)

// Result is the outcome of one probe.
type Result struct {
	Name     string        `json:"name"`
	Status   string        `json:"status"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration_ns"`
}

// Report aggregates every probe result.
type Report struct {
	Service string   `json:"service,omitempty"`
	Status  string   `json:"status"`
	Checks  []Result `json:"checks"`
}

// Healthy reports whether every probe passed.
func (r Report) Healthy() bool {
	return r.Status == StatusOK
}

// ProbeFunc adapts a function to the Probe interface.
type ProbeFunc struct {
	ProbeName string
	Fn        func(ctx context.Context) error
}

func (p ProbeFunc) Name() string { return p.ProbeName }

func (p ProbeFunc) Check(ctx context.Context) error { return p.Fn(ctx) }
