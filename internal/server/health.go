package server

import (
	"context"

	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/graph"
	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/store"
)

// HealthReport describes the state of the backing services.
type HealthReport struct {
	Status   string `json:"status"`
	Storage  string `json:"storage"`
	Graph    string `json:"graph"`
	ReadOnly bool   `json:"readOnly"`
	Error    string `json:"error,omitempty"`
}

// HealthService defines behaviour for readiness probes.
type HealthService interface {
	Probe(ctx context.Context) HealthReport
}

// BackendHealthService pings the document store and, when configured, the
// identity graph.
type BackendHealthService struct {
	Backend  store.Backend
	Graph    graph.Client
	ReadOnly bool
}

// Probe implements the HealthService interface. A failing graph degrades the
// report; a failing store marks it down.
func (s BackendHealthService) Probe(ctx context.Context) HealthReport {
	report := HealthReport{Status: "ok", Graph: "disabled", ReadOnly: s.ReadOnly}
	if s.Backend != nil {
		report.Storage = string(s.Backend.Kind())
		if err := s.Backend.Ping(ctx); err != nil {
			report.Status = "down"
			report.Error = err.Error()
			return report
		}
	}
	if s.Graph != nil {
		report.Graph = "connected"
		if err := s.Graph.VerifyConnectivity(ctx); err != nil {
			report.Status = "degraded"
			report.Graph = "unreachable"
			report.Error = err.Error()
		}
	}
	return report
}
