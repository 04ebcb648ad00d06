package telemetry

import (
	"context"
	"testing"

	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/config"
)

func TestSetup_NoopWithoutEndpoint(t *testing.T) {
	shutdown, err := Setup(context.Background(), config.TelemetryConfig{Enabled: true, ServiceName: "wasatah-test"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown error: %v", err)
	}
}

func TestSetup_NoopWhenDisabled(t *testing.T) {
	cfg := config.TelemetryConfig{Enabled: false, Endpoint: "http://localhost:4318", ServiceName: "wasatah-test"}
	if Enabled(cfg) {
		t.Fatal("expected tracing to be disabled")
	}
	shutdown, err := Setup(context.Background(), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown error: %v", err)
	}
}

func TestSetup_ProviderWithEndpoint(t *testing.T) {
	// Non-routable address; no span is exported.
	cfg := config.TelemetryConfig{Enabled: true, Endpoint: "http://192.0.2.1:4318", ServiceName: "wasatah-test"}
	shutdown, err := Setup(context.Background(), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown error: %v", err)
	}
}
