package api

import (
	"testing"
	"time"
)

func TestDefaultObservabilityConfigBindsToLocalhost(t *testing.T) {
	cfg := DefaultObservabilityConfig()
	if cfg.ListenAddr != "127.0.0.1:6060" {
		t.Fatalf("ListenAddr = %q, want 127.0.0.1:6060", cfg.ListenAddr)
	}
	if !cfg.Enabled {
		t.Fatalf("expected debug server enabled by default")
	}
}

func TestStartDebugServerDisabledIsANoop(t *testing.T) {
	if err := StartDebugServer(ObservabilityConfig{Enabled: false}); err != nil {
		t.Fatalf("StartDebugServer(disabled) returned error: %v", err)
	}
}

func TestRecorderFunctionsDoNotPanic(t *testing.T) {
	RecordTick(time.Millisecond)
	RecordSnapshotEncode(time.Microsecond)
	UpdatePlayerCount(3)
	UpdateEntityCount(42)
	IncrementEventLog(2)
	RecordConnectionRejected("rate_limit")
	RecordRequest("GET", "/api/stats", 200, time.Millisecond)
	UpdateWSConnections(5)
	IncrementWSMessages()
}
