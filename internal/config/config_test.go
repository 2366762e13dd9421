package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.HTTPPort != "8081" {
		t.Errorf("HTTPPort = %q, want 8081", cfg.HTTPPort)
	}
	if cfg.HeartbeatTimeout != 15*time.Second {
		t.Errorf("HeartbeatTimeout = %s, want 15s", cfg.HeartbeatTimeout)
	}
	if cfg.HistorySize != 100 {
		t.Errorf("HistorySize = %d, want 100", cfg.HistorySize)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("HEARTBEAT_TIMEOUT", "30s")
	t.Setenv("HISTORY_SIZE", "25")
	t.Setenv("QUEUE_BACKEND", "redis")

	cfg := Load()
	if cfg.HeartbeatTimeout != 30*time.Second {
		t.Errorf("HeartbeatTimeout = %s, want 30s", cfg.HeartbeatTimeout)
	}
	if cfg.HistorySize != 25 {
		t.Errorf("HistorySize = %d, want 25", cfg.HistorySize)
	}
	if cfg.QueueBackend != "redis" {
		t.Errorf("QueueBackend = %q, want redis", cfg.QueueBackend)
	}
}

func TestInvalidValuesFallBack(t *testing.T) {
	t.Setenv("HEARTBEAT_TIMEOUT", "soon")
	t.Setenv("HISTORY_SIZE", "many")

	cfg := Load()
	if cfg.HeartbeatTimeout != 15*time.Second {
		t.Errorf("HeartbeatTimeout = %s, want default 15s", cfg.HeartbeatTimeout)
	}
	if cfg.HistorySize != 100 {
		t.Errorf("HistorySize = %d, want default 100", cfg.HistorySize)
	}
}
