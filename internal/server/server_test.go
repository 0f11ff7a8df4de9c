package server

import (
	"testing"
	"time"

	"github.com/bobmcallan/krx-alert-portal/internal/config"
)

func TestWriteTimeout(t *testing.T) {
	tests := []struct {
		name   string
		client time.Duration
		want   time.Duration
	}{
		{"no client timeout", 0, 120 * time.Second},
		{"short client timeout", 30 * time.Second, 120 * time.Second},
		{"long client timeout", 5 * time.Minute, 5*time.Minute + 10*time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.NewDefaultConfig()
			cfg.Client.Timeout.Duration = tt.client
			if got := writeTimeout(cfg); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestNew_ServerSettings(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 6001
	srv := New(newTestApp(t, cfg))

	if srv.server.Addr != "127.0.0.1:6001" {
		t.Errorf("unexpected address %s", srv.server.Addr)
	}
	if srv.server.ReadTimeout != readTimeout || srv.server.IdleTimeout != idleTimeout {
		t.Errorf("unexpected timeouts read=%s idle=%s", srv.server.ReadTimeout, srv.server.IdleTimeout)
	}
	if srv.server.WriteTimeout != 120*time.Second {
		t.Errorf("expected write timeout 120s, got %s", srv.server.WriteTimeout)
	}
}
