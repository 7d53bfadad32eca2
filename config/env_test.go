package config

import (
	"testing"

	"github.com/opd-ai/socketpdu/limits"
	"github.com/stretchr/testify/assert"
)

func TestApplyEnvironmentOverrides(t *testing.T) {
	t.Setenv(EnvMode, "udp_client")
	t.Setenv(EnvAddress, "127.0.0.1")
	t.Setenv(EnvPort, "7000")
	t.Setenv(EnvMTU, "512")
	t.Setenv(EnvNoDelay, "true")

	cfg := Default()
	ApplyEnvironmentOverrides(&cfg)

	assert.Equal(t, UDPClient, cfg.Mode)
	assert.Equal(t, "127.0.0.1", cfg.Address)
	assert.Equal(t, "7000", cfg.Port)
	assert.Equal(t, 512, cfg.MTU)
	assert.True(t, cfg.NoDelay)
}

func TestApplyEnvironmentOverridesIgnoresMalformed(t *testing.T) {
	tests := []struct {
		name   string
		envVar string
		value  string
	}{
		{"bad mode", EnvMode, "pigeon"},
		{"non numeric mtu", EnvMTU, "big"},
		{"mtu out of range", EnvMTU, "0"},
		{"mtu too large", EnvMTU, "99999999"},
		{"bad bool", EnvNoDelay, "sometimes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.envVar, tt.value)

			cfg := Config{Mode: TCPServer, Port: "8888", MTU: limits.DefaultTransferUnit}
			want := cfg
			ApplyEnvironmentOverrides(&cfg)

			assert.Equal(t, want, cfg)
		})
	}
}

func TestApplyEnvironmentOverridesEmptyAddress(t *testing.T) {
	t.Setenv(EnvAddress, "")

	cfg := Config{Address: "10.0.0.1"}
	ApplyEnvironmentOverrides(&cfg)

	assert.Equal(t, "", cfg.Address, "an explicitly empty address selects all interfaces")
}
