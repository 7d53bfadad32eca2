package transport

import (
	"context"
	"net"
	"testing"

	"github.com/opd-ai/socketpdu/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func endpointConfig(mode config.Mode, address, port string) config.Config {
	return config.Config{Mode: mode, Address: address, Port: port}
}

func TestResolveWildcardServer(t *testing.T) {
	for _, mode := range []config.Mode{config.TCPServer, config.UDPServer} {
		for _, address := range []string{"", "0.0.0.0"} {
			ep, err := Resolve(context.Background(), endpointConfig(mode, address, "9999"))
			require.NoError(t, err)
			assert.True(t, ep.IsUnspecified())
			assert.Equal(t, 9999, ep.Port)
			assert.Equal(t, "0.0.0.0:9999", ep.String())
		}
	}
}

func TestResolveWildcardServerRejectsBadPort(t *testing.T) {
	badPorts := []string{"", "0", "abc", "-1", "65536", "12abc"}

	for _, mode := range []config.Mode{config.TCPServer, config.UDPServer} {
		for _, port := range badPorts {
			t.Run(mode.String()+"/"+port, func(t *testing.T) {
				_, err := Resolve(context.Background(), endpointConfig(mode, "", port))
				assert.ErrorIs(t, err, ErrInvalidConfiguration)
			})
		}
	}
}

func TestResolveProtocol(t *testing.T) {
	tests := []struct {
		mode     config.Mode
		protocol string
	}{
		{config.TCPServer, "tcp"},
		{config.TCPClient, "tcp"},
		{config.UDPServer, "udp"},
		{config.UDPClient, "udp"},
	}

	for _, tt := range tests {
		ep, err := Resolve(context.Background(), endpointConfig(tt.mode, "127.0.0.1", "4000"))
		require.NoError(t, err)
		assert.Equal(t, tt.protocol, ep.Network())
		assert.Equal(t, "127.0.0.1:4000", ep.String())
	}
}

func TestResolveSpecificAddressAllowsEphemeralPort(t *testing.T) {
	ep, err := Resolve(context.Background(), endpointConfig(config.TCPServer, "127.0.0.1", "0"))
	require.NoError(t, err)
	assert.Equal(t, 0, ep.Port)
	assert.True(t, ep.IP.Equal(net.IPv4(127, 0, 0, 1)))
}

func TestResolveClientEmptyAddressIsPassive(t *testing.T) {
	ep, err := Resolve(context.Background(), endpointConfig(config.UDPClient, "", "5000"))
	require.NoError(t, err)
	assert.True(t, ep.IsUnspecified())
}

func TestResolveFailures(t *testing.T) {
	tests := []struct {
		name    string
		mode    config.Mode
		address string
		port    string
		want    error
	}{
		{"unknown mode", config.Mode(0), "127.0.0.1", "1", ErrInvalidConfiguration},
		{"ipv6 literal", config.TCPClient, "::1", "80", ErrResolutionFailure},
		{"port out of range", config.UDPClient, "127.0.0.1", "99999", ErrResolutionFailure},
		{"unknown service", config.TCPClient, "127.0.0.1", "no-such-service-xyz", ErrResolutionFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(context.Background(), endpointConfig(tt.mode, tt.address, tt.port))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestEndpointAddrConversions(t *testing.T) {
	ep := &Endpoint{Protocol: "udp", IP: net.IPv4(10, 0, 0, 1), Port: 53}

	assert.Equal(t, "10.0.0.1:53", ep.UDPAddr().String())
	assert.False(t, ep.IsUnspecified())
}
