package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"

	"github.com/opd-ai/socketpdu/config"
)

// Endpoint is a resolved IPv4 (protocol, address, port) tuple.
// It implements net.Addr.
type Endpoint struct {
	Protocol string // "tcp" or "udp"
	IP       net.IP
	Port     int
}

var _ net.Addr = (*Endpoint)(nil)

// Network implements net.Addr.
func (e *Endpoint) Network() string {
	return e.Protocol
}

// String implements net.Addr.
func (e *Endpoint) String() string {
	return net.JoinHostPort(e.IP.String(), strconv.Itoa(e.Port))
}

// IsUnspecified reports whether the endpoint addresses all interfaces.
func (e *Endpoint) IsUnspecified() bool {
	return e.IP == nil || e.IP.IsUnspecified()
}

// UDPAddr returns the endpoint as a *net.UDPAddr.
func (e *Endpoint) UDPAddr() *net.UDPAddr {
	return &net.UDPAddr{IP: e.IP, Port: e.Port}
}

// Resolve turns the mode, address and port of cfg into the endpoint the mode
// binds to (server modes) or targets (client modes). It runs exactly once,
// before the reactor starts and before any socket is opened.
//
// Server modes with an empty or "0.0.0.0" address bind all interfaces and
// require a numeric port in 1..65535. Every other combination performs a
// passive lookup restricted to IPv4 and takes the first result.
func Resolve(ctx context.Context, cfg config.Config) (*Endpoint, error) {
	mode, address, port := cfg.Mode, cfg.Address, cfg.Port
	if !mode.Valid() {
		return nil, newSocketError(ErrInvalidConfiguration, "resolve", "",
			fmt.Errorf("unknown socket mode %d", int(mode)))
	}

	protocol := "udp"
	if mode.IsTCP() {
		protocol = "tcp"
	}

	if mode.IsServer() && cfg.IsWildcard() {
		portNum, err := strconv.Atoi(port)
		if err != nil || portNum <= 0 || portNum > 65535 {
			return nil, newSocketError(ErrInvalidConfiguration, "resolve", port,
				fmt.Errorf("invalid port %q for %s", port, mode))
		}
		return &Endpoint{Protocol: protocol, IP: net.IPv4zero, Port: portNum}, nil
	}

	return lookupEndpoint(ctx, protocol, address, port)
}

// lookupEndpoint performs the passive address and service lookup.
func lookupEndpoint(ctx context.Context, protocol, address, port string) (*Endpoint, error) {
	hostPort := net.JoinHostPort(address, port)

	portNum, err := net.DefaultResolver.LookupPort(ctx, protocol, port)
	if err != nil {
		return nil, newSocketError(ErrResolutionFailure, "resolve", hostPort, err)
	}

	ip, err := lookupIPv4(ctx, address)
	if err != nil {
		return nil, newSocketError(ErrResolutionFailure, "resolve", hostPort, err)
	}

	return &Endpoint{Protocol: protocol, IP: ip, Port: portNum}, nil
}

// lookupIPv4 returns the first IPv4 address for host. An empty host is the
// passive wildcard address.
func lookupIPv4(ctx context.Context, host string) (net.IP, error) {
	if host == "" {
		return net.IPv4zero, nil
	}

	if ip := net.ParseIP(host); ip != nil {
		if v4 := ip.To4(); v4 != nil {
			return v4, nil
		}
		return nil, fmt.Errorf("%s is not an IPv4 address", host)
	}

	ips, err := net.DefaultResolver.LookupIP(ctx, "ip4", host)
	if err != nil {
		return nil, err
	}
	if len(ips) == 0 {
		return nil, errors.New("no IPv4 address found")
	}
	return ips[0].To4(), nil
}
