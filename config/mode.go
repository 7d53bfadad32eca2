package config

import (
	"fmt"
	"strings"
)

// Mode selects one of the four bridge behaviours. The zero value is invalid.
type Mode int

const (
	// TCPServer listens, accepts any number of peers and fans sends out to all of them.
	TCPServer Mode = iota + 1
	// TCPClient connects to one peer at construction.
	TCPClient
	// UDPServer binds locally and replies to the last peer heard from.
	UDPServer
	// UDPClient sends to a fixed target from an ephemeral local port.
	UDPClient
)

var modeNames = map[Mode]string{
	TCPServer: "TCP_SERVER",
	TCPClient: "TCP_CLIENT",
	UDPServer: "UDP_SERVER",
	UDPClient: "UDP_CLIENT",
}

// ParseMode parses a mode name such as "TCP_SERVER" or "udp_client".
func ParseMode(s string) (Mode, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for mode, modeName := range modeNames {
		if modeName == name {
			return mode, nil
		}
	}
	return 0, fmt.Errorf("unknown socket mode %q", s)
}

// String returns the canonical mode name.
func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Valid reports whether m is one of the four defined modes.
func (m Mode) Valid() bool {
	_, ok := modeNames[m]
	return ok
}

// IsTCP reports whether m uses a stream socket.
func (m Mode) IsTCP() bool {
	return m == TCPServer || m == TCPClient
}

// IsServer reports whether m binds a local endpoint rather than targeting a remote one.
func (m Mode) IsServer() bool {
	return m == TCPServer || m == UDPServer
}

// Network returns the Go network name for m, restricted to IPv4.
func (m Mode) Network() string {
	if m.IsTCP() {
		return "tcp4"
	}
	return "udp4"
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("invalid socket mode %d", int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Set implements pflag.Value.
func (m *Mode) Set(s string) error {
	return m.UnmarshalText([]byte(s))
}

// Type implements pflag.Value.
func (m *Mode) Type() string {
	return "mode"
}
