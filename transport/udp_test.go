package transport

import (
	"errors"
	"net"
	"testing"
	"time"

	"github.com/opd-ai/socketpdu/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func udpPeer(t *testing.T) *net.UDPConn {
	t.Helper()
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readDatagram(t *testing.T, conn *net.UDPConn) ([]byte, net.Addr) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(testTimeout)))
	buf := make([]byte, 2048)
	n, addr, err := conn.ReadFrom(buf)
	require.NoError(t, err)
	return buf[:n], addr
}

func TestUDPServer_SendBeforePeerKnown(t *testing.T) {
	c := newCollector()
	s, _ := openStrategy(t, config.Config{Mode: config.UDPServer, Address: "127.0.0.1", Port: "0", MTU: 1024}, c)

	assert.ErrorIs(t, s.Send([]byte("nobody")), ErrNoPeer)
}

func TestUDPServer_RepliesToLastPeer(t *testing.T) {
	c := newCollector()
	s, _ := openStrategy(t, config.Config{Mode: config.UDPServer, Address: "127.0.0.1", Port: "0", MTU: 1024}, c)

	first := udpPeer(t)
	second := udpPeer(t)

	_, err := first.WriteTo([]byte("one"), s.LocalAddr())
	require.NoError(t, err)
	assert.Equal(t, []byte("one"), c.nextPDU(t).Payload)

	_, err = second.WriteTo([]byte("two"), s.LocalAddr())
	require.NoError(t, err)
	assert.Equal(t, []byte("two"), c.nextPDU(t).Payload)

	require.NoError(t, s.Send([]byte("reply")))
	got, _ := readDatagram(t, second)
	assert.Equal(t, []byte("reply"), got)
}

func TestUDPServer_EmptyDatagram(t *testing.T) {
	c := newCollector()
	s, _ := openStrategy(t, config.Config{Mode: config.UDPServer, Address: "127.0.0.1", Port: "0", MTU: 1024}, c)

	peer := udpPeer(t)
	_, err := peer.WriteTo([]byte{}, s.LocalAddr())
	require.NoError(t, err)

	p := c.nextPDU(t)
	assert.Equal(t, 0, p.Len())
}

func TestUDPClient_SendsToConfiguredTarget(t *testing.T) {
	target := udpPeer(t)
	c := newCollector()
	s, _ := openStrategy(t, config.Config{
		Mode:    config.UDPClient,
		Address: "127.0.0.1",
		Port:    portOf(t, target.LocalAddr()),
		MTU:     1024,
	}, c)

	require.NoError(t, s.Send([]byte("hi")))
	got, from := readDatagram(t, target)
	assert.Equal(t, []byte("hi"), got)

	_, err := target.WriteTo([]byte("back"), from)
	require.NoError(t, err)
	assert.Equal(t, []byte("back"), c.nextPDU(t).Payload)

	// A datagram from a stranger does not redirect the client.
	stranger := udpPeer(t)
	_, err = stranger.WriteTo([]byte("noise"), s.LocalAddr())
	require.NoError(t, err)
	c.nextPDU(t)

	require.NoError(t, s.Send([]byte("again")))
	got, _ = readDatagram(t, target)
	assert.Equal(t, []byte("again"), got)
}

func TestUDPClient_UnsetTargetDrops(t *testing.T) {
	c := newCollector()
	s, _ := openStrategy(t, config.Config{Mode: config.UDPClient, Address: "0.0.0.0", Port: "5000", MTU: 1024}, c)

	assert.ErrorIs(t, s.Send([]byte("x")), ErrNoPeer)
}

func TestUDP_ConnectionsReportsZero(t *testing.T) {
	c := newCollector()
	s, _ := openStrategy(t, config.Config{Mode: config.UDPServer, Address: "127.0.0.1", Port: "0", MTU: 1024}, c)

	registered, open := s.Connections()
	assert.Zero(t, registered)
	assert.Zero(t, open)
}

// erroringPacketConn fails every ReadFrom.
type erroringPacketConn struct {
	net.PacketConn
	err error
}

func (c *erroringPacketConn) ReadFrom([]byte) (int, net.Addr, error) {
	return 0, nil, c.err
}

func TestUDP_ReceiveErrorRaisesFault(t *testing.T) {
	inner, err := net.ListenPacket("udp4", "127.0.0.1:0")
	require.NoError(t, err)

	cause := errors.New("recvfrom: connection refused")
	conn := &erroringPacketConn{PacketConn: inner, err: cause}

	r := NewReactor(nil)
	t.Cleanup(r.Stop)

	c := newCollector()
	cfg := config.Config{Mode: config.UDPServer, Address: "127.0.0.1", Port: "0", MTU: 1024}
	_, err = serveUDP(cfg, conn, nil, r, c.handlers(), testLogger())
	require.NoError(t, err)

	fault := c.nextFault(t)
	assert.ErrorIs(t, fault, ErrTransportFault)
	assert.ErrorIs(t, fault, cause)

	var se *SocketError
	require.ErrorAs(t, fault, &se)
	assert.Equal(t, "read", se.Op)
	assert.Empty(t, c.pdus)
}
