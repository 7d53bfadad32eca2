package transport

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/opd-ai/socketpdu/config"
	"github.com/opd-ai/socketpdu/pdu"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

const testTimeout = 5 * time.Second

// collector records deliveries and faults coming off a reactor.
type collector struct {
	pdus   chan pdu.PDU
	faults chan error
}

func newCollector() *collector {
	return &collector{
		pdus:   make(chan pdu.PDU, 64),
		faults: make(chan error, 8),
	}
}

func (c *collector) handlers() Handlers {
	return Handlers{
		Deliver: func(p pdu.PDU) { c.pdus <- p },
		Fault:   func(err error) { c.faults <- err },
	}
}

func (c *collector) nextPDU(t *testing.T) pdu.PDU {
	t.Helper()
	select {
	case p := <-c.pdus:
		return p
	case <-time.After(testTimeout):
		t.Fatal("timed out waiting for PDU")
		return pdu.PDU{}
	}
}

func (c *collector) nextFault(t *testing.T) error {
	t.Helper()
	select {
	case err := <-c.faults:
		return err
	case <-time.After(testTimeout):
		t.Fatal("timed out waiting for fault")
		return nil
	}
}

// openStrategy starts a reactor and opens cfg on it. Both are stopped by
// test cleanup.
func openStrategy(t *testing.T, cfg config.Config, c *collector) (Strategy, *Reactor) {
	t.Helper()
	r := NewReactor(nil)
	t.Cleanup(r.Stop)

	s, err := resolveAndOpen(cfg, r, c.handlers())
	require.NoError(t, err)
	return s, r
}

func testLogger() *logrus.Entry {
	return logrus.WithField("component", "test")
}

// resolveAndOpen runs Resolve then Open the way a bridge does.
func resolveAndOpen(cfg config.Config, r *Reactor, h Handlers) (Strategy, error) {
	endpoint, err := Resolve(context.Background(), cfg)
	if err != nil {
		return nil, err
	}
	return Open(context.Background(), cfg, endpoint, r, h, nil)
}

// readFull reads exactly n bytes from conn with a deadline.
func readFull(t *testing.T, conn net.Conn, n int) []byte {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(testTimeout)))
	buf := make([]byte, n)
	read := 0
	for read < n {
		m, err := conn.Read(buf[read:])
		require.NoError(t, err)
		read += m
	}
	return buf
}

// waitFor polls cond until it holds or the test times out.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(testTimeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

// refusedPort returns a loopback port with nothing listening on it.
func refusedPort(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	require.NoError(t, err)
	_, port, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	require.NoError(t, ln.Close())
	return port
}

func portOf(t *testing.T, addr net.Addr) string {
	t.Helper()
	_, port, err := net.SplitHostPort(addr.String())
	require.NoError(t, err)
	return port
}
