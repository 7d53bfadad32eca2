package transport

import (
	"context"
	"net"

	"github.com/opd-ai/socketpdu/config"
	"github.com/sirupsen/logrus"
)

// tcpClient is one connection established at construction. A read failure
// is reported as a fault and ends the read loop; there is no reconnect.
type tcpClient struct {
	conn *Connection
	log  *logrus.Entry
}

// newTCPClient connects synchronously to endpoint and arms the read loop.
func newTCPClient(ctx context.Context, cfg config.Config, endpoint *Endpoint, r *Reactor, h Handlers, log *logrus.Entry) (*tcpClient, error) {
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, cfg.Mode.Network(), endpoint.String())
	if err != nil {
		return nil, newSocketError(ErrConnectionFailure, "connect", endpoint.String(), err)
	}

	c := &tcpClient{
		conn: newConnection(conn, cfg.MTU, log),
		log:  log,
	}
	c.conn.setNoDelay(cfg.NoDelay)

	if !c.conn.start(r, h.Deliver, h.Fault) {
		return nil, newSocketError(ErrConnectionFailure, "connect", endpoint.String(), ErrReactorStopped)
	}

	c.conn.log.Info("TCP client connected")

	return c, nil
}

// Send writes chunk on the caller's goroutine.
func (c *tcpClient) Send(chunk []byte) error {
	if err := c.conn.Send(chunk); err != nil {
		return newSocketError(ErrTransportFault, "write", c.conn.RemoteAddr().String(), err)
	}
	return nil
}

// LocalAddr returns the local side of the connection.
func (c *tcpClient) LocalAddr() net.Addr {
	return c.conn.conn.LocalAddr()
}

// Connections reports the single client socket.
func (c *tcpClient) Connections() (registered, open int) {
	if c.conn.IsOpen() {
		return 1, 1
	}
	return 1, 0
}
