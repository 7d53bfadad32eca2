package transport

import (
	"errors"
	"io"
	"net"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/opd-ai/socketpdu/pdu"
	"github.com/sirupsen/logrus"
)

// DeliverFunc receives a PDU built from one completed read. It is always
// called on the reactor's loop goroutine.
type DeliverFunc func(p pdu.PDU)

// FaultFunc receives a runtime read fault. It is always called on the
// reactor's loop goroutine.
type FaultFunc func(err error)

// Connection is one connected TCP socket with its own receive buffer.
// The buffer is written only by the connection's single outstanding read and
// is copied into a fresh PDU before the next read is issued.
type Connection struct {
	conn net.Conn
	buf  []byte
	open atomic.Bool

	reactor *Reactor
	log     *logrus.Entry
}

type readResult struct {
	n    int
	addr net.Addr
}

// newConnection wraps conn with a receive buffer of mtu bytes.
func newConnection(conn net.Conn, mtu int, log *logrus.Entry) *Connection {
	id := uuid.New()
	c := &Connection{
		conn: conn,
		buf:  make([]byte, mtu),
		log: log.WithFields(logrus.Fields{
			"connection_id": id.String(),
			"remote_addr":   conn.RemoteAddr().String(),
		}),
	}
	c.open.Store(true)
	return c
}

// RemoteAddr returns the peer address.
func (c *Connection) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

// IsOpen reports whether the socket has not been closed yet.
func (c *Connection) IsOpen() bool {
	return c.open.Load()
}

// setNoDelay applies TCP_NODELAY when the underlying socket supports it.
func (c *Connection) setNoDelay(noDelay bool) {
	tcpConn, ok := c.conn.(*net.TCPConn)
	if !ok {
		return
	}
	if err := tcpConn.SetNoDelay(noDelay); err != nil {
		c.log.WithField("error", err.Error()).Warn("Failed to set TCP_NODELAY")
	}
}

// Send writes b synchronously on the caller's goroutine. A failed write
// closes the connection.
func (c *Connection) Send(b []byte) error {
	if !c.IsOpen() {
		return net.ErrClosed
	}
	if _, err := c.conn.Write(b); err != nil {
		c.Close()
		return err
	}
	return nil
}

// Close closes the socket once and detaches it from the reactor.
func (c *Connection) Close() error {
	if !c.open.CompareAndSwap(true, false) {
		return nil
	}
	if c.reactor != nil {
		c.reactor.Unregister(c)
	}
	return c.conn.Close()
}

// start registers the connection with r and arms its receive loop. Every
// completed read is delivered as one PDU. On a read error the connection is
// closed, onError is called and the loop ends.
func (c *Connection) start(r *Reactor, deliver DeliverFunc, onError FaultFunc) bool {
	c.reactor = r
	if !r.Register(c) {
		c.open.Store(false)
		return false
	}
	c.readNext(deliver, onError)
	return true
}

func (c *Connection) readNext(deliver DeliverFunc, onError FaultFunc) {
	Async(c.reactor, func() (readResult, error) {
		n, err := c.conn.Read(c.buf)
		return readResult{n: n}, err
	}, func(res readResult, err error) {
		if res.n > 0 {
			deliver(pdu.FromBytes(c.buf[:res.n]))
		}

		if err != nil {
			c.handleReadError(err, onError)
			return
		}

		c.readNext(deliver, onError)
	})
}

// handleReadError closes the connection and reports err unless the reactor
// is shutting down.
func (c *Connection) handleReadError(err error, onError FaultFunc) {
	c.Close()

	if c.reactor.Stopping() {
		return
	}

	if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
		c.log.WithField("error", err.Error()).Debug("Connection closed")
	} else {
		c.log.WithField("error", err.Error()).Warn("Connection read failed")
	}

	if onError != nil {
		onError(newSocketError(ErrTransportFault, "read", c.conn.RemoteAddr().String(), err))
	}
}
