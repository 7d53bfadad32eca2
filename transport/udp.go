package transport

import (
	"context"
	"net"
	"sync"

	"github.com/opd-ai/socketpdu/config"
	"github.com/opd-ai/socketpdu/pdu"
	"github.com/sirupsen/logrus"
)

// udpSocket implements both UDP modes. The server replies to the last peer it
// heard from; the client always sends to its configured target.
type udpSocket struct {
	mode     config.Mode
	conn     net.PacketConn
	buf      []byte
	reactor  *Reactor
	handlers Handlers
	log      *logrus.Entry

	peerMu sync.RWMutex
	peer   *net.UDPAddr
}

// newUDPServer binds endpoint and arms the receive loop. No peer is known
// until the first datagram arrives.
func newUDPServer(ctx context.Context, cfg config.Config, endpoint *Endpoint, r *Reactor, h Handlers, log *logrus.Entry) (*udpSocket, error) {
	return openUDP(ctx, cfg, endpoint.String(), nil, r, h, log)
}

// newUDPClient binds an ephemeral local port and pre-seeds the peer with the
// configured target.
func newUDPClient(ctx context.Context, cfg config.Config, endpoint *Endpoint, r *Reactor, h Handlers, log *logrus.Entry) (*udpSocket, error) {
	return openUDP(ctx, cfg, "0.0.0.0:0", endpoint.UDPAddr(), r, h, log)
}

func openUDP(ctx context.Context, cfg config.Config, bindAddr string, peer *net.UDPAddr, r *Reactor, h Handlers, log *logrus.Entry) (*udpSocket, error) {
	var lc net.ListenConfig
	conn, err := lc.ListenPacket(ctx, cfg.Mode.Network(), bindAddr)
	if err != nil {
		return nil, newSocketError(ErrConnectionFailure, "bind", bindAddr, err)
	}
	return serveUDP(cfg, conn, peer, r, h, log)
}

// serveUDP takes ownership of conn and arms the receive loop.
func serveUDP(cfg config.Config, conn net.PacketConn, peer *net.UDPAddr, r *Reactor, h Handlers, log *logrus.Entry) (*udpSocket, error) {
	u := &udpSocket{
		mode:     cfg.Mode,
		conn:     conn,
		buf:      make([]byte, cfg.MTU),
		reactor:  r,
		handlers: h,
		log:      log.WithField("local_addr", conn.LocalAddr().String()),
		peer:     peer,
	}

	if !r.Register(conn) {
		return nil, newSocketError(ErrConnectionFailure, "bind", conn.LocalAddr().String(), ErrReactorStopped)
	}

	u.receiveNext()

	u.log.Info("UDP socket bound")

	return u, nil
}

// receiveNext issues one receive-from into the shared buffer.
func (u *udpSocket) receiveNext() {
	Async(u.reactor, func() (readResult, error) {
		n, addr, err := u.conn.ReadFrom(u.buf)
		return readResult{n: n, addr: addr}, err
	}, u.handleReceive)
}

// handleReceive runs on the reactor loop. Zero-length datagrams are
// published as empty PDUs.
func (u *udpSocket) handleReceive(res readResult, err error) {
	if err != nil {
		if u.reactor.Stopping() {
			return
		}
		u.log.WithField("error", err.Error()).Error("UDP receive failed")
		if u.handlers.Fault != nil {
			u.handlers.Fault(newSocketError(ErrTransportFault, "read", u.conn.LocalAddr().String(), err))
		}
		return
	}

	if u.mode == config.UDPServer {
		if addr, ok := res.addr.(*net.UDPAddr); ok {
			u.setPeer(addr)
		}
	}

	u.handlers.Deliver(pdu.FromBytes(u.buf[:res.n]))
	u.receiveNext()
}

func (u *udpSocket) setPeer(addr *net.UDPAddr) {
	u.peerMu.Lock()
	u.peer = addr
	u.peerMu.Unlock()
}

// Peer returns the current send destination, or nil if none is known.
func (u *udpSocket) Peer() *net.UDPAddr {
	u.peerMu.RLock()
	defer u.peerMu.RUnlock()
	return u.peer
}

// Send writes chunk to the current peer. It returns ErrNoPeer when no
// destination is known yet.
func (u *udpSocket) Send(chunk []byte) error {
	peer := u.Peer()
	if peer == nil || peer.IP == nil || peer.IP.IsUnspecified() {
		return ErrNoPeer
	}

	if _, err := u.conn.WriteTo(chunk, peer); err != nil {
		return newSocketError(ErrTransportFault, "write", peer.String(), err)
	}
	return nil
}

// LocalAddr returns the bound address.
func (u *udpSocket) LocalAddr() net.Addr {
	return u.conn.LocalAddr()
}

// Connections reports zero; UDP keeps no connection registry.
func (u *udpSocket) Connections() (registered, open int) {
	return 0, 0
}
