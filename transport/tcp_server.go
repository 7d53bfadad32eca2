package transport

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/opd-ai/socketpdu/config"
	"github.com/sirupsen/logrus"
)

// Accept retry delays after a failed accept.
const (
	acceptRetryInitial = 5 * time.Millisecond
	acceptRetryMax     = time.Second
)

// tcpServer accepts any number of peers and fans every send out to all of
// them. The registry is mutated only on the reactor loop and read by senders
// under the lock.
type tcpServer struct {
	cfg      config.Config
	listener net.Listener
	reactor  *Reactor
	handlers Handlers
	log      *logrus.Entry

	// retry is only touched on the reactor loop.
	retry backoff.BackOff

	mu          sync.RWMutex
	connections []*Connection
}

// newTCPServer binds the listener with address reuse enabled.
func newTCPServer(ctx context.Context, cfg config.Config, endpoint *Endpoint, r *Reactor, h Handlers, log *logrus.Entry) (*tcpServer, error) {
	listener, err := listenConfig().Listen(ctx, cfg.Mode.Network(), endpoint.String())
	if err != nil {
		return nil, newSocketError(ErrConnectionFailure, "listen", endpoint.String(), err)
	}
	return serveTCP(cfg, listener, r, h, log)
}

// serveTCP takes ownership of listener and arms the first accept.
func serveTCP(cfg config.Config, listener net.Listener, r *Reactor, h Handlers, log *logrus.Entry) (*tcpServer, error) {
	retry := backoff.NewExponentialBackOff()
	retry.InitialInterval = acceptRetryInitial
	retry.MaxInterval = acceptRetryMax
	retry.MaxElapsedTime = 0
	retry.Reset()

	s := &tcpServer{
		cfg:      cfg,
		listener: listener,
		reactor:  r,
		handlers: h,
		log:      log.WithField("local_addr", listener.Addr().String()),
		retry:    retry,
	}

	if !r.Register(listener) {
		return nil, newSocketError(ErrConnectionFailure, "listen", listener.Addr().String(), ErrReactorStopped)
	}

	s.startAccept(0)

	s.log.Info("TCP server listening")

	return s, nil
}

// startAccept issues the next accept, optionally after delay.
func (s *tcpServer) startAccept(delay time.Duration) {
	ctx := s.reactor.Context()

	Async(s.reactor, func() (net.Conn, error) {
		if delay > 0 {
			timer := time.NewTimer(delay)
			defer timer.Stop()
			select {
			case <-timer.C:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		return s.listener.Accept()
	}, s.handleAccept)
}

// handleAccept runs on the reactor loop after every accept attempt. It always
// re-arms the next accept unless the listener is gone.
func (s *tcpServer) handleAccept(conn net.Conn, err error) {
	if err != nil {
		if s.reactor.Stopping() || errors.Is(err, net.ErrClosed) {
			return
		}
		delay := s.retry.NextBackOff()
		s.log.WithFields(logrus.Fields{
			"error":    err.Error(),
			"retry_in": delay.String(),
		}).Error("Accept failed")
		s.startAccept(delay)
		return
	}

	s.retry.Reset()
	s.collectGarbage()

	c := newConnection(conn, s.cfg.MTU, s.log)
	c.setNoDelay(s.cfg.NoDelay)
	if !c.start(s.reactor, s.handlers.Deliver, nil) {
		return
	}

	s.mu.Lock()
	s.connections = append(s.connections, c)
	count := len(s.connections)
	s.mu.Unlock()

	c.log.WithField("registered", count).Info("Accepted connection")

	s.startAccept(0)
}

// collectGarbage drops every registered connection whose socket is closed.
// It runs only from handleAccept; closed connections stay registered until
// the next successful accept.
func (s *tcpServer) collectGarbage() {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.connections[:0]
	for _, c := range s.connections {
		if c.IsOpen() {
			kept = append(kept, c)
			continue
		}
		c.log.Debug("Removed closed connection from registry")
	}
	for i := len(kept); i < len(s.connections); i++ {
		s.connections[i] = nil
	}
	s.connections = kept
}

// snapshot returns the registry contents in order.
func (s *tcpServer) snapshot() []*Connection {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Connection, len(s.connections))
	copy(out, s.connections)
	return out
}

// Send writes chunk to every open registered connection in registry order.
// A peer whose write fails is closed and skipped; the others still receive
// the chunk. The registry lock is not held while writing. It returns
// ErrNoPeer when no peer received the chunk.
func (s *tcpServer) Send(chunk []byte) error {
	delivered := 0
	for _, c := range s.snapshot() {
		if !c.IsOpen() {
			continue
		}
		if err := c.Send(chunk); err != nil {
			c.log.WithField("error", err.Error()).Warn("Write to peer failed, closing connection")
			continue
		}
		delivered++
	}
	if delivered == 0 {
		return ErrNoPeer
	}
	return nil
}

// LocalAddr returns the listening address.
func (s *tcpServer) LocalAddr() net.Addr {
	return s.listener.Addr()
}

// Connections returns the registry size and how many entries are still open.
func (s *tcpServer) Connections() (registered, open int) {
	for _, c := range s.snapshot() {
		registered++
		if c.IsOpen() {
			open++
		}
	}
	return registered, open
}
