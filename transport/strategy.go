package transport

import (
	"context"
	"fmt"
	"net"

	"github.com/opd-ai/socketpdu/config"
	"github.com/sirupsen/logrus"
)

// Strategy is the mode-specific half of a bridge: it owns the socket(s), runs
// the read loop on the reactor and writes outbound chunks.
type Strategy interface {
	// Send writes one chunk of at most MTU bytes. It runs on the caller's
	// goroutine and blocks until the transport accepts the bytes.
	Send(chunk []byte) error

	// LocalAddr returns the bound or connected local address.
	LocalAddr() net.Addr

	// Connections returns the registry size and the number of open
	// connections. The TCP client reports its single socket; UDP modes
	// report zero.
	Connections() (registered, open int)
}

// Handlers are the callbacks a strategy invokes from the reactor loop.
type Handlers struct {
	Deliver DeliverFunc
	Fault   FaultFunc
}

// Open opens the socket(s) for cfg.Mode on the endpoint returned by Resolve
// and arms the read loop on r. On error nothing opened by Open is left
// running.
func Open(ctx context.Context, cfg config.Config, endpoint *Endpoint, r *Reactor, h Handlers, log *logrus.Entry) (Strategy, error) {
	if log == nil {
		log = logrus.WithField("component", "transport")
	}

	log = log.WithFields(logrus.Fields{
		"mode":     cfg.Mode.String(),
		"endpoint": endpoint.String(),
	})

	switch cfg.Mode {
	case config.TCPServer:
		return newTCPServer(ctx, cfg, endpoint, r, h, log)
	case config.TCPClient:
		return newTCPClient(ctx, cfg, endpoint, r, h, log)
	case config.UDPServer:
		return newUDPServer(ctx, cfg, endpoint, r, h, log)
	case config.UDPClient:
		return newUDPClient(ctx, cfg, endpoint, r, h, log)
	default:
		return nil, newSocketError(ErrInvalidConfiguration, "open", "",
			fmt.Errorf("unknown socket mode %d", int(cfg.Mode)))
	}
}
