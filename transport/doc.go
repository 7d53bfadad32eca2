// Package transport implements the socket half of the PDU bridge: endpoint
// resolution, the reactor event loop and the four mode strategies.
//
// # Architecture
//
// Every bridge owns one Reactor. Blocking socket calls (accept, read,
// receive-from) are issued through Async; the call runs on a helper goroutine
// and its completion is posted back to the reactor's loop goroutine, so all
// continuations of one bridge run serially. Writes are synchronous and run on
// the caller's goroutine.
//
//	endpoint, err := transport.Resolve(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//
//	r := transport.NewReactor(nil)
//	defer r.Stop()
//
//	s, err := transport.Open(ctx, cfg, endpoint, r, transport.Handlers{
//	    Deliver: func(p pdu.PDU) { port.Publish(p) },
//	    Fault:   func(err error) { faults <- err },
//	}, nil)
//
// # Modes
//
// TCP server: listens with SO_REUSEADDR, accepts any number of peers and
// writes each chunk to every open one. A send that reaches no peer returns
// ErrNoPeer. Closed peers are swept from the
// registry at the next accept. A failed accept is logged and retried with an
// exponential delay.
//
// TCP client: connects once at Open. A read failure is reported through
// Handlers.Fault and ends the read loop.
//
// UDP server: binds the endpoint and replies to the sender of the most
// recent datagram. Sends before any datagram has arrived return ErrNoPeer.
//
// UDP client: binds an ephemeral port and always sends to the configured
// target.
//
// # Errors
//
// All errors are *SocketError values wrapping one of ErrInvalidConfiguration,
// ErrResolutionFailure, ErrConnectionFailure or ErrTransportFault together
// with the underlying cause.
package transport
