// Package socketpdu bridges a network socket and a message port.
//
// A Bridge owns one socket endpoint in one of four modes and relays payloads
// in both directions:
//
//   - every datagram or stream read from the socket is published on the port
//     as a PDU with empty metadata
//   - every PDU delivered by the port has its payload written to the socket,
//     split into chunks of at most the configured MTU
//
// # Getting Started
//
//	cfg := config.Default()
//	cfg.Mode = config.UDPServer
//	cfg.Port = "9999"
//
//	port := bus.NewMemoryPort(64)
//	bridge, err := socketpdu.New(ctx, cfg, port)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer bridge.Stop()
//
//	for p := range port.Outbound() {
//	    fmt.Printf("received %d bytes\n", p.Len())
//	}
//
// # Modes
//
//   - [config.TCPServer]: listens, accepts any number of clients, fans every
//     outbound payload out to all open clients
//   - [config.TCPClient]: connects once at construction, no reconnect
//   - [config.UDPServer]: binds, replies to the sender of the most recent
//     datagram; sends before any datagram arrives are dropped
//   - [config.UDPClient]: binds an ephemeral port, sends to the configured
//     target
//
// # Errors
//
// Construction errors wrap one of [transport.ErrInvalidConfiguration],
// [transport.ErrResolutionFailure] or [transport.ErrConnectionFailure].
// Runtime read failures are reported on [Bridge.Faults] wrapping
// [transport.ErrTransportFault]. TCP server accept errors are logged and the
// accept is retried with backoff.
//
// # Concurrency
//
// All socket completions run on a single reactor goroutine. Send may be
// called from any goroutine; the chunks of one payload are never interleaved
// with another's.
package socketpdu
