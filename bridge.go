package socketpdu

import (
	"context"
	"errors"
	"net"
	"sync"
	"sync/atomic"

	"github.com/opd-ai/socketpdu/config"
	"github.com/opd-ai/socketpdu/interfaces"
	"github.com/opd-ai/socketpdu/pdu"
	"github.com/opd-ai/socketpdu/transport"
	"github.com/sirupsen/logrus"
)

// DefaultFaultBuffer is the capacity of the Faults channel unless overridden
// with WithFaultBuffer.
const DefaultFaultBuffer = 16

// Option configures a Bridge at construction time.
type Option func(*Bridge)

// WithLogger sets the base log entry. Component fields are added on top.
func WithLogger(entry *logrus.Entry) Option {
	return func(b *Bridge) {
		if entry != nil {
			b.log = entry
		}
	}
}

// WithFaultBuffer sets the capacity of the Faults channel. Faults raised
// while the channel is full are logged and dropped.
func WithFaultBuffer(n int) Option {
	return func(b *Bridge) {
		if n >= 0 {
			b.faultBuffer = n
		}
	}
}

// Stats is a point-in-time snapshot of bridge counters.
type Stats struct {
	// Socket to port direction.
	PDUsPublished  uint64
	BytesPublished uint64

	// Port to socket direction.
	PDUsSent     uint64
	BytesSent    uint64
	ChunksSent   uint64
	DroppedSends uint64
	SendErrors   uint64

	Faults        uint64
	DroppedFaults uint64

	// Connection registry (TCP modes only).
	Connections     int
	OpenConnections int
}

// Bridge relays payloads between one socket endpoint and a message port.
//
// Every datagram or stream read from the socket is published as a PDU with
// empty metadata. Every PDU delivered by the port has its payload written to
// the socket, split into chunks of at most the configured MTU.
type Bridge struct {
	cfg        config.Config
	port       interfaces.MessagePort
	reactor    *transport.Reactor
	strategy   transport.Strategy
	unregister func()

	faults      chan error
	faultBuffer int

	// sendMu keeps the chunks of one payload contiguous on the wire.
	sendMu sync.Mutex

	pdusPublished  atomic.Uint64
	bytesPublished atomic.Uint64
	pdusSent       atomic.Uint64
	bytesSent      atomic.Uint64
	chunksSent     atomic.Uint64
	droppedSends   atomic.Uint64
	sendErrors     atomic.Uint64
	faultCount     atomic.Uint64
	droppedFaults  atomic.Uint64

	stopOnce sync.Once
	log      *logrus.Entry
}

// New validates cfg, opens the socket for cfg.Mode and starts relaying.
//
// Construction fails with an error wrapping transport.ErrInvalidConfiguration,
// transport.ErrResolutionFailure or transport.ErrConnectionFailure. On failure
// nothing is left running.
func New(ctx context.Context, cfg config.Config, port interfaces.MessagePort, opts ...Option) (*Bridge, error) {
	if port == nil {
		return nil, &transport.SocketError{
			Kind: transport.ErrInvalidConfiguration,
			Op:   "configure",
			Err:  errors.New("message port is nil"),
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, &transport.SocketError{
			Kind: transport.ErrInvalidConfiguration,
			Op:   "configure",
			Err:  err,
		}
	}

	b := &Bridge{
		cfg:         cfg,
		port:        port,
		faultBuffer: DefaultFaultBuffer,
		log:         logrus.NewEntry(logrus.StandardLogger()),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.log = b.log.WithFields(logrus.Fields{
		"component": "SocketPDU",
		"mode":      cfg.Mode.String(),
	})
	b.faults = make(chan error, b.faultBuffer)

	endpoint, err := transport.Resolve(ctx, cfg)
	if err != nil {
		b.log.WithError(err).Error("Failed to resolve endpoint")
		return nil, err
	}

	b.reactor = transport.NewReactor(b.log.WithField("component", "Reactor"))

	strategy, err := transport.Open(ctx, cfg, endpoint, b.reactor, transport.Handlers{
		Deliver: b.publish,
		Fault:   b.reportFault,
	}, b.log.WithField("component", "transport"))
	if err != nil {
		b.reactor.Stop()
		b.log.WithError(err).Error("Failed to open socket")
		return nil, err
	}
	b.strategy = strategy
	b.unregister = port.RegisterHandler(b.HandlePDU)

	b.log.WithFields(logrus.Fields{
		"local_addr": strategy.LocalAddr().String(),
		"mtu":        cfg.MTU,
		"no_delay":   cfg.NoDelay,
	}).Info("Socket PDU bridge started")

	return b, nil
}

// publish runs on the reactor loop for every received datagram or read.
func (b *Bridge) publish(p pdu.PDU) {
	b.pdusPublished.Add(1)
	b.bytesPublished.Add(uint64(p.Len()))
	b.port.Publish(p)
}

// reportFault runs on the reactor loop. It never blocks.
func (b *Bridge) reportFault(err error) {
	b.faultCount.Add(1)
	select {
	case b.faults <- err:
	default:
		b.droppedFaults.Add(1)
		b.log.WithField("error", err.Error()).Warn("Fault channel full, dropping fault")
	}
}

// HandlePDU is the inbound handler registered on the message port. Metadata
// is ignored; send failures are logged.
func (b *Bridge) HandlePDU(p pdu.PDU) {
	if err := b.Send(p.Payload); err != nil {
		b.log.WithFields(logrus.Fields{
			"payload_size": p.Len(),
			"error":        err.Error(),
		}).Error("Failed to send PDU")
	}
}

// Send writes payload to the socket in chunks of at most MTU bytes. An empty
// payload writes nothing. When no peer can receive it (a UDP server that has
// not heard from anyone, a TCP server with no open connection) the payload
// is dropped, counted in Stats.DroppedSends, and Send returns nil.
func (b *Bridge) Send(payload []byte) error {
	if b.reactor.Stopping() {
		return &transport.SocketError{
			Kind: transport.ErrTransportFault,
			Op:   "send",
			Err:  transport.ErrReactorStopped,
		}
	}

	b.sendMu.Lock()
	defer b.sendMu.Unlock()

	chunks, err := forEachChunk(payload, b.cfg.MTU, b.strategy.Send)
	b.chunksSent.Add(uint64(chunks))

	switch {
	case errors.Is(err, transport.ErrNoPeer):
		b.droppedSends.Add(1)
		b.log.WithField("payload_size", len(payload)).Debug("No peer to send to, dropping payload")
		return nil
	case err != nil:
		b.sendErrors.Add(1)
		var se *transport.SocketError
		if !errors.As(err, &se) {
			err = &transport.SocketError{Kind: transport.ErrTransportFault, Op: "send", Err: err}
		}
		return err
	}

	if chunks > 0 {
		b.pdusSent.Add(1)
		b.bytesSent.Add(uint64(len(payload)))
	}
	return nil
}

// Faults returns the channel on which runtime read faults are reported. It is
// closed by Stop.
func (b *Bridge) Faults() <-chan error {
	return b.faults
}

// LocalAddr returns the bound local address of the socket.
func (b *Bridge) LocalAddr() net.Addr {
	return b.strategy.LocalAddr()
}

// Config returns the configuration the bridge was built with.
func (b *Bridge) Config() config.Config {
	return b.cfg
}

// Stats returns a snapshot of the bridge counters.
func (b *Bridge) Stats() Stats {
	registered, open := b.strategy.Connections()
	return Stats{
		PDUsPublished:   b.pdusPublished.Load(),
		BytesPublished:  b.bytesPublished.Load(),
		PDUsSent:        b.pdusSent.Load(),
		BytesSent:       b.bytesSent.Load(),
		ChunksSent:      b.chunksSent.Load(),
		DroppedSends:    b.droppedSends.Load(),
		SendErrors:      b.sendErrors.Load(),
		Faults:          b.faultCount.Load(),
		DroppedFaults:   b.droppedFaults.Load(),
		Connections:     registered,
		OpenConnections: open,
	}
}

// Done is closed once Stop has completed.
func (b *Bridge) Done() <-chan struct{} {
	return b.reactor.Done()
}

// Stop unregisters the inbound handler, closes every socket and waits for the
// read loop to exit. It is idempotent.
func (b *Bridge) Stop() error {
	b.stopOnce.Do(func() {
		if b.unregister != nil {
			b.unregister()
		}
		b.reactor.Stop()
		close(b.faults)

		stats := b.Stats()
		b.log.WithFields(logrus.Fields{
			"pdus_published": stats.PDUsPublished,
			"pdus_sent":      stats.PDUsSent,
			"dropped_sends":  stats.DroppedSends,
			"faults":         stats.Faults,
		}).Info("Socket PDU bridge stopped")
	})
	return nil
}
