package bus

import (
	"errors"
	"sync"
	"time"

	"github.com/opd-ai/socketpdu/interfaces"
	"github.com/opd-ai/socketpdu/pdu"
	"github.com/sirupsen/logrus"
)

// MaxDeliveryLog is the number of most recent records kept in the delivery
// log. Older records are overwritten.
const MaxDeliveryLog = 1024

// ErrNoHandler is returned by Deliver when no inbound handler is registered.
var ErrNoHandler = errors.New("no inbound handler registered")

// Direction tells which way a recorded PDU travelled.
type Direction int

const (
	// Inbound PDUs travel from the bus towards the sockets.
	Inbound Direction = iota
	// Outbound PDUs travel from the sockets onto the bus.
	Outbound
)

// String returns the direction name.
func (d Direction) String() string {
	if d == Inbound {
		return "inbound"
	}
	return "outbound"
}

// DeliveryRecord represents one PDU that passed through the port.
type DeliveryRecord struct {
	Direction   Direction
	PayloadSize int
	Timestamp   time.Time
	Success     bool
}

// MemoryPort is an in-memory interfaces.MessagePort.
type MemoryPort struct {
	outbound chan pdu.PDU

	mu         sync.RWMutex
	handler    interfaces.Handler
	generation uint64
	log        []DeliveryRecord // ring of at most MaxDeliveryLog records
	next       int              // slot of the next record once the ring is full
}

var _ interfaces.MessagePort = (*MemoryPort)(nil)

// NewMemoryPort creates a port whose outbound queue holds up to capacity PDUs.
func NewMemoryPort(capacity int) *MemoryPort {
	if capacity < 0 {
		capacity = 0
	}
	return &MemoryPort{
		outbound: make(chan pdu.PDU, capacity),
		log:      make([]DeliveryRecord, 0, 64),
	}
}

// Publish implements interfaces.Publisher. It never blocks.
func (m *MemoryPort) Publish(p pdu.PDU) {
	select {
	case m.outbound <- p:
		m.record(Outbound, p.Len(), true)
	default:
		m.record(Outbound, p.Len(), false)
		logrus.WithFields(logrus.Fields{
			"component":    "MemoryPort",
			"payload_size": p.Len(),
		}).Warn("Dropped outbound PDU due to full queue")
	}
}

// RegisterHandler implements interfaces.MessagePort.
func (m *MemoryPort) RegisterHandler(handler interfaces.Handler) func() {
	m.mu.Lock()
	m.generation++
	gen := m.generation
	m.handler = handler
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		// Only remove the handler if it has not been replaced since.
		if m.generation == gen {
			m.handler = nil
		}
	}
}

// Deliver hands p to the registered inbound handler on the caller's goroutine.
func (m *MemoryPort) Deliver(p pdu.PDU) error {
	m.mu.RLock()
	handler := m.handler
	m.mu.RUnlock()

	if handler == nil {
		m.record(Inbound, p.Len(), false)
		return ErrNoHandler
	}

	handler(p)
	m.record(Inbound, p.Len(), true)
	return nil
}

// Outbound returns the channel carrying PDUs published by the bridge.
func (m *MemoryPort) Outbound() <-chan pdu.PDU {
	return m.outbound
}

// HasHandler reports whether an inbound handler is registered.
func (m *MemoryPort) HasHandler() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.handler != nil
}

// GetDeliveryLog returns a copy of the delivery log, oldest record first.
func (m *MemoryPort) GetDeliveryLog() []DeliveryRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]DeliveryRecord, 0, len(m.log))
	out = append(out, m.log[m.next:]...)
	out = append(out, m.log[:m.next]...)
	return out
}

// ClearDeliveryLog empties the delivery log.
func (m *MemoryPort) ClearDeliveryLog() {
	m.mu.Lock()
	m.log = m.log[:0]
	m.next = 0
	m.mu.Unlock()
}

func (m *MemoryPort) record(dir Direction, size int, ok bool) {
	rec := DeliveryRecord{
		Direction:   dir,
		PayloadSize: size,
		Timestamp:   time.Now(),
		Success:     ok,
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.log) < MaxDeliveryLog {
		m.log = append(m.log, rec)
		return
	}
	m.log[m.next] = rec
	m.next = (m.next + 1) % MaxDeliveryLog
}
