package interfaces

import "github.com/opd-ai/socketpdu/pdu"

// Handler processes a PDU delivered to the bridge's inbound port.
type Handler func(p pdu.PDU)

// Publisher accepts PDUs on an outbound port.
type Publisher interface {
	// Publish hands a PDU to the bus. It must not retain the payload
	// beyond the lifetime the bus guarantees to its subscribers.
	Publish(p pdu.PDU)
}

// MessagePort is the bridge's attachment to a message bus.
type MessagePort interface {
	Publisher

	// RegisterHandler installs the inbound handler, replacing any
	// previously registered one. The returned function removes it.
	RegisterHandler(handler Handler) (unregister func())
}
