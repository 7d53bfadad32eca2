// Package interfaces defines the message-port abstraction through which the
// socket PDU bridge is connected to a message bus.
//
// # Core Interfaces
//
// [MessagePort] is both halves of the bridge's bus attachment: the bridge
// publishes every PDU built from a socket read with Publish, and receives
// PDUs destined for its sockets through the [Handler] it installs with
// RegisterHandler.
//
//	unregister := port.RegisterHandler(func(p pdu.PDU) {
//	    // write p.Payload to the socket(s)
//	})
//	defer unregister()
//
//	port.Publish(pdu.FromBytes(buf[:n]))
//
// The bus package provides an in-memory implementation used by the socketpdu
// host and by tests. Other hosts (a flowgraph scheduler, a broker client)
// implement MessagePort directly.
//
// # Thread Safety
//
// Implementations must be safe for concurrent use. The bridge calls Publish
// from its reactor goroutine while handlers are invoked from whatever
// goroutine the bus uses to deliver inbound messages.
package interfaces
