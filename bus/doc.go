// Package bus provides an in-memory message port for the socket PDU bridge.
//
// # Overview
//
// MemoryPort implements interfaces.MessagePort without any external broker.
// It is what the socketpdu host uses to connect a bridge to its standard
// streams, and what tests use to observe publications and inject inbound
// PDUs deterministically.
//
// Outbound PDUs (published by the bridge) are queued on a buffered channel
// and recorded in a delivery log. Inbound PDUs are handed to the registered
// handler synchronously on the caller's goroutine, the same way a flowgraph
// scheduler invokes a block's message handler.
//
// # Usage
//
//	port := bus.NewMemoryPort(64)
//	b, err := socketpdu.New(ctx, cfg, port)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer b.Stop()
//
//	// Deliver a PDU to the bridge's inbound port
//	if err := port.Deliver(pdu.PDU{Payload: []byte("world")}); err != nil {
//	    log.Printf("no bridge attached: %v", err)
//	}
//
//	// Receive PDUs the bridge built from socket reads
//	p := <-port.Outbound()
//
// # Back-pressure
//
// When the outbound channel is full, Publish drops the PDU and logs a
// warning rather than blocking the bridge's reactor. The drop is recorded in
// the delivery log with Success=false.
package bus
