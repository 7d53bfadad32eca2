// Package pdu defines the protocol data unit exchanged over the message bus:
// an opaque metadata map plus a raw byte payload.
//
// PDUs produced from socket reads always carry empty metadata and a payload
// holding exactly the bytes of one completed read. When written to a socket
// only the payload is transmitted.
//
// The CBOR codec in this package is used when PDUs have to cross a process
// boundary, for example on the standard output of the socketpdu host:
//
//	enc := pdu.NewEncoder(os.Stdout)
//	if err := enc.Encode(p); err != nil {
//	    log.Fatal(err)
//	}
package pdu
