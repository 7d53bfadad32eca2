package pdu

import "fmt"

// Metadata is the opaque tag half of a PDU. The bridge never inspects it.
type Metadata map[string]any

// PDU is a discrete message consisting of metadata and an opaque payload.
type PDU struct {
	Metadata Metadata `cbor:"1,keyasint,omitempty"`
	Payload  []byte   `cbor:"2,keyasint"`
}

// FromBytes builds a PDU with empty metadata holding a private copy of b.
// Callers may reuse b as soon as FromBytes returns.
func FromBytes(b []byte) PDU {
	payload := make([]byte, len(b))
	copy(payload, b)
	return PDU{Payload: payload}
}

// Len returns the payload length.
func (p PDU) Len() int {
	return len(p.Payload)
}

// String returns a short description suitable for logging.
func (p PDU) String() string {
	return fmt.Sprintf("pdu(meta=%d, len=%d)", len(p.Metadata), len(p.Payload))
}
