package pdu

import (
	"io"
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

// encMode uses Core Deterministic Encoding so identical PDUs always produce
// identical bytes.
var encMode cbor.EncMode

// decMode decodes any-typed metadata values into map[string]any rather than
// the CBOR default map[interface{}]interface{}.
var decMode cbor.DecMode

func init() {
	var err error

	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("pdu: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("pdu: CBOR decoder initialization failed: " + err.Error())
	}
}

// Marshal encodes p to CBOR.
func Marshal(p PDU) ([]byte, error) {
	return encMode.Marshal(p)
}

// Unmarshal decodes a CBOR-encoded PDU.
func Unmarshal(data []byte) (PDU, error) {
	var p PDU
	err := decMode.Unmarshal(data, &p)
	return p, err
}

// Encoder writes a stream of CBOR-encoded PDUs.
type Encoder struct {
	enc *cbor.Encoder
}

// NewEncoder returns an encoder writing to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{enc: encMode.NewEncoder(w)}
}

// Encode writes one PDU as a single CBOR data item.
func (e *Encoder) Encode(p PDU) error {
	return e.enc.Encode(p)
}

// Decoder reads a stream of CBOR-encoded PDUs.
type Decoder struct {
	dec *cbor.Decoder
}

// NewDecoder returns a decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{dec: decMode.NewDecoder(r)}
}

// Decode reads the next PDU. It returns io.EOF at the end of the stream.
func (d *Decoder) Decode() (PDU, error) {
	var p PDU
	err := d.dec.Decode(&p)
	return p, err
}
