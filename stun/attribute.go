package stun

import (
	"encoding/binary"
	"fmt"
)

// Value is implemented by every known attribute variant in the catalog.
// Encode produces the attribute's value bytes (without the TLV header or
// padding); its length is used verbatim as the wire length field.
type Value interface {
	Type() AttrType
	Encode() ([]byte, error)
}

// BeforeEncoder is implemented by attributes that need to read or mutate
// themselves based on the rest of the message just before being written
// to the wire (XOR-*-ADDRESS, MESSAGE-INTEGRITY, FINGERPRINT).
type BeforeEncoder interface {
	BeforeEncode(pm *PartialMessage) error
}

// AfterDecoder is implemented by attributes that need to read the rest of
// the message just after being parsed from the wire, before the next
// attribute is decoded.
type AfterDecoder interface {
	AfterDecode(pm *PartialMessage) error
}

// PartialMessage is the view a BeforeEncode/AfterDecode hook sees: the
// message's header fields, and every attribute that precedes the one
// currently being processed, in wire order. An attribute must not mutate
// Prior; doing so has no effect on the bytes already framed.
type PartialMessage struct {
	Class         Class
	Method        Method
	TransactionID TransactionID
	Prior         []LosslessAttribute
}

// Prefix re-encodes the header and every attribute in Prior, exactly as
// they would appear on the wire, and returns those bytes with the header's
// length field set to cover Prior plus extraLen more bytes. extraLen lets
// a hook (FINGERPRINT, MESSAGE-INTEGRITY) reserve room for its own
// about-to-be-written TLV before computing a checksum over the prefix.
func (pm *PartialMessage) Prefix(extraLen int) ([]byte, error) {
	var body []byte
	for _, a := range pm.Prior {
		encoded, err := encodeLosslessAttribute(a)
		if err != nil {
			return nil, fmt.Errorf("stun: encoding prefix attribute %s: %w", a.Type, err)
		}
		body = append(body, encoded...)
	}

	header := make([]byte, messageHeaderSize)
	mt := MessageType{Class: pm.Class, Method: pm.Method}
	binary.BigEndian.PutUint16(header[0:2], mt.Value())
	binary.BigEndian.PutUint16(header[2:4], uint16(len(body)+extraLen))
	binary.BigEndian.PutUint32(header[4:8], MagicCookie)
	copy(header[8:messageHeaderSize], pm.TransactionID[:])

	return append(header, body...), nil
}

// Padding is the 0-3 zero bytes following an attribute's value, padding it
// to a 4-byte boundary. Captured verbatim on decode so a message can be
// re-encoded byte-exact even when the original padding was non-zero.
type Padding struct {
	Captured bool
	N        uint8
	Bytes    [3]byte
}

func paddingLen(valueLen int) int {
	return (4 - valueLen%4) % 4
}

// bytes returns the n padding bytes to emit for a value of the given
// length: the captured bytes if they were captured for a value of that
// same length, zeros otherwise.
func (p Padding) bytes(valueLen int) []byte {
	want := paddingLen(valueLen)
	if p.Captured && int(p.N) == want {
		return p.Bytes[:want]
	}
	return make([]byte, want)
}

// LosslessAttribute is one attribute as it travels through a Message: a
// recognized Value, or a raw, unmodeled one. Known is nil for raw
// attributes, in which case Raw holds the exact value bytes read from the
// wire (or set by the caller) and is emitted verbatim on encode.
type LosslessAttribute struct {
	Type    AttrType
	Known   Value
	Raw     []byte
	Padding Padding
}

// RawAttribute constructs an unmodeled, lossless attribute from a type and
// value bytes. Used both for genuinely unknown comprehension-optional
// attributes and for callers who want to emit an attribute this package
// has no variant for.
func RawAttribute(t AttrType, value []byte) LosslessAttribute {
	return LosslessAttribute{Type: t, Raw: append([]byte(nil), value...)}
}

// KnownAttribute wraps a catalog Value as a lossless attribute ready to be
// appended to a Message.
func KnownAttribute(v Value) LosslessAttribute {
	return LosslessAttribute{Type: v.Type(), Known: v}
}

func (a LosslessAttribute) valueBytes() ([]byte, error) {
	if a.Known != nil {
		return a.Known.Encode()
	}
	return a.Raw, nil
}

func (a LosslessAttribute) beforeEncode(pm *PartialMessage) error {
	if be, ok := a.Known.(BeforeEncoder); ok {
		return be.BeforeEncode(pm)
	}
	return nil
}

func (a LosslessAttribute) afterDecode(pm *PartialMessage) error {
	if ad, ok := a.Known.(AfterDecoder); ok {
		return ad.AfterDecode(pm)
	}
	return nil
}

// encodeLosslessAttribute implements the framed attribute encode contract
// (wire layout: 16-bit type, 16-bit length, value, 0-3 padding bytes).
func encodeLosslessAttribute(a LosslessAttribute) ([]byte, error) {
	value, err := a.valueBytes()
	if err != nil {
		return nil, err
	}
	if len(value) > 0xFFFF {
		return nil, invalidInput("attribute %s value length %d exceeds 0xFFFF", a.Type, len(value))
	}

	pad := a.Padding.bytes(len(value))

	out := make([]byte, attributeHeaderSize+len(value)+len(pad))
	binary.BigEndian.PutUint16(out[0:2], uint16(a.Type))
	binary.BigEndian.PutUint16(out[2:4], uint16(len(value)))
	copy(out[attributeHeaderSize:], value)
	copy(out[attributeHeaderSize+len(value):], pad)
	return out, nil
}

// decodeLosslessAttribute implements the framed attribute decode contract.
// decodeValue is the dispatcher's chosen decoder for this type, or nil if
// the type is unrecognized (in which case the attribute is preserved raw).
func decodeLosslessAttribute(t AttrType, value []byte, decodeValue func([]byte) (Value, error)) (LosslessAttribute, error) {
	a := LosslessAttribute{Type: t}
	if decodeValue == nil {
		a.Raw = append([]byte(nil), value...)
		return a, nil
	}
	v, err := decodeValue(value)
	if err != nil {
		return LosslessAttribute{}, fmt.Errorf("stun: decoding %s: %w", t, err)
	}
	a.Known = v
	return a, nil
}
