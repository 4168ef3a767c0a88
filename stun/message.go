package stun

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
)

// TransactionID is the 96-bit opaque correlation identifier carried in
// every STUN message header. Callers create it; this package never
// mutates one.
type TransactionID [transactionIDSize]byte

// NewTransactionID returns a random TransactionID using crypto/rand.
func NewTransactionID() (TransactionID, error) {
	var id TransactionID
	if _, err := rand.Read(id[:]); err != nil {
		return TransactionID{}, fmt.Errorf("stun: generating transaction id: %w", err)
	}
	return id, nil
}

// MessageType is the STUN message type field: a method and class packed
// into 14 bits per RFC 5389 Section 6 Figure 3.
type MessageType struct {
	Class  Class
	Method Method
}

// bit layout constants for the interleaved method/class packing.
const (
	methodABits = 0x000F
	methodBBits = 0x0070
	methodDBits = 0x0F80

	classC0Bit = 0x1
	classC1Bit = 0x2
)

// Value packs Class and Method into the 14-bit message type field.
//
//	bits (high to low): M11 M10 M9 M8 M7 C1 M6 M5 M4 C0 M3 M2 M1 M0
func (t MessageType) Value() uint16 {
	m := uint16(t.Method)
	a := m & methodABits
	b := m & methodBBits
	d := m & methodDBits

	c := uint16(t.Class)
	c0 := (c & classC0Bit) << 4
	c1 := (c & classC1Bit) << 7

	return a | (b << 1) | (d << 2) | c0 | c1
}

// ParseMessageType is the inverse of Value. It fails if the top two bits
// of v are set, which would make it a structurally invalid STUN header.
func ParseMessageType(v uint16) (MessageType, error) {
	if v&0xC000 != 0 {
		return MessageType{}, invalidInput("message type %#04x has nonzero top bits", v)
	}
	c0 := (v >> 4) & classC0Bit
	c1 := (v >> 7) & classC1Bit

	a := v & methodABits
	b := (v >> 1) & methodBBits
	d := (v >> 2) & methodDBits

	return MessageType{
		Class:  Class(c0 | c1),
		Method: Method(a | b | d),
	}, nil
}

// Message is a decoded STUN message: its header fields plus an ordered,
// lossless attribute sequence. Attribute order is preserved on both
// encode and decode.
type Message struct {
	Class         Class
	Method        Method
	TransactionID TransactionID
	Attributes    []LosslessAttribute
}

// NewMessage constructs a Message with a fresh transaction id.
func NewMessage(class Class, method Method) (*Message, error) {
	if method >= 0x1000 {
		return nil, domainViolation("method %#x >= 0x1000", uint16(method))
	}
	tid, err := NewTransactionID()
	if err != nil {
		return nil, err
	}
	return &Message{Class: class, Method: method, TransactionID: tid}, nil
}

// Add appends a known attribute to the message.
func (m *Message) Add(v Value) {
	m.Attributes = append(m.Attributes, KnownAttribute(v))
}

// AddRaw appends an unmodeled attribute to the message.
func (m *Message) AddRaw(t AttrType, value []byte) {
	m.Attributes = append(m.Attributes, RawAttribute(t, value))
}

// GetAttribute returns the first known attribute whose dynamic type
// matches the type parameter T (a catalog Value type, e.g.
// *stun.Software), and reports whether one was found.
func GetAttribute[T Value](m *Message) (T, bool) {
	for _, a := range m.Attributes {
		if v, ok := a.Known.(T); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// UnknownAttributesList returns, in wire order, the attribute types this
// package's dispatcher did not recognize while decoding m. Callers
// implementing strict RFC 5389 Section 7.3 behavior should reject the
// transaction if any of these IsComprehensionRequired.
func (m *Message) UnknownAttributesList() []AttrType {
	var out []AttrType
	for _, a := range m.Attributes {
		if a.Known == nil {
			out = append(out, a.Type)
		}
	}
	return out
}

func (m *Message) messageType() MessageType {
	return MessageType{Class: m.Class, Method: m.Method}
}

// runBeforeEncode fires BeforeEncode on every attribute in order, each
// seeing only the attributes that precede it.
func (m *Message) runBeforeEncode() error {
	for i := range m.Attributes {
		pm := &PartialMessage{
			Class:         m.Class,
			Method:        m.Method,
			TransactionID: m.TransactionID,
			Prior:         m.Attributes[:i],
		}
		if err := m.Attributes[i].beforeEncode(pm); err != nil {
			return fmt.Errorf("stun: before-encode %s: %w", m.Attributes[i].Type, err)
		}
	}
	return nil
}

// runAfterDecode fires AfterDecode on every attribute in order, each
// seeing only the attributes that precede it.
func (m *Message) runAfterDecode() error {
	for i := range m.Attributes {
		pm := &PartialMessage{
			Class:         m.Class,
			Method:        m.Method,
			TransactionID: m.TransactionID,
			Prior:         m.Attributes[:i],
		}
		if err := m.Attributes[i].afterDecode(pm); err != nil {
			return fmt.Errorf("stun: after-decode %s: %w", m.Attributes[i].Type, err)
		}
	}
	return nil
}

// Encode serializes m to its wire representation. BeforeEncode fires on
// each attribute first, in order; the final 16-bit length is written last.
func (m *Message) Encode() ([]byte, error) {
	if err := m.runBeforeEncode(); err != nil {
		return nil, err
	}

	var body []byte
	for _, a := range m.Attributes {
		encoded, err := encodeLosslessAttribute(a)
		if err != nil {
			return nil, fmt.Errorf("stun: encoding %s: %w", a.Type, err)
		}
		body = append(body, encoded...)
	}
	if len(body) > 0xFFFF {
		return nil, invalidInput("message attribute section length %d exceeds 0xFFFF", len(body))
	}

	out := make([]byte, messageHeaderSize+len(body))
	binary.BigEndian.PutUint16(out[0:2], m.messageType().Value())
	binary.BigEndian.PutUint16(out[2:4], uint16(len(body)))
	binary.BigEndian.PutUint32(out[4:8], MagicCookie)
	copy(out[8:messageHeaderSize], m.TransactionID[:])
	copy(out[messageHeaderSize:], body)
	return out, nil
}

// BrokenMessage is returned by Decode when the header parsed cleanly but
// the attribute section did not. It is a success result of decoding, not
// a stream-level error: it still carries enough of the message for a
// server to build a response (e.g. a 420 UNKNOWN-ATTRIBUTE).
type BrokenMessage struct {
	Class         Class
	Method        Method
	TransactionID TransactionID
	Err           error
}

func (b *BrokenMessage) Error() string {
	return fmt.Sprintf("stun: broken message (method=%s class=%s): %v", b.Method, b.Class, b.Err)
}

func (b *BrokenMessage) Unwrap() error { return b.Err }

// Decode parses a STUN message from data. On success it returns a
// *Message. If the header is well-formed but an attribute fails to parse,
// it returns a *BrokenMessage (itself a non-nil error) rather than a bare
// error, so the caller can still inspect method/class/transaction id and
// respond.
func Decode(data []byte, profile *Profile) (*Message, error) {
	if len(data) < messageHeaderSize {
		return nil, invalidInput("message too short: %d bytes", len(data))
	}

	rawType := binary.BigEndian.Uint16(data[0:2])
	length := int(binary.BigEndian.Uint16(data[2:4]))
	cookie := binary.BigEndian.Uint32(data[4:8])

	mt, err := ParseMessageType(rawType)
	if err != nil {
		return nil, err
	}
	if cookie != MagicCookie {
		return nil, invalidInput("bad magic cookie %#08x", cookie)
	}

	var tid TransactionID
	copy(tid[:], data[8:messageHeaderSize])

	m := &Message{Class: mt.Class, Method: mt.Method, TransactionID: tid}

	// A declared length that overruns the data is an attribute-section
	// failure, not a header failure: the header parsed cleanly, so the
	// caller still gets a BrokenMessage it can respond to.
	section := data[messageHeaderSize:]
	if length > len(section) {
		err := invalidInput("message length %d exceeds available %d", length, len(section))
		return nil, &BrokenMessage{Class: mt.Class, Method: mt.Method, TransactionID: tid, Err: err}
	}

	attrs, decodeErr := decodeAttributes(section[:length], profile)
	if decodeErr != nil {
		return nil, &BrokenMessage{Class: mt.Class, Method: mt.Method, TransactionID: tid, Err: decodeErr}
	}
	m.Attributes = attrs

	if err := m.runAfterDecode(); err != nil {
		return nil, &BrokenMessage{Class: mt.Class, Method: mt.Method, TransactionID: tid, Err: err}
	}

	return m, nil
}

// decodeAttributes parses the length-bounded attribute section per the
// framed attribute decode contract of Section 4.2.
func decodeAttributes(section []byte, profile *Profile) ([]LosslessAttribute, error) {
	var attrs []LosslessAttribute
	offset := 0

	for offset < len(section) {
		if len(section)-offset < attributeHeaderSize {
			return nil, invalidInput("attribute header truncated at offset %d", offset)
		}
		t := AttrType(binary.BigEndian.Uint16(section[offset : offset+2]))
		valueLen := int(binary.BigEndian.Uint16(section[offset+2 : offset+4]))
		offset += attributeHeaderSize

		if len(section)-offset < valueLen {
			return nil, invalidInput("attribute %s value truncated: need %d, have %d", t, valueLen, len(section)-offset)
		}
		value := section[offset : offset+valueLen]
		offset += valueLen

		pad := paddingLen(valueLen)
		if len(section)-offset < pad {
			return nil, invalidInput("attribute %s padding truncated", t)
		}
		var padding Padding
		if pad > 0 {
			padding.Captured = true
			padding.N = uint8(pad)
			copy(padding.Bytes[:], section[offset:offset+pad])
		}
		offset += pad

		var decodeValue func([]byte) (Value, error)
		if profile != nil {
			decodeValue = profile.decoder(t)
		}
		attr, err := decodeLosslessAttribute(t, value, decodeValue)
		if err != nil {
			return nil, err
		}
		attr.Padding = padding
		attrs = append(attrs, attr)
	}

	return attrs, nil
}
