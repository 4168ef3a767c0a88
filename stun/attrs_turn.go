package stun

import "encoding/binary"

// ChannelNumber is the CHANNEL-NUMBER attribute, RFC 5766 Section 14.1: a
// 16-bit channel number in [0x4000, 0x4FFF], carried in the high half of a
// 32-bit value whose low half is reserved (0).
type ChannelNumber struct {
	Number uint16
}

// NewChannelNumber validates the 0x4000..0x4FFF domain constraint.
func NewChannelNumber(n uint16) (*ChannelNumber, error) {
	if n < 0x4000 || n > 0x4FFF {
		return nil, domainViolation("channel number %#04x out of [0x4000,0x4FFF]", n)
	}
	return &ChannelNumber{Number: n}, nil
}

func (a *ChannelNumber) Type() AttrType { return AttrChannelNumber }

func (a *ChannelNumber) Encode() ([]byte, error) {
	out := make([]byte, 4)
	binary.BigEndian.PutUint16(out[0:2], a.Number)
	return out, nil
}

func decodeChannelNumber(v []byte) (Value, error) {
	if len(v) != 4 {
		return nil, invalidInput("CHANNEL-NUMBER value length %d != 4", len(v))
	}
	return &ChannelNumber{Number: binary.BigEndian.Uint16(v[0:2])}, nil
}

// Lifetime is the LIFETIME attribute, RFC 5766 Section 14.2: a duration in
// seconds.
type Lifetime struct {
	Seconds uint32
}

func (a *Lifetime) Type() AttrType { return AttrLifetime }

func (a *Lifetime) Encode() ([]byte, error) {
	out := make([]byte, 4)
	binary.BigEndian.PutUint32(out, a.Seconds)
	return out, nil
}

func decodeLifetime(v []byte) (Value, error) {
	if len(v) != 4 {
		return nil, invalidInput("LIFETIME value length %d != 4", len(v))
	}
	return &Lifetime{Seconds: binary.BigEndian.Uint32(v)}, nil
}

// XORPeerAddress is the XOR-PEER-ADDRESS attribute, RFC 5766 Section
// 14.3. Same XOR semantics as XORMappedAddress: a TURN message may carry
// more than one, so this is added/read via Message.Attributes directly
// rather than GetAttribute.
type XORPeerAddress struct {
	Addr SocketAddr
}

func (a *XORPeerAddress) Type() AttrType          { return AttrXORPeerAddress }
func (a *XORPeerAddress) Encode() ([]byte, error) { return encodeSocketAddr(a.Addr) }

func (a *XORPeerAddress) BeforeEncode(pm *PartialMessage) error {
	a.Addr = xorAddr(a.Addr, pm.TransactionID)
	return nil
}

func (a *XORPeerAddress) AfterDecode(pm *PartialMessage) error {
	a.Addr = xorAddr(a.Addr, pm.TransactionID)
	return nil
}

func decodeXORPeerAddress(v []byte) (Value, error) {
	addr, err := decodeSocketAddr(v)
	if err != nil {
		return nil, err
	}
	return &XORPeerAddress{Addr: addr}, nil
}

// XORRelayAddress is the XOR-RELAYED-ADDRESS attribute, RFC 5766 Section
// 14.5.
type XORRelayAddress struct {
	Addr SocketAddr
}

func (a *XORRelayAddress) Type() AttrType          { return AttrXORRelayAddress }
func (a *XORRelayAddress) Encode() ([]byte, error) { return encodeSocketAddr(a.Addr) }

func (a *XORRelayAddress) BeforeEncode(pm *PartialMessage) error {
	a.Addr = xorAddr(a.Addr, pm.TransactionID)
	return nil
}

func (a *XORRelayAddress) AfterDecode(pm *PartialMessage) error {
	a.Addr = xorAddr(a.Addr, pm.TransactionID)
	return nil
}

func decodeXORRelayAddress(v []byte) (Value, error) {
	addr, err := decodeSocketAddr(v)
	if err != nil {
		return nil, err
	}
	return &XORRelayAddress{Addr: addr}, nil
}

// Data is the DATA attribute, RFC 5766 Section 14.4: an opaque payload,
// at most 0xFFFF bytes (the general attribute value ceiling).
type Data struct {
	Payload []byte
}

func (a *Data) Type() AttrType          { return AttrData }
func (a *Data) Encode() ([]byte, error) { return a.Payload, nil }

func decodeData(v []byte) (Value, error) {
	return &Data{Payload: append([]byte(nil), v...)}, nil
}

// EvenPort is the EVEN-PORT attribute, RFC 5766 Section 14.6: a single
// byte whose high bit requests an even relay port; the remaining bits are
// reserved (0).
type EvenPort struct {
	ReserveNext bool
}

func (a *EvenPort) Type() AttrType { return AttrEvenPort }

func (a *EvenPort) Encode() ([]byte, error) {
	var b byte
	if a.ReserveNext {
		b = 0x80
	}
	return []byte{b}, nil
}

func decodeEvenPort(v []byte) (Value, error) {
	if len(v) != 1 {
		return nil, invalidInput("EVEN-PORT value length %d != 1", len(v))
	}
	return &EvenPort{ReserveNext: v[0]&0x80 != 0}, nil
}

// RequestedTransport is the REQUESTED-TRANSPORT attribute, RFC 5766
// Section 14.7: a protocol number in the high byte of a 32-bit value
// whose lower 24 bits are reserved (0).
type RequestedTransport struct {
	Protocol byte
}

func (a *RequestedTransport) Type() AttrType { return AttrRequestedTransport }

func (a *RequestedTransport) Encode() ([]byte, error) {
	return []byte{a.Protocol, 0, 0, 0}, nil
}

func decodeRequestedTransport(v []byte) (Value, error) {
	if len(v) != 4 {
		return nil, invalidInput("REQUESTED-TRANSPORT value length %d != 4", len(v))
	}
	return &RequestedTransport{Protocol: v[0]}, nil
}

// DontFragment is the DONT-FRAGMENT attribute, RFC 5766 Section 14.8: a
// zero-length marker.
type DontFragment struct{}

func (DontFragment) Type() AttrType          { return AttrDontFragment }
func (DontFragment) Encode() ([]byte, error) { return nil, nil }

func decodeDontFragment(v []byte) (Value, error) {
	if len(v) != 0 {
		return nil, invalidInput("DONT-FRAGMENT value length %d != 0", len(v))
	}
	return DontFragment{}, nil
}

// ReservationToken is the RESERVATION-TOKEN attribute, RFC 5766 Section
// 14.9: an 8-byte opaque token.
type ReservationToken struct {
	Token uint64
}

func (a *ReservationToken) Type() AttrType { return AttrReservationToken }

func (a *ReservationToken) Encode() ([]byte, error) {
	out := make([]byte, 8)
	binary.BigEndian.PutUint64(out, a.Token)
	return out, nil
}

func decodeReservationToken(v []byte) (Value, error) {
	if len(v) != 8 {
		return nil, invalidInput("RESERVATION-TOKEN value length %d != 8", len(v))
	}
	return &ReservationToken{Token: binary.BigEndian.Uint64(v)}, nil
}

// ChannelData is a TURN ChannelData frame, RFC 5766 Section 11.4: a
// 4-byte header (channel number, length) followed by the payload padded
// to a 4-byte boundary. It is not a STUN attribute TLV; a TURN relay uses
// IsChannelData to tell a ChannelData frame apart from a STUN message
// before choosing which decoder to run.
type ChannelData struct {
	ChannelNumber uint16
	Data          []byte
}

const channelDataHeaderSize = 4

// IsChannelData reports whether data looks like a ChannelData frame: its
// first two bytes, read as a channel number, fall in [0x4000, 0x7FFF].
func IsChannelData(data []byte) bool {
	if len(data) < channelDataHeaderSize {
		return false
	}
	ch := binary.BigEndian.Uint16(data[0:2])
	return ch >= 0x4000 && ch <= 0x7FFF
}

// DecodeChannelData parses a ChannelData frame.
func DecodeChannelData(data []byte) (*ChannelData, error) {
	if len(data) < channelDataHeaderSize {
		return nil, invalidInput("channel data too short: %d bytes", len(data))
	}
	ch := binary.BigEndian.Uint16(data[0:2])
	length := int(binary.BigEndian.Uint16(data[2:4]))
	if length > len(data)-channelDataHeaderSize {
		return nil, invalidInput("channel data length %d exceeds available %d", length, len(data)-channelDataHeaderSize)
	}
	return &ChannelData{
		ChannelNumber: ch,
		Data:          append([]byte(nil), data[channelDataHeaderSize:channelDataHeaderSize+length]...),
	}, nil
}

// Encode serializes a ChannelData frame, padding the payload to a 4-byte
// boundary with zeros (RFC 5766 Section 11.4 allows either UDP-exact or
// padded framing; padded is required over TCP/TLS and harmless over UDP).
func (c *ChannelData) Encode() []byte {
	pad := paddingLen(len(c.Data))
	out := make([]byte, channelDataHeaderSize+len(c.Data)+pad)
	binary.BigEndian.PutUint16(out[0:2], c.ChannelNumber)
	binary.BigEndian.PutUint16(out[2:4], uint16(len(c.Data)))
	copy(out[channelDataHeaderSize:], c.Data)
	return out
}
