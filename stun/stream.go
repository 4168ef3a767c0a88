package stun

import "encoding/binary"

// StreamDecoder is an incremental, resumable decoder for the STUN message
// framing over a byte stream where message boundaries are not otherwise
// delimited (e.g. STUN over TCP or TLS, RFC 5389 Section 7.2.2). Unlike
// Decode, which takes one complete datagram, StreamDecoder is fed
// arbitrary, possibly partial, chunks and reports whether a full message
// became available.
//
// A StreamDecoder is a small state machine owned by one caller; it is not
// safe for concurrent use. Feeding it zero bytes is a no-op. Feeding the
// same buffer twice double-consumes it — that is a caller error, not
// something this type can detect.
type StreamDecoder struct {
	profile *Profile
	buf     []byte
}

// NewStreamDecoder returns a StreamDecoder that dispatches known
// attributes through profile (nil decodes nothing as known, preserving
// every attribute as raw).
func NewStreamDecoder(profile *Profile) *StreamDecoder {
	return &StreamDecoder{profile: profile}
}

// Feed appends data to the decoder's internal buffer and reports how many
// bytes of it were consumed into in-progress or completed messages. In
// this framing every fed byte is always buffered, so consumed always
// equals len(data).
func (d *StreamDecoder) Feed(data []byte) (consumed int) {
	d.buf = append(d.buf, data...)
	return len(data)
}

// Required returns the minimum number of additional bytes Feed needs
// before Next can produce a result: enough to read the header if it
// hasn't arrived yet, or enough to complete the declared message length
// once it has.
func (d *StreamDecoder) Required() int {
	if len(d.buf) < messageHeaderSize {
		return messageHeaderSize - len(d.buf)
	}
	length := int(binary.BigEndian.Uint16(d.buf[2:4]))
	total := messageHeaderSize + length
	if len(d.buf) >= total {
		return 0
	}
	return total - len(d.buf)
}

// Next attempts to decode one message from the buffered bytes. It returns
// ok=false if a complete header, or a complete message once the header is
// known, has not yet been fed — not an error, since more input may still
// arrive. A decode failure (bad cookie, malformed attribute section) is
// returned as err with ok=true, since that many bytes of the stream have
// been consumed regardless of whether they parsed.
func (d *StreamDecoder) Next() (msg *Message, ok bool, err error) {
	if d.Required() > 0 {
		return nil, false, nil
	}
	length := int(binary.BigEndian.Uint16(d.buf[2:4]))
	total := messageHeaderSize + length

	frame := d.buf[:total]
	d.buf = d.buf[total:]

	m, decodeErr := Decode(frame, d.profile)
	if decodeErr != nil {
		return nil, true, decodeErr
	}
	return m, true, nil
}

// Reset discards any buffered, not-yet-decoded bytes.
func (d *StreamDecoder) Reset() {
	d.buf = d.buf[:0]
}

// IsMessage reports whether data looks like a STUN message: it is long
// enough to hold a header and carries the magic cookie at the expected
// offset. It does not guarantee Decode will succeed; it is meant for
// demultiplexing STUN from other protocols sharing a port, or from
// ChannelData frames in a TURN relay (see IsChannelData).
func IsMessage(data []byte) bool {
	if len(data) < messageHeaderSize {
		return false
	}
	if data[0]&0xC0 != 0 {
		return false
	}
	return binary.BigEndian.Uint32(data[4:8]) == MagicCookie
}
