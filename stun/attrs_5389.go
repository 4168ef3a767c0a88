package stun

import (
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha1"
	"encoding/binary"
	"hash/crc32"
)

// MappedAddress is the MAPPED-ADDRESS attribute, RFC 5389 Section 15.1: a
// plain (non-obfuscated) reflexive transport address.
type MappedAddress struct {
	Addr SocketAddr
}

func (a *MappedAddress) Type() AttrType          { return AttrMappedAddress }
func (a *MappedAddress) Encode() ([]byte, error) { return encodeSocketAddr(a.Addr) }

func decodeMappedAddress(v []byte) (Value, error) {
	addr, err := decodeSocketAddr(v)
	if err != nil {
		return nil, err
	}
	return &MappedAddress{Addr: addr}, nil
}

// XORMappedAddress is the XOR-MAPPED-ADDRESS attribute, RFC 5389 Section
// 15.2. Addr holds the real (un-obfuscated) address at all times outside
// of the encode/decode hooks; BeforeEncode and AfterDecode toggle it
// through the wire's XOR'd form around the actual byte read/write.
type XORMappedAddress struct {
	Addr SocketAddr
}

func (a *XORMappedAddress) Type() AttrType          { return AttrXORMappedAddress }
func (a *XORMappedAddress) Encode() ([]byte, error) { return encodeSocketAddr(a.Addr) }

func (a *XORMappedAddress) BeforeEncode(pm *PartialMessage) error {
	a.Addr = xorAddr(a.Addr, pm.TransactionID)
	return nil
}

func (a *XORMappedAddress) AfterDecode(pm *PartialMessage) error {
	a.Addr = xorAddr(a.Addr, pm.TransactionID)
	return nil
}

func decodeXORMappedAddress(v []byte) (Value, error) {
	addr, err := decodeSocketAddr(v)
	if err != nil {
		return nil, err
	}
	return &XORMappedAddress{Addr: addr}, nil
}

// XORMappedAddress2 is the legacy XOR-MAPPED-ADDRESS codepoint (0x8020)
// used by some pre-RFC implementations. Same semantics as XORMappedAddress.
type XORMappedAddress2 struct {
	Addr SocketAddr
}

func (a *XORMappedAddress2) Type() AttrType          { return AttrXORMappedAddress2 }
func (a *XORMappedAddress2) Encode() ([]byte, error) { return encodeSocketAddr(a.Addr) }

func (a *XORMappedAddress2) BeforeEncode(pm *PartialMessage) error {
	a.Addr = xorAddr(a.Addr, pm.TransactionID)
	return nil
}

func (a *XORMappedAddress2) AfterDecode(pm *PartialMessage) error {
	a.Addr = xorAddr(a.Addr, pm.TransactionID)
	return nil
}

func decodeXORMappedAddress2(v []byte) (Value, error) {
	addr, err := decodeSocketAddr(v)
	if err != nil {
		return nil, err
	}
	return &XORMappedAddress2{Addr: addr}, nil
}

// decodeUTF8 validates a UTF-8 attribute value against RFC 5389's
// per-attribute byte- or character-count ceiling (USERNAME is byte-bounded;
// REALM, NONCE, and SOFTWARE are character-bounded).
func decodeUTF8(t AttrType, v []byte, maxBytes, maxChars int) (string, error) {
	if maxBytes > 0 && len(v) >= maxBytes {
		return "", invalidInput("%s byte length %d >= %d", t, len(v), maxBytes)
	}
	s := string(v)
	if maxChars > 0 {
		if n := len([]rune(s)); n >= maxChars {
			return "", invalidInput("%s character count %d >= %d", t, n, maxChars)
		}
	}
	return s, nil
}

// Username is the USERNAME attribute, RFC 5389 Section 15.3: an opaque
// UTF-8 identifier, less than 513 bytes.
type Username struct{ Value string }

// NewUsername validates the byte-length domain constraint and constructs
// a Username.
func NewUsername(s string) (*Username, error) {
	if len(s) >= 513 {
		return nil, domainViolation("username byte length %d >= 513", len(s))
	}
	return &Username{Value: s}, nil
}

func (a *Username) Type() AttrType          { return AttrUsername }
func (a *Username) Encode() ([]byte, error) { return []byte(a.Value), nil }

func decodeUsername(v []byte) (Value, error) {
	s, err := decodeUTF8(AttrUsername, v, 513, 0)
	if err != nil {
		return nil, err
	}
	return &Username{Value: s}, nil
}

// Realm is the REALM attribute, RFC 5389 Section 15.7: less than 128 UTF-8
// characters.
type Realm struct{ Value string }

func NewRealm(s string) (*Realm, error) {
	if n := len([]rune(s)); n >= 128 {
		return nil, domainViolation("realm character count %d >= 128", n)
	}
	return &Realm{Value: s}, nil
}

func (a *Realm) Type() AttrType          { return AttrRealm }
func (a *Realm) Encode() ([]byte, error) { return []byte(a.Value), nil }

func decodeRealm(v []byte) (Value, error) {
	s, err := decodeUTF8(AttrRealm, v, 0, 128)
	if err != nil {
		return nil, err
	}
	return &Realm{Value: s}, nil
}

// Nonce is the NONCE attribute, RFC 5389 Section 15.8: less than 128 UTF-8
// characters.
type Nonce struct{ Value string }

func NewNonce(s string) (*Nonce, error) {
	if n := len([]rune(s)); n >= 128 {
		return nil, domainViolation("nonce character count %d >= 128", n)
	}
	return &Nonce{Value: s}, nil
}

func (a *Nonce) Type() AttrType          { return AttrNonce }
func (a *Nonce) Encode() ([]byte, error) { return []byte(a.Value), nil }

func decodeNonce(v []byte) (Value, error) {
	s, err := decodeUTF8(AttrNonce, v, 0, 128)
	if err != nil {
		return nil, err
	}
	return &Nonce{Value: s}, nil
}

// Software is the SOFTWARE attribute, RFC 5389 Section 15.10: less than
// 128 UTF-8 characters.
type Software struct{ Value string }

func NewSoftware(s string) (*Software, error) {
	if n := len([]rune(s)); n >= 128 {
		return nil, domainViolation("software character count %d >= 128", n)
	}
	return &Software{Value: s}, nil
}

func (a *Software) Type() AttrType          { return AttrSoftware }
func (a *Software) Encode() ([]byte, error) { return []byte(a.Value), nil }

func decodeSoftware(v []byte) (Value, error) {
	s, err := decodeUTF8(AttrSoftware, v, 0, 128)
	if err != nil {
		return nil, err
	}
	return &Software{Value: s}, nil
}

// AlternateServer is the ALTERNATE-SERVER attribute, RFC 5389 Section
// 15.11: a plain socket address pointing at another server to retry
// against (used with error code 300 Try Alternate).
type AlternateServer struct{ Addr SocketAddr }

func (a *AlternateServer) Type() AttrType          { return AttrAlternateServer }
func (a *AlternateServer) Encode() ([]byte, error) { return encodeSocketAddr(a.Addr) }

func decodeAlternateServer(v []byte) (Value, error) {
	addr, err := decodeSocketAddr(v)
	if err != nil {
		return nil, err
	}
	return &AlternateServer{Addr: addr}, nil
}

// ErrorCode is the ERROR-CODE attribute, RFC 5389 Section 15.6. Wire
// layout: 21 reserved bits, 3-bit class, 8-bit number, then the reason
// phrase.
type ErrorCode struct {
	Code   int
	Reason string
}

// NewErrorCode validates the domain constraints (class in [3,6), number <
// 100, reason phrase < 128 characters) and constructs an ErrorCode.
func NewErrorCode(code int, reason string) (*ErrorCode, error) {
	v, err := NewErrorCodeValue(code, reason)
	if err != nil {
		return nil, err
	}
	return &ErrorCode{Code: v.Code, Reason: v.Reason}, nil
}

func (a *ErrorCode) Type() AttrType { return AttrErrorCode }

func (a *ErrorCode) Encode() ([]byte, error) {
	out := make([]byte, 4+len(a.Reason))
	out[2] = byte(a.Code / 100)
	out[3] = byte(a.Code % 100)
	copy(out[4:], a.Reason)
	return out, nil
}

func decodeErrorCode(v []byte) (Value, error) {
	if len(v) < 4 {
		return nil, invalidInput("ERROR-CODE value too short: %d bytes", len(v))
	}
	class := int(v[2] & 0x07)
	number := int(v[3])
	code := class*100 + number
	if class < 3 || class >= 6 {
		return nil, invalidInput("ERROR-CODE class %d out of [3,6)", class)
	}
	return &ErrorCode{Code: code, Reason: string(v[4:])}, nil
}

// UnknownAttributes is the UNKNOWN-ATTRIBUTES attribute, RFC 5389 Section
// 15.9: a list of attribute codepoints the server did not understand in
// the request, returned in a 420 error response.
type UnknownAttributes struct {
	Types []AttrType
}

func (a *UnknownAttributes) Type() AttrType { return AttrUnknownAttributes }

func (a *UnknownAttributes) Encode() ([]byte, error) {
	out := make([]byte, 2*len(a.Types))
	for i, t := range a.Types {
		binary.BigEndian.PutUint16(out[2*i:2*i+2], uint16(t))
	}
	return out, nil
}

func decodeUnknownAttributes(v []byte) (Value, error) {
	if len(v)%2 != 0 {
		return nil, invalidInput("UNKNOWN-ATTRIBUTES value length %d is not a multiple of 2", len(v))
	}
	types := make([]AttrType, len(v)/2)
	for i := range types {
		types[i] = AttrType(binary.BigEndian.Uint16(v[2*i : 2*i+2]))
	}
	return &UnknownAttributes{Types: types}, nil
}

// MessageIntegrity is the MESSAGE-INTEGRITY attribute, RFC 5389 Section
// 15.4: a 20-byte HMAC-SHA1 over the message prefix up to (and including
// a placeholder for) this attribute.
//
// Key must be set by the caller before the message is encoded: for a
// short-term credential it is the password bytes; for a long-term
// credential it is LongTermKey(username, realm, password). The codec
// never owns secret material longer than one encode call.
//
// Verification on decode is explicit, not automatic, because computing
// the key requires credentials this package is never given: call
// CheckShortTermCredential or CheckLongTermCredential after decoding.
type MessageIntegrity struct {
	Key  []byte
	HMAC [hmacSize]byte

	prefix []byte
}

func (a *MessageIntegrity) Type() AttrType          { return AttrMessageIntegrity }
func (a *MessageIntegrity) Encode() ([]byte, error) { return a.HMAC[:], nil }

func (a *MessageIntegrity) BeforeEncode(pm *PartialMessage) error {
	if len(a.Key) == 0 {
		return invalidInput("MESSAGE-INTEGRITY: Key must be set before encoding")
	}
	prefix, err := pm.Prefix(attributeHeaderSize + hmacSize)
	if err != nil {
		return err
	}
	mac := hmac.New(sha1.New, a.Key)
	mac.Write(prefix)
	copy(a.HMAC[:], mac.Sum(nil))
	return nil
}

func (a *MessageIntegrity) AfterDecode(pm *PartialMessage) error {
	prefix, err := pm.Prefix(attributeHeaderSize + hmacSize)
	if err != nil {
		return err
	}
	a.prefix = prefix
	return nil
}

// CheckShortTermCredential verifies the captured HMAC against a
// short-term credential (the shared password). It must be called after
// Decode; calling it on a MessageIntegrity built for encoding (no
// captured prefix) always fails.
func (a *MessageIntegrity) CheckShortTermCredential(password string) error {
	return a.check([]byte(password))
}

// CheckLongTermCredential verifies the captured HMAC against a long-term
// credential, deriving the key as LongTermKey(username, realm, password).
func (a *MessageIntegrity) CheckLongTermCredential(username, realm, password string) error {
	return a.check(LongTermKey(username, realm, password))
}

func (a *MessageIntegrity) check(key []byte) error {
	if a.prefix == nil {
		return invalidInput("MESSAGE-INTEGRITY: no decoded prefix to verify against")
	}
	mac := hmac.New(sha1.New, key)
	mac.Write(a.prefix)
	expected := mac.Sum(nil)
	if !hmac.Equal(expected, a.HMAC[:]) {
		return ErrorUnauthorized
	}
	return nil
}

// LongTermKey computes the STUN long-term credential key,
// MD5(username:realm:password), RFC 5389 Section 15.4.
func LongTermKey(username, realm, password string) []byte {
	h := md5.New() //nolint:gosec // MD5 is mandated by the STUN long-term credential mechanism.
	h.Write([]byte(username + ":" + realm + ":" + password))
	return h.Sum(nil)
}

func decodeMessageIntegrity(v []byte) (Value, error) {
	if len(v) != hmacSize {
		return nil, invalidInput("MESSAGE-INTEGRITY value length %d != %d", len(v), hmacSize)
	}
	a := &MessageIntegrity{}
	copy(a.HMAC[:], v)
	return a, nil
}

// Fingerprint is the FINGERPRINT attribute, RFC 5389 Section 15.5: a
// CRC-32/ISO-HDLC checksum of the message prefix that precedes this
// attribute (with the header length field counting this attribute's own
// 8-byte TLV), XORed with "STUN" in ASCII. The
// caller is responsible for placing FINGERPRINT as the last attribute if
// they want it to be meaningful; this package does not enforce that.
type Fingerprint struct {
	CRC uint32
}

func (a *Fingerprint) Type() AttrType { return AttrFingerprint }

func (a *Fingerprint) Encode() ([]byte, error) {
	out := make([]byte, 4)
	binary.BigEndian.PutUint32(out, a.CRC)
	return out, nil
}

func (a *Fingerprint) BeforeEncode(pm *PartialMessage) error {
	prefix, err := pm.Prefix(attributeHeaderSize + 4)
	if err != nil {
		return err
	}
	a.CRC = crc32.ChecksumIEEE(prefix) ^ fingerprintXOR
	return nil
}

func (a *Fingerprint) AfterDecode(pm *PartialMessage) error {
	prefix, err := pm.Prefix(attributeHeaderSize + 4)
	if err != nil {
		return err
	}
	expected := crc32.ChecksumIEEE(prefix) ^ fingerprintXOR
	if expected != a.CRC {
		return invalidInput("FINGERPRINT mismatch: expected %#08x, got %#08x", expected, a.CRC)
	}
	return nil
}

func decodeFingerprint(v []byte) (Value, error) {
	if len(v) != 4 {
		return nil, invalidInput("FINGERPRINT value length %d != 4", len(v))
	}
	return &Fingerprint{CRC: binary.BigEndian.Uint32(v)}, nil
}
