package stun

import (
	"bytes"
	"errors"
	"net"
	"testing"
)

func TestMessageTypeRoundTrip(t *testing.T) {
	cases := []MessageType{
		{Class: ClassRequest, Method: MethodBinding},
		{Class: ClassSuccessResponse, Method: MethodBinding},
		{Class: ClassErrorResponse, Method: MethodBinding},
		{Class: ClassIndication, Method: MethodBinding},
		{Class: ClassRequest, Method: MethodAllocate},
		{Class: ClassSuccessResponse, Method: MethodChannelBind},
		{Class: ClassErrorResponse, Method: MethodCreatePermission},
	}
	for _, want := range cases {
		got, err := ParseMessageType(want.Value())
		if err != nil {
			t.Fatalf("ParseMessageType(%#04x): %v", want.Value(), err)
		}
		if got != want {
			t.Errorf("round trip %+v: got %+v", want, got)
		}
	}
}

func TestMessageTypeKnownEncodings(t *testing.T) {
	// RFC 5389 Section 6: the Binding request and the Binding success
	// response have the canonical wire values 0x0001 and 0x0101.
	cases := []struct {
		mt   MessageType
		want uint16
	}{
		{MessageType{Class: ClassRequest, Method: MethodBinding}, 0x0001},
		{MessageType{Class: ClassSuccessResponse, Method: MethodBinding}, 0x0101},
		{MessageType{Class: ClassErrorResponse, Method: MethodBinding}, 0x0111},
		{MessageType{Class: ClassIndication, Method: MethodBinding}, 0x0011},
	}
	for _, c := range cases {
		if got := c.mt.Value(); got != c.want {
			t.Errorf("%+v.Value() = %#04x, want %#04x", c.mt, got, c.want)
		}
	}
}

func TestParseMessageTypeRejectsTopBits(t *testing.T) {
	if _, err := ParseMessageType(0xC001); !IsInvalidInput(err) {
		t.Fatalf("expected invalid-input error, got %v", err)
	}
}

func TestEncodeMinimalBindingRequest(t *testing.T) {
	var tid TransactionID
	copy(tid[:], bytes.Repeat([]byte{0x03}, transactionIDSize))

	m := &Message{Class: ClassRequest, Method: MethodBinding, TransactionID: tid}
	sw, err := NewSoftware("foo")
	if err != nil {
		t.Fatal(err)
	}
	m.Add(sw)

	encoded, err := m.Encode()
	if err != nil {
		t.Fatal(err)
	}

	want := []byte{
		0x00, 0x01, 0x00, 0x08,
		0x21, 0x12, 0xa4, 0x42,
		0x03, 0x03, 0x03, 0x03, 0x03, 0x03, 0x03, 0x03, 0x03, 0x03, 0x03, 0x03,
		0x80, 0x22, 0x00, 0x03,
		0x66, 0x6f, 0x6f, 0x00,
	}
	if !bytes.Equal(encoded, want) {
		t.Fatalf("encoded bytes:\ngot  %x\nwant %x", encoded, want)
	}
}

func TestMessageEncodeDecodeRoundTrip(t *testing.T) {
	m, err := NewMessage(ClassRequest, MethodBinding)
	if err != nil {
		t.Fatal(err)
	}
	sw, err := NewSoftware("test client")
	if err != nil {
		t.Fatal(err)
	}
	m.Add(sw)
	m.Add(&XORMappedAddress{Addr: SocketAddr{IP: []byte{192, 0, 2, 1}, Port: 32853}})

	encoded, err := m.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	decoded, err := Decode(encoded, ProfileSTUN)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if decoded.Class != ClassRequest || decoded.Method != MethodBinding {
		t.Fatalf("unexpected header: class=%s method=%s", decoded.Class, decoded.Method)
	}
	if decoded.TransactionID != m.TransactionID {
		t.Fatalf("transaction id mismatch: got %x want %x", decoded.TransactionID, m.TransactionID)
	}

	gotSW, ok := GetAttribute[*Software](decoded)
	if !ok || gotSW.Value != "test client" {
		t.Fatalf("SOFTWARE round trip: got %+v, ok=%v", gotSW, ok)
	}

	gotAddr, ok := GetAttribute[*XORMappedAddress](decoded)
	if !ok {
		t.Fatal("XOR-MAPPED-ADDRESS missing after decode")
	}
	if !gotAddr.Addr.IP.Equal([]byte{192, 0, 2, 1}) || gotAddr.Addr.Port != 32853 {
		t.Fatalf("XOR-MAPPED-ADDRESS round trip: got %+v", gotAddr.Addr)
	}
}

func TestMessageEncodeDecodeUnknownAttributePreserved(t *testing.T) {
	m, err := NewMessage(ClassIndication, MethodData)
	if err != nil {
		t.Fatal(err)
	}
	// A comprehension-optional codepoint this package has no variant for.
	const unmodeled AttrType = 0x8fff
	m.AddRaw(unmodeled, []byte{0x01, 0x02, 0x03})

	encoded, err := m.Encode()
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := Decode(encoded, ProfileSTUN)
	if err != nil {
		t.Fatal(err)
	}
	if len(decoded.Attributes) != 1 {
		t.Fatalf("expected 1 attribute, got %d", len(decoded.Attributes))
	}
	got := decoded.Attributes[0]
	if got.Known != nil {
		t.Fatalf("expected raw attribute, got known %T", got.Known)
	}
	if !bytes.Equal(got.Raw, []byte{0x01, 0x02, 0x03}) {
		t.Fatalf("raw value mismatch: got %x", got.Raw)
	}

	unknown := decoded.UnknownAttributesList()
	if len(unknown) != 1 || unknown[0] != unmodeled {
		t.Fatalf("UnknownAttributesList: got %v", unknown)
	}

	reencoded, err := decoded.Encode()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(reencoded, encoded) {
		t.Fatalf("re-encode not byte-exact:\ngot  %x\nwant %x", reencoded, encoded)
	}
}

func TestMessageEncodeDecodeNonZeroPaddingPreserved(t *testing.T) {
	// USERNAME with a 1-byte value has 3 padding bytes; hand-build the
	// wire form with non-zero padding to confirm it survives a decode and
	// re-encode unchanged, even though this package always writes zero
	// padding for attributes it builds itself.
	header := []byte{
		0x00, 0x01, 0x00, 0x08,
		0x21, 0x12, 0xa4, 0x42,
		1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12,
		0x00, 0x06, 0x00, 0x01,
		'x', 0xAA, 0xBB, 0xCC,
	}
	m, err := Decode(header, ProfileSTUN)
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Attributes) != 1 {
		t.Fatalf("expected 1 attribute, got %d", len(m.Attributes))
	}
	if !m.Attributes[0].Padding.Captured || m.Attributes[0].Padding.N != 3 {
		t.Fatalf("padding not captured: %+v", m.Attributes[0].Padding)
	}

	reencoded, err := m.Encode()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(reencoded, header) {
		t.Fatalf("re-encode not byte-exact:\ngot  %x\nwant %x", reencoded, header)
	}
}

func TestDecodeTruncatedAttributeReturnsBrokenMessage(t *testing.T) {
	// A well-formed 20-byte header declaring an 8-byte XOR-MAPPED-ADDRESS
	// attribute, but only 4 bytes of value actually follow.
	data := []byte{
		0x00, 0x01, 0x00, 0x08,
		0x21, 0x12, 0xa4, 0x42,
		1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12,
		0x00, 0x20, 0x00, 0x08,
		0x00, 0x01, 0xa1, 0x47,
	}
	_, err := Decode(data, ProfileSTUN)
	if err == nil {
		t.Fatal("expected an error")
	}
	var broken *BrokenMessage
	if !errors.As(err, &broken) {
		t.Fatalf("expected *BrokenMessage, got %T: %v", err, err)
	}
	if broken.Method != MethodBinding || broken.Class != ClassRequest {
		t.Fatalf("BrokenMessage header fields wrong: %+v", broken)
	}
	if !IsInvalidInput(broken.Err) {
		t.Fatalf("expected wrapped invalid-input error, got %v", broken.Err)
	}
}

func TestDecodeRejectsBadMagicCookie(t *testing.T) {
	data := make([]byte, messageHeaderSize)
	_, err := Decode(data, ProfileSTUN)
	if !IsInvalidInput(err) {
		t.Fatalf("expected invalid-input error, got %v", err)
	}
}

func TestDecodeRejectsShortMessage(t *testing.T) {
	_, err := Decode([]byte{0, 1, 0, 0}, ProfileSTUN)
	if !IsInvalidInput(err) {
		t.Fatalf("expected invalid-input error, got %v", err)
	}
}

// TestDecodeRFC5769SampleRequest decodes the RFC 5769 Section 2.1 sample
// request: a Binding request with SOFTWARE, PRIORITY, ICE-CONTROLLED,
// USERNAME, MESSAGE-INTEGRITY and FINGERPRINT.
func TestDecodeRFC5769SampleRequest(t *testing.T) {
	data := []byte{
		0x00, 0x01, 0x00, 0x58,
		0x21, 0x12, 0xa4, 0x42,
		0xb7, 0xe7, 0xa7, 0x01,
		0xbc, 0x34, 0xd6, 0x86,
		0xfa, 0x87, 0xdf, 0xae,
		0x80, 0x22, 0x00, 0x10,
		0x53, 0x54, 0x55, 0x4e,
		0x20, 0x74, 0x65, 0x73,
		0x74, 0x20, 0x63, 0x6c,
		0x69, 0x65, 0x6e, 0x74,
		0x00, 0x24, 0x00, 0x04,
		0x6e, 0x00, 0x01, 0xff,
		0x80, 0x29, 0x00, 0x08,
		0x93, 0x2f, 0xf9, 0xb1,
		0x51, 0x26, 0x3b, 0x36,
		0x00, 0x06, 0x00, 0x09,
		0x65, 0x76, 0x74, 0x6a,
		0x3a, 0x68, 0x36, 0x76,
		0x59, 0x20, 0x20, 0x20,
		0x00, 0x08, 0x00, 0x14,
		0x9a, 0xea, 0xa7, 0x0c,
		0xbf, 0xd8, 0xcb, 0x56,
		0x78, 0x1e, 0xf2, 0xb5,
		0xb2, 0xd3, 0xf2, 0x49,
		0xc1, 0xb5, 0x71, 0xa2,
		0x80, 0x28, 0x00, 0x04,
		0xe5, 0x7a, 0x3b, 0xcf,
	}

	m, err := Decode(data, ProfileICE)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if m.Class != ClassRequest || m.Method != MethodBinding {
		t.Fatalf("header: class=%s method=%s", m.Class, m.Method)
	}

	user, ok := GetAttribute[*Username](m)
	if !ok || user.Value != "evtj:h6vY" {
		t.Fatalf("USERNAME: got %+v, ok=%v", user, ok)
	}

	mi, ok := GetAttribute[*MessageIntegrity](m)
	if !ok {
		t.Fatal("MESSAGE-INTEGRITY missing")
	}
	if err := mi.CheckShortTermCredential("VOkJxbRl1RmTxUk/WvJxBt"); err != nil {
		t.Errorf("CheckShortTermCredential: %v", err)
	}

	// Re-encoding requires the key again: a decoded MESSAGE-INTEGRITY
	// carries only the HMAC it read off the wire, not the secret that
	// produced it.
	mi.Key = []byte("VOkJxbRl1RmTxUk/WvJxBt")
	reencoded, err := m.Encode()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(reencoded, data) {
		t.Errorf("re-encode not byte-exact:\ngot  %x\nwant %x", reencoded, data)
	}
}

// TestDecodeRFC5769SampleIPv4Response decodes the RFC 5769 Section 2.2
// sample IPv4 response to the same transaction as the sample request.
func TestDecodeRFC5769SampleIPv4Response(t *testing.T) {
	data := []byte{
		0x01, 0x01, 0x00, 0x3c,
		0x21, 0x12, 0xa4, 0x42,
		0xb7, 0xe7, 0xa7, 0x01,
		0xbc, 0x34, 0xd6, 0x86,
		0xfa, 0x87, 0xdf, 0xae,
		0x80, 0x22, 0x00, 0x0b,
		0x74, 0x65, 0x73, 0x74,
		0x20, 0x76, 0x65, 0x63,
		0x74, 0x6f, 0x72, 0x20,
		0x00, 0x20, 0x00, 0x08,
		0x00, 0x01, 0xa1, 0x47,
		0xe1, 0x12, 0xa6, 0x43,
		0x00, 0x08, 0x00, 0x14,
		0x2b, 0x91, 0xf5, 0x99,
		0xfd, 0x9e, 0x90, 0xc3,
		0x8c, 0x74, 0x89, 0xf4,
		0x8f, 0x06, 0x9f, 0x5f,
		0xe1, 0x6b, 0x33, 0xa0,
		0x80, 0x28, 0x00, 0x04,
		0xc0, 0x7d, 0x4c, 0x96,
	}

	m, err := Decode(data, ProfileSTUN)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	addr, ok := GetAttribute[*XORMappedAddress](m)
	if !ok {
		t.Fatal("XOR-MAPPED-ADDRESS missing")
	}
	if !addr.Addr.IP.Equal([]byte{192, 0, 2, 1}) || addr.Addr.Port != 32853 {
		t.Fatalf("XOR-MAPPED-ADDRESS: got %+v", addr.Addr)
	}

	mi, ok := GetAttribute[*MessageIntegrity](m)
	if !ok {
		t.Fatal("MESSAGE-INTEGRITY missing")
	}
	if err := mi.CheckShortTermCredential("VOkJxbRl1RmTxUk/WvJxBt"); err != nil {
		t.Errorf("CheckShortTermCredential: %v", err)
	}
}

// TestDecodeRFC5769SampleIPv6Response decodes the RFC 5769 Section 2.3
// sample IPv6 response.
func TestDecodeRFC5769SampleIPv6Response(t *testing.T) {
	data := []byte{
		0x01, 0x01, 0x00, 0x48,
		0x21, 0x12, 0xa4, 0x42,
		0xb7, 0xe7, 0xa7, 0x01,
		0xbc, 0x34, 0xd6, 0x86,
		0xfa, 0x87, 0xdf, 0xae,
		0x80, 0x22, 0x00, 0x0b,
		0x74, 0x65, 0x73, 0x74,
		0x20, 0x76, 0x65, 0x63,
		0x74, 0x6f, 0x72, 0x20,
		0x00, 0x20, 0x00, 0x14,
		0x00, 0x02, 0xa1, 0x47,
		0x01, 0x13, 0xa9, 0xfa,
		0xa5, 0xd3, 0xf1, 0x79,
		0xbc, 0x25, 0xf4, 0xb5,
		0xbe, 0xd2, 0xb9, 0xd9,
		0x00, 0x08, 0x00, 0x14,
		0xa3, 0x82, 0x95, 0x4e,
		0x4b, 0xe6, 0x7b, 0xf1,
		0x17, 0x84, 0xc9, 0x7c,
		0x82, 0x92, 0xc2, 0x75,
		0xbf, 0xe3, 0xed, 0x41,
		0x80, 0x28, 0x00, 0x04,
		0xc8, 0xfb, 0x0b, 0x4c,
	}

	m, err := Decode(data, ProfileSTUN)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	addr, ok := GetAttribute[*XORMappedAddress](m)
	if !ok {
		t.Fatal("XOR-MAPPED-ADDRESS missing")
	}
	wantIP := net.ParseIP("2001:db8:1234:5678:11:2233:4455:6677")
	if !addr.Addr.IP.Equal(wantIP) || addr.Addr.Port != 32853 {
		t.Fatalf("XOR-MAPPED-ADDRESS: got %v port %d", addr.Addr.IP, addr.Addr.Port)
	}
}

// TestDecodeRFC5769LongTermAuthSample decodes the RFC 5769 Section 2.4
// sample request with long-term authentication: a UTF-8 username, NONCE,
// REALM and MESSAGE-INTEGRITY, no FINGERPRINT.
func TestDecodeRFC5769LongTermAuthSample(t *testing.T) {
	data := []byte{
		0x00, 0x01, 0x00, 0x60,
		0x21, 0x12, 0xa4, 0x42,
		0x78, 0xad, 0x34, 0x33,
		0xc6, 0xad, 0x72, 0xc0,
		0x29, 0xda, 0x41, 0x2e,
		0x00, 0x06, 0x00, 0x12,
		0xe3, 0x83, 0x9e, 0xe3,
		0x83, 0x88, 0xe3, 0x83,
		0xaa, 0xe3, 0x83, 0x83,
		0xe3, 0x82, 0xaf, 0xe3,
		0x82, 0xb9, 0x00, 0x00,
		0x00, 0x15, 0x00, 0x1c,
		0x66, 0x2f, 0x2f, 0x34,
		0x39, 0x39, 0x6b, 0x39,
		0x35, 0x34, 0x64, 0x36,
		0x4f, 0x4c, 0x33, 0x34,
		0x6f, 0x4c, 0x39, 0x46,
		0x53, 0x54, 0x76, 0x79,
		0x36, 0x34, 0x73, 0x41,
		0x00, 0x14, 0x00, 0x0b,
		0x65, 0x78, 0x61, 0x6d,
		0x70, 0x6c, 0x65, 0x2e,
		0x6f, 0x72, 0x67, 0x00,
		0x00, 0x08, 0x00, 0x14,
		0xf6, 0x70, 0x24, 0x65,
		0x6d, 0xd6, 0x4f, 0x3b,
		0x1b, 0x85, 0xd6, 0x42,
		0x74, 0xfa, 0xe0, 0x8b,
		0xb6, 0x71, 0xd0, 0x39,
	}

	m, err := Decode(data, ProfileSTUN)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	user, ok := GetAttribute[*Username](m)
	if !ok || user.Value != "マトリックス" {
		t.Fatalf("USERNAME: got %+v, ok=%v", user, ok)
	}
	realm, ok := GetAttribute[*Realm](m)
	if !ok || realm.Value != "example.org" {
		t.Fatalf("REALM: got %+v, ok=%v", realm, ok)
	}

	mi, ok := GetAttribute[*MessageIntegrity](m)
	if !ok {
		t.Fatal("MESSAGE-INTEGRITY missing")
	}
	if err := mi.CheckLongTermCredential("マトリックス", "example.org", "TheMatrIX"); err != nil {
		t.Errorf("CheckLongTermCredential: %v", err)
	}
}

func TestDecodeOverrunningLengthReturnsBrokenMessage(t *testing.T) {
	// The header declares a 12-byte attribute section, but the
	// XOR-MAPPED-ADDRESS attribute is cut off mid-value: only 11 section
	// bytes arrive. The header itself parsed, so the result must be a
	// BrokenMessage carrying its fields, not a bare error.
	data := []byte{
		0x00, 0x01, 0x00, 0x0c,
		0x21, 0x12, 0xa4, 0x42,
		0x03, 0x03, 0x03, 0x03, 0x03, 0x03, 0x03, 0x03, 0x03, 0x03, 0x03, 0x03,
		0x00, 0x20, 0x00, 0x08,
		0x00, 0x01, 0x00, 0x50,
		0x7f, 0x00, 0x00,
	}
	_, err := Decode(data, ProfileSTUN)
	var broken *BrokenMessage
	if !errors.As(err, &broken) {
		t.Fatalf("expected *BrokenMessage, got %T: %v", err, err)
	}
	if broken.Method != MethodBinding || broken.Class != ClassRequest {
		t.Fatalf("BrokenMessage header fields wrong: %+v", broken)
	}
	want := TransactionID{3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3}
	if broken.TransactionID != want {
		t.Fatalf("transaction id = %x", broken.TransactionID)
	}
	if broken.Err == nil || !IsInvalidInput(broken.Err) {
		t.Fatalf("expected wrapped invalid-input error, got %v", broken.Err)
	}
}

func TestLongTermCredentialRoundTrip(t *testing.T) {
	const username, realm, password = "マトリックス", "example.org", "TheMatrIX"

	m, err := NewMessage(ClassRequest, MethodBinding)
	if err != nil {
		t.Fatal(err)
	}
	u, err := NewUsername(username)
	if err != nil {
		t.Fatal(err)
	}
	r, err := NewRealm(realm)
	if err != nil {
		t.Fatal(err)
	}
	m.Add(u)
	m.Add(r)
	m.Add(&MessageIntegrity{Key: LongTermKey(username, realm, password)})

	encoded, err := m.Encode()
	if err != nil {
		t.Fatal(err)
	}

	decoded, err := Decode(encoded, ProfileSTUN)
	if err != nil {
		t.Fatal(err)
	}
	mi, ok := GetAttribute[*MessageIntegrity](decoded)
	if !ok {
		t.Fatal("MESSAGE-INTEGRITY missing after decode")
	}
	if err := mi.CheckLongTermCredential(username, realm, password); err != nil {
		t.Errorf("CheckLongTermCredential with correct password: %v", err)
	}
	if err := mi.CheckLongTermCredential(username, realm, "wrong password"); !errors.Is(err, ErrorUnauthorized) {
		t.Errorf("CheckLongTermCredential with wrong password: got %v, want ErrorUnauthorized", err)
	}
}
