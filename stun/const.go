package stun

// Wire-format constants. Defined in RFC 5389 Section 6.
const (
	// MagicCookie distinguishes STUN packets from other protocols when
	// STUN is multiplexed on the same port.
	MagicCookie = 0x2112A442

	// fingerprintXOR is "STUN" in ASCII, used to XOR the FINGERPRINT CRC.
	fingerprintXOR = 0x5354554E

	messageHeaderSize   = 20
	attributeHeaderSize = 4
	transactionIDSize   = 12

	hmacSize = 20 // crypto/sha1 output size
	md5Size  = 16 // crypto/md5 output size
)

// AttrType is the 16-bit attribute codepoint. Values in [0x0000, 0x8000)
// are comprehension-required; an agent that does not recognize one must
// reject the message. Values in [0x8000, 0x10000) are comprehension-optional
// and are preserved as raw attributes when unrecognized.
type AttrType uint16

// IsComprehensionRequired reports whether an unrecognized attribute of this
// type should cause a receiver to reject the message per RFC 5389 Section 7.3.
// This package never enforces that rejection itself (see Decode);
// it is left to callers that need strict RFC 5389 behavior.
func (t AttrType) IsComprehensionRequired() bool {
	return t < 0x8000
}

func (t AttrType) String() string {
	if name, ok := attrTypeNames[t]; ok {
		return name
	}
	return "unknown attribute"
}

// Registered attribute codepoints, RFC 5389 Section 18.2, RFC 5766
// Section 14, RFC 5245 Section 7.1.2, RFC 5780 Section 7, RFC 8016
// Section 6.
const (
	AttrMappedAddress      AttrType = 0x0001
	AttrChangeRequest      AttrType = 0x0003
	AttrUsername           AttrType = 0x0006
	AttrMessageIntegrity   AttrType = 0x0008
	AttrErrorCode          AttrType = 0x0009
	AttrUnknownAttributes  AttrType = 0x000A
	AttrChannelNumber      AttrType = 0x000C
	AttrLifetime           AttrType = 0x000D
	AttrXORPeerAddress     AttrType = 0x0012
	AttrData               AttrType = 0x0013
	AttrRealm              AttrType = 0x0014
	AttrNonce              AttrType = 0x0015
	AttrXORRelayAddress    AttrType = 0x0016
	AttrEvenPort           AttrType = 0x0018
	AttrRequestedTransport AttrType = 0x0019
	AttrDontFragment       AttrType = 0x001A
	AttrXORMappedAddress   AttrType = 0x0020
	AttrReservationToken   AttrType = 0x0022
	AttrPriority           AttrType = 0x0024
	AttrUseCandidate       AttrType = 0x0025
	AttrResponsePort       AttrType = 0x0027

	AttrXORMappedAddress2 AttrType = 0x8020
	AttrSoftware          AttrType = 0x8022
	AttrAlternateServer   AttrType = 0x8023
	AttrFingerprint       AttrType = 0x8028
	AttrIceControlled     AttrType = 0x8029
	AttrIceControlling    AttrType = 0x802A
	AttrResponseOrigin    AttrType = 0x802B
	AttrOtherAddress      AttrType = 0x802C
	AttrMobilityTicket    AttrType = 0x8030
)

var attrTypeNames = map[AttrType]string{
	AttrMappedAddress:      "MAPPED-ADDRESS",
	AttrChangeRequest:      "CHANGE-REQUEST",
	AttrUsername:           "USERNAME",
	AttrMessageIntegrity:   "MESSAGE-INTEGRITY",
	AttrErrorCode:          "ERROR-CODE",
	AttrUnknownAttributes:  "UNKNOWN-ATTRIBUTES",
	AttrChannelNumber:      "CHANNEL-NUMBER",
	AttrLifetime:           "LIFETIME",
	AttrXORPeerAddress:     "XOR-PEER-ADDRESS",
	AttrData:               "DATA",
	AttrRealm:              "REALM",
	AttrNonce:              "NONCE",
	AttrXORRelayAddress:    "XOR-RELAYED-ADDRESS",
	AttrEvenPort:           "EVEN-PORT",
	AttrRequestedTransport: "REQUESTED-TRANSPORT",
	AttrDontFragment:       "DONT-FRAGMENT",
	AttrXORMappedAddress:   "XOR-MAPPED-ADDRESS",
	AttrReservationToken:   "RESERVATION-TOKEN",
	AttrPriority:           "PRIORITY",
	AttrUseCandidate:       "USE-CANDIDATE",
	AttrResponsePort:       "RESPONSE-PORT",
	AttrXORMappedAddress2:  "XOR-MAPPED-ADDRESS (legacy)",
	AttrSoftware:           "SOFTWARE",
	AttrAlternateServer:    "ALTERNATE-SERVER",
	AttrFingerprint:        "FINGERPRINT",
	AttrIceControlled:      "ICE-CONTROLLED",
	AttrIceControlling:     "ICE-CONTROLLING",
	AttrResponseOrigin:     "RESPONSE-ORIGIN",
	AttrOtherAddress:       "OTHER-ADDRESS",
	AttrMobilityTicket:     "MOBILITY-TICKET",
}

// Method is the 12-bit STUN method. Valid methods are < 0x1000.
type Method uint16

// Methods defined by RFC 5389 Section 18.1 and RFC 5766 Section 13.
const (
	MethodBinding          Method = 0x001
	MethodAllocate         Method = 0x003
	MethodRefresh          Method = 0x004
	MethodSend             Method = 0x006
	MethodData             Method = 0x007
	MethodCreatePermission Method = 0x008
	MethodChannelBind      Method = 0x009
)

func (m Method) String() string {
	switch m {
	case MethodBinding:
		return "Binding"
	case MethodAllocate:
		return "Allocate"
	case MethodRefresh:
		return "Refresh"
	case MethodSend:
		return "Send"
	case MethodData:
		return "Data"
	case MethodCreatePermission:
		return "CreatePermission"
	case MethodChannelBind:
		return "ChannelBind"
	default:
		return "Method(0x" + hex16(uint16(m)) + ")"
	}
}

// Class is the 2-bit STUN message class.
type Class uint8

// Classes defined by RFC 5389 Section 6.
const (
	ClassRequest         Class = 0x00
	ClassIndication      Class = 0x01
	ClassSuccessResponse Class = 0x02
	ClassErrorResponse   Class = 0x03
)

func (c Class) String() string {
	switch c {
	case ClassRequest:
		return "request"
	case ClassIndication:
		return "indication"
	case ClassSuccessResponse:
		return "success response"
	case ClassErrorResponse:
		return "error response"
	default:
		return "invalid class"
	}
}

func hex16(v uint16) string {
	const digits = "0123456789abcdef"
	b := [4]byte{digits[v>>12&0xF], digits[v>>8&0xF], digits[v>>4&0xF], digits[v&0xF]}
	return string(b[:])
}
