package stun

// Profile is a closed, named set of attribute variants a message codec
// knows how to decode. It dispatches on the 16-bit attribute type;
// anything outside the set falls through to the raw-attribute path in
// Decode, preserving it byte-exact.
//
// The four profiles below ship variants for whole RFCs, but callers are
// free to build their own with NewProfile to mix and match, or to extend
// one of the shipped profiles with With.
type Profile struct {
	decoders map[AttrType]func([]byte) (Value, error)
}

// ProfileEntry pairs a codepoint with the decode function for its variant.
type ProfileEntry struct {
	Type   AttrType
	Decode func([]byte) (Value, error)
}

// NewProfile builds a Profile from a list of variant descriptors.
func NewProfile(entries ...ProfileEntry) *Profile {
	p := &Profile{decoders: make(map[AttrType]func([]byte) (Value, error), len(entries))}
	for _, e := range entries {
		p.decoders[e.Type] = e.Decode
	}
	return p
}

// With returns a new Profile combining p's variants with extra, with
// extra's entries taking precedence on conflict. p is not modified.
func (p *Profile) With(extra ...ProfileEntry) *Profile {
	merged := make(map[AttrType]func([]byte) (Value, error), len(p.decoders)+len(extra))
	for t, d := range p.decoders {
		merged[t] = d
	}
	for _, e := range extra {
		merged[e.Type] = e.Decode
	}
	return &Profile{decoders: merged}
}

func (p *Profile) decoder(t AttrType) func([]byte) (Value, error) {
	if p == nil {
		return nil
	}
	return p.decoders[t]
}

func entriesRFC5389() []ProfileEntry {
	return []ProfileEntry{
		{AttrMappedAddress, decodeMappedAddress},
		{AttrXORMappedAddress, decodeXORMappedAddress},
		{AttrXORMappedAddress2, decodeXORMappedAddress2},
		{AttrUsername, decodeUsername},
		{AttrMessageIntegrity, decodeMessageIntegrity},
		{AttrErrorCode, decodeErrorCode},
		{AttrUnknownAttributes, decodeUnknownAttributes},
		{AttrRealm, decodeRealm},
		{AttrNonce, decodeNonce},
		{AttrSoftware, decodeSoftware},
		{AttrAlternateServer, decodeAlternateServer},
		{AttrFingerprint, decodeFingerprint},
	}
}

func entriesRFC5766() []ProfileEntry {
	return []ProfileEntry{
		{AttrChannelNumber, decodeChannelNumber},
		{AttrLifetime, decodeLifetime},
		{AttrXORPeerAddress, decodeXORPeerAddress},
		{AttrData, decodeData},
		{AttrXORRelayAddress, decodeXORRelayAddress},
		{AttrEvenPort, decodeEvenPort},
		{AttrRequestedTransport, decodeRequestedTransport},
		{AttrDontFragment, decodeDontFragment},
		{AttrReservationToken, decodeReservationToken},
		{AttrMobilityTicket, decodeMobilityTicket},
	}
}

func entriesRFC5245() []ProfileEntry {
	return []ProfileEntry{
		{AttrPriority, decodePriority},
		{AttrUseCandidate, decodeUseCandidate},
		{AttrIceControlled, decodeIceControlled},
		{AttrIceControlling, decodeIceControlling},
	}
}

func entriesRFC5780() []ProfileEntry {
	return []ProfileEntry{
		{AttrChangeRequest, decodeChangeRequest},
		{AttrResponseOrigin, decodeResponseOrigin},
		{AttrOtherAddress, decodeOtherAddress},
		{AttrResponsePort, decodeResponsePort},
	}
}

// Shipped profiles. Each is built once and safe to share across goroutines
// for decoding (Profile is read-only after construction).
var (
	// ProfileSTUN decodes the base RFC 5389 attribute set.
	ProfileSTUN = NewProfile(entriesRFC5389()...)

	// ProfileTURN decodes RFC 5389 plus the RFC 5766 TURN attributes.
	ProfileTURN = ProfileSTUN.With(entriesRFC5766()...)

	// ProfileICE decodes RFC 5389 plus the RFC 5245 ICE attributes.
	ProfileICE = ProfileSTUN.With(entriesRFC5245()...)

	// ProfileNATDiscovery decodes RFC 5389 plus the RFC 5780 NAT Behavior
	// Discovery attributes.
	ProfileNATDiscovery = ProfileSTUN.With(entriesRFC5780()...)
)
