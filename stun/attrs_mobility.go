package stun

// MobilityTicket is the MOBILITY-TICKET attribute, RFC 8016 Section 6.1:
// an opaque token a TURN server issues so a client can re-allocate the
// same relayed address after a mobility event (e.g. a handset switching
// networks), at most 0xFFFF bytes.
type MobilityTicket struct {
	Ticket []byte
}

func (a *MobilityTicket) Type() AttrType          { return AttrMobilityTicket }
func (a *MobilityTicket) Encode() ([]byte, error) { return a.Ticket, nil }

func decodeMobilityTicket(v []byte) (Value, error) {
	return &MobilityTicket{Ticket: append([]byte(nil), v...)}, nil
}
