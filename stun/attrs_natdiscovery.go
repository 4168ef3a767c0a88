package stun

import "encoding/binary"

// ChangeRequest is the CHANGE-REQUEST attribute, RFC 5780 Section 7.2: a
// client's request that the server's response come from a different IP
// and/or port than it received the request on, used to probe NAT mapping
// and filtering behavior.
type ChangeRequest struct {
	ChangeIP   bool
	ChangePort bool
}

func (a *ChangeRequest) Type() AttrType { return AttrChangeRequest }

func (a *ChangeRequest) Encode() ([]byte, error) {
	var v uint32
	if a.ChangeIP {
		v |= 1 << 2
	}
	if a.ChangePort {
		v |= 1 << 1
	}
	out := make([]byte, 4)
	binary.BigEndian.PutUint32(out, v)
	return out, nil
}

func decodeChangeRequest(v []byte) (Value, error) {
	if len(v) != 4 {
		return nil, invalidInput("CHANGE-REQUEST value length %d != 4", len(v))
	}
	bits := binary.BigEndian.Uint32(v)
	return &ChangeRequest{
		ChangeIP:   bits&(1<<2) != 0,
		ChangePort: bits&(1<<1) != 0,
	}, nil
}

// ResponseOrigin is the RESPONSE-ORIGIN attribute, RFC 5780 Section 7.4:
// the server's source address for its response, letting a client behind a
// load balancer tell which server instance answered.
type ResponseOrigin struct {
	Addr SocketAddr
}

func (a *ResponseOrigin) Type() AttrType          { return AttrResponseOrigin }
func (a *ResponseOrigin) Encode() ([]byte, error) { return encodeSocketAddr(a.Addr) }

func decodeResponseOrigin(v []byte) (Value, error) {
	addr, err := decodeSocketAddr(v)
	if err != nil {
		return nil, err
	}
	return &ResponseOrigin{Addr: addr}, nil
}

// OtherAddress is the OTHER-ADDRESS attribute, RFC 5780 Section 7.3: the
// alternate address/port a server advertises for CHANGE-REQUEST probing.
type OtherAddress struct {
	Addr SocketAddr
}

func (a *OtherAddress) Type() AttrType          { return AttrOtherAddress }
func (a *OtherAddress) Encode() ([]byte, error) { return encodeSocketAddr(a.Addr) }

func decodeOtherAddress(v []byte) (Value, error) {
	addr, err := decodeSocketAddr(v)
	if err != nil {
		return nil, err
	}
	return &OtherAddress{Addr: addr}, nil
}

// ResponsePort is the RESPONSE-PORT attribute, RFC 5780 Section 7.5: a
// client-requested port, in the high 16 bits of a 32-bit value, for the
// server's response.
//
// Encode always writes 0 regardless of Port; decode still reports the
// port the peer actually requested. See TestResponsePortEncodeAlwaysZero
// before changing this.
type ResponsePort struct {
	Port uint16
}

func (a *ResponsePort) Type() AttrType { return AttrResponsePort }

func (a *ResponsePort) Encode() ([]byte, error) {
	return make([]byte, 4), nil
}

func decodeResponsePort(v []byte) (Value, error) {
	if len(v) != 4 {
		return nil, invalidInput("RESPONSE-PORT value length %d != 4", len(v))
	}
	return &ResponsePort{Port: binary.BigEndian.Uint16(v[0:2])}, nil
}
