package stun

import "encoding/binary"

// Priority is the PRIORITY attribute, RFC 5245 Section 7.1.2.1: a
// candidate's ICE priority.
type Priority struct {
	Value uint32
}

func (a *Priority) Type() AttrType { return AttrPriority }

func (a *Priority) Encode() ([]byte, error) {
	out := make([]byte, 4)
	binary.BigEndian.PutUint32(out, a.Value)
	return out, nil
}

func decodePriority(v []byte) (Value, error) {
	if len(v) != 4 {
		return nil, invalidInput("PRIORITY value length %d != 4", len(v))
	}
	return &Priority{Value: binary.BigEndian.Uint32(v)}, nil
}

// UseCandidate is the USE-CANDIDATE attribute, RFC 5245 Section 7.1.2.1:
// a zero-length marker sent by the controlling agent to nominate a
// candidate pair.
type UseCandidate struct{}

func (UseCandidate) Type() AttrType          { return AttrUseCandidate }
func (UseCandidate) Encode() ([]byte, error) { return nil, nil }

func decodeUseCandidate(v []byte) (Value, error) {
	if len(v) != 0 {
		return nil, invalidInput("USE-CANDIDATE value length %d != 0", len(v))
	}
	return UseCandidate{}, nil
}

// IceControlled is the ICE-CONTROLLED attribute, RFC 5245 Section 7.1.2.2:
// the controlled agent's tie-breaker.
type IceControlled struct {
	TieBreaker uint64
}

func (a *IceControlled) Type() AttrType { return AttrIceControlled }

func (a *IceControlled) Encode() ([]byte, error) {
	out := make([]byte, 8)
	binary.BigEndian.PutUint64(out, a.TieBreaker)
	return out, nil
}

func decodeIceControlled(v []byte) (Value, error) {
	if len(v) != 8 {
		return nil, invalidInput("ICE-CONTROLLED value length %d != 8", len(v))
	}
	return &IceControlled{TieBreaker: binary.BigEndian.Uint64(v)}, nil
}

// IceControlling is the ICE-CONTROLLING attribute, RFC 5245 Section
// 7.1.2.2: the controlling agent's tie-breaker.
type IceControlling struct {
	TieBreaker uint64
}

func (a *IceControlling) Type() AttrType { return AttrIceControlling }

func (a *IceControlling) Encode() ([]byte, error) {
	out := make([]byte, 8)
	binary.BigEndian.PutUint64(out, a.TieBreaker)
	return out, nil
}

func decodeIceControlling(v []byte) (Value, error) {
	if len(v) != 8 {
		return nil, invalidInput("ICE-CONTROLLING value length %d != 8", len(v))
	}
	return &IceControlling{TieBreaker: binary.BigEndian.Uint64(v)}, nil
}
