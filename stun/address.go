package stun

import (
	"encoding/binary"
	"net"
)

// Address families used in the socket-address attribute layout, RFC 5389
// Section 15.1.
const (
	familyIPv4 = 0x01
	familyIPv6 = 0x02
)

// SocketAddr is an IP address and port carried in a socket-address
// attribute (MAPPED-ADDRESS and its XOR'd and TURN variants).
type SocketAddr struct {
	IP   net.IP
	Port uint16
}

// encodeSocketAddr lays out an address per RFC 5389 Section 15.1:
//
//	0x00, family, port (2 bytes), address (4 or 16 bytes)
func encodeSocketAddr(a SocketAddr) ([]byte, error) {
	ip4 := a.IP.To4()
	if ip4 != nil {
		out := make([]byte, 8)
		out[1] = familyIPv4
		binary.BigEndian.PutUint16(out[2:4], a.Port)
		copy(out[4:8], ip4)
		return out, nil
	}
	ip6 := a.IP.To16()
	if ip6 == nil {
		return nil, invalidInput("socket address %v is neither IPv4 nor IPv6", a.IP)
	}
	out := make([]byte, 20)
	out[1] = familyIPv6
	binary.BigEndian.PutUint16(out[2:4], a.Port)
	copy(out[4:20], ip6)
	return out, nil
}

func decodeSocketAddr(value []byte) (SocketAddr, error) {
	if len(value) < 4 {
		return SocketAddr{}, invalidInput("socket address value too short: %d bytes", len(value))
	}
	family := value[1]
	port := binary.BigEndian.Uint16(value[2:4])

	switch family {
	case familyIPv4:
		if len(value) != 8 {
			return SocketAddr{}, invalidInput("IPv4 socket address value has wrong length: %d", len(value))
		}
		ip := make(net.IP, 4)
		copy(ip, value[4:8])
		return SocketAddr{IP: ip, Port: port}, nil
	case familyIPv6:
		if len(value) != 20 {
			return SocketAddr{}, invalidInput("IPv6 socket address value has wrong length: %d", len(value))
		}
		ip := make(net.IP, 16)
		copy(ip, value[4:20])
		return SocketAddr{IP: ip, Port: port}, nil
	default:
		return SocketAddr{}, invalidInput("unknown socket address family %#x", family)
	}
}

// xorAddr applies the XOR transform of RFC 5389 Section 15.2 to a. It is
// self-inverse: xorAddr(xorAddr(a, tid), tid) == a.
func xorAddr(a SocketAddr, tid TransactionID) SocketAddr {
	port := a.Port ^ uint16(MagicCookie>>16)

	var cookie [4]byte
	binary.BigEndian.PutUint32(cookie[:], MagicCookie)

	ip4 := a.IP.To4()
	if ip4 != nil {
		out := make(net.IP, 4)
		for i := 0; i < 4; i++ {
			out[i] = ip4[i] ^ cookie[i]
		}
		return SocketAddr{IP: out, Port: port}
	}

	ip6 := a.IP.To16()
	out := make(net.IP, 16)
	for i := 0; i < 4; i++ {
		out[i] = ip6[i] ^ cookie[i]
	}
	for i := 0; i < transactionIDSize; i++ {
		out[4+i] = ip6[4+i] ^ tid[i]
	}
	return SocketAddr{IP: out, Port: port}
}
