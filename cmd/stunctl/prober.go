package main

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/pion/logging"

	"github.com/kuuji/stunkit/stun"
)

// probeResult is what a single BINDING exchange against one server
// produces.
type probeResult struct {
	Server       string
	MappedAddr   stun.SocketAddr
	OtherAddr    *stun.SocketAddr // RFC 5780 OTHER-ADDRESS, if the server sent one
	ResponseAddr *net.UDPAddr
	RTT          time.Duration
}

// bindingProbe sends one BINDING request to addr and decodes the
// response's XOR-MAPPED-ADDRESS. change carries an optional RFC 5780
// CHANGE-REQUEST for NAT behavior discovery probes; it may be nil.
func bindingProbe(ctx context.Context, log logging.LeveledLogger, addr string, change *stun.ChangeRequest, timeout time.Duration) (*probeResult, error) {
	raddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("stunctl: resolving %s: %w", addr, err)
	}

	conn, err := net.ListenUDP("udp", nil)
	if err != nil {
		return nil, fmt.Errorf("stunctl: opening socket: %w", err)
	}
	defer conn.Close()

	m, err := stun.NewMessage(stun.ClassRequest, stun.MethodBinding)
	if err != nil {
		return nil, err
	}
	if change != nil {
		m.Add(change)
	}
	log.Debugf("probe %s: transaction %x", addr, m.TransactionID)

	encoded, err := m.Encode()
	if err != nil {
		return nil, fmt.Errorf("stunctl: encoding BINDING request: %w", err)
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(timeout)
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return nil, fmt.Errorf("stunctl: setting deadline: %w", err)
	}

	start := time.Now()
	if _, err := conn.WriteToUDP(encoded, raddr); err != nil {
		return nil, fmt.Errorf("stunctl: sending to %s: %w", addr, err)
	}

	buf := make([]byte, 1500)
	n, from, err := conn.ReadFromUDP(buf)
	if err != nil {
		return nil, fmt.Errorf("stunctl: reading response from %s: %w", addr, err)
	}
	rtt := time.Since(start)

	resp, err := stun.Decode(buf[:n], stun.ProfileNATDiscovery)
	if err != nil {
		return nil, fmt.Errorf("stunctl: decoding response from %s: %w", addr, err)
	}
	if resp.TransactionID != m.TransactionID {
		return nil, fmt.Errorf("stunctl: response from %s has mismatched transaction id", addr)
	}
	if resp.Class == stun.ClassErrorResponse {
		if ec, ok := stun.GetAttribute[*stun.ErrorCode](resp); ok {
			return nil, fmt.Errorf("stunctl: %s returned error %d %s", addr, ec.Code, ec.Reason)
		}
		return nil, fmt.Errorf("stunctl: %s returned an error response without ERROR-CODE", addr)
	}

	mapped, ok := stun.GetAttribute[*stun.XORMappedAddress](resp)
	if !ok {
		return nil, fmt.Errorf("stunctl: response from %s carries no XOR-MAPPED-ADDRESS", addr)
	}

	log.Infof("probe %s: mapped address %s:%d (%s)", addr, mapped.Addr.IP, mapped.Addr.Port, rtt)

	result := &probeResult{Server: addr, MappedAddr: mapped.Addr, ResponseAddr: from, RTT: rtt}
	if other, ok := stun.GetAttribute[*stun.OtherAddress](resp); ok {
		result.OtherAddr = &other.Addr
	}
	return result, nil
}
