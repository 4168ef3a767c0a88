// Package stun implements a codec for Session Traversal Utilities for NAT
// (STUN, RFC 5389) and three of its extensions: TURN (RFC 5766), ICE
// (RFC 5245), and NAT Behavior Discovery (RFC 5780), plus MOBILITY-TICKET
// from RFC 8016.
//
// The package converts between the on-wire byte representation of STUN
// messages and a structured Message value, losslessly: unknown
// comprehension-optional attributes survive a decode/encode round trip
// byte-exact, including their original padding.
//
// There is no network I/O in this package. Callers own sockets, retries,
// and retransmission; stun only frames and unframes messages.
package stun
