// Package turnrest implements the TURN REST API credential mechanism
// (the "coturn" convention, also supported by pion/ice and pion/turn):
// short-lived TURN credentials minted from a shared secret rather than
// stored per-user, so a server can hand out access without a database
// round trip.
package turnrest

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kuuji/stunkit/stun"
)

const (
	// DefaultLifetime is the default validity period for minted credentials.
	DefaultLifetime = 24 * time.Hour

	// DefaultRealm is the realm this package's examples authenticate
	// against; callers with their own realm pass it explicitly to
	// stun.LongTermKey instead.
	DefaultRealm = "stunkit"
)

// GenerateCredentials mints time-limited TURN REST API credentials from a
// shared secret. The username encodes the expiry timestamp and peer ID;
// the password is an HMAC-SHA1 of the username keyed by secret:
//
//	username = "<unix_expiry>:<peerID>"
//	password = base64(HMAC-SHA1(secret, username))
func GenerateCredentials(secret, peerID string, lifetime time.Duration) (username, password string) {
	if lifetime == 0 {
		lifetime = DefaultLifetime
	}
	expiry := time.Now().Add(lifetime).Unix()
	username = fmt.Sprintf("%d:%s", expiry, peerID)
	password = computePassword(secret, username)
	return username, password
}

// ValidateCredentials checks that username/password were minted by
// GenerateCredentials with this secret and have not expired.
func ValidateCredentials(secret, username, password string) error {
	parts := strings.SplitN(username, ":", 2)
	if len(parts) != 2 {
		return fmt.Errorf("turnrest: invalid username format: expected '<expiry>:<peerID>'")
	}

	expiry, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return fmt.Errorf("turnrest: invalid expiry in username: %w", err)
	}
	if time.Now().Unix() > expiry {
		return fmt.Errorf("turnrest: credentials expired at %d", expiry)
	}

	expected := computePassword(secret, username)
	if !hmac.Equal([]byte(password), []byte(expected)) {
		return fmt.Errorf("turnrest: invalid password")
	}
	return nil
}

// LongTermKey derives the STUN long-term credential key for a minted
// username/password pair under realm, by way of stun.LongTermKey. It
// exists so callers don't have to reach into the stun package just to
// finish the TURN REST handshake.
func LongTermKey(username, realm, password string) []byte {
	return stun.LongTermKey(username, realm, password)
}

func computePassword(secret, username string) string {
	mac := hmac.New(sha1.New, []byte(secret))
	mac.Write([]byte(username))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
