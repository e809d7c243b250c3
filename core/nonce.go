package core

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"
)

// DefaultNonceTTL is how long an issued challenge stays valid.
const DefaultNonceTTL = time.Hour

// challengeEntropyBytes is the amount of randomness in a challenge token.
const challengeEntropyBytes = 16

// NonceRecord is a single-use authentication challenge stored per address.
// At most one live record exists per address; issuing a new one overwrites it.
type NonceRecord struct {
	Address   string `json:"address"`
	Challenge string `json:"challenge"`
	IssuedAt  int64  `json:"issued_at"`
}

// Expired reports whether the record is past its TTL at the given time.
// This is checked even where the backing store evicts on TTL itself.
func (r NonceRecord) Expired(now time.Time, ttl time.Duration) bool {
	return now.Unix()-r.IssuedAt > int64(ttl.Seconds())
}

// NormalizeAddress lower-cases an address so it can be used as a store key.
func NormalizeAddress(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

// NewChallenge generates a hex-encoded random challenge token.
func NewChallenge() (string, error) {
	buf := make([]byte, challengeEntropyBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
