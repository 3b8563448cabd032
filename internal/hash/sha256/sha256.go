// Package sha256 provides content digests for scraped page bodies.
package sha256

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hasher computes SHA-256 hex digests.
type Hasher struct{}

// New creates a new Hasher.
func New() *Hasher {
	return &Hasher{}
}

// Hash returns the lowercase hex SHA-256 digest of data.
func (Hasher) Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
