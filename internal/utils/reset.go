package utils

import (
	"crypto/rand"    // secure random number generation
	"crypto/sha256"  // SHA-256 hashing for reset secrets
	"crypto/subtle"  // constant-time comparison
	"encoding/hex"   // hex encoding of secrets and digests
	"time"           // expiry computation
)

// ResetSecret is the single-use secret handed to a user who requested a
// password reset. The Raw field is mailed to the user inside a link; only
// its SHA-256 hash is persisted server-side, alongside the Exp deadline.
type ResetSecret struct {
	Raw string    // raw secret string sent to the user
	Exp time.Time // UTC expiration time
}

// NewResetSecret returns a cryptographically secure random secret (32
// bytes, 64 hex characters) that expires ttlMin minutes from now.
func NewResetSecret(ttlMin int) (ResetSecret, error) {
	raw, err := randomHex(32)
	if err != nil {
		return ResetSecret{}, err
	}
	return ResetSecret{
		Raw: raw,
		Exp: time.Now().UTC().Add(time.Duration(ttlMin) * time.Minute),
	}, nil
}

// HashResetSecret returns the SHA-256 hash of the raw reset secret as a
// hex string. Storing only the hash means a leaked database row cannot
// be replayed as a working reset link.
func HashResetSecret(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// ResetHashEqual compares a stored reset-token hash against the hash of
// a presented secret in constant time.
func ResetHashEqual(storedHash, presentedHash string) bool {
	return subtle.ConstantTimeCompare([]byte(storedHash), []byte(presentedHash)) == 1
}

// randomHex returns a hex-encoded string generated from n bytes of
// cryptographically secure random data.
func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
