// Package credentials derives and verifies password hashes.
//
// The scheme is PBKDF2-SHA512 with a per-user random salt, 1000
// iterations and a 64-byte derived key, both salt and hash hex-encoded.
// Parameters are fixed: changing them would invalidate every stored
// credential.
package credentials

import (
	"crypto/rand"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	saltBytes  = 16
	iterations = 1000
	keyLength  = 64
)

// GenerateSalt produces a fresh random salt from the system CSPRNG.
// A failure here means the process cannot safely issue credentials, so
// callers must treat it as fatal to the operation.
func GenerateSalt() (string, error) {
	buf := make([]byte, saltBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// HashPassword derives the stored credential for a password and salt.
// Deterministic: the same (password, salt) pair always yields the same
// hash.
func HashPassword(password, salt string) string {
	key := pbkdf2.Key([]byte(password), []byte(salt), iterations, keyLength, sha512.New)
	return hex.EncodeToString(key)
}

// ValidPassword recomputes the hash from the supplied password and salt
// and compares it against the stored hash in constant time.
func ValidPassword(password, hash, salt string) bool {
	derived := HashPassword(password, salt)
	return subtle.ConstantTimeCompare([]byte(derived), []byte(hash)) == 1
}
