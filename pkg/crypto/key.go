package crypto

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
)

// KeySize is the AES-256 key length in bytes.
const KeySize = 32

// ErrMissingSecret is returned when no key material is configured.
var ErrMissingSecret = errors.New("vault secret is not set")

// DeriveKey resolves operator-supplied secret material into a 32-byte
// AES-256 key. Resolution order, first match wins:
//
//  1. exactly 64 hex characters → decoded as a raw hex key
//  2. base64 that decodes to exactly 32 bytes → decoded as a raw key
//  3. anything else → SHA-256 digest of the raw secret bytes
//
// This lets operators supply either a raw key or an arbitrary passphrase
// through one config value. The cost is ambiguity: a passphrase that
// happens to parse as hex or 32-byte base64 takes the raw-key path.
// Changing the order would silently re-key existing deployments, so it is
// kept as-is.
func DeriveKey(secret string) ([]byte, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}

	if len(secret) == 64 {
		if key, err := hex.DecodeString(secret); err == nil {
			return key, nil
		}
	}

	if key, err := base64.StdEncoding.DecodeString(secret); err == nil && len(key) == KeySize {
		return key, nil
	}

	digest := sha256.Sum256([]byte(secret))
	return digest[:], nil
}
