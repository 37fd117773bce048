// Package crypto implements the envelope encryption protecting stored
// credential secrets: AES-256-GCM with a fresh random 96-bit nonce per
// call, serialized as base64(iv):base64(tag):base64(ciphertext).
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	nonceSize = 12
	tagSize   = 16

	segmentDelimiter = ":"
)

var (
	// ErrMalformedEnvelope is returned when an envelope does not split
	// into exactly three non-empty base64 segments.
	ErrMalformedEnvelope = errors.New("malformed envelope")

	// ErrDecryptFailed is returned when authenticated decryption fails.
	// Corruption and tampering are deliberately indistinguishable.
	ErrDecryptFailed = errors.New("decryption failed")
)

// Seal encrypts plaintext under the given 32-byte key and returns the
// storable envelope string. Every call draws an independent random nonce.
// Safe for concurrent use; no state is shared between calls.
func Seal(plaintext string, key []byte) (string, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("failed to initialize cipher: %w", err)
	}

	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("failed to initialize GCM: %w", err)
	}

	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := aesgcm.Seal(nil, nonce, []byte(plaintext), nil)

	// GCM appends the tag to the ciphertext; the wire format carries the
	// tag as its own segment.
	ciphertext := sealed[:len(sealed)-tagSize]
	tag := sealed[len(sealed)-tagSize:]

	return encodeEnvelope(nonce, tag, ciphertext), nil
}

// Open decrypts an envelope produced by Seal. An empty envelope returns
// an empty plaintext with no error so that optional secret fields
// round-trip without special-casing by callers.
func Open(envelope string, key []byte) (string, error) {
	if envelope == "" {
		return "", nil
	}

	nonce, tag, ciphertext, err := parseEnvelope(envelope)
	if err != nil {
		return "", err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("failed to initialize cipher: %w", err)
	}

	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("failed to initialize GCM: %w", err)
	}

	plaintext, err := aesgcm.Open(nil, nonce, append(ciphertext, tag...), nil)
	if err != nil {
		return "", ErrDecryptFailed
	}

	return string(plaintext), nil
}

func encodeEnvelope(nonce, tag, ciphertext []byte) string {
	return strings.Join([]string{
		base64.StdEncoding.EncodeToString(nonce),
		base64.StdEncoding.EncodeToString(tag),
		base64.StdEncoding.EncodeToString(ciphertext),
	}, segmentDelimiter)
}

func parseEnvelope(envelope string) (nonce, tag, ciphertext []byte, err error) {
	parts := strings.Split(envelope, segmentDelimiter)
	if len(parts) != 3 {
		return nil, nil, nil, ErrMalformedEnvelope
	}
	for _, p := range parts {
		if p == "" {
			return nil, nil, nil, ErrMalformedEnvelope
		}
	}

	if nonce, err = base64.StdEncoding.DecodeString(parts[0]); err != nil {
		return nil, nil, nil, ErrMalformedEnvelope
	}
	if tag, err = base64.StdEncoding.DecodeString(parts[1]); err != nil {
		return nil, nil, nil, ErrMalformedEnvelope
	}
	if ciphertext, err = base64.StdEncoding.DecodeString(parts[2]); err != nil {
		return nil, nil, nil, ErrMalformedEnvelope
	}

	if len(nonce) != nonceSize || len(tag) != tagSize {
		return nil, nil, nil, ErrMalformedEnvelope
	}

	return nonce, tag, ciphertext, nil
}
