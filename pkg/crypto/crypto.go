// Package crypto seals data at rest: AES-256-GCM encryption plus an HMAC
// signature over the ciphertext, both from cryptopasta.
package crypto

import (
	"bytes"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"github.com/gtank/cryptopasta"
)

const keySize = 32

var (
	ErrKeyTooShort  = fmt.Errorf("key too short, want at least %d chars", keySize)
	ErrMalformed    = errors.New("sealed data is malformed")
	ErrBadSignature = errors.New("signature validation failed")
)

// Sealer encrypts and signs with a fixed pair of keys.
type Sealer struct {
	key *[keySize]byte
	sig *[keySize]byte
}

// NewRandomKey generates a random key suitable for NewSealer.
func NewRandomKey() (string, error) {
	key := &[keySize + 1]byte{} // slightly longer than we need
	_, err := io.ReadFull(rand.Reader, key[:])
	return base64.RawURLEncoding.EncodeToString(key[:]), err
}

// NewSealer builds a Sealer from two strings of at least 32 chars; only the
// first 32 bytes of each are used.
func NewSealer(key, sig string) (*Sealer, error) {
	rawkey, err := toKey(key)
	if err != nil {
		return nil, fmt.Errorf("encryption key: %w", err)
	}
	rawsig, err := toKey(sig)
	if err != nil {
		return nil, fmt.Errorf("signing key: %w", err)
	}
	return &Sealer{key: rawkey, sig: rawsig}, nil
}

// Seal encrypts plaintext and returns "<ciphertext>.<signature>", both base64.
func (s *Sealer) Seal(plaintext []byte) ([]byte, error) {
	cyphertext, err := cryptopasta.Encrypt(plaintext, s.key)
	if err != nil {
		return nil, err
	}
	signature := cryptopasta.GenerateHMAC(cyphertext, s.sig)

	return []byte(fmt.Sprintf(
		"%s.%s",
		base64.RawURLEncoding.EncodeToString(cyphertext),
		base64.RawURLEncoding.EncodeToString(signature),
	)), nil
}

// Open is the inverse of Seal, checking the signature before decrypting.
func (s *Sealer) Open(sealed []byte) ([]byte, error) {
	bits := bytes.SplitN(bytes.TrimSpace(sealed), []byte("."), 2)
	if len(bits) != 2 {
		return nil, ErrMalformed
	}

	cypher, err := base64.RawURLEncoding.DecodeString(string(bits[0]))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	signature, err := base64.RawURLEncoding.DecodeString(string(bits[1]))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	if !cryptopasta.CheckHMAC(cypher, signature, s.sig) {
		return nil, ErrBadSignature
	}
	return cryptopasta.Decrypt(cypher, s.key)
}

func toKey(s string) (*[keySize]byte, error) {
	if len(s) < keySize {
		return nil, ErrKeyTooShort
	}
	data := &[keySize]byte{}
	copy(data[:], s)
	return data, nil
}
