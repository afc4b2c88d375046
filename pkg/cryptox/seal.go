// Package cryptox seals small secrets (OAuth tokens, API keys) for at-rest
// storage. Values are encrypted with XChaCha20-Poly1305 under a single master
// key; the sealed form is self-contained and safe to put in a database column.
package cryptox

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
)

// sealedPrefix marks a sealed value so plaintext rows written before sealing
// was enabled can be told apart and migrated lazily.
const sealedPrefix = "sealed:v1:"

// Sealer encrypts and decrypts string secrets under one master key.
type Sealer struct {
	aead cipher.AEAD
}

// NewSealer derives a sealing key from arbitrary key material. The material
// is hashed to the AEAD key size, so passphrases and raw key files both work.
func NewSealer(keyMaterial []byte) (*Sealer, error) {
	if len(keyMaterial) == 0 {
		return nil, fmt.Errorf("cryptox: empty key material")
	}
	key := sha256.Sum256(keyMaterial)
	aead, err := chacha20poly1305.NewX(key[:])
	if err != nil {
		return nil, fmt.Errorf("cryptox: create aead: %w", err)
	}
	return &Sealer{aead: aead}, nil
}

// Seal encrypts a secret. The output is sealedPrefix + base64(nonce||ciphertext).
func (s *Sealer) Seal(plaintext string) (string, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("cryptox: generate nonce: %w", err)
	}
	sealed := s.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return sealedPrefix + base64.RawStdEncoding.EncodeToString(sealed), nil
}

// Open decrypts a sealed secret. Values without the sealed prefix are
// returned unchanged, so pre-existing plaintext rows keep working until they
// are rewritten.
func (s *Sealer) Open(value string) (string, error) {
	raw, ok := strings.CutPrefix(value, sealedPrefix)
	if !ok {
		return value, nil
	}

	sealed, err := base64.RawStdEncoding.DecodeString(raw)
	if err != nil {
		return "", fmt.Errorf("cryptox: decode sealed value: %w", err)
	}
	nonceSize := s.aead.NonceSize()
	if len(sealed) < nonceSize {
		return "", fmt.Errorf("cryptox: sealed value too short")
	}

	plaintext, err := s.aead.Open(nil, sealed[:nonceSize], sealed[nonceSize:], nil)
	if err != nil {
		return "", fmt.Errorf("cryptox: open sealed value: %w", err)
	}
	return string(plaintext), nil
}

// IsSealed reports whether a stored value is in sealed form.
func IsSealed(value string) bool {
	return strings.HasPrefix(value, sealedPrefix)
}

// LoadKey reads master key material from a file, falling back to the
// SYNC_MASTER_KEY environment variable, and finally to an ephemeral random
// key. The ephemeral fallback keeps development setups running but sealed
// values do not survive a restart, so it logs through the returned source.
func LoadKey(path string) (material []byte, source string, err error) {
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, "", fmt.Errorf("cryptox: read key file: %w", err)
		}
		return data, "file", nil
	}
	if env := os.Getenv("SYNC_MASTER_KEY"); env != "" {
		return []byte(env), "env", nil
	}

	material = make([]byte, 32)
	if _, err := rand.Read(material); err != nil {
		return nil, "", fmt.Errorf("cryptox: generate ephemeral key: %w", err)
	}
	return material, "ephemeral", nil
}
