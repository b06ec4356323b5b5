// Package cryptox implements per-user key derivation and streaming
// authenticated encryption for media blobs at rest.
package cryptox

import (
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"

	"github.com/smazurov/progresslapse/internal/common"
)

// keyInfoPrefix domain-separates media keys from any future use of the
// same master secret. Changing it invalidates all stored ciphertext.
const keyInfoPrefix = "progresslapse/media-key/v1/"

// KeyDeriver deterministically derives a per-user encryption key from a
// process-wide master secret. The same userID always yields the same
// key, so ciphertext written by one process is readable by any later
// process configured with the same secret.
type KeyDeriver struct {
	secret []byte
}

// NewKeyDeriver validates the master secret at construction time so a
// misconfigured deployment fails at startup, not on first decrypt.
func NewKeyDeriver(masterSecret []byte) (*KeyDeriver, error) {
	if len(masterSecret) == 0 {
		return nil, fmt.Errorf("%w: media master secret is not set", common.ErrConfiguration)
	}
	secret := make([]byte, len(masterSecret))
	copy(secret, masterSecret)
	return &KeyDeriver{secret: secret}, nil
}

// DeriveKey returns the 32-byte AES-256 key for userID using
// HKDF-SHA256 over the master secret. Pure function, no side effects.
func (k *KeyDeriver) DeriveKey(userID string) []byte {
	r := hkdf.New(sha256.New, k.secret, nil, []byte(keyInfoPrefix+userID))
	key := make([]byte, 32)
	if _, err := io.ReadFull(r, key); err != nil {
		// hkdf only fails when asked for more than 255*HashLen bytes.
		panic(fmt.Sprintf("hkdf expand: %v", err))
	}
	return key
}
