package messaging

import (
	"crypto/rand"
	"io"

	"golang.org/x/crypto/nacl/secretbox"

	"github.com/quillforge/core/corerr"
)

// KeyDeriver produces the symmetric key used to seal a room's messages.
// The only implementation today is a single master key shared by every
// room; per-room derivation (spec §4.9's future E2EE note) is a second
// implementation of this same interface, not a change to callers.
type KeyDeriver interface {
	KeyForRoom(roomID string) (*[32]byte, error)
}

// MasterKey seals every room under one fixed 32-byte key, read from config
// at startup (spec §4.9: "the data key itself is sealed under the
// operator-supplied master key").
type MasterKey struct {
	key [32]byte
}

// NewMasterKey wraps a 32-byte master key for use as a KeyDeriver.
func NewMasterKey(key [32]byte) *MasterKey {
	return &MasterKey{key: key}
}

func (m *MasterKey) KeyForRoom(string) (*[32]byte, error) {
	return &m.key, nil
}

func seal(key *[32]byte, plaintext string) ([]byte, [24]byte, error) {
	var nonce [24]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, nonce, corerr.Wrap(corerr.Transient, err, "generate nonce")
	}
	ciphertext := secretbox.Seal(nil, []byte(plaintext), &nonce, key)
	return ciphertext, nonce, nil
}

func unseal(key *[32]byte, ciphertext []byte, nonce [24]byte) (string, error) {
	plaintext, ok := secretbox.Open(nil, ciphertext, &nonce, key)
	if !ok {
		return "", corerr.New(corerr.BadInput, "message decryption failed: wrong key or corrupt ciphertext", nil)
	}
	return string(plaintext), nil
}
