package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"
)

// Keyring seals short secrets (the session token) for at-rest storage using
// AES-256-GCM. Multiple keys may be loaded so that values sealed under a
// retired key still open after rotation; new seals always use the current key.
type Keyring struct {
	currentID string
	keys      map[string][]byte
}

func NewKeyring(currentID string, keys map[string][]byte) (*Keyring, error) {
	if currentID == "" {
		return nil, fmt.Errorf("current key id is empty")
	}
	if _, ok := keys[currentID]; !ok {
		return nil, fmt.Errorf("current key id %q not found", currentID)
	}
	cp := make(map[string][]byte, len(keys))
	for id, key := range keys {
		if len(key) != 32 {
			return nil, fmt.Errorf("key %q must be 32 bytes", id)
		}
		buf := make([]byte, len(key))
		copy(buf, key)
		cp[id] = buf
	}
	return &Keyring{currentID: currentID, keys: cp}, nil
}

// Seal encrypts value and returns a compact "keyID.nonce.ciphertext" record.
func (k *Keyring) Seal(value string) (string, error) {
	aead, err := gcmFor(k.keys[k.currentID])
	if err != nil {
		return "", err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("nonce: %w", err)
	}
	ciphertext := aead.Seal(nil, nonce, []byte(value), nil)
	return strings.Join([]string{
		k.currentID,
		base64.RawStdEncoding.EncodeToString(nonce),
		base64.RawStdEncoding.EncodeToString(ciphertext),
	}, "."), nil
}

// Open decrypts a record produced by Seal, under whichever key sealed it.
func (k *Keyring) Open(record string) (string, error) {
	parts := strings.SplitN(record, ".", 3)
	if len(parts) != 3 {
		return "", fmt.Errorf("malformed sealed record")
	}
	key, ok := k.keys[parts[0]]
	if !ok {
		return "", fmt.Errorf("unknown key id %q", parts[0])
	}
	nonce, err := base64.RawStdEncoding.DecodeString(parts[1])
	if err != nil {
		return "", fmt.Errorf("decode nonce: %w", err)
	}
	ciphertext, err := base64.RawStdEncoding.DecodeString(parts[2])
	if err != nil {
		return "", fmt.Errorf("decode ciphertext: %w", err)
	}
	aead, err := gcmFor(key)
	if err != nil {
		return "", err
	}
	plain, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("open sealed record: %w", err)
	}
	return string(plain), nil
}

func gcmFor(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("new cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("new gcm: %w", err)
	}
	return aead, nil
}
