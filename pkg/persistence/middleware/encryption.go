package middleware

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/provision/pkg/domain"
	"github.com/aretw0/provision/pkg/ports"
)

// sealedPrefix marks an encrypted password in the stored state.
const sealedPrefix = "enc:v1:"

// KeySize is the AES-256 key length.
const KeySize = 32

// ErrNotSealed is returned when a stored password was written without encryption.
var ErrNotSealed = errors.New("stored password is not encrypted")

// EncryptionConfig selects the sealing keys.
type EncryptionConfig struct {
	// ActiveKey seals every saved password. KeySize bytes.
	ActiveKey []byte

	// FallbackKeys are retired keys still accepted when opening, so stored
	// devices survive a rotation until they are saved again.
	FallbackKeys [][]byte
}

// ParseKey decodes a base64 AES-256 key.
func ParseKey(s string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("invalid key encoding: %w", err)
	}
	if len(key) != KeySize {
		return nil, fmt.Errorf("key must be %d bytes, got %d", KeySize, len(key))
	}
	return key, nil
}

type encryptionMiddleware struct {
	next   ports.StateStore
	config EncryptionConfig
}

// NewEncryptionMiddleware creates a middleware that seals the Wi-Fi password with AES-GCM
// before it reaches the store. The SSID and BLE configuration stay readable.
func NewEncryptionMiddleware(config EncryptionConfig) Middleware {
	if len(config.ActiveKey) != KeySize {
		panic("active key must be 32 bytes (AES-256)")
	}
	return func(next ports.StateStore) ports.StateStore {
		return &encryptionMiddleware{
			next:   next,
			config: config,
		}
	}
}

func (m *encryptionMiddleware) Save(ctx context.Context, deviceID string, state *domain.DeviceState) error {
	out := state.Clone()
	if pw := state.Credentials.Password; pw != "" {
		box, err := seal([]byte(pw), m.config.ActiveKey)
		if err != nil {
			return fmt.Errorf("failed to encrypt credentials: %w", err)
		}
		out.Credentials.Password = sealedPrefix + base64.StdEncoding.EncodeToString(box)
	}
	return m.next.Save(ctx, deviceID, out)
}

func (m *encryptionMiddleware) Load(ctx context.Context, deviceID string) (*domain.DeviceState, error) {
	state, err := m.next.Load(ctx, deviceID)
	if err != nil {
		return nil, err
	}

	stored := state.Credentials.Password
	if stored == "" {
		return state, nil
	}
	encoded, ok := strings.CutPrefix(stored, sealedPrefix)
	if !ok {
		return nil, fmt.Errorf("device %s: %w", deviceID, ErrNotSealed)
	}
	box, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("device %s: malformed sealed password: %w", deviceID, err)
	}

	keys := append([][]byte{m.config.ActiveKey}, m.config.FallbackKeys...)
	plain, err := openAny(box, keys)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt credentials: %w", err)
	}
	state.Credentials.Password = string(plain)
	return state, nil
}

func (m *encryptionMiddleware) Delete(ctx context.Context, deviceID string) error {
	return m.next.Delete(ctx, deviceID)
}

func (m *encryptionMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// seal returns nonce||ciphertext.
func seal(plain, key []byte) ([]byte, error) {
	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plain)+aead.Overhead())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return aead.Seal(nonce, nonce, plain, nil), nil
}

func open(box, key []byte) ([]byte, error) {
	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	n := aead.NonceSize()
	if len(box) < n {
		return nil, errors.New("sealed value too short")
	}
	return aead.Open(nil, box[:n], box[n:], nil)
}

// openAny tries keys in order.
func openAny(box []byte, keys [][]byte) ([]byte, error) {
	for _, key := range keys {
		if plain, err := open(box, key); err == nil {
			return plain, nil
		}
	}
	return nil, errors.New("no key opens the sealed value")
}
