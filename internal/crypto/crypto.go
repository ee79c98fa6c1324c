package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/awnumar/memguard"
	"golang.org/x/crypto/argon2"
)

const (
	KeySize   = 32 // AES-256 key size
	NonceSize = 12 // GCM nonce size
	TagSize   = 16 // GCM authentication tag size
	SaltSize  = 16 // Argon2id salt size

	DefaultTime    = 3         // Argon2id passes
	DefaultMemory  = 64 * 1024 // Argon2id memory in KiB
	DefaultThreads = 4
)

// Key derivation algorithms
const (
	AlgSHA256   = "sha256"
	AlgArgon2id = "argon2id"
)

var (
	ErrAuthFailed       = errors.New("authentication failed")
	ErrInsufficientData = errors.New("insufficient data")
	ErrInvalidEncoding  = errors.New("decrypted data is not valid UTF-8")
	ErrUnknownKDF       = errors.New("unknown key derivation algorithm")
	ErrKeyDestroyed     = errors.New("key destroyed")
)

// KDF describes how a master password becomes an encryption key.
// The zero value is the unsalted SHA-256 mapping.
type KDF struct {
	Algorithm string
	Salt      []byte
	Time      uint32
	Memory    uint32
	Threads   uint8
}

// NewKDF creates parameters for a new store. Argon2id gets a fresh salt.
func NewKDF(algorithm string) (*KDF, error) {
	switch algorithm {
	case "", AlgSHA256:
		return &KDF{Algorithm: AlgSHA256}, nil
	case AlgArgon2id:
		salt, err := GenerateRandom(SaltSize)
		if err != nil {
			return nil, fmt.Errorf("failed to generate salt: %w", err)
		}
		return &KDF{
			Algorithm: AlgArgon2id,
			Salt:      salt,
			Time:      DefaultTime,
			Memory:    DefaultMemory,
			Threads:   DefaultThreads,
		}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownKDF, algorithm)
	}
}

// Name returns the algorithm, defaulting to sha256.
func (k *KDF) Name() string {
	if k == nil || k.Algorithm == "" {
		return AlgSHA256
	}
	return k.Algorithm
}

// DeriveKey derives an encryption key from a password.
// The same password and parameters always yield the same key.
func (k *KDF) DeriveKey(password []byte) (*Key, error) {
	var raw []byte
	switch k.Name() {
	case AlgSHA256:
		sum := sha256.Sum256(password)
		raw = sum[:]
	case AlgArgon2id:
		if len(k.Salt) == 0 {
			return nil, fmt.Errorf("argon2id: missing salt")
		}
		raw = argon2.IDKey(password, k.Salt, k.Time, k.Memory, k.Threads, KeySize)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownKDF, k.Algorithm)
	}
	// NewBufferFromBytes wipes raw
	return &Key{buf: memguard.NewBufferFromBytes(raw)}, nil
}

// Key is a 256-bit secret kept in locked memory until Destroy.
type Key struct {
	buf *memguard.LockedBuffer
}

// Destroy wipes the key. Safe to call more than once.
func (k *Key) Destroy() {
	if k != nil && k.buf != nil {
		k.buf.Destroy()
	}
}

func (k *Key) aead() (cipher.AEAD, error) {
	if k == nil || k.buf == nil || !k.buf.IsAlive() {
		return nil, ErrKeyDestroyed
	}
	block, err := aes.NewCipher(k.buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return gcm, nil
}

// Encryptor provides authenticated encryption
type Encryptor struct {
	key *Key
}

// NewEncryptor creates a new encryptor with the given key.
// The encryptor takes ownership of the key.
func NewEncryptor(key *Key) *Encryptor {
	return &Encryptor{
		key: key,
	}
}

// Encrypt seals plaintext with AES-256-GCM and appends the nonce:
// ciphertext||nonce.
func (e *Encryptor) Encrypt(plaintext []byte) ([]byte, error) {
	gcm, err := e.key.aead()
	if err != nil {
		return nil, err
	}

	nonce, err := GenerateRandom(NonceSize)
	if err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	result := make([]byte, 0, len(plaintext)+TagSize+NonceSize)
	result = gcm.Seal(result, nonce, plaintext, nil)
	return append(result, nonce...), nil
}

// Decrypt splits off the trailing nonce, opens the ciphertext and checks
// that the recovered bytes are text.
func (e *Encryptor) Decrypt(blob []byte) ([]byte, error) {
	if len(blob) < NonceSize {
		return nil, ErrInsufficientData
	}

	gcm, err := e.key.aead()
	if err != nil {
		return nil, err
	}

	split := len(blob) - NonceSize
	nonce := blob[split:]
	ciphertext := blob[:split]

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrAuthFailed
	}

	if !utf8.Valid(plaintext) {
		ClearBytes(plaintext)
		return nil, ErrInvalidEncoding
	}

	return plaintext, nil
}

// Destroy clears the encryptor's key from memory
func (e *Encryptor) Destroy() {
	e.key.Destroy()
}

// ClearBytes securely clears a byte slice
func ClearBytes(b []byte) {
	memguard.WipeBytes(b)
}

// ConstantTimeCompare performs a constant-time comparison of two byte slices
func ConstantTimeCompare(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}

// GenerateRandom generates n random bytes
func GenerateRandom(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return b, nil
}
