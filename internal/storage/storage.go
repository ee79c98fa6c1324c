package storage

import (
	"context"
	"errors"

	"github.com/illarion/passvault/internal/crypto"
)

var (
	ErrUnsupportedKDF = errors.New("backend cannot persist key derivation parameters")
	ErrLocked         = errors.New("vault is locked by another process")
	ErrCorrupted      = errors.New("vault metadata is corrupted")
	ErrNotSaved       = errors.New("vault has not been saved yet")
)

// Blob is what a backend persists: the sealed collection and the
// parameters needed to derive its key again.
type Blob struct {
	KDF  crypto.KDF
	Data []byte // ciphertext||nonce, empty for a new store
}

// Empty reports whether the blob holds no ciphertext yet.
func (b *Blob) Empty() bool {
	return len(b.Data) == 0
}

// Backend loads and saves the vault blob.
type Backend interface {
	Load(ctx context.Context) (*Blob, error)
	Save(ctx context.Context, blob *Blob) error
	// VaultID identifies the store, e.g. for keyring entries.
	VaultID() (string, error)
	Close() error
}
