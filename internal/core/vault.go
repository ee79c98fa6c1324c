package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/illarion/passvault/internal/config"
	"github.com/illarion/passvault/internal/crypto"
	"github.com/illarion/passvault/internal/record"
	"github.com/illarion/passvault/internal/storage"
)

var (
	ErrWrongPassword      = errors.New("master password is incorrect")
	ErrCompactUnsupported = errors.New("backend does not support compaction")
)

// Opener returns a fresh backend for one load/save cycle.
type Opener func() (storage.Backend, error)

// BackendOpener returns the Opener selected by cfg.
func BackendOpener(cfg *config.Config) Opener {
	return func() (storage.Backend, error) {
		if cfg.Backend == config.BackendBolt {
			return storage.OpenBolt(cfg.Path)
		}
		return storage.OpenFile(cfg.Path)
	}
}

// Vault runs credential operations against an encrypted backend
type Vault struct {
	open   Opener
	kdf    string
	logger *slog.Logger
}

// New creates a Vault. kdfAlgorithm is used for new stores and when the
// master password changes.
func New(open Opener, kdfAlgorithm string, logger *slog.Logger) *Vault {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Vault{
		open:   open,
		kdf:    kdfAlgorithm,
		logger: logger,
	}
}

// Do loads and decrypts the collection, runs fn, then re-encrypts with a
// fresh nonce and saves, whether or not fn changed anything. Nothing is
// written if loading or fn fails.
func (v *Vault) Do(ctx context.Context, password []byte, fn func(*Session) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	backend, err := v.open()
	if err != nil {
		return err
	}
	defer backend.Close()

	s, err := v.load(ctx, backend, password)
	if err != nil {
		return err
	}
	defer s.destroy()

	if err := fn(s); err != nil {
		return err
	}

	return v.save(ctx, backend, s)
}

// VerifyPassword checks that password opens the store without writing.
// An empty store accepts any password.
func (v *Vault) VerifyPassword(ctx context.Context, password []byte) error {
	backend, err := v.open()
	if err != nil {
		return err
	}
	defer backend.Close()

	s, err := v.load(ctx, backend, password)
	if err != nil {
		return err
	}
	s.destroy()
	return nil
}

// VaultID returns the identifier of the underlying store.
func (v *Vault) VaultID() (string, error) {
	backend, err := v.open()
	if err != nil {
		return "", err
	}
	defer backend.Close()
	return backend.VaultID()
}

// Compact reclaims free space when the backend supports it.
func (v *Vault) Compact() error {
	backend, err := v.open()
	if err != nil {
		return err
	}
	defer backend.Close()

	c, ok := backend.(interface{ Compact() error })
	if !ok {
		return ErrCompactUnsupported
	}
	return c.Compact()
}

// LastModified returns the time of the last save, or storage.ErrNotSaved
// for a store that has never been written.
func (v *Vault) LastModified() (time.Time, error) {
	backend, err := v.open()
	if err != nil {
		return time.Time{}, err
	}
	defer backend.Close()

	m, ok := backend.(interface{ GetModified() (time.Time, error) })
	if !ok {
		return time.Time{}, storage.ErrNotSaved
	}
	return m.GetModified()
}

func (v *Vault) load(ctx context.Context, backend storage.Backend, password []byte) (*Session, error) {
	blob, err := backend.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load vault: %w", err)
	}

	kdf := &blob.KDF
	if blob.Empty() && kdf.Algorithm == "" {
		if kdf, err = crypto.NewKDF(v.kdf); err != nil {
			return nil, err
		}
	}

	key, err := kdf.DeriveKey(password)
	if err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}
	enc := crypto.NewEncryptor(key)

	s := &Session{
		vault:      v,
		kdf:        kdf,
		enc:        enc,
		collection: record.New(),
	}

	if blob.Empty() {
		v.logger.Debug("empty vault", "kdf", kdf.Name())
		return s, nil
	}

	plaintext, err := enc.Decrypt(blob.Data)
	if err != nil {
		enc.Destroy()
		if errors.Is(err, crypto.ErrAuthFailed) {
			return nil, ErrWrongPassword
		}
		return nil, fmt.Errorf("failed to decrypt vault: %w", err)
	}
	defer crypto.ClearBytes(plaintext)

	collection, err := record.Decode(string(plaintext))
	if err != nil {
		enc.Destroy()
		return nil, fmt.Errorf("failed to decode vault: %w", err)
	}
	s.collection = collection

	v.logger.Debug("vault loaded", "entries", collection.Len(), "bytes", len(blob.Data), "kdf", kdf.Name())
	return s, nil
}

func (v *Vault) save(ctx context.Context, backend storage.Backend, s *Session) error {
	plaintext := []byte(record.Encode(s.collection))
	defer crypto.ClearBytes(plaintext)

	data, err := s.enc.Encrypt(plaintext)
	if err != nil {
		return fmt.Errorf("failed to encrypt vault: %w", err)
	}

	if err := backend.Save(ctx, &storage.Blob{KDF: *s.kdf, Data: data}); err != nil {
		return fmt.Errorf("failed to save vault: %w", err)
	}

	v.logger.Debug("vault saved", "entries", s.collection.Len(), "bytes", len(data), "kdf", s.kdf.Name())
	return nil
}
