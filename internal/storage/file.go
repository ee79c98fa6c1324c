package storage

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/natefinch/atomic"

	"github.com/illarion/passvault/internal/crypto"
)

const (
	DirPermSecure  = 0700 // Directory: owner rwx only
	FilePermSecure = 0600 // File: owner rw only
)

// File stores the raw blob in a single file with no header. Only the
// unsalted sha256 derivation fits this layout.
type File struct {
	path string
}

// OpenFile returns a file backend. Nothing is created until the first Save.
func OpenFile(path string) (*File, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}
	return &File{path: abs}, nil
}

// Load reads the blob. A missing or empty file is an empty store.
func (f *File) Load(ctx context.Context) (*Blob, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(f.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read vault: %w", err)
	}

	return &Blob{
		KDF:  crypto.KDF{Algorithm: crypto.AlgSHA256},
		Data: data,
	}, nil
}

// Save replaces the file atomically, creating its directory on first use.
func (f *File) Save(ctx context.Context, blob *Blob) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if blob.KDF.Name() != crypto.AlgSHA256 {
		return fmt.Errorf("%w: %s", ErrUnsupportedKDF, blob.KDF.Name())
	}

	if err := os.MkdirAll(filepath.Dir(f.path), DirPermSecure); err != nil {
		return fmt.Errorf("failed to create vault directory: %w", err)
	}

	if err := atomic.WriteFile(f.path, bytes.NewReader(blob.Data)); err != nil {
		return fmt.Errorf("failed to write vault: %w", err)
	}

	if err := os.Chmod(f.path, FilePermSecure); err != nil {
		return fmt.Errorf("failed to set vault permissions: %w", err)
	}

	return nil
}

// GetModified returns the modification time of the file.
func (f *File) GetModified() (time.Time, error) {
	info, err := os.Stat(f.path)
	if errors.Is(err, os.ErrNotExist) || (err == nil && info.Size() == 0) {
		return time.Time{}, ErrNotSaved
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to stat vault: %w", err)
	}
	return info.ModTime(), nil
}

// VaultID derives a stable identifier from the absolute path.
func (f *File) VaultID() (string, error) {
	sum := sha256.Sum256([]byte(f.path))
	return hex.EncodeToString(sum[:16]), nil
}

// Close is a no-op; the file is only open during Load and Save.
func (f *File) Close() error {
	return nil
}
