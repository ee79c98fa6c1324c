package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/illarion/passvault/internal/crypto"
)

func TestFileLoadMissing(t *testing.T) {
	dir := t.TempDir()
	f, err := OpenFile(filepath.Join(dir, "nested", "data"))
	if err != nil {
		t.Fatalf("OpenFile failed: %v", err)
	}
	defer f.Close()

	blob, err := f.Load(context.Background())
	if err != nil {
		t.Fatalf("Missing file should load as empty store: %v", err)
	}
	if !blob.Empty() {
		t.Error("Blob should be empty")
	}
	if blob.KDF.Name() != crypto.AlgSHA256 {
		t.Errorf("File backend KDF should be sha256, got %s", blob.KDF.Name())
	}

	// Load must not create anything
	if _, err := os.Stat(filepath.Join(dir, "nested")); !os.IsNotExist(err) {
		t.Error("Load should not create the vault directory")
	}
}

func TestFileLoadZeroLength(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data")
	if err := os.WriteFile(path, nil, 0600); err != nil {
		t.Fatalf("Failed to create file: %v", err)
	}

	f, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile failed: %v", err)
	}
	blob, err := f.Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !blob.Empty() {
		t.Error("Zero-length file should be an empty store")
	}
}

func TestFileSaveLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".passvault", "data")

	f, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile failed: %v", err)
	}

	ctx := context.Background()
	data := []byte("ciphertext-and-nonce")
	if err := f.Save(ctx, &Blob{KDF: crypto.KDF{Algorithm: crypto.AlgSHA256}, Data: data}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file: %v", err)
	}
	if string(raw) != string(data) {
		t.Errorf("File should hold the raw blob only: got %q", raw)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if info.Mode().Perm() != FilePermSecure {
		t.Errorf("File mode: got %o, want %o", info.Mode().Perm(), FilePermSecure)
	}
	dirInfo, err := os.Stat(filepath.Dir(path))
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if dirInfo.Mode().Perm() != DirPermSecure {
		t.Errorf("Dir mode: got %o, want %o", dirInfo.Mode().Perm(), DirPermSecure)
	}

	// Overwrite
	if err := f.Save(ctx, &Blob{Data: []byte("second")}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	blob, err := f.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if string(blob.Data) != "second" {
		t.Errorf("Got %q, want second", blob.Data)
	}
}

func TestFileRejectsSaltedKDF(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data")
	f, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile failed: %v", err)
	}

	kdf := crypto.KDF{Algorithm: crypto.AlgArgon2id, Salt: []byte("salt")}
	if err := f.Save(context.Background(), &Blob{KDF: kdf, Data: []byte("x")}); !errors.Is(err, ErrUnsupportedKDF) {
		t.Errorf("Expected ErrUnsupportedKDF, got %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("Nothing should be written on rejected save")
	}
}

func TestFileVaultIDStable(t *testing.T) {
	dir := t.TempDir()
	a, _ := OpenFile(filepath.Join(dir, "a"))
	a2, _ := OpenFile(filepath.Join(dir, "a"))
	b, _ := OpenFile(filepath.Join(dir, "b"))

	idA, _ := a.VaultID()
	idA2, _ := a2.VaultID()
	idB, _ := b.VaultID()

	if idA != idA2 {
		t.Error("Same path should give the same vault ID")
	}
	if idA == idB {
		t.Error("Different paths should give different vault IDs")
	}
	if len(idA) != 32 {
		t.Errorf("Vault ID length: got %d, want 32", len(idA))
	}
}

func TestFileLoadCancelled(t *testing.T) {
	f, _ := OpenFile(filepath.Join(t.TempDir(), "data"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := f.Load(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestFileGetModified(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data")
	f, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile failed: %v", err)
	}

	if _, err := f.GetModified(); !errors.Is(err, ErrNotSaved) {
		t.Errorf("Expected ErrNotSaved for missing file, got %v", err)
	}
	if err := os.WriteFile(path, nil, 0600); err != nil {
		t.Fatalf("Failed to create file: %v", err)
	}
	if _, err := f.GetModified(); !errors.Is(err, ErrNotSaved) {
		t.Errorf("Expected ErrNotSaved for empty file, got %v", err)
	}

	if err := f.Save(context.Background(), &Blob{KDF: crypto.KDF{Algorithm: crypto.AlgSHA256}, Data: []byte("sealed")}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	modified, err := f.GetModified()
	if err != nil {
		t.Fatalf("GetModified failed: %v", err)
	}
	if modified.IsZero() {
		t.Error("Modified time should be set after save")
	}
}
