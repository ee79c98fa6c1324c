package keyring

import (
	"errors"

	"github.com/zalando/go-keyring"
)

const serviceName = "passvault"

// ErrNotFound is returned when no master password is cached for a vault.
var ErrNotFound = keyring.ErrNotFound

// SavePassword caches the master password for vaultID in the OS keyring
func SavePassword(vaultID string, password []byte) error {
	return keyring.Set(serviceName, vaultID, string(password))
}

// GetPassword retrieves the cached master password for vaultID
func GetPassword(vaultID string) ([]byte, error) {
	password, err := keyring.Get(serviceName, vaultID)
	if err != nil {
		return nil, err
	}
	return []byte(password), nil
}

// DeletePassword removes the cached master password. A missing entry is
// reported as ErrNotFound.
func DeletePassword(vaultID string) error {
	return keyring.Delete(serviceName, vaultID)
}

// HasPassword checks if a master password is cached for vaultID
func HasPassword(vaultID string) bool {
	_, err := keyring.Get(serviceName, vaultID)
	return err == nil
}

// IsNotFound reports whether err means the keyring has no entry.
func IsNotFound(err error) bool {
	return errors.Is(err, keyring.ErrNotFound)
}
