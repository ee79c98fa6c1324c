package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/illarion/passvault/internal/core"
	"github.com/illarion/passvault/internal/crypto"
	"github.com/illarion/passvault/internal/keyring"
)

// ChangePassword re-encrypts the vault under a new master password
func ChangePassword(ctx context.Context) {
	env := Setup()

	currentPassword, _, err := env.GetPasswordWithRetry(ctx, "Enter current master password")
	if err != nil {
		HandleError(err)
	}
	defer crypto.ClearBytes(WipeOnExit(currentPassword))

	// Fail before asking for the new password
	if err := env.Vault.VerifyPassword(ctx, currentPassword); err != nil {
		HandleError(err)
	}

	newPassword, err := env.Prompter.Password("Enter new master password", true)
	if err != nil {
		HandleError(err)
	}
	defer crypto.ClearBytes(WipeOnExit(newPassword))

	err = env.Vault.Do(ctx, currentPassword, func(s *core.Session) error {
		return s.ChangeMasterPassword(newPassword)
	})
	if err != nil {
		HandleError(err)
	}

	// Keep an existing keyring entry in sync
	if env.Config.UseKeyring {
		if vaultID, err := env.Vault.VaultID(); err == nil && keyring.HasPassword(vaultID) {
			if err := keyring.SavePassword(vaultID, newPassword); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to update keyring: %s\n", err)
			} else {
				fmt.Println("Keyring updated with new password")
			}
		}
	}

	fmt.Println("Master password updated.")
}
