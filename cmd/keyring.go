package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/illarion/passvault/internal/crypto"
	"github.com/illarion/passvault/internal/keyring"
)

// KeyringSave saves the master password to the OS keyring
func KeyringSave(ctx context.Context) {
	env := Setup()

	// Prompt for password
	password, err := env.Prompter.Password("Enter master password", false)
	if err != nil {
		HandleError(err)
	}
	defer crypto.ClearBytes(WipeOnExit(password))

	// Verify password is correct
	if err := env.Vault.VerifyPassword(ctx, password); err != nil {
		HandleError(err)
	}

	vaultID, err := env.Vault.VaultID()
	if err != nil {
		HandleError(err)
	}

	// Save to keyring
	if err := keyring.SavePassword(vaultID, password); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to save to keyring: %s\n", err)
		Exit(1)
	}

	fmt.Println("Password saved to keyring")
}

// KeyringDelete removes the master password from the OS keyring
func KeyringDelete() {
	env := Setup()

	vaultID, err := env.Vault.VaultID()
	if err != nil {
		HandleError(err)
	}

	if err := keyring.DeletePassword(vaultID); err != nil {
		fmt.Println("No password stored in keyring")
		return
	}

	fmt.Println("Password removed from keyring")
}

// KeyringStatus checks if a master password is stored in the keyring
func KeyringStatus() {
	env := Setup()

	vaultID, err := env.Vault.VaultID()
	if err != nil {
		HandleError(err)
	}

	if keyring.HasPassword(vaultID) {
		fmt.Println("Password: stored in keyring")
	} else {
		fmt.Println("Password: not stored")
	}
}
