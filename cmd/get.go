package cmd

import (
	"context"
	"fmt"

	"github.com/illarion/passvault/internal/core"
	"github.com/illarion/passvault/internal/crypto"
	"github.com/illarion/passvault/internal/record"
)

// Get prints the username for id and copies its password to the clipboard
func Get(ctx context.Context, id string) {
	env := Setup()

	password := env.GetPasswordOrExit(ctx)
	defer crypto.ClearBytes(password)

	var (
		entry   record.Entry
		outcome core.Outcome
	)
	err := env.Vault.Do(ctx, password, func(s *core.Session) error {
		var err error
		entry, outcome, err = s.Get(id, env.Clipboard)
		return err
	})
	if err != nil {
		HandleError(err)
	}

	if outcome == core.OutcomeNotFound {
		fmt.Printf("ID '%s' does not exist\n", id)
		return
	}

	fmt.Printf("--- Credentials for %s ---\n", id)
	fmt.Printf("username: %s\n", entry.Username)
	fmt.Println("password: [hidden] (copied to clipboard)")
}
