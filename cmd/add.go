package cmd

import (
	"context"
	"fmt"

	"github.com/illarion/passvault/internal/core"
	"github.com/illarion/passvault/internal/crypto"
)

// Add stores new credentials under id
func Add(ctx context.Context, id string) {
	env := Setup()

	password := env.GetPasswordOrExit(ctx)
	defer crypto.ClearBytes(password)

	var outcome core.Outcome
	err := env.Vault.Do(ctx, password, func(s *core.Session) error {
		var err error
		outcome, err = s.Add(id, env.Prompter)
		return err
	})
	if err != nil {
		HandleError(err)
	}

	switch outcome {
	case core.OutcomeInvalidID:
		fmt.Println("Invalid ID: only a-z, A-Z, 0-9, '-' and '_' are allowed")
	case core.OutcomeExists:
		fmt.Printf("Credentials with ID '%s' already exist\n", id)
	default:
		fmt.Printf("Added credentials with ID '%s'\n", id)
	}
}
