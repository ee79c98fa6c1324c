package cmd

import (
	"context"
	"fmt"

	"github.com/illarion/passvault/internal/core"
	"github.com/illarion/passvault/internal/crypto"
)

// Delete removes the credentials stored under id after confirmation
func Delete(ctx context.Context, id string) {
	env := Setup()

	password := env.GetPasswordOrExit(ctx)
	defer crypto.ClearBytes(password)

	var outcome core.Outcome
	err := env.Vault.Do(ctx, password, func(s *core.Session) error {
		var err error
		outcome, err = s.Delete(id, env.Prompter)
		return err
	})
	if err != nil {
		HandleError(err)
	}

	switch outcome {
	case core.OutcomeNotFound:
		fmt.Printf("Credentials with ID '%s' do not exist\n", id)
	case core.OutcomeCancelled:
		fmt.Println("Nothing deleted")
	default:
		fmt.Printf("Deleted credentials with ID '%s'\n", id)
	}
}
