package cmd

import (
	"context"
	"fmt"

	"github.com/illarion/passvault/internal/core"
	"github.com/illarion/passvault/internal/crypto"
)

// Modify replaces the username or password stored under id
func Modify(ctx context.Context, id string) {
	env := Setup()

	password := env.GetPasswordOrExit(ctx)
	defer crypto.ClearBytes(password)

	var (
		field   string
		outcome core.Outcome
	)
	err := env.Vault.Do(ctx, password, func(s *core.Session) error {
		var err error
		field, outcome, err = s.Modify(id, env.Prompter)
		return err
	})
	if err != nil {
		HandleError(err)
	}

	switch outcome {
	case core.OutcomeNotFound:
		fmt.Printf("Credentials with ID '%s' do not exist\n", id)
	case core.OutcomeCancelled:
		fmt.Println("Nothing selected")
	default:
		fmt.Printf("Updated %s for '%s'\n", field, id)
	}
}
