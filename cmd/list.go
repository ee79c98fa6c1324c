package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/illarion/passvault/internal/core"
	"github.com/illarion/passvault/internal/crypto"
)

// List prints all stored ids, one per line
func List(ctx context.Context) {
	env := Setup()

	password := env.GetPasswordOrExit(ctx)
	defer crypto.ClearBytes(password)

	var ids []string
	err := env.Vault.Do(ctx, password, func(s *core.Session) error {
		ids = s.List()
		return nil
	})
	if err != nil {
		HandleError(err)
	}

	if len(ids) == 0 {
		fmt.Fprintln(os.Stderr, "No credentials in vault")
		return
	}
	for _, id := range ids {
		fmt.Println(id)
	}
}
