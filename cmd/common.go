package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/awnumar/memguard"

	"github.com/illarion/passvault/internal/clipboard"
	"github.com/illarion/passvault/internal/config"
	"github.com/illarion/passvault/internal/core"
	"github.com/illarion/passvault/internal/crypto"
	"github.com/illarion/passvault/internal/git"
	"github.com/illarion/passvault/internal/keyring"
	"github.com/illarion/passvault/internal/record"
	"github.com/illarion/passvault/internal/storage"
)

// PasswordSource tells where the master password came from
type PasswordSource int

const (
	SourcePrompt PasswordSource = iota
	SourceEnv
	SourceKeyring
)

func (s PasswordSource) String() string {
	switch s {
	case SourceEnv:
		return "env"
	case SourceKeyring:
		return "keyring"
	default:
		return "prompt"
	}
}

// Env bundles what every command needs
type Env struct {
	Config    *config.Config
	Vault     *core.Vault
	Prompter  core.Prompter
	Clipboard core.Clipboard
	Logger    *slog.Logger
}

// Setup loads configuration and wires the vault, or exits on error
func Setup() *Env {
	cfg, err := config.Load()
	if err != nil {
		HandleError(err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel()}))
	logger.Debug("configuration loaded", "path", cfg.Path, "backend", cfg.Backend, "kdf", cfg.KDF)

	if git.Available() {
		if status := git.CheckVault(cfg.Path); status.Exposed() {
			logger.Warn("vault file is inside a git work tree and not ignored", "path", cfg.Path, "tracked", status.Tracked)
		}
	}

	return &Env{
		Config:    cfg,
		Vault:     core.New(core.BackendOpener(cfg), cfg.KDF, logger),
		Prompter:  core.NewTerminal(),
		Clipboard: clipboard.System{},
		Logger:    logger,
	}
}

// GetPasswordWithRetry returns the master password from PASSVAULT_PASSWORD,
// the OS keyring or a prompt, in that order. A keyring password that no
// longer opens the vault is removed and the user is prompted instead.
// The caller is responsible for calling crypto.ClearBytes on the result.
func (e *Env) GetPasswordWithRetry(ctx context.Context, prompt string) ([]byte, PasswordSource, error) {
	if e.Config.Password != nil {
		return append([]byte(nil), e.Config.Password...), SourceEnv, nil
	}

	if e.Config.UseKeyring {
		password, err := e.keyringPassword(ctx)
		if err != nil {
			return nil, SourcePrompt, err
		}
		if password != nil {
			return password, SourceKeyring, nil
		}
	}

	password, err := e.Prompter.Password(prompt, false)
	if err != nil {
		return nil, SourcePrompt, fmt.Errorf("failed to read password: %w", err)
	}
	return password, SourcePrompt, nil
}

// keyringPassword returns nil when the keyring has no usable entry.
func (e *Env) keyringPassword(ctx context.Context) ([]byte, error) {
	vaultID, err := e.Vault.VaultID()
	if err != nil {
		return nil, err
	}

	password, err := keyring.GetPassword(vaultID)
	if err != nil {
		if !keyring.IsNotFound(err) {
			e.Logger.Debug("keyring unavailable", "error", err)
		}
		return nil, nil
	}

	err = e.Vault.VerifyPassword(ctx, password)
	switch {
	case err == nil:
		e.Logger.Debug("using keyring password", "vault_id", vaultID)
		return password, nil
	case errors.Is(err, core.ErrWrongPassword):
		crypto.ClearBytes(password)
		fmt.Fprintln(os.Stderr, "warning: password in keyring is outdated, removing it")
		if err := keyring.DeletePassword(vaultID); err != nil {
			e.Logger.Debug("failed to remove stale keyring entry", "error", err)
		}
		return nil, nil
	default:
		crypto.ClearBytes(password)
		return nil, err
	}
}

// GetPasswordOrExit is like GetPasswordWithRetry but exits on error
func (e *Env) GetPasswordOrExit(ctx context.Context) []byte {
	password, source, err := e.GetPasswordWithRetry(ctx, "Enter master password")
	if err != nil {
		HandleError(err)
	}
	e.Logger.Debug("master password obtained", "source", source)
	return WipeOnExit(password)
}

// RequireID exits with usage help when no id argument was given
func RequireID(command string, args []string) string {
	if len(args) != 1 {
		fmt.Fprintf(os.Stderr, "Error: %s requires exactly one id argument\n", command)
		fmt.Fprintf(os.Stderr, "Usage: passvault %s <id>\n", command)
		Exit(1)
	}
	return args[0]
}

// HandleError prints a one-line message for err and exits with status 1
func HandleError(err error) {
	switch {
	case errors.Is(err, core.ErrWrongPassword):
		fmt.Fprintf(os.Stderr, "Error: master password is incorrect\n")
	case errors.Is(err, storage.ErrLocked):
		fmt.Fprintf(os.Stderr, "Error: vault is in use by another passvault process\n")
	case errors.Is(err, crypto.ErrInsufficientData), errors.Is(err, crypto.ErrInvalidEncoding):
		fmt.Fprintf(os.Stderr, "Error: vault file is corrupted: %s\n", err)
	case errors.Is(err, record.ErrMalformedRecord):
		fmt.Fprintf(os.Stderr, "Error: vault contents are corrupted: %s\n", err)
	case errors.Is(err, core.ErrPasswordMismatch):
		fmt.Fprintf(os.Stderr, "Error: passwords don't match\n")
	default:
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
	Exit(1)
}

var (
	secretsMu sync.Mutex
	secrets   [][]byte

	// replaced in tests
	osExit = os.Exit
)

// WipeOnExit registers b to be cleared by WipeSecrets and returns it.
// Deferred crypto.ClearBytes calls do not run when a command exits early.
func WipeOnExit(b []byte) []byte {
	secretsMu.Lock()
	defer secretsMu.Unlock()
	secrets = append(secrets, b)
	return b
}

// WipeSecrets clears every slice registered with WipeOnExit and destroys
// all memguard buffers.
func WipeSecrets() {
	secretsMu.Lock()
	for _, b := range secrets {
		crypto.ClearBytes(b)
	}
	secrets = nil
	secretsMu.Unlock()

	memguard.Purge()
}

// Exit wipes secrets and terminates the process with code
func Exit(code int) {
	WipeSecrets()
	osExit(code)
}
