package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"syscall"

	"github.com/awnumar/memguard"
	"golang.org/x/term"

	"github.com/illarion/passvault/cmd"
)

func main() {
	ctx := context.Background()
	defer cmd.WipeSecrets()

	// Ctrl-C must also abort a blocking password prompt, which leaves echo
	// disabled unless the terminal state is put back.
	stdin := int(os.Stdin.Fd())
	state, stateErr := term.GetState(stdin)
	memguard.CatchSignal(func(os.Signal) {
		if stateErr == nil {
			_ = term.Restore(stdin, state)
		}
		fmt.Fprintln(os.Stderr)
		cmd.WipeSecrets()
	}, os.Interrupt, syscall.SIGTERM)

	if len(os.Args) < 2 {
		printUsage()
		cmd.Exit(1)
	}

	switch os.Args[1] {
	case "add":
		runAdd(ctx, os.Args[2:])
	case "get":
		runGet(ctx, os.Args[2:])
	case "modify":
		runModify(ctx, os.Args[2:])
	case "delete":
		runDelete(ctx, os.Args[2:])
	case "list":
		runList(ctx, os.Args[2:])
	case "change-password":
		runChangePassword(ctx, os.Args[2:])
	case "keyring":
		runKeyring(ctx, os.Args[2:])
	case "compact":
		runCompact(ctx, os.Args[2:])
	case "completion":
		runCompletion(ctx, os.Args[2:])
	case "help", "-h", "--help":
		if len(os.Args) <= 2 {
			printUsage()
			return
		}
		printCommandHelp(os.Args[2])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		cmd.Exit(1)
	}
}

func parseFlags(name string, args []string) []string {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		cmd.Exit(1)
	}
	return fs.Args()
}

func runAdd(ctx context.Context, args []string) {
	cmd.Add(ctx, cmd.RequireID("add", parseFlags("add", args)))
}

func runGet(ctx context.Context, args []string) {
	cmd.Get(ctx, cmd.RequireID("get", parseFlags("get", args)))
}

func runModify(ctx context.Context, args []string) {
	cmd.Modify(ctx, cmd.RequireID("modify", parseFlags("modify", args)))
}

func runDelete(ctx context.Context, args []string) {
	cmd.Delete(ctx, cmd.RequireID("delete", parseFlags("delete", args)))
}

func runList(ctx context.Context, args []string) {
	parseFlags("list", args)
	cmd.List(ctx)
}

func runChangePassword(ctx context.Context, args []string) {
	parseFlags("change-password", args)
	cmd.ChangePassword(ctx)
}

func runKeyring(ctx context.Context, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: passvault keyring <save|delete|status>")
		cmd.Exit(1)
	}

	switch args[0] {
	case "save":
		cmd.KeyringSave(ctx)
	case "delete":
		cmd.KeyringDelete()
	case "status":
		cmd.KeyringStatus()
	default:
		fmt.Fprintf(os.Stderr, "Unknown keyring subcommand: %s\n", args[0])
		fmt.Fprintln(os.Stderr, "Usage: passvault keyring <save|delete|status>")
		cmd.Exit(1)
	}
}

func runCompact(_ context.Context, args []string) {
	parseFlags("compact", args)
	cmd.Compact()
}

func runCompletion(_ context.Context, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: passvault completion <bash|zsh|fish>")
		cmd.Exit(1)
	}
	cmd.Completion(args[0])
}

func printUsage() {
	fmt.Println("passvault - Encrypted local store for login credentials")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  passvault <command> [arguments]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  add <id>          Add login credentials")
	fmt.Println("  get <id>          Print username, copy password to clipboard")
	fmt.Println("  modify <id>       Change username or password of an entry")
	fmt.Println("  delete <id>       Delete login credentials")
	fmt.Println("  list              List all stored ids")
	fmt.Println("  change-password   Change master password")
	fmt.Println("  keyring           Manage master password in OS keyring")
	fmt.Println("  compact           Compact bolt vault to reclaim disk space")
	fmt.Println("  completion        Generate shell completions")
	fmt.Println("  help              Show help for a command")
	fmt.Println()
	fmt.Println("Environment:")
	fmt.Println("  PASSVAULT_PATH          Vault location (default ~/.passvault/data)")
	fmt.Println("  PASSVAULT_BACKEND       file (default) or bolt")
	fmt.Println("  PASSVAULT_KDF           sha256 (default) or argon2id (bolt only)")
	fmt.Println("  PASSVAULT_PASSWORD      Master password, skips prompt and keyring")
	fmt.Println("  PASSVAULT_NO_KEYRING    Disable OS keyring lookup")
	fmt.Println("  PASSVAULT_DEBUG         Enable debug logging on stderr")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  passvault add github          # Store credentials for github")
	fmt.Println("  passvault get github          # Show username, copy password")
	fmt.Println("  passvault list                # Show all ids")
	fmt.Println()
	fmt.Println("Use 'passvault help <command>' for more information about a command.")
}

func printCommandHelp(command string) {
	switch command {
	case "add":
		fmt.Println("passvault add <id>")
		fmt.Println()
		fmt.Println("Prompts for a username and password and stores them under <id>.")
		fmt.Println("Ids may contain letters, digits, '-' and '_'.")
		fmt.Println("Fails without changes if <id> already exists.")
		fmt.Println()
		fmt.Println("Example:")
		fmt.Println("  passvault add github")
	case "get":
		fmt.Println("passvault get <id>")
		fmt.Println()
		fmt.Println("Prints the username stored under <id> and copies the password")
		fmt.Println("to the clipboard. The password is never printed.")
		fmt.Println()
		fmt.Println("Example:")
		fmt.Println("  passvault get github")
	case "modify":
		fmt.Println("passvault modify <id>")
		fmt.Println()
		fmt.Println("Asks whether to change the password or the username of <id>,")
		fmt.Println("then prompts for the new value.")
		fmt.Println()
		fmt.Println("Example:")
		fmt.Println("  passvault modify github")
	case "delete":
		fmt.Println("passvault delete <id>")
		fmt.Println()
		fmt.Println("Deletes the credentials stored under <id> after confirmation.")
		fmt.Println()
		fmt.Println("Example:")
		fmt.Println("  passvault delete github")
	case "list":
		fmt.Println("passvault list")
		fmt.Println()
		fmt.Println("Prints every stored id, one per line, in sorted order.")
		fmt.Println()
		fmt.Println("Example:")
		fmt.Println("  passvault list")
	case "change-password":
		fmt.Println("passvault change-password")
		fmt.Println()
		fmt.Println("Changes the master password.")
		fmt.Println("Requires both the current and new passwords.")
		fmt.Println("Re-encrypts the vault with the new password and updates")
		fmt.Println("the keyring entry if one exists.")
		fmt.Println()
		fmt.Println("Example:")
		fmt.Println("  passvault change-password")
	case "keyring":
		fmt.Println("passvault keyring <save|delete|status>")
		fmt.Println()
		fmt.Println("Manages the master password in the OS keyring.")
		fmt.Println()
		fmt.Println("Subcommands:")
		fmt.Println("  save     Verify and store the master password in the keyring")
		fmt.Println("  delete   Remove the master password from the keyring")
		fmt.Println("  status   Show whether a password is stored")
		fmt.Println()
		fmt.Println("Examples:")
		fmt.Println("  passvault keyring save")
		fmt.Println("  passvault keyring status")
	case "compact":
		fmt.Println("passvault compact")
		fmt.Println()
		fmt.Println("Compacts the bolt vault database to reclaim unused disk space.")
		fmt.Println("Has no effect with the file backend.")
		fmt.Println()
		fmt.Println("Does not require a password.")
		fmt.Println()
		fmt.Println("Example:")
		fmt.Println("  PASSVAULT_BACKEND=bolt passvault compact")
	case "completion":
		fmt.Println("passvault completion <bash|zsh|fish>")
		fmt.Println()
		fmt.Println("Outputs shell completion script for the specified shell.")
		fmt.Println("Ids are completed only when the master password is available")
		fmt.Println("from the keyring or PASSVAULT_PASSWORD.")
		fmt.Println()
		fmt.Println("Setup:")
		fmt.Println("  # Bash - add to ~/.bashrc")
		fmt.Println("  eval \"$(passvault completion bash)\"")
		fmt.Println()
		fmt.Println("  # Zsh - add to ~/.zshrc")
		fmt.Println("  eval \"$(passvault completion zsh)\"")
		fmt.Println()
		fmt.Println("  # Fish - add to ~/.config/fish/config.fish")
		fmt.Println("  passvault completion fish | source")
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
	}
}
