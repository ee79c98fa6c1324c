package cmd

import (
	"fmt"
	"os"
)

// Completion outputs shell completion scripts
func Completion(shell string) {
	switch shell {
	case "bash":
		fmt.Print(bashCompletion)
	case "zsh":
		fmt.Print(zshCompletion)
	case "fish":
		fmt.Print(fishCompletion)
	default:
		fmt.Fprintf(os.Stderr, "Unknown shell: %s\nSupported: bash, zsh, fish\n", shell)
		Exit(1)
	}
}

// Id completion only works when the master password comes from the
// keyring or PASSVAULT_PASSWORD; stdin is /dev/null so a prompt fails fast.

const bashCompletion = `_passvault() {
    local cur prev words cword
    _init_completion || return

    local commands="add get modify delete list change-password keyring compact help completion"

    if [[ $cword -eq 1 ]]; then
        COMPREPLY=($(compgen -W "$commands" -- "$cur"))
        return
    fi

    local cmd="${words[1]}"
    case "$cmd" in
        get|modify|delete)
            if [[ $cword -eq 2 ]]; then
                local ids
                ids=$(passvault list </dev/null 2>/dev/null)
                COMPREPLY=($(compgen -W "$ids" -- "$cur"))
            fi
            ;;
        keyring)
            COMPREPLY=($(compgen -W "save delete status" -- "$cur"))
            ;;
        help)
            COMPREPLY=($(compgen -W "$commands" -- "$cur"))
            ;;
        completion)
            COMPREPLY=($(compgen -W "bash zsh fish" -- "$cur"))
            ;;
    esac
}

complete -F _passvault passvault
`

const zshCompletion = `#compdef passvault

_passvault() {
    local -a commands
    commands=(
        'add:Add login credentials'
        'get:Get login credentials by ID'
        'modify:Modify login credentials'
        'delete:Delete login credentials'
        'list:List all IDs'
        'change-password:Change master password'
        'keyring:Manage master password in OS keyring'
        'compact:Compact bolt vault to reclaim disk space'
        'help:Show help for a command'
        'completion:Generate shell completions'
    )

    _arguments -C \
        '1: :->command' \
        '*: :->args'

    case "$state" in
        command)
            _describe -t commands 'passvault commands' commands
            ;;
        args)
            case "${words[2]}" in
                get|modify|delete)
                    _arguments '2:credential id:_passvault_ids'
                    ;;
                keyring)
                    _values 'subcommand' save delete status
                    ;;
                help)
                    _describe -t commands 'passvault commands' commands
                    ;;
                completion)
                    _values 'shell' bash zsh fish
                    ;;
            esac
            ;;
    esac
}

_passvault_ids() {
    local -a ids
    ids=(${(f)"$(passvault list </dev/null 2>/dev/null)"})
    _describe -t ids 'credential ids' ids
}

_passvault "$@"
`

const fishCompletion = `# passvault fish completions

set -l commands add get modify delete list change-password keyring compact help completion

complete -c passvault -f

# Commands
complete -c passvault -n "not __fish_seen_subcommand_from $commands" -a add -d 'Add login credentials'
complete -c passvault -n "not __fish_seen_subcommand_from $commands" -a get -d 'Get login credentials'
complete -c passvault -n "not __fish_seen_subcommand_from $commands" -a modify -d 'Modify login credentials'
complete -c passvault -n "not __fish_seen_subcommand_from $commands" -a delete -d 'Delete login credentials'
complete -c passvault -n "not __fish_seen_subcommand_from $commands" -a list -d 'List all IDs'
complete -c passvault -n "not __fish_seen_subcommand_from $commands" -a change-password -d 'Change master password'
complete -c passvault -n "not __fish_seen_subcommand_from $commands" -a keyring -d 'Manage password in OS keyring'
complete -c passvault -n "not __fish_seen_subcommand_from $commands" -a compact -d 'Compact vault'
complete -c passvault -n "not __fish_seen_subcommand_from $commands" -a help -d 'Show help'
complete -c passvault -n "not __fish_seen_subcommand_from $commands" -a completion -d 'Generate completions'

# ids
complete -c passvault -n "__fish_seen_subcommand_from get modify delete" -a "(passvault list </dev/null 2>/dev/null)"

# keyring subcommands
complete -c passvault -n "__fish_seen_subcommand_from keyring" -a "save delete status"

# help completions
complete -c passvault -n "__fish_seen_subcommand_from help" -a "$commands"

# completion completions
complete -c passvault -n "__fish_seen_subcommand_from completion" -a "bash zsh fish"
`
