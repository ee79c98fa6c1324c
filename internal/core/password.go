package core

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/illarion/passvault/internal/crypto"
	"golang.org/x/term"
)

const maxConfirmAttempts = 3

var (
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrNoInput          = errors.New("no input")
)

// Prompter collects input from the user.
type Prompter interface {
	// Password reads a secret without echo. With confirm set it asks twice
	// and only returns once both entries match.
	Password(prompt string, confirm bool) ([]byte, error)
	Input(prompt string) (string, error)
	Confirm(prompt string) (bool, error)
	// Select returns the index of the chosen item.
	Select(prompt string, items []string) (int, error)
}

// Terminal prompts on a terminal, falling back to plain line reads when
// input is not a TTY.
type Terminal struct {
	fd  int
	in  *bufio.Reader
	out io.Writer
}

// NewTerminal returns a Terminal reading from stdin and prompting on stderr.
func NewTerminal() *Terminal {
	return NewTerminalFrom(os.Stdin, int(os.Stdin.Fd()), os.Stderr)
}

// NewTerminalFrom builds a Terminal over arbitrary streams. fd is used for
// masked reads when it refers to a terminal.
func NewTerminalFrom(in io.Reader, fd int, out io.Writer) *Terminal {
	return &Terminal{fd: fd, in: bufio.NewReader(in), out: out}
}

// ReadPassword reads a password from the terminal without echoing
func (t *Terminal) ReadPassword(prompt string) ([]byte, error) {
	fmt.Fprintf(t.out, "%s: ", prompt)

	if !term.IsTerminal(t.fd) {
		line, err := t.readLine()
		if err != nil {
			return nil, fmt.Errorf("failed to read password: %w", err)
		}
		return []byte(line), nil
	}

	// Read password without echo
	password, err := term.ReadPassword(t.fd)
	fmt.Fprintln(t.out) // New line after password

	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}

	return password, nil
}

// Password implements Prompter.
func (t *Terminal) Password(prompt string, confirm bool) ([]byte, error) {
	if !confirm {
		return t.ReadPassword(prompt)
	}

	for attempt := 0; attempt < maxConfirmAttempts; attempt++ {
		password1, err := t.ReadPassword(prompt)
		if err != nil {
			return nil, err
		}

		password2, err := t.ReadPassword("Confirm password")
		if err != nil {
			crypto.ClearBytes(password1)
			return nil, err
		}

		match := crypto.ConstantTimeCompare(password1, password2)
		crypto.ClearBytes(password2)
		if match {
			return password1, nil
		}
		crypto.ClearBytes(password1)
		fmt.Fprintln(t.out, "Passwords don't match")
	}

	return nil, ErrPasswordMismatch
}

// Input implements Prompter.
func (t *Terminal) Input(prompt string) (string, error) {
	fmt.Fprintf(t.out, "%s: ", prompt)
	return t.readLine()
}

// Confirm implements Prompter. Anything but y/yes counts as no.
func (t *Terminal) Confirm(prompt string) (bool, error) {
	fmt.Fprintf(t.out, "%s [y/N]: ", prompt)
	line, err := t.readLine()
	if err != nil {
		return false, err
	}
	switch strings.ToLower(line) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

// Select implements Prompter. Items are numbered from 1; an empty answer
// picks the first item.
func (t *Terminal) Select(prompt string, items []string) (int, error) {
	fmt.Fprintln(t.out, prompt)
	for i, item := range items {
		fmt.Fprintf(t.out, "  [%d] %s\n", i+1, item)
	}

	for {
		fmt.Fprintf(t.out, "Choice [1-%d]: ", len(items))
		line, err := t.readLine()
		if err != nil {
			return 0, err
		}
		if line == "" {
			return 0, nil
		}
		n, err := strconv.Atoi(line)
		if err == nil && n >= 1 && n <= len(items) {
			return n - 1, nil
		}
		// Allow typing the item itself
		for i, item := range items {
			if strings.EqualFold(line, item) {
				return i, nil
			}
		}
		fmt.Fprintln(t.out, "Invalid choice")
	}
}

func (t *Terminal) readLine() (string, error) {
	line, err := t.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		if err == io.EOF {
			return "", ErrNoInput
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
