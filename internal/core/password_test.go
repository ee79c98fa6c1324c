package core

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fd -1 is never a terminal, so reads fall back to line input
func newTestTerminal(input string) (*Terminal, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return NewTerminalFrom(strings.NewReader(input), -1, out), out
}

func TestTerminalPasswordConfirm(t *testing.T) {
	term, _ := newTestTerminal("s3cret\ns3cret\n")
	pw, err := term.Password("Enter password", true)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", string(pw))
}

func TestTerminalPasswordRetryOnMismatch(t *testing.T) {
	term, out := newTestTerminal("one\ntwo\nthree\nthree\n")
	pw, err := term.Password("Enter password", true)
	require.NoError(t, err)
	assert.Equal(t, "three", string(pw))
	assert.Contains(t, out.String(), "Passwords don't match")
}

func TestTerminalPasswordMismatchGivesUp(t *testing.T) {
	term, _ := newTestTerminal("a\nb\nc\nd\ne\nf\n")
	_, err := term.Password("Enter password", true)
	assert.ErrorIs(t, err, ErrPasswordMismatch)
}

func TestTerminalInputKeepsSpaces(t *testing.T) {
	term, out := newTestTerminal("  john doe \r\n")
	s, err := term.Input("Enter username/email")
	require.NoError(t, err)
	assert.Equal(t, "  john doe ", s)
	assert.Equal(t, "Enter username/email: ", out.String())
}

func TestTerminalInputWithoutNewline(t *testing.T) {
	term, _ := newTestTerminal("last")
	s, err := term.Input("x")
	require.NoError(t, err)
	assert.Equal(t, "last", s)

	_, err = term.Input("x")
	assert.ErrorIs(t, err, ErrNoInput)
}

func TestTerminalConfirm(t *testing.T) {
	for input, want := range map[string]bool{"y\n": true, "YES\n": true, "n\n": false, "\n": false, "maybe\n": false} {
		term, _ := newTestTerminal(input)
		got, err := term.Confirm("Delete?")
		require.NoError(t, err)
		assert.Equal(t, want, got, input)
	}
}

func TestTerminalSelect(t *testing.T) {
	items := []string{"password", "username"}

	term, _ := newTestTerminal("2\n")
	i, err := term.Select("What would you like to modify?", items)
	require.NoError(t, err)
	assert.Equal(t, 1, i)

	term, _ = newTestTerminal("\n")
	i, err = term.Select("?", items)
	require.NoError(t, err)
	assert.Equal(t, 0, i)

	term, out := newTestTerminal("9\nUsername\n")
	i, err = term.Select("?", items)
	require.NoError(t, err)
	assert.Equal(t, 1, i)
	assert.Contains(t, out.String(), "Invalid choice")
}
