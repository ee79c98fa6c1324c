package core

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/illarion/passvault/internal/config"
	"github.com/illarion/passvault/internal/crypto"
)

// scriptedPrompter replays canned answers and fails the test when it runs
// out.
type scriptedPrompter struct {
	t         *testing.T
	passwords []string
	inputs    []string
	confirms  []bool
	selects   []int
}

func (p *scriptedPrompter) Password(string, bool) ([]byte, error) {
	if len(p.passwords) == 0 {
		p.t.Fatal("unexpected password prompt")
	}
	v := p.passwords[0]
	p.passwords = p.passwords[1:]
	return []byte(v), nil
}

func (p *scriptedPrompter) Input(string) (string, error) {
	if len(p.inputs) == 0 {
		p.t.Fatal("unexpected input prompt")
	}
	v := p.inputs[0]
	p.inputs = p.inputs[1:]
	return v, nil
}

func (p *scriptedPrompter) Confirm(string) (bool, error) {
	if len(p.confirms) == 0 {
		p.t.Fatal("unexpected confirm prompt")
	}
	v := p.confirms[0]
	p.confirms = p.confirms[1:]
	return v, nil
}

func (p *scriptedPrompter) Select(string, []string) (int, error) {
	if len(p.selects) == 0 {
		p.t.Fatal("unexpected select prompt")
	}
	v := p.selects[0]
	p.selects = p.selects[1:]
	return v, nil
}

// noPrompts fails on any prompt.
func noPrompts(t *testing.T) *scriptedPrompter {
	return &scriptedPrompter{t: t}
}

type memClipboard struct {
	content string
	err     error
}

func (c *memClipboard) CopySecret(s string) error {
	if c.err != nil {
		return c.err
	}
	c.content = s
	return nil
}

var errPromptAborted = errors.New("prompt aborted")

type failingPrompter struct{ scriptedPrompter }

func (failingPrompter) Input(string) (string, error) { return "", errPromptAborted }

func newFileVault(t *testing.T) (*Vault, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".passvault", "data")
	cfg := &config.Config{Path: path, Backend: config.BackendFile, KDF: crypto.AlgSHA256}
	return New(BackendOpener(cfg), cfg.KDF, nil), path
}

func newBoltVault(t *testing.T, kdf string) (*Vault, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.db")
	cfg := &config.Config{Path: path, Backend: config.BackendBolt, KDF: kdf}
	return New(BackendOpener(cfg), cfg.KDF, nil), path
}

func list(t *testing.T, v *Vault, password string) []string {
	t.Helper()
	var ids []string
	require.NoError(t, v.Do(context.Background(), []byte(password), func(s *Session) error {
		ids = s.List()
		return nil
	}))
	return ids
}
