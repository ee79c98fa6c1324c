package core

import (
	"fmt"

	"github.com/illarion/passvault/internal/crypto"
	"github.com/illarion/passvault/internal/record"
)

// Outcome describes how an operation ended when it did not fail.
type Outcome int

const (
	OutcomeDone Outcome = iota
	OutcomeNotFound
	OutcomeExists
	OutcomeInvalidID
	OutcomeCancelled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeDone:
		return "done"
	case OutcomeNotFound:
		return "not found"
	case OutcomeExists:
		return "already exists"
	case OutcomeInvalidID:
		return "invalid id"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Fields that Modify can replace, in the order offered to the user.
var modifyChoices = []string{"password", "username"}

// Clipboard receives passwords so they are never printed.
type Clipboard interface {
	CopySecret(s string) error
}

// Session is the decrypted collection for one invocation.
type Session struct {
	vault      *Vault
	kdf        *crypto.KDF
	enc        *crypto.Encryptor
	collection *record.Collection
}

func (s *Session) destroy() {
	s.enc.Destroy()
}

// List returns all ids in ascending order.
func (s *Session) List() []string {
	return s.collection.IDs()
}

// Get copies the password of id to the clipboard and returns a copy of the
// entry.
func (s *Session) Get(id string, clip Clipboard) (record.Entry, Outcome, error) {
	entry, ok := s.collection.Get(id)
	if !ok {
		return record.Entry{}, OutcomeNotFound, nil
	}
	if err := clip.CopySecret(entry.Password); err != nil {
		return record.Entry{}, OutcomeDone, err
	}
	s.vault.logger.Debug("credentials read", "id", id)
	return entry, OutcomeDone, nil
}

// Add prompts for a username and a confirmed password and stores them
// under a new id.
func (s *Session) Add(id string, p Prompter) (Outcome, error) {
	if !record.ValidID(id) {
		return OutcomeInvalidID, nil
	}
	if s.collection.Has(id) {
		return OutcomeExists, nil
	}

	username, err := p.Input("Enter username/email")
	if err != nil {
		return OutcomeDone, err
	}
	password, err := p.Password("Enter password", true)
	if err != nil {
		return OutcomeDone, err
	}
	defer crypto.ClearBytes(password)

	if err := s.collection.Put(id, record.Entry{Username: username, Password: string(password)}); err != nil {
		return OutcomeDone, err
	}
	s.vault.logger.Debug("credentials added", "id", id)
	return OutcomeDone, nil
}

// Delete removes id after explicit confirmation.
func (s *Session) Delete(id string, p Prompter) (Outcome, error) {
	if !s.collection.Has(id) {
		return OutcomeNotFound, nil
	}

	ok, err := p.Confirm(fmt.Sprintf("Do you want to delete credentials with id '%s'?", id))
	if err != nil {
		return OutcomeDone, err
	}
	if !ok {
		return OutcomeCancelled, nil
	}

	s.collection.Delete(id)
	s.vault.logger.Debug("credentials deleted", "id", id)
	return OutcomeDone, nil
}

// Modify replaces either the password or the username of id. The returned
// string names the field that changed.
func (s *Session) Modify(id string, p Prompter) (string, Outcome, error) {
	entry, ok := s.collection.Get(id)
	if !ok {
		return "", OutcomeNotFound, nil
	}

	choice, err := p.Select("What would you like to modify?", modifyChoices)
	if err != nil {
		return "", OutcomeDone, err
	}

	switch choice {
	case 0:
		password, err := p.Password("Enter new password", true)
		if err != nil {
			return "", OutcomeDone, err
		}
		defer crypto.ClearBytes(password)
		entry.Password = string(password)
	case 1:
		username, err := p.Input("Enter new username")
		if err != nil {
			return "", OutcomeDone, err
		}
		entry.Username = username
	default:
		return "", OutcomeCancelled, nil
	}

	if err := s.collection.Put(id, entry); err != nil {
		return "", OutcomeDone, err
	}
	s.vault.logger.Debug("credentials modified", "id", id, "field", modifyChoices[choice])
	return modifyChoices[choice], OutcomeDone, nil
}

// ChangeMasterPassword switches the session to a key derived from
// newPassword. The save at the end of Vault.Do writes the collection under
// the new key, replacing the old ciphertext entirely.
func (s *Session) ChangeMasterPassword(newPassword []byte) error {
	kdf, err := crypto.NewKDF(s.vault.kdf)
	if err != nil {
		return err
	}
	key, err := kdf.DeriveKey(newPassword)
	if err != nil {
		return fmt.Errorf("failed to derive key: %w", err)
	}

	s.enc.Destroy()
	s.enc = crypto.NewEncryptor(key)
	s.kdf = kdf
	s.vault.logger.Debug("master password changed", "kdf", kdf.Name())
	return nil
}
