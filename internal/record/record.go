package record

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

const (
	// Delimiter separates the fields of a record line.
	Delimiter = ";"
	// Sentinel stands in for a literal delimiter inside a field.
	Sentinel = "###semicolon###"

	fieldCount = 3
)

var (
	ErrMalformedRecord = errors.New("malformed record")
	ErrInvalidID       = errors.New("invalid id")
	ErrUnsafeValue     = errors.New("value contains a newline")
)

var idPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ValidID reports whether id may be used as a record key.
func ValidID(id string) bool {
	return idPattern.MatchString(id)
}

// Entry is a stored credential.
type Entry struct {
	Username string
	Password string
}

// Collection maps ids to entries.
type Collection struct {
	entries map[string]Entry
}

// New returns an empty collection.
func New() *Collection {
	return &Collection{entries: make(map[string]Entry)}
}

// Len returns the number of entries.
func (c *Collection) Len() int {
	return len(c.entries)
}

// Has reports whether id is present.
func (c *Collection) Has(id string) bool {
	_, ok := c.entries[id]
	return ok
}

// Get returns a copy of the entry stored under id.
func (c *Collection) Get(id string) (Entry, bool) {
	e, ok := c.entries[id]
	return e, ok
}

// Put inserts or replaces an entry. Ids must satisfy ValidID and fields
// must not contain newlines, otherwise the encoded form would not decode
// back to the same collection.
func (c *Collection) Put(id string, e Entry) error {
	if !ValidID(id) {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	if strings.ContainsAny(e.Username, "\r\n") || strings.ContainsAny(e.Password, "\r\n") {
		return ErrUnsafeValue
	}
	c.entries[id] = e
	return nil
}

// Delete removes id and reports whether it was present.
func (c *Collection) Delete(id string) bool {
	if _, ok := c.entries[id]; !ok {
		return false
	}
	delete(c.entries, id)
	return true
}

// IDs returns all ids in ascending order.
func (c *Collection) IDs() []string {
	ids := make([]string, 0, len(c.entries))
	for id := range c.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// MalformedRecordError reports a line with fewer than three fields.
type MalformedRecordError struct {
	Line   int // 1-based
	Fields int
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed record on line %d: expected at least %d fields, got %d", e.Line, fieldCount, e.Fields)
}

func (e *MalformedRecordError) Is(target error) bool {
	return target == ErrMalformedRecord
}

// Escape replaces every delimiter in s with the sentinel.
func Escape(s string) string {
	return strings.ReplaceAll(s, Delimiter, Sentinel)
}

// Unescape reverses Escape.
func Unescape(s string) string {
	return strings.ReplaceAll(s, Sentinel, Delimiter)
}

// Encode serializes the collection as one "id;username;password" line per
// entry in ascending id order, without a trailing newline.
func Encode(c *Collection) string {
	var b strings.Builder
	for i, id := range c.IDs() {
		if i > 0 {
			b.WriteByte('\n')
		}
		e := c.entries[id]
		b.WriteString(id)
		b.WriteString(Delimiter)
		b.WriteString(Escape(e.Username))
		b.WriteString(Delimiter)
		b.WriteString(Escape(e.Password))
	}
	return b.String()
}

// Decode parses text produced by Encode. Empty lines are skipped. Ids are
// not re-validated; a repeated id keeps the last occurrence.
//
// Extra fields belong to the password: older stores saved modified
// passwords without escaping, so "id;user;a;b" decodes to password "a;b".
func Decode(text string) (*Collection, error) {
	c := New()
	if text == "" {
		return c, nil
	}
	for i, line := range strings.Split(text, "\n") {
		if line == "" {
			continue
		}
		fields := strings.SplitN(line, Delimiter, fieldCount)
		if len(fields) < fieldCount {
			return nil, &MalformedRecordError{Line: i + 1, Fields: len(fields)}
		}
		c.entries[fields[0]] = Entry{
			Username: Unescape(fields[1]),
			Password: Unescape(fields[2]),
		}
	}
	return c, nil
}
