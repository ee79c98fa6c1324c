// Package clipboard hands secrets to the system clipboard.
package clipboard

import (
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
)

var ErrUnsupported = errors.New("no clipboard utility available (install xclip, xsel or wl-clipboard)")

// System writes to the OS clipboard.
type System struct{}

// CopySecret places s in the clipboard.
func (System) CopySecret(s string) error {
	if clipboard.Unsupported {
		return ErrUnsupported
	}
	if err := clipboard.WriteAll(s); err != nil {
		return fmt.Errorf("failed to copy to clipboard: %w", err)
	}
	return nil
}
