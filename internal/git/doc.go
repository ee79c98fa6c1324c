// Package git checks whether the vault file sits inside a git work tree.
//
// The vault is encrypted, but committing it publishes the ciphertext
// for offline guessing of the master password. Checks performed:
//   - Whether the vault directory is inside a git repository
//   - Whether the vault file is tracked by git (should not be)
//   - Whether the vault file is ignored by git (should be)
package git
