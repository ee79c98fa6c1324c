// Package core provides the passvault credential store operations.
//
// Every invocation runs one cycle through Vault.Do:
//   - Load the blob from the backend and derive the key
//   - Decrypt and decode the collection
//   - Apply one Session operation (List, Get, Add, Delete, Modify,
//     ChangeMasterPassword)
//   - Encode, encrypt with a fresh nonce and save, even for read-only
//     operations
//
// Ids that are missing, duplicated or malformed are reported as Outcome
// values, not errors. Errors are reserved for decryption, decoding and I/O
// failures, and nothing is written when one occurs.
package core
