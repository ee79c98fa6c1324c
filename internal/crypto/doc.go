// Package crypto provides cryptographic operations for passvault.
//
// Encryption uses AES-256-GCM with:
//   - 32-byte key derived from the master password
//   - 12-byte random nonce per encryption operation, appended to the ciphertext
//   - No associated data
//
// Key derivation:
//   - sha256: a single SHA-256 of the password, no salt (compatible format)
//   - argon2id: memory-hard derivation with a 16-byte random salt that the
//     backend must persist next to the ciphertext
//
// Memory safety:
//   - Keys live in memguard locked buffers; call Key.Destroy or
//     Encryptor.Destroy when done
//   - Use ClearBytes() to zero passwords and plaintext after use
package crypto
