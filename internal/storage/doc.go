// Package storage persists the sealed credential collection.
//
// Two backends implement Backend:
//   - File: the blob (ciphertext||nonce) is the whole file. Writes go to a
//     temp file that is renamed over the original. No locking: concurrent
//     invocations race and the last writer wins.
//   - Bolt: a bbolt database with two buckets:
//     config: KDF algorithm and parameters, timestamps, vault id (unencrypted)
//     vault: the sealed blob under key "data"
//     bbolt's file lock is held for as long as the backend is open.
package storage
