package storage

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
	bolterrors "go.etcd.io/bbolt/errors"

	"github.com/illarion/passvault/internal/crypto"
)

// Bucket names
var (
	ConfigBucket = []byte("config") // KDF params, timestamps, vault id - unencrypted
	VaultBucket  = []byte("vault")  // Sealed collection
)

// Config keys
var (
	ConfigVersion  = []byte("version")
	ConfigCreated  = []byte("created")
	ConfigModified = []byte("modified")
	ConfigKDF      = []byte("kdf")
	ConfigSalt     = []byte("salt")
	ConfigTime     = []byte("time")
	ConfigMemory   = []byte("memory")
	ConfigThreads  = []byte("threads")
	ConfigVaultID  = []byte("vault_id")

	dataKey = []byte("data")
)

const lockTimeout = time.Second

// Bolt stores the blob and its KDF parameters in a bbolt database. The
// database stays flock'ed from OpenBolt until Close, so a load/save pair
// cannot interleave with another process.
type Bolt struct {
	db *bolt.DB
}

// OpenBolt opens or creates a passvault database
func OpenBolt(path string) (*Bolt, error) {
	if err := os.MkdirAll(filepath.Dir(path), DirPermSecure); err != nil {
		return nil, fmt.Errorf("failed to create vault directory: %w", err)
	}

	db, err := bolt.Open(path, FilePermSecure, &bolt.Options{Timeout: lockTimeout})
	if err != nil {
		if errors.Is(err, bolterrors.ErrTimeout) {
			return nil, ErrLocked
		}
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &Bolt{db: db}, nil
}

// Close closes the database
func (s *Bolt) Close() error {
	return s.db.Close()
}

// Load reads KDF parameters and the sealed data. An uninitialized
// database yields an empty blob with a zero KDF.
func (s *Bolt) Load(ctx context.Context) (*Blob, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	blob := &Blob{}
	err := s.db.View(func(tx *bolt.Tx) error {
		config := tx.Bucket(ConfigBucket)
		if config == nil || config.Get(ConfigVersion) == nil {
			return nil
		}

		kdf, err := readKDF(config)
		if err != nil {
			return err
		}
		blob.KDF = kdf

		if vault := tx.Bucket(VaultBucket); vault != nil {
			if data := vault.Get(dataKey); data != nil {
				// Make a copy since the slice is only valid during the transaction
				blob.Data = append([]byte(nil), data...)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return blob, nil
}

func readKDF(config *bolt.Bucket) (crypto.KDF, error) {
	var kdf crypto.KDF
	alg := config.Get(ConfigKDF)
	if alg == nil {
		return kdf, fmt.Errorf("%w: kdf not found", ErrCorrupted)
	}
	kdf.Algorithm = string(alg)
	if kdf.Algorithm == crypto.AlgSHA256 {
		return kdf, nil
	}

	salt := config.Get(ConfigSalt)
	if len(salt) == 0 {
		return kdf, fmt.Errorf("%w: salt not found", ErrCorrupted)
	}
	kdf.Salt = append([]byte(nil), salt...)

	t, err := getUint32(config, ConfigTime)
	if err != nil {
		return kdf, err
	}
	m, err := getUint32(config, ConfigMemory)
	if err != nil {
		return kdf, err
	}
	threads := config.Get(ConfigThreads)
	if len(threads) != 1 {
		return kdf, fmt.Errorf("%w: threads not found", ErrCorrupted)
	}

	kdf.Time = t
	kdf.Memory = m
	kdf.Threads = threads[0]
	return kdf, nil
}

func getUint32(b *bolt.Bucket, key []byte) (uint32, error) {
	v := b.Get(key)
	if len(v) != 4 {
		return 0, fmt.Errorf("%w: %s not found", ErrCorrupted, key)
	}
	return binary.BigEndian.Uint32(v), nil
}

func putUint32(b *bolt.Bucket, key []byte, v uint32) error {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, v)
	return b.Put(key, buf)
}

// Save writes KDF parameters and data in one transaction.
func (s *Bolt) Save(ctx context.Context, blob *Blob) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		config, err := tx.CreateBucketIfNotExists(ConfigBucket)
		if err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", ConfigBucket, err)
		}
		vault, err := tx.CreateBucketIfNotExists(VaultBucket)
		if err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", VaultBucket, err)
		}

		now, _ := time.Now().MarshalBinary()
		if config.Get(ConfigVersion) == nil {
			if err := config.Put(ConfigVersion, []byte("1")); err != nil {
				return err
			}
			if err := config.Put(ConfigCreated, now); err != nil {
				return err
			}
		}
		if err := config.Put(ConfigModified, now); err != nil {
			return err
		}

		if err := config.Put(ConfigKDF, []byte(blob.KDF.Name())); err != nil {
			return err
		}
		if blob.KDF.Name() == crypto.AlgSHA256 {
			for _, k := range [][]byte{ConfigSalt, ConfigTime, ConfigMemory, ConfigThreads} {
				if err := config.Delete(k); err != nil {
					return err
				}
			}
		} else {
			if err := config.Put(ConfigSalt, blob.KDF.Salt); err != nil {
				return err
			}
			if err := putUint32(config, ConfigTime, blob.KDF.Time); err != nil {
				return err
			}
			if err := putUint32(config, ConfigMemory, blob.KDF.Memory); err != nil {
				return err
			}
			if err := config.Put(ConfigThreads, []byte{blob.KDF.Threads}); err != nil {
				return err
			}
		}

		return vault.Put(dataKey, blob.Data)
	})
}

// GetModified retrieves the time of the last save
func (s *Bolt) GetModified() (time.Time, error) {
	var modified time.Time
	err := s.db.View(func(tx *bolt.Tx) error {
		config := tx.Bucket(ConfigBucket)
		if config == nil {
			return ErrNotSaved
		}
		data := config.Get(ConfigModified)
		if data == nil {
			return ErrNotSaved
		}
		if err := modified.UnmarshalBinary(data); err != nil {
			return fmt.Errorf("%w: modified time: %v", ErrCorrupted, err)
		}
		return nil
	})
	return modified, err
}

// VaultID retrieves the stored vault ID, generating one on first use
func (s *Bolt) VaultID() (string, error) {
	var vaultID string
	err := s.db.View(func(tx *bolt.Tx) error {
		if config := tx.Bucket(ConfigBucket); config != nil {
			vaultID = string(config.Get(ConfigVaultID))
		}
		return nil
	})
	if err != nil || vaultID != "" {
		return vaultID, err
	}

	b, err := crypto.GenerateRandom(16)
	if err != nil {
		return "", fmt.Errorf("failed to generate vault ID: %w", err)
	}
	vaultID = hex.EncodeToString(b)

	err = s.db.Update(func(tx *bolt.Tx) error {
		config, err := tx.CreateBucketIfNotExists(ConfigBucket)
		if err != nil {
			return err
		}
		return config.Put(ConfigVaultID, []byte(vaultID))
	})
	if err != nil {
		return "", err
	}

	return vaultID, nil
}

// Compact creates a compacted copy of the database, removing unused space.
// Every save rewrites the whole blob, so free pages accumulate over time.
func (s *Bolt) Compact() error {
	srcPath := s.db.Path()
	tmpPath := srcPath + ".compact"

	// Create new database
	dst, err := bolt.Open(tmpPath, FilePermSecure, nil)
	if err != nil {
		return fmt.Errorf("failed to create compact database: %w", err)
	}

	// Copy all buckets
	err = s.db.View(func(srcTx *bolt.Tx) error {
		return dst.Update(func(dstTx *bolt.Tx) error {
			return srcTx.ForEach(func(name []byte, srcBucket *bolt.Bucket) error {
				dstBucket, err := dstTx.CreateBucketIfNotExists(name)
				if err != nil {
					return err
				}
				return srcBucket.ForEach(func(k, v []byte) error {
					return dstBucket.Put(k, v)
				})
			})
		})
	})

	if err != nil {
		dst.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to copy data: %w", err)
	}

	if err := dst.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close compact database: %w", err)
	}

	if err := s.db.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close source database: %w", err)
	}

	// Atomic replace
	backupPath := srcPath + ".backup"
	if err := os.Rename(srcPath, backupPath); err != nil {
		return fmt.Errorf("failed to backup original: %w", err)
	}
	if err := os.Rename(tmpPath, srcPath); err != nil {
		os.Rename(backupPath, srcPath) // rollback
		return fmt.Errorf("failed to replace database: %w", err)
	}
	os.Remove(backupPath)

	// Reopen database
	s.db, err = bolt.Open(srcPath, FilePermSecure, &bolt.Options{Timeout: lockTimeout})
	if err != nil {
		return fmt.Errorf("failed to reopen database: %w", err)
	}

	return nil
}
