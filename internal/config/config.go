// Package config loads passvault settings from environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/illarion/passvault/internal/crypto"
)

const (
	BackendFile = "file"
	BackendBolt = "bolt"

	defaultDir      = ".passvault"
	defaultFileName = "data"
	defaultBoltName = "data.db"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds settings for one invocation.
type Config struct {
	Path       string
	Backend    string
	KDF        string
	Password   []byte // from PASSVAULT_PASSWORD, nil when unset
	UseKeyring bool
	Debug      bool
}

// Load reads PASSVAULT_* variables and validates the combination.
// Optional variables with defaults: PASSVAULT_BACKEND (file),
// PASSVAULT_KDF (sha256), PASSVAULT_PATH (~/.passvault/data, or
// ~/.passvault/data.db for the bolt backend).
func Load() (*Config, error) {
	cfg := &Config{
		Backend:    BackendFile,
		KDF:        crypto.AlgSHA256,
		UseKeyring: true,
	}

	if v, ok := os.LookupEnv("PASSVAULT_BACKEND"); ok && v != "" {
		cfg.Backend = strings.ToLower(strings.TrimSpace(v))
	}
	switch cfg.Backend {
	case BackendFile, BackendBolt:
	default:
		return nil, fmt.Errorf("%w: PASSVAULT_BACKEND must be %q or %q, got %q", ErrInvalidConfig, BackendFile, BackendBolt, cfg.Backend)
	}

	if v, ok := os.LookupEnv("PASSVAULT_KDF"); ok && v != "" {
		cfg.KDF = strings.ToLower(strings.TrimSpace(v))
	}
	switch cfg.KDF {
	case crypto.AlgSHA256:
	case crypto.AlgArgon2id:
		if cfg.Backend != BackendBolt {
			return nil, fmt.Errorf("%w: PASSVAULT_KDF=%s needs PASSVAULT_BACKEND=%s to persist its salt", ErrInvalidConfig, cfg.KDF, BackendBolt)
		}
	default:
		return nil, fmt.Errorf("%w: PASSVAULT_KDF must be %q or %q, got %q", ErrInvalidConfig, crypto.AlgSHA256, crypto.AlgArgon2id, cfg.KDF)
	}

	if v, ok := os.LookupEnv("PASSVAULT_PATH"); ok && v != "" {
		cfg.Path = v
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to locate home directory: %w", err)
		}
		name := defaultFileName
		if cfg.Backend == BackendBolt {
			name = defaultBoltName
		}
		cfg.Path = filepath.Join(home, defaultDir, name)
	}

	if v := os.Getenv("PASSVAULT_PASSWORD"); v != "" {
		cfg.Password = []byte(v)
	}

	if isTrue(os.Getenv("PASSVAULT_NO_KEYRING")) {
		cfg.UseKeyring = false
	}
	cfg.Debug = isTrue(os.Getenv("PASSVAULT_DEBUG"))

	return cfg, nil
}

// LogLevel returns the slog level matching Debug.
func (c *Config) LogLevel() slog.Level {
	if c.Debug {
		return slog.LevelDebug
	}
	return slog.LevelWarn
}

func isTrue(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
