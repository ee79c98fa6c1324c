package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/illarion/passvault/internal/config"
	"github.com/illarion/passvault/internal/core"
	"github.com/illarion/passvault/internal/storage"
)

// Compact compacts a bolt vault to reclaim unused space
func Compact() {
	env := Setup()

	if env.Config.Backend != config.BackendBolt {
		fmt.Println("Nothing to compact: the file backend rewrites the whole file on every save")
		return
	}

	info, err := os.Stat(env.Config.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Println("No vault found at", env.Config.Path)
			return
		}
		HandleError(err)
	}
	sizeBefore := info.Size()

	if modified, err := env.Vault.LastModified(); err == nil {
		fmt.Printf("Last modified: %s\n", modified.Local().Format(time.RFC1123))
	} else if !errors.Is(err, storage.ErrNotSaved) {
		HandleError(err)
	}

	if err := env.Vault.Compact(); err != nil {
		if errors.Is(err, core.ErrCompactUnsupported) {
			fmt.Println("Nothing to compact")
			return
		}
		HandleError(err)
	}

	info, err = os.Stat(env.Config.Path)
	if err != nil {
		HandleError(err)
	}
	sizeAfter := info.Size()

	fmt.Printf("Compacted: %s -> %s\n", formatSize(sizeBefore), formatSize(sizeAfter))
}

// formatSize formats a file size in human-readable form
func formatSize(size int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case size >= GB:
		return fmt.Sprintf("%.1f GB", float64(size)/GB)
	case size >= MB:
		return fmt.Sprintf("%.1f MB", float64(size)/MB)
	case size >= KB:
		return fmt.Sprintf("%.1f KB", float64(size)/KB)
	default:
		return fmt.Sprintf("%d bytes", size)
	}
}
