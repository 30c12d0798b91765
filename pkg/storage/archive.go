package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ReceiptArchive persists rendered receipt PDFs on disk under a base
// directory so repeat downloads and audits do not re-render.
type ReceiptArchive struct {
	baseDir string
}

// NewReceiptArchive ensures the base directory exists and returns a handle.
func NewReceiptArchive(baseDir string) (*ReceiptArchive, error) {
	if baseDir == "" {
		baseDir = "./receipts"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create receipts directory: %w", err)
	}
	return &ReceiptArchive{baseDir: baseDir}, nil
}

// Save writes the given bytes under the base directory and returns the
// relative name.
func (a *ReceiptArchive) Save(filename string, data []byte) (string, error) {
	path := a.resolve(filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write receipt file: %w", err)
	}
	return filename, nil
}

// Load reads a previously archived receipt. os.ErrNotExist signals the
// receipt was never archived, or was pruned.
func (a *ReceiptArchive) Load(filename string) ([]byte, error) {
	data, err := os.ReadFile(a.resolve(filename))
	if err != nil {
		return nil, fmt.Errorf("read receipt file: %w", err)
	}
	return data, nil
}

// Prune removes archived receipts older than the retention window and
// returns the deleted names.
func (a *ReceiptArchive) Prune(retention time.Duration) ([]string, error) {
	cutoff := time.Now().Add(-retention)
	deleted := make([]string, 0)

	entries, err := os.ReadDir(a.baseDir)
	if err != nil {
		return nil, fmt.Errorf("list receipts: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("stat receipt: %w", err)
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(a.baseDir, entry.Name())); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("prune receipt: %w", err)
		}
		deleted = append(deleted, entry.Name())
	}
	return deleted, nil
}

func (a *ReceiptArchive) resolve(filename string) string {
	return filepath.Join(a.baseDir, filepath.Base(filename))
}
