package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/harunnryd/mimir/internal/config"
)

// Layout is the on-disk arrangement of a vector directory.
type Layout struct {
	Root   string
	DB     string
	Lock   string
	Ledger string
}

// ResolveLayout expands root (falling back to ~/.mimir/vectors) and derives the
// database, lock and ingestion ledger paths under it.
func ResolveLayout(root string) (Layout, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Layout{}, err
		}
		root = filepath.Join(home, ".mimir", "vectors")
	}

	expanded, err := config.ExpandPath(root)
	if err != nil {
		return Layout{}, fmt.Errorf("expand vector path: %w", err)
	}

	return Layout{
		Root:   expanded,
		DB:     filepath.Join(expanded, "db"),
		Lock:   filepath.Join(expanded, "mimir.lock"),
		Ledger: filepath.Join(expanded, "ingested.json"),
	}, nil
}
