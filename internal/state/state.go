// Package state persists the identifier of the last relayed forum post,
// so that a rerun does not repost the same thread.
package state

import (
	"fmt"
	"os"
	"strings"
)

// Store reads and writes a single post identifier to a plain text file.
// The file is not locked: runs are scheduled and never overlap.
type Store struct {
	Path string
}

func NewStore(path string) *Store {
	return &Store{Path: path}
}

// LastPostID returns the previously stored post id, or an empty string
// if nothing was stored yet.
func (s *Store) LastPostID() (string, error) {
	b, err := os.ReadFile(s.Path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("error reading state file %s: %w", s.Path, err)
	}
	return strings.TrimSpace(string(b)), nil
}

// SetLastPostID overwrites the stored post id.
func (s *Store) SetLastPostID(id string) error {
	if err := os.WriteFile(s.Path, []byte(id), 0o644); err != nil {
		return fmt.Errorf("error writing state file %s: %w", s.Path, err)
	}
	return nil
}
