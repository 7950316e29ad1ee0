package state

import (
	"path/filepath"
	"testing"
)

func TestStore(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "last_post.txt"))

	id, err := s.LastPostID()
	if err != nil {
		t.Fatalf("LastPostID() on missing file error = %v", err)
	}
	if id != "" {
		t.Errorf("LastPostID() on missing file = %q, want empty", id)
	}

	if err := s.SetLastPostID("abc123"); err != nil {
		t.Fatalf("SetLastPostID() error = %v", err)
	}

	id, err = s.LastPostID()
	if err != nil {
		t.Fatalf("LastPostID() error = %v", err)
	}
	if id != "abc123" {
		t.Errorf("LastPostID() = %q, want %q", id, "abc123")
	}

	// Overwrite keeps only the latest id
	if err := s.SetLastPostID("def456"); err != nil {
		t.Fatalf("SetLastPostID() error = %v", err)
	}
	id, _ = s.LastPostID()
	if id != "def456" {
		t.Errorf("LastPostID() after overwrite = %q, want %q", id, "def456")
	}
}
