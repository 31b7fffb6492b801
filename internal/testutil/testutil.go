// Package testutil provides shared test helpers for setting up documentation
// trees and databases.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aitzaz-ahmad/markdown-to-confluence/internal/index"
	"github.com/aitzaz-ahmad/markdown-to-confluence/internal/storage"
)

// TestDB creates a temporary SQLite database that is automatically cleaned
// up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "md2conf-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestTree creates a temporary documentation tree with a storage provider.
func TestTree(t *testing.T) (string, *storage.FS) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}

// WriteDoc writes a Markdown file (creating parent directories) into a
// documentation tree.
func WriteDoc(t *testing.T, root, rel, content string) {
	t.Helper()
	abs := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
