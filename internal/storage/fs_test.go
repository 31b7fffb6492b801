package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestFS(t *testing.T) *FS {
	t.Helper()
	fs, err := NewFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs
}

func TestNewFS_MissingRoot(t *testing.T) {
	if _, err := NewFS(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatal("expected an error for a missing root")
	}
}

func TestFS_WriteReadDelete(t *testing.T) {
	fs := newTestFS(t)

	if err := fs.Write("guides/setup.md", []byte("# Setup\n")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	data, err := fs.Read("guides/setup.md")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(data) != "# Setup\n" {
		t.Errorf("Read = %q", data)
	}

	if err := fs.Delete("guides/setup.md"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := fs.Read("guides/setup.md"); err == nil {
		t.Fatal("expected an error reading a deleted file")
	}
}

func TestFS_WriteLeavesNoTempFiles(t *testing.T) {
	fs := newTestFS(t)
	if err := fs.Write("doc.md", []byte("x")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	entries, err := os.ReadDir(fs.Root())
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".md2conf-tmp-") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}

func TestFS_ListMarkdownOnly(t *testing.T) {
	fs := newTestFS(t)
	files := map[string]string{
		"index.md":          "# Home\n",
		"guides/setup.md":   "# Setup\n",
		"guides/pic.png":    "not markdown",
		"guides/notes.txt":  "not markdown",
		"images/diagram.md": "# Odd but listed\n",
	}
	for p, content := range files {
		if err := fs.Write(p, []byte(content)); err != nil {
			t.Fatalf("Write %s: %v", p, err)
		}
	}

	infos, err := fs.List("")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	got := map[string]bool{}
	for _, fi := range infos {
		got[fi.Path] = true
		if fi.Checksum == "" {
			t.Errorf("missing checksum for %s", fi.Path)
		}
		if strings.Contains(fi.Path, "\\") {
			t.Errorf("path not slash-normalized: %s", fi.Path)
		}
	}
	want := []string{"index.md", "guides/setup.md", "images/diagram.md"}
	if len(got) != len(want) {
		t.Errorf("List = %v, want %v", got, want)
	}
	for _, p := range want {
		if !got[p] {
			t.Errorf("List missing %s", p)
		}
	}
}

func TestFS_ListSubdir(t *testing.T) {
	fs := newTestFS(t)
	if err := fs.Write("a/one.md", []byte("1")); err != nil {
		t.Fatal(err)
	}
	if err := fs.Write("b/two.md", []byte("2")); err != nil {
		t.Fatal(err)
	}
	infos, err := fs.List("a")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(infos) != 1 || infos[0].Path != "a/one.md" {
		t.Errorf("List(a) = %v, want only a/one.md", infos)
	}
}

func TestFS_RejectsTraversal(t *testing.T) {
	fs := newTestFS(t)
	for _, p := range []string{"../outside.md", "a/../../outside.md", "/etc/passwd"} {
		if _, err := fs.Read(p); err == nil {
			t.Errorf("Read(%q) succeeded, want traversal rejection", p)
		}
		if err := fs.Write(p, []byte("x")); err == nil {
			t.Errorf("Write(%q) succeeded, want traversal rejection", p)
		}
	}
}

func TestChecksum_Stable(t *testing.T) {
	a := Checksum([]byte("content"))
	b := Checksum([]byte("content"))
	c := Checksum([]byte("different"))
	if a != b {
		t.Error("checksum not deterministic")
	}
	if a == c {
		t.Error("distinct content hashed equal")
	}
	if len(a) != 64 {
		t.Errorf("checksum length = %d, want 64 hex chars", len(a))
	}
}
