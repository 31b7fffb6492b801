// Package docs builds an in-memory index of a documentation tree: which
// Markdown documents live in which directory, and what their page titles
// are. The index is built once per scan and is read-only afterwards, so it
// is safe for concurrent title lookups.
package docs

import (
	"errors"
	"log/slog"
	"path"
	"strings"

	"github.com/aitzaz-ahmad/markdown-to-confluence/internal/apperr"
	"github.com/aitzaz-ahmad/markdown-to-confluence/internal/frontmatter"
	"github.com/aitzaz-ahmad/markdown-to-confluence/internal/storage"
)

// Document is one Markdown file found during the scan. Immutable after
// creation.
type Document struct {
	Path     string // tree-relative path
	Slug     string // unique identifier derived from directory and file name
	Title    string // required front matter title
	Authors  []frontmatter.Author
	Markdown string // body with front matter removed
	Checksum string // digest of the raw source
}

// Directory holds the documents found directly inside one directory.
type Directory struct {
	path string
	docs map[string]*Document // keyed by tree-relative document path
}

// Find returns the first document whose path contains name, or nil.
func (d *Directory) Find(name string) *Document {
	for p, doc := range d.docs {
		if strings.Contains(p, name) {
			return doc
		}
	}
	return nil
}

func (d *Directory) add(doc *Document) {
	d.docs[doc.Path] = doc
}

// Tree is the directory index of a scanned documentation tree.
type Tree struct {
	dirs   map[string]*Directory
	logger *slog.Logger
}

// Scan reads every Markdown file from the store, parses its front matter,
// and groups the documents by containing directory. Files inside the assets
// directory are skipped, as are documents whose metadata lacks the required
// title: those are logged and the scan continues with the rest of the tree.
func Scan(store storage.Provider, assetsDir string, logger *slog.Logger) (*Tree, error) {
	metas, err := store.List("")
	if err != nil {
		return nil, err
	}

	t := &Tree{dirs: make(map[string]*Directory), logger: logger}
	for _, m := range metas {
		dirPath := path.Dir(m.Path)
		if path.Base(dirPath) == assetsDir {
			continue
		}

		data, err := store.Read(m.Path)
		if err != nil {
			logger.Warn("scan: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		doc, err := NewDocument(m.Path, data)
		if err != nil {
			logger.Warn("scan: skipping document", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}

		dir, ok := t.dirs[dirPath]
		if !ok {
			dir = &Directory{path: dirPath, docs: make(map[string]*Document)}
			t.dirs[dirPath] = dir
		}
		dir.add(doc)
	}
	return t, nil
}

// NewDocument parses raw file bytes into a Document. A missing title is an
// error wrapping apperr.ErrMissingTitle.
func NewDocument(relPath string, data []byte) (*Document, error) {
	fm, body, err := frontmatter.Parse(data)
	if err != nil {
		return nil, err
	}
	return &Document{
		Path:     relPath,
		Slug:     slug(relPath),
		Title:    fm.Title,
		Authors:  fm.Authors,
		Markdown: body,
		Checksum: storage.Checksum(data),
	}, nil
}

// FrontMatter reassembles the document's parsed metadata for the converter.
func (d *Document) FrontMatter() *frontmatter.FrontMatter {
	return &frontmatter.FrontMatter{Title: d.Title, Authors: d.Authors}
}

// slug derives a unique identifier from the document's parent directory and
// file name.
func slug(relPath string) string {
	dir := path.Base(path.Dir(relPath))
	name := strings.TrimSuffix(path.Base(relPath), path.Ext(relPath))
	s := dir + "_" + name
	return strings.ReplaceAll(s, "-", "_")
}

// Title resolves a cross-referenced document path to its page title. The
// lookup normalizes the path and matches by substring across every scanned
// directory; it returns the empty string when no document matches.
func (t *Tree) Title(relPath string) string {
	name := normalizePath(relPath)
	for _, dir := range t.dirs {
		if doc := dir.Find(name); doc != nil {
			t.logger.Info("resolved document title", slog.String("path", relPath), slog.String("title", doc.Title))
			return doc.Title
		}
	}
	t.logger.Info("no metadata available", slog.String("path", relPath))
	return ""
}

// Documents returns every scanned document in no particular order.
func (t *Tree) Documents() []*Document {
	var out []*Document
	for _, dir := range t.dirs {
		for _, doc := range dir.docs {
			out = append(out, doc)
		}
	}
	return out
}

// Len returns the number of scanned documents.
func (t *Tree) Len() int {
	n := 0
	for _, dir := range t.dirs {
		n += len(dir.docs)
	}
	return n
}

// normalizePath unifies separators and strips leading parent-directory
// segments from a relative link target.
func normalizePath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	for strings.HasPrefix(p, "../") {
		p = p[len("../"):]
	}
	return p
}

// IsMissingTitle reports whether err comes from a document without the
// required title key.
func IsMissingTitle(err error) bool {
	return errors.Is(err, apperr.ErrMissingTitle)
}
