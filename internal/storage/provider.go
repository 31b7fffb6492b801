// Package storage defines the file-system abstraction for the documentation
// tree and the generated output tree.
package storage

import "time"

// FileInfo is a lightweight description of one Markdown source file.
type FileInfo struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Provider is the interface for documentation file operations. All paths are
// relative to the provider's root.
type Provider interface {
	// List walks dir and returns metadata for every Markdown file under it.
	List(dir string) ([]FileInfo, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path.
	Write(path string, content []byte) error
	// Delete removes the file at path.
	Delete(path string) error
}
