package index

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aitzaz-ahmad/markdown-to-confluence/internal/apperr"
)

// PageRow represents a row in the pages table.
type PageRow struct {
	Path        string
	Title       string
	Checksum    string
	Attachments []string
	ConvertedAt time.Time
}

// SearchResult represents one search hit.
type SearchResult struct {
	Path    string
	Title   string
	Snippet string
}

// UpsertPage inserts or replaces a converted page together with its
// rendered XHTML.
func (db *DB) UpsertPage(p PageRow, html string) error {
	attachmentsJSON, _ := json.Marshal(p.Attachments)

	_, err := db.conn.Exec(`
		INSERT INTO pages (path, title, checksum, attachments, html, converted_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			title        = excluded.title,
			checksum     = excluded.checksum,
			attachments  = excluded.attachments,
			html         = excluded.html,
			converted_at = excluded.converted_at
	`, p.Path, p.Title, p.Checksum, string(attachmentsJSON), html, p.ConvertedAt)
	if err != nil {
		return fmt.Errorf("index: upsert page: %w", err)
	}
	return nil
}

// DeletePage removes a converted page.
func (db *DB) DeletePage(path string) error {
	if _, err := db.conn.Exec(`DELETE FROM pages WHERE path = ?`, path); err != nil {
		return fmt.Errorf("index: delete page: %w", err)
	}
	return nil
}

// GetPage returns the stored metadata for a page.
func (db *DB) GetPage(path string) (*PageRow, error) {
	var p PageRow
	var attachmentsJSON string
	err := db.conn.QueryRow(`
		SELECT path, title, checksum, attachments, converted_at
		FROM pages WHERE path = ?
	`, path).Scan(&p.Path, &p.Title, &p.Checksum, &attachmentsJSON, &p.ConvertedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("index: get page: %w", err)
	}
	if err := json.Unmarshal([]byte(attachmentsJSON), &p.Attachments); err != nil {
		p.Attachments = nil
	}
	return &p, nil
}

// GetHTML returns the stored XHTML of a page.
func (db *DB) GetHTML(path string) (string, error) {
	var html string
	err := db.conn.QueryRow(`SELECT html FROM pages WHERE path = ?`, path).Scan(&html)
	if errors.Is(err, sql.ErrNoRows) {
		return "", apperr.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("index: get html: %w", err)
	}
	return html, nil
}

// AllChecksums returns path → source checksum for every converted page.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM pages`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

// ListPages returns paginated page metadata ordered by path, plus the total
// count.
func (db *DB) ListPages(limit, offset int) ([]PageRow, int, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var total int
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM pages`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("index: count pages: %w", err)
	}

	rows, err := db.conn.Query(`
		SELECT path, title, checksum, attachments, converted_at
		FROM pages ORDER BY path LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("index: list pages: %w", err)
	}
	defer rows.Close()

	var out []PageRow
	for rows.Next() {
		var p PageRow
		var attachmentsJSON string
		if err := rows.Scan(&p.Path, &p.Title, &p.Checksum, &attachmentsJSON, &p.ConvertedAt); err != nil {
			return nil, 0, err
		}
		if err := json.Unmarshal([]byte(attachmentsJSON), &p.Attachments); err != nil {
			p.Attachments = nil
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

// Search performs a LIKE-based search over page titles and rendered content.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	like := "%" + query + "%"
	rows, err := db.conn.Query(`
		SELECT path, title, substr(html, 1, 200)
		FROM pages
		WHERE title LIKE ? OR html LIKE ?
		ORDER BY path
		LIMIT ?
	`, like, like, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	defer rows.Close()

	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.Path, &r.Title, &r.Snippet); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
