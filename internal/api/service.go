package api

import (
	"time"

	"github.com/aitzaz-ahmad/markdown-to-confluence/internal/index"
)

// Service coordinates index lookups for the API layer.
type Service struct {
	db index.PageIndex
}

// NewService creates a new API service.
func NewService(db index.PageIndex) *Service {
	return &Service{db: db}
}

// PageDetail is the response payload for a single converted page.
type PageDetail struct {
	Path        string    `json:"path"`
	Title       string    `json:"title"`
	Checksum    string    `json:"checksum"`
	Attachments []string  `json:"attachments"`
	HTML        string    `json:"html"`
	ConvertedAt time.Time `json:"converted_at"`
}

// PageListItem is a lightweight item in a list response.
type PageListItem struct {
	Path        string    `json:"path"`
	Title       string    `json:"title"`
	Checksum    string    `json:"checksum"`
	ConvertedAt time.Time `json:"converted_at"`
}

// GetPage returns one converted page with its rendered XHTML and attachment
// manifest.
func (s *Service) GetPage(path string) (*PageDetail, error) {
	row, err := s.db.GetPage(path)
	if err != nil {
		return nil, err
	}
	html, err := s.db.GetHTML(path)
	if err != nil {
		return nil, err
	}
	attachments := row.Attachments
	if attachments == nil {
		attachments = []string{}
	}
	return &PageDetail{
		Path:        row.Path,
		Title:       row.Title,
		Checksum:    row.Checksum,
		Attachments: attachments,
		HTML:        html,
		ConvertedAt: row.ConvertedAt,
	}, nil
}

// GetPageHTML returns only the rendered XHTML of a page.
func (s *Service) GetPageHTML(path string) (string, error) {
	return s.db.GetHTML(path)
}

// ListPages returns paginated page metadata.
func (s *Service) ListPages(limit, offset int) ([]PageListItem, int, error) {
	rows, total, err := s.db.ListPages(limit, offset)
	if err != nil {
		return nil, 0, err
	}
	items := make([]PageListItem, len(rows))
	for i, r := range rows {
		items[i] = PageListItem{
			Path:        r.Path,
			Title:       r.Title,
			Checksum:    r.Checksum,
			ConvertedAt: r.ConvertedAt,
		}
	}
	return items, total, nil
}

// Search delegates to the index.
func (s *Service) Search(query string, limit int) ([]index.SearchResult, error) {
	return s.db.Search(query, limit)
}
