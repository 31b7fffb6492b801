package index

// PageIndex defines the interface for converted-page persistence.
// Consumers should depend on this interface rather than the concrete *DB
// type to facilitate testing with mocks.
type PageIndex interface {
	UpsertPage(p PageRow, html string) error
	DeletePage(path string) error
	GetPage(path string) (*PageRow, error)
	GetHTML(path string) (string, error)
	AllChecksums() (map[string]string, error)
	ListPages(limit, offset int) ([]PageRow, int, error)
	Search(query string, limit int) ([]SearchResult, error)
	Close() error
}

// Verify *DB satisfies PageIndex at compile time.
var _ PageIndex = (*DB)(nil)
