package apperr

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrMissingTitle = errors.New("front matter is missing the title key")
	ErrNoPageLayout = errors.New("page layout is required")
)
