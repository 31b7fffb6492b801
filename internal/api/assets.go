package api

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
)

// AssetHandler serves image and attachment files referenced by converted
// pages, straight from the documentation tree.
type AssetHandler struct {
	docsRoot string
}

// NewAssetHandler creates a handler rooted at the documentation directory.
func NewAssetHandler(docsRoot string) *AssetHandler {
	return &AssetHandler{docsRoot: docsRoot}
}

// safePath validates a tree-relative asset path: no absolute paths, no
// traversal outside the documentation root.
func (h *AssetHandler) safePath(rel string) (string, bool) {
	if rel == "" {
		return "", false
	}
	cleaned := filepath.Clean(filepath.FromSlash(rel))
	if filepath.IsAbs(cleaned) || strings.HasPrefix(cleaned, "..") {
		return "", false
	}
	abs := filepath.Join(h.docsRoot, cleaned)
	if !strings.HasPrefix(abs, h.docsRoot+string(os.PathSeparator)) {
		return "", false
	}
	return abs, true
}

// ServeFile handles GET /assets/*.
func (h *AssetHandler) ServeFile(w http.ResponseWriter, r *http.Request) {
	rel := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	abs, ok := h.safePath(rel)
	if !ok {
		http.Error(w, "invalid asset path", http.StatusBadRequest)
		return
	}
	if _, err := os.Stat(abs); os.IsNotExist(err) {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, abs)
}
