package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter creates a chi router with all preview API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
// docsRoot is used to resolve asset files.
func NewRouter(svc *Service, authEnabled bool, token string, sseHandler http.Handler, docsRoot string) chi.Router {
	h := NewHandler(svc)
	ah := NewAssetHandler(docsRoot)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Converted pages.
	r.Get("/pages", h.ListPages)
	r.Get("/pages/*", h.GetPage)

	// Raw storage-format XHTML.
	r.Get("/html/*", h.GetPageHTML)

	// Search.
	r.Get("/search", h.Search)

	// Assets referenced by pages.
	r.Get("/assets/*", ah.ServeFile)

	// Live conversion events.
	if sseHandler != nil {
		r.Method(http.MethodGet, "/events", sseHandler)
	}

	return r
}
