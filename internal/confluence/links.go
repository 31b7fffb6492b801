package confluence

import (
	"net/url"
	"path"
	"strings"
)

// Reserved names used by link classification.
const (
	DefaultAssetsDir = "images"
	MarkdownExt      = ".md"
)

// LinkKind classifies a link target by its syntax alone; no filesystem or
// remote validation is performed.
type LinkKind int

const (
	// LinkUnknown is any target the other rules do not claim.
	LinkUnknown LinkKind = iota
	// LinkHeading is a bare fragment ("#section") pointing at a heading.
	LinkHeading
	// LinkAttachment is a file inside the reserved assets directory.
	LinkAttachment
	// LinkPageReference is a cross-reference to another Markdown document.
	LinkPageReference
)

// LinkResolver classifies repository-relative link targets.
type LinkResolver struct {
	assetsDir   string
	markdownExt string
}

// NewLinkResolver returns a resolver for the given assets directory name.
// An empty name falls back to DefaultAssetsDir.
func NewLinkResolver(assetsDir string) *LinkResolver {
	if assetsDir == "" {
		assetsDir = DefaultAssetsDir
	}
	return &LinkResolver{assetsDir: assetsDir, markdownExt: MarkdownExt}
}

// Resolve returns the kind of the given link target. Rule order matters:
// fragments win over path structure.
func (r *LinkResolver) Resolve(link string) LinkKind {
	if strings.HasPrefix(link, "#") {
		return LinkHeading
	}
	if path.Base(path.Dir(link)) == r.assetsDir {
		return LinkAttachment
	}
	if path.Ext(link) == r.markdownExt {
		return LinkPageReference
	}
	return LinkUnknown
}

// isExternal reports whether the target has a network authority component,
// i.e. points outside the repository.
func isExternal(target string) bool {
	u, err := url.Parse(target)
	return err == nil && u.Host != ""
}
