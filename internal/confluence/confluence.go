// Package confluence converts Markdown documents into Confluence
// storage-format XHTML: a custom goldmark renderer rewrites headings, code
// blocks, images and links into ac:/ri: macros, an alert pass translates
// custom delimiters, and a page layout wraps the result.
package confluence

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"

	"github.com/aitzaz-ahmad/markdown-to-confluence/internal/apperr"
	"github.com/aitzaz-ahmad/markdown-to-confluence/internal/frontmatter"
)

// Converter turns Markdown bodies into finished Confluence pages. It is safe
// for concurrent use: every Convert call builds its own rendering engine and
// state, and the title lookup is read-only.
type Converter struct {
	layout   PageLayout
	titleFn  TitleFunc
	resolver *LinkResolver
}

// Option configures a Converter.
type Option func(*Converter)

// WithAssetsDir overrides the reserved assets directory name used for link
// classification and attachment path stripping.
func WithAssetsDir(dir string) Option {
	return func(c *Converter) {
		c.resolver = NewLinkResolver(dir)
	}
}

// NewConverter creates a Converter. The page layout is mandatory; titleFn
// may be nil, in which case cross-document references get empty titles.
func NewConverter(layout PageLayout, titleFn TitleFunc, opts ...Option) (*Converter, error) {
	if layout == nil {
		return nil, fmt.Errorf("confluence: %w", apperr.ErrNoPageLayout)
	}
	c := &Converter{
		layout:   layout,
		titleFn:  titleFn,
		resolver: NewLinkResolver(""),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Convert renders a Markdown body into the final page HTML and returns the
// ordered list of attachment paths the caller must upload. Front matter may
// be nil; its author_keys feed the layout's contributors table.
func (c *Converter) Convert(markdown []byte, fm *frontmatter.FrontMatter) (string, []string, error) {
	state := &renderState{}
	cr := &confluenceRenderer{
		resolver: c.resolver,
		titleFn:  c.titleFn,
		state:    state,
	}

	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(
			html.WithXHTML(),
			html.WithUnsafe(),
			renderer.WithNodeRenderers(util.Prioritized(cr, 100)),
		),
	)

	var buf bytes.Buffer
	if err := md.Convert(markdown, &buf); err != nil {
		return "", nil, fmt.Errorf("confluence: render: %w", err)
	}

	content := TranslateAlerts(buf.String())

	var authors []frontmatter.Author
	if fm != nil {
		authors = fm.Authors
	}
	page := RenderLayout(c.layout, content, authors, state.hasTOC)
	return page, state.attachments, nil
}
