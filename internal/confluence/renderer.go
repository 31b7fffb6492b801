package confluence

import (
	"bytes"
	"fmt"
	"html"
	"path"
	"strings"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"
)

// TitleFunc resolves a cross-referenced document path to its page title.
// It returns the empty string when no title is known.
type TitleFunc func(relativePath string) string

// renderState accumulates per-conversion side effects. Attachments only
// grow and are never deduplicated; the downstream upload is idempotent by
// path.
type renderState struct {
	hasTOC      bool
	attachments []string
}

// confluenceRenderer rewrites headings, code blocks, images and links into
// Confluence storage-format XML. It is registered on top of goldmark's
// default HTML renderer and holds per-conversion state, so one instance
// serves exactly one document.
type confluenceRenderer struct {
	resolver *LinkResolver
	titleFn  TitleFunc
	state    *renderState
}

func (r *confluenceRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindHeading, r.renderHeading)
	reg.Register(ast.KindFencedCodeBlock, r.renderFencedCodeBlock)
	reg.Register(ast.KindCodeBlock, r.renderCodeBlock)
	reg.Register(ast.KindImage, r.renderImage)
	reg.Register(ast.KindLink, r.renderLink)
	reg.Register(ast.KindThematicBreak, r.renderThematicBreak)
}

// renderHeading emits standard h{level} markup; its real job is flagging
// that the page needs a table of contents.
func (r *confluenceRenderer) renderHeading(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*ast.Heading)
	if entering {
		r.state.hasTOC = true
		_, _ = w.WriteString("<h")
		_ = w.WriteByte("0123456"[n.Level])
		_ = w.WriteByte('>')
	} else {
		_, _ = w.WriteString("</h")
		_ = w.WriteByte("0123456"[n.Level])
		_, _ = w.WriteString(">\n")
	}
	return ast.WalkContinue, nil
}

const codeMacroTemplate = `<ac:structured-macro ac:name="code" ac:schema-version="1">
    <ac:parameter ac:name="language">%s</ac:parameter>
    <ac:plain-text-body><![CDATA[%s]]></ac:plain-text-body>
</ac:structured-macro>
`

// renderFencedCodeBlock emits the Confluence code macro. The body goes into
// a CDATA section verbatim; a literal "]]>" inside the code is an accepted
// limitation of the storage format.
func (r *confluenceRenderer) renderFencedCodeBlock(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ast.FencedCodeBlock)
	lang := string(n.Language(source))
	if lang == "" {
		lang = "text"
	}
	fmt.Fprintf(w, codeMacroTemplate, lang, nodeLines(n, source))
	return ast.WalkContinue, nil
}

// renderCodeBlock handles indented code blocks, which carry no language info.
func (r *confluenceRenderer) renderCodeBlock(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	fmt.Fprintf(w, codeMacroTemplate, "text", nodeLines(node, source))
	return ast.WalkContinue, nil
}

func (r *confluenceRenderer) renderThematicBreak(w util.BufWriter, _ []byte, _ ast.Node, entering bool) (ast.WalkStatus, error) {
	if entering {
		_, _ = w.WriteString("<hr />\n")
	}
	return ast.WalkContinue, nil
}

const imageMacroTemplate = `<ac:image ac:align="center">%s <div style="text-align: center;"><em>%s</em></div></ac:image>`

// renderImage emits a centered ac:image macro with a caption div. External
// images are referenced by URL; repository-relative ones become attachment
// references by base name and are recorded for upload with the assets
// directory prefix stripped.
func (r *confluenceRenderer) renderImage(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ast.Image)
	src := string(n.Destination)

	var imageTag string
	if isExternal(src) {
		imageTag = fmt.Sprintf(`<ri:url ri:value="%s" />`, src)
	} else {
		imageTag = fmt.Sprintf(`<ri:attachment ri:filename="%s" />`, path.Base(src))
		r.state.attachments = append(r.state.attachments, r.attachmentPath(src))
	}

	caption := strings.Trim(textContent(n, source), "*_")
	fmt.Fprintf(w, imageMacroTemplate, imageTag, caption)
	return ast.WalkSkipChildren, nil
}

// attachmentPath strips leading separators and the assets directory prefix
// from a repository-relative image path.
func (r *confluenceRenderer) attachmentPath(src string) string {
	p := strings.TrimLeft(src, "/")
	if strings.HasPrefix(p, r.resolver.assetsDir) {
		p = strings.TrimLeft(p[len(r.resolver.assetsDir):], "/")
	}
	return p
}

const (
	attachmentLinkTemplate = `<ac:link>
    <ri:attachment ri:filename="%s" />
    <ac:plain-text-link-body>
        <![CDATA[%s]]>
    </ac:plain-text-link-body>
</ac:link>
`
	pageLinkTemplate = `<ac:link>
    <ri:page ri:content-title="%s" />
    <ac:plain-text-link-body>
        <![CDATA[%s]]>
    </ac:plain-text-link-body>
</ac:link>
`
	anchorLinkTemplate = `<ac:link ac:anchor="%s">
    <ac:plain-text-link-body>
        <![CDATA[%s]]>
    </ac:plain-text-link-body>
</ac:link>
`
)

// renderLink handles the four internal link kinds. External targets and
// unclassified ones fall through to a plain hyperlink.
func (r *confluenceRenderer) renderLink(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*ast.Link)
	src := string(n.Destination)

	if isExternal(src) {
		return r.renderHyperlink(w, n, entering)
	}

	switch r.resolver.Resolve(src) {
	case LinkAttachment:
		if !entering {
			return ast.WalkContinue, nil
		}
		// Plain-link attachments keep their given relative path, unlike
		// images, whose recorded path drops the assets prefix.
		r.state.attachments = append(r.state.attachments, src)
		fmt.Fprintf(w, attachmentLinkTemplate, path.Base(src), textContent(n, source))
		return ast.WalkSkipChildren, nil

	case LinkPageReference:
		if !entering {
			return ast.WalkContinue, nil
		}
		title := ""
		if r.titleFn != nil {
			title = html.EscapeString(r.titleFn(src))
		}
		fmt.Fprintf(w, pageLinkTemplate, title, textContent(n, source))
		return ast.WalkSkipChildren, nil

	case LinkHeading:
		if !entering {
			return ast.WalkContinue, nil
		}
		// The anchor value comes from the link's title attribute, not the
		// target fragment, matching the legacy converter.
		fmt.Fprintf(w, anchorLinkTemplate, string(n.Title), textContent(n, source))
		return ast.WalkSkipChildren, nil

	default:
		return r.renderHyperlink(w, n, entering)
	}
}

// renderHyperlink writes a standard <a> tag; children render as usual.
func (r *confluenceRenderer) renderHyperlink(w util.BufWriter, n *ast.Link, entering bool) (ast.WalkStatus, error) {
	if !entering {
		_, _ = w.WriteString("</a>")
		return ast.WalkContinue, nil
	}
	_, _ = w.WriteString(`<a href="`)
	_, _ = w.Write(util.EscapeHTML(util.URLEscape(n.Destination, true)))
	_ = w.WriteByte('"')
	if len(n.Title) > 0 {
		_, _ = w.WriteString(` title="`)
		_, _ = w.Write(util.EscapeHTML(n.Title))
		_ = w.WriteByte('"')
	}
	_ = w.WriteByte('>')
	return ast.WalkContinue, nil
}

// nodeLines concatenates the raw source lines of a block node.
func nodeLines(n ast.Node, source []byte) string {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(source))
	}
	return buf.String()
}

// textContent collects the plain text of a node's descendants.
func textContent(n ast.Node, source []byte) string {
	var buf bytes.Buffer
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			buf.Write(t.Segment.Value(source))
		case *ast.String:
			buf.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return buf.String()
}
