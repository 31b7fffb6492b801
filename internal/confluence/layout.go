package confluence

import (
	"fmt"
	"strings"

	"github.com/aitzaz-ahmad/markdown-to-confluence/internal/frontmatter"
)

// PageLayout assembles the final Confluence page around converted content.
// Implementations are interchangeable; RenderLayout fixes the orchestration.
type PageLayout interface {
	// RenderTOC returns the table-of-contents fragment, or a placeholder
	// when the page has no headings.
	RenderTOC(hasTOC bool) string
	// RenderAuthors returns the contributors fragment for the given authors.
	RenderAuthors(authors []frontmatter.Author) string
	// RenderPage embeds the content, authors and TOC fragments into the
	// final page markup.
	RenderPage(content, authors, toc string) string
}

// RenderLayout produces the final page HTML: TOC and authors fragments are
// rendered first, then embedded into the page.
func RenderLayout(l PageLayout, content string, authors []frontmatter.Author, hasTOC bool) string {
	toc := l.RenderTOC(hasTOC)
	contributors := l.RenderAuthors(authors)
	return l.RenderPage(content, contributors, toc)
}

// LeftSidebarPage is a two-column Confluence layout: the TOC lives in the
// left sidebar, the authors table and main content on the right.
//
//	------------------------------------------
//	|             |         Authors          |
//	|     ToC     |--------------------------|
//	| (20% width) |                          |
//	|             |         Content          |
//	|             |      (900px width)       |
//	|             |                          |
//	------------------------------------------
type LeftSidebarPage struct {
	sidebarWidth string
	contentWidth string
}

// NewLeftSidebarPage creates the layout with the given column widths.
// Empty widths fall back to 20% / 900px.
func NewLeftSidebarPage(sidebarWidth, contentWidth string) *LeftSidebarPage {
	if sidebarWidth == "" {
		sidebarWidth = "20%"
	}
	if contentWidth == "" {
		contentWidth = "900px"
	}
	return &LeftSidebarPage{sidebarWidth: sidebarWidth, contentWidth: contentWidth}
}

const tocCellTemplate = `
<ac:layout-cell>
    <h1>Table of Contents</h1>
    <p><ac:structured-macro ac:name="toc" ac:schema-version="1">
        <ac:parameter ac:name="exclude">^(Authors|Table of Contents)$</ac:parameter>
    </ac:structured-macro></p>
</ac:layout-cell>
`

// RenderTOC returns the sidebar cell: the TOC macro when the page has
// headings, an empty layout cell otherwise.
func (p *LeftSidebarPage) RenderTOC(hasTOC bool) string {
	if !hasTOC {
		return "<ac:layout-cell></ac:layout-cell>"
	}
	return tocCellTemplate
}

const authorCellTemplate = `
<td rowspan="2">
    <div class="content-wrapper"><p>
        <ac:link>
            <ri:user ri:userkey="%s" />
        </ac:link>
        <br />
        <span>%s</span>
    </p></div>
</td>
`

const authorsTableTemplate = `
<table class="relative-table">
    <colgroup>
        %s
    </colgroup>
    <tbody>
    <tr>
        <th colspan="%d">
        <h2>Authors</h2></th>
    </tr>
    <tr>
        %s
    </tr>
    </tbody>
</table>
`

// RenderAuthors builds the contributors table, one fixed-width column per
// author.
func (p *LeftSidebarPage) RenderAuthors(authors []frontmatter.Author) string {
	var contributors, colGroup strings.Builder
	for _, a := range authors {
		fmt.Fprintf(&contributors, authorCellTemplate, a.UserKey, a.Designation)
		colGroup.WriteString(`<col style="width: 180px;" />`)
	}
	return fmt.Sprintf(authorsTableTemplate, colGroup.String(), len(authors), contributors.String())
}

const mainContentTemplate = `
<ac:layout-cell>
    <p class="auto-cursor-target"><br /></p>
    <ac:structured-macro ac:name="column" ac:schema-version="1">
        <ac:parameter ac:name="width">%s</ac:parameter>
        <ac:rich-text-body>
            %s
            <p class="auto-cursor-target"><br /></p>
            <p class="auto-cursor-target"><br /></p>
            %s
        </ac:rich-text-body>
    </ac:structured-macro>
</ac:layout-cell>
`

const pageTemplate = `
<ac:layout>
    <ac:layout-section ac:type="two_left_sidebar">
    %s
    %s
    </ac:layout-section>
</ac:layout>
`

// RenderPage embeds the authors table and content into the right column and
// wraps both columns in the two-column section.
func (p *LeftSidebarPage) RenderPage(content, authors, toc string) string {
	mainContent := fmt.Sprintf(mainContentTemplate, p.contentWidth, authors, content)
	return fmt.Sprintf(pageTemplate, toc, mainContent)
}
