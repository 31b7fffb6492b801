package confluence

import (
	"errors"
	"strings"
	"testing"

	"github.com/aitzaz-ahmad/markdown-to-confluence/internal/apperr"
	"github.com/aitzaz-ahmad/markdown-to-confluence/internal/frontmatter"
)

// passthroughLayout records layout inputs and returns the content untouched,
// keeping assertions on the rendered body simple.
type passthroughLayout struct {
	gotTOC     bool
	gotAuthors []frontmatter.Author
}

func (l *passthroughLayout) RenderTOC(hasTOC bool) string {
	l.gotTOC = hasTOC
	return ""
}

func (l *passthroughLayout) RenderAuthors(authors []frontmatter.Author) string {
	l.gotAuthors = authors
	return ""
}

func (l *passthroughLayout) RenderPage(content, authors, toc string) string {
	return content
}

func newTestConverter(t *testing.T, titleFn TitleFunc, opts ...Option) (*Converter, *passthroughLayout) {
	t.Helper()
	layout := &passthroughLayout{}
	conv, err := NewConverter(layout, titleFn, opts...)
	if err != nil {
		t.Fatalf("NewConverter: %v", err)
	}
	return conv, layout
}

func TestNewConverter_NilLayout(t *testing.T) {
	_, err := NewConverter(nil, nil)
	if !errors.Is(err, apperr.ErrNoPageLayout) {
		t.Fatalf("err = %v, want ErrNoPageLayout", err)
	}
}

func TestConvert_FencedCodeBlock(t *testing.T) {
	conv, _ := newTestConverter(t, nil)
	page, _, err := conv.Convert([]byte("```go\nfmt.Println(\"hi\")\n```\n"), nil)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if !strings.Contains(page, `<ac:parameter ac:name="language">go</ac:parameter>`) {
		t.Errorf("missing language parameter: %q", page)
	}
	if !strings.Contains(page, "<![CDATA[fmt.Println(\"hi\")\n]]>") {
		t.Errorf("missing verbatim CDATA body: %q", page)
	}
}

func TestConvert_FencedCodeBlockNoLanguage(t *testing.T) {
	conv, _ := newTestConverter(t, nil)
	page, _, err := conv.Convert([]byte("```\nplain\n```\n"), nil)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if !strings.Contains(page, `<ac:parameter ac:name="language">text</ac:parameter>`) {
		t.Errorf("missing text fallback language: %q", page)
	}
}

func TestConvert_AttachmentImage(t *testing.T) {
	conv, _ := newTestConverter(t, nil)
	page, attachments, err := conv.Convert([]byte("![diagram](images/arch.png)\n"), nil)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if !strings.Contains(page, `<ri:attachment ri:filename="arch.png" />`) {
		t.Errorf("missing attachment reference: %q", page)
	}
	if !strings.Contains(page, `<ac:image ac:align="center">`) {
		t.Errorf("missing image macro: %q", page)
	}
	if !strings.Contains(page, "<em>diagram</em>") {
		t.Errorf("missing caption: %q", page)
	}
	// The assets prefix is stripped from the recorded upload path.
	if len(attachments) != 1 || attachments[0] != "arch.png" {
		t.Errorf("attachments = %v, want [arch.png]", attachments)
	}
}

func TestConvert_AttachmentImageLeadingSlash(t *testing.T) {
	conv, _ := newTestConverter(t, nil)
	_, attachments, err := conv.Convert([]byte("![d](/images/arch.png)\n"), nil)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if len(attachments) != 1 || attachments[0] != "arch.png" {
		t.Errorf("attachments = %v, want [arch.png]", attachments)
	}
}

func TestConvert_ExternalImage(t *testing.T) {
	conv, _ := newTestConverter(t, nil)
	page, attachments, err := conv.Convert([]byte("![logo](https://example.com/logo.png)\n"), nil)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if !strings.Contains(page, `<ri:url ri:value="https://example.com/logo.png" />`) {
		t.Errorf("missing external image reference: %q", page)
	}
	if len(attachments) != 0 {
		t.Errorf("external image recorded as attachment: %v", attachments)
	}
}

func TestConvert_AttachmentLinkKeepsGivenPath(t *testing.T) {
	conv, _ := newTestConverter(t, nil)
	page, attachments, err := conv.Convert([]byte("[spec sheet](images/spec.pdf)\n"), nil)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if !strings.Contains(page, `<ri:attachment ri:filename="spec.pdf" />`) {
		t.Errorf("missing attachment link reference: %q", page)
	}
	if !strings.Contains(page, "<![CDATA[spec sheet]]>") {
		t.Errorf("missing link body: %q", page)
	}
	// Unlike images, plain-link attachments record the path as given.
	if len(attachments) != 1 || attachments[0] != "images/spec.pdf" {
		t.Errorf("attachments = %v, want [images/spec.pdf]", attachments)
	}
}

func TestConvert_AttachmentsNotDeduplicated(t *testing.T) {
	conv, _ := newTestConverter(t, nil)
	md := "![a](images/pic.png)\n\n![b](images/pic.png)\n"
	_, attachments, err := conv.Convert([]byte(md), nil)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if len(attachments) != 2 {
		t.Errorf("attachments = %v, want the duplicate kept", attachments)
	}
}

func TestConvert_PageReference(t *testing.T) {
	titleFn := func(rel string) string {
		if rel == "other.md" {
			return "Other Page"
		}
		return ""
	}
	conv, layout := newTestConverter(t, titleFn)
	page, _, err := conv.Convert([]byte("# Title\n\nSee [other](other.md).\n"), nil)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if !strings.Contains(page, `<ri:page ri:content-title="Other Page" />`) {
		t.Errorf("missing page reference: %q", page)
	}
	if !strings.Contains(page, "<![CDATA[other]]>") {
		t.Errorf("missing link body: %q", page)
	}
	if !layout.gotTOC {
		t.Error("heading did not flag the table of contents")
	}
}

func TestConvert_PageReferenceTitleEscaped(t *testing.T) {
	conv, _ := newTestConverter(t, func(string) string { return `Tom & "Jerry"` })
	page, _, err := conv.Convert([]byte("[here](other.md)\n"), nil)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if !strings.Contains(page, `ri:content-title="Tom &amp; &#34;Jerry&#34;"`) {
		t.Errorf("title not escaped: %q", page)
	}
}

func TestConvert_PageReferenceUnknownTitle(t *testing.T) {
	conv, _ := newTestConverter(t, nil)
	page, _, err := conv.Convert([]byte("[here](other.md)\n"), nil)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	// A lookup miss produces an empty content title rather than an error.
	if !strings.Contains(page, `<ri:page ri:content-title="" />`) {
		t.Errorf("missing empty page reference: %q", page)
	}
}

func TestConvert_HeadingAnchorFromTitle(t *testing.T) {
	conv, _ := newTestConverter(t, nil)
	page, _, err := conv.Convert([]byte("[jump](#setup \"Setup Guide\")\n"), nil)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if !strings.Contains(page, `<ac:link ac:anchor="Setup Guide">`) {
		t.Errorf("anchor not taken from link title: %q", page)
	}
	if !strings.Contains(page, "<![CDATA[jump]]>") {
		t.Errorf("missing link body: %q", page)
	}
}

func TestConvert_ExternalHyperlink(t *testing.T) {
	conv, _ := newTestConverter(t, nil)
	page, attachments, err := conv.Convert([]byte("[site](https://example.com/page)\n"), nil)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if !strings.Contains(page, `<a href="https://example.com/page">site</a>`) {
		t.Errorf("missing plain hyperlink: %q", page)
	}
	if len(attachments) != 0 {
		t.Errorf("external link recorded as attachment: %v", attachments)
	}
}

func TestConvert_NoHeadingsNoTOC(t *testing.T) {
	conv, layout := newTestConverter(t, nil)
	if _, _, err := conv.Convert([]byte("Just a paragraph.\n"), nil); err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if layout.gotTOC {
		t.Error("table of contents flagged without headings")
	}
}

func TestConvert_AlertsTranslated(t *testing.T) {
	conv, _ := newTestConverter(t, nil)
	md := "~!\n\nDo not do this.\n\n!~\n"
	page, _, err := conv.Convert([]byte(md), nil)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if !strings.Contains(page, `<ac:structured-macro ac:name="warning">`) {
		t.Errorf("warning macro missing: %q", page)
	}
	if strings.Contains(page, "~!") || strings.Contains(page, "!~") {
		t.Errorf("alert delimiters survived: %q", page)
	}
	if !strings.Contains(page, "Do not do this.") {
		t.Errorf("alert body lost: %q", page)
	}
}

func TestConvert_AuthorsForwardedToLayout(t *testing.T) {
	conv, layout := newTestConverter(t, nil)
	fm := &frontmatter.FrontMatter{
		Title:   "Doc",
		Authors: []frontmatter.Author{{UserKey: "abc", Designation: "Lead"}},
	}
	if _, _, err := conv.Convert([]byte("hello\n"), fm); err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if len(layout.gotAuthors) != 1 || layout.gotAuthors[0].UserKey != "abc" {
		t.Errorf("authors = %v, want the front matter authors", layout.gotAuthors)
	}
}

func TestConvert_CustomAssetsDir(t *testing.T) {
	conv, _ := newTestConverter(t, nil, WithAssetsDir("assets"))
	_, attachments, err := conv.Convert([]byte("![d](assets/pic.png)\n"), nil)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if len(attachments) != 1 || attachments[0] != "pic.png" {
		t.Errorf("attachments = %v, want [pic.png]", attachments)
	}
}
