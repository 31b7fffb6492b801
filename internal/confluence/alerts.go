package confluence

import "strings"

// Alert delimiters: "~X" opens and "X~" closes, where X selects the macro
// kind. The four kinds use disjoint characters, so replacement order across
// kinds does not matter.
var alertKinds = []struct {
	name  string
	delim string
}{
	{"info", ":"},
	{"tip", "%"},
	{"note", "?"},
	{"warning", "!"},
}

const (
	alertOpenPrefix = `<p><ac:structured-macro ac:name="`
	alertOpenSuffix = `"><ac:rich-text-body><p>`
	alertCloseTag   = `</p></ac:rich-text-body></ac:structured-macro></p>`
)

// TranslateAlerts rewrites custom alert delimiters in rendered HTML into
// Confluence structured macros. Three delimiter shapes are supported, applied
// per kind in priority order:
//
//  1. block:  a paragraph that is exactly the delimiter (<p>~:</p>)
//  2. inline: a delimiter opening or closing a paragraph (<p>~: ... :~</p>)
//  3. bare:   the raw delimiter, for content nested inside table cells
//
// The bare pass runs last so it only touches delimiters the stricter passes
// left behind. There is no nesting validation; unmatched delimiters leave
// stray macro tags in the output. Once no raw delimiters remain, the pass is
// a no-op, so translation is idempotent.
func TranslateAlerts(html string) string {
	for _, kind := range alertKinds {
		open := "~" + kind.delim
		close := kind.delim + "~"
		openTag := alertOpenPrefix + kind.name + alertOpenSuffix

		// Block form.
		html = strings.ReplaceAll(html, "<p>"+open+"</p>", openTag)
		html = strings.ReplaceAll(html, "<p>"+close+"</p>", alertCloseTag)

		// Inline form.
		html = strings.ReplaceAll(html, "<p>"+open, openTag)
		html = strings.ReplaceAll(html, close+"</p>", alertCloseTag)

		// Bare form (table cells have no paragraph wrapping).
		html = strings.ReplaceAll(html, open, openTag)
		html = strings.ReplaceAll(html, close, alertCloseTag)
	}
	return html
}
