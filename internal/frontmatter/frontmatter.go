// Package frontmatter extracts the YAML metadata block and the Markdown body
// from a documentation source file.
package frontmatter

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aitzaz-ahmad/markdown-to-confluence/internal/apperr"
)

// Boundary is the literal marker line that delimits the metadata block.
const Boundary = "---"

// Author is one (user key, designation) pair from the author_keys field.
type Author struct {
	UserKey     string
	Designation string
}

// FrontMatter holds the parsed metadata of a document.
type FrontMatter struct {
	Title   string
	Authors []Author
	Fields  map[string]interface{}
}

// Parse splits raw document bytes into front matter and Markdown body.
//
// The metadata block is bounded by lines containing only the boundary marker:
// the first occurrence enters metadata mode, the second exits it. A document
// without a metadata block, or whose metadata lacks the required title key,
// still yields a usable body; the returned error wraps apperr.ErrMissingTitle
// so callers that need a title can skip the document while callers converting
// ad-hoc snippets can ignore it.
func Parse(data []byte) (*FrontMatter, string, error) {
	rawYAML, body := split(data)

	fm := &FrontMatter{}
	if len(rawYAML) > 0 {
		fields := map[string]interface{}{}
		if err := yaml.Unmarshal(rawYAML, &fields); err != nil {
			return fm, body, fmt.Errorf("frontmatter: invalid yaml: %w", err)
		}
		fm.Fields = fields
		if t, ok := fields["title"].(string); ok {
			fm.Title = t
		}
		fm.Authors = parseAuthors(fields["author_keys"])
	}

	if fm.Title == "" {
		return fm, body, fmt.Errorf("frontmatter: %w", apperr.ErrMissingTitle)
	}
	return fm, body, nil
}

// split separates the raw YAML block from the Markdown body. Lines are routed
// into the YAML accumulator until the closing boundary marker is seen.
func split(data []byte) (rawYAML []byte, body string) {
	var yamlBuf, bodyBuf bytes.Buffer
	inYAML := true

	for _, line := range bytes.SplitAfter(data, []byte("\n")) {
		if string(bytes.TrimSpace(line)) == Boundary {
			if inYAML && yamlBuf.Len() > 0 {
				inYAML = false
				continue
			}
		}
		if inYAML {
			yamlBuf.Write(line)
		} else {
			bodyBuf.Write(line)
		}
	}

	// A document with no closing boundary has no metadata at all.
	if inYAML {
		return nil, strings.TrimSpace(yamlBuf.String())
	}
	return yamlBuf.Bytes(), strings.TrimSpace(bodyBuf.String())
}

// parseAuthors reads the author_keys field: an ordered sequence of
// (user key, designation) pairs.
func parseAuthors(raw interface{}) []Author {
	items, ok := raw.([]interface{})
	if !ok {
		return nil
	}
	var out []Author
	for _, item := range items {
		pair, ok := item.([]interface{})
		if !ok || len(pair) < 2 {
			continue
		}
		key, kok := pair[0].(string)
		designation, dok := pair[1].(string)
		if !kok || !dok {
			continue
		}
		out = append(out, Author{UserKey: key, Designation: designation})
	}
	return out
}
