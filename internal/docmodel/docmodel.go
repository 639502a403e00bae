// Package docmodel holds the immutable document model shared by every
// pipeline stage. A Document is parsed exactly once per run; stages derive
// new byte slices from it rather than mutating it.
package docmodel

import (
	"fmt"
	"os"

	"git.home.luguber.info/inful/docexpand/internal/frontmatter"
)

// Options controls parsing behavior for Document.
//
// It is intentionally small to keep the initial API focused; it exists so we
// can evolve parsing behavior without rewriting call sites.
type Options struct{}

// Document represents a source document split into YAML frontmatter and body.
//
// Documents are identified by a slash-separated key relative to the docs root
// (e.g. "latest/quick-start.md"). The struct is immutable after Parse: all
// accessors return copies.
type Document struct {
	key      string
	original []byte
	fmRaw    []byte
	body     []byte
	hadFM    bool
	style    frontmatter.Style
}

// Parse parses raw file content into a Document.
func Parse(key string, content []byte, _ Options) (*Document, error) {
	fmRaw, body, had, style, err := frontmatter.Split(content)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", key, err)
	}

	doc := &Document{
		key:      key,
		original: append([]byte(nil), content...),
		body:     append([]byte(nil), body...),
		hadFM:    had,
		style:    style,
	}
	if had {
		doc.fmRaw = append([]byte(nil), fmRaw...)
	}
	return doc, nil
}

// ParseFile reads a file from disk and parses it into a Document.
func ParseFile(key, path string, opts Options) (*Document, error) {
	// #nosec G304 -- path comes from internal discovery walks.
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document %s: %w", key, err)
	}
	return Parse(key, content, opts)
}

// Key returns the document key (slash-separated path relative to the docs root).
func (d *Document) Key() string { return d.key }

// Original returns a copy of the original bytes.
func (d *Document) Original() []byte {
	return append([]byte(nil), d.original...)
}

// HadFrontmatter reports whether the document contained a YAML frontmatter block.
func (d *Document) HadFrontmatter() bool { return d.hadFM }

// FrontmatterRaw returns the raw YAML frontmatter bytes (without delimiters),
// or nil if the document had none.
func (d *Document) FrontmatterRaw() []byte {
	if !d.hadFM {
		return nil
	}
	return append([]byte(nil), d.fmRaw...)
}

// Frontmatter parses the YAML frontmatter into a map. Documents without
// frontmatter yield an empty map.
func (d *Document) Frontmatter() (map[string]any, error) {
	return frontmatter.ParseYAML(d.fmRaw)
}

// Body returns the Markdown body bytes (frontmatter removed).
func (d *Document) Body() []byte {
	return append([]byte(nil), d.body...)
}

// Style returns the newline style detected while splitting.
func (d *Document) Style() frontmatter.Style { return d.style }

// Assemble re-joins the document's frontmatter with a replacement body.
// The pipeline uses this to emit substituted output while keeping the
// original frontmatter block and newline style intact.
func (d *Document) Assemble(body []byte) []byte {
	return frontmatter.Join(d.fmRaw, body, d.hadFM, d.style)
}

// WithBody returns a copy of the document with a replacement body, keeping
// key, frontmatter, and style. Stages that transform the body use this to
// hand a derived document to later stages without mutating the original.
func (d *Document) WithBody(body []byte) *Document {
	out := *d
	out.body = append([]byte(nil), body...)
	out.original = out.Assemble(out.body)
	return &out
}

// BodyLine converts a byte offset within Body to a 1-based line number.
// Offsets past the end map to the last line.
func (d *Document) BodyLine(offset int) int {
	if offset < 0 {
		return 1
	}
	line := 1
	for i := 0; i < offset && i < len(d.body); i++ {
		if d.body[i] == '\n' {
			line++
		}
	}
	return line
}

// FrontmatterLines returns the number of source lines occupied by the
// frontmatter block including both delimiters, so body line numbers can be
// reported as positions in the original file.
func (d *Document) FrontmatterLines() int {
	if !d.hadFM {
		return 0
	}
	lines := 2 // opening and closing delimiter
	for _, b := range d.fmRaw {
		if b == '\n' {
			lines++
		}
	}
	return lines
}
