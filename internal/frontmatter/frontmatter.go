// Package frontmatter splits and re-joins `---` delimited YAML frontmatter.
//
// The split is byte-oriented and style-preserving: the newline flavour of the
// original document is captured so a re-joined document is byte-identical when
// nothing in between changed.
package frontmatter

import (
	"bytes"
	"errors"

	"gopkg.in/yaml.v3"
)

// ErrMissingClosingDelimiter is returned when a document opens a frontmatter
// block but never closes it.
var ErrMissingClosingDelimiter = errors.New("frontmatter: missing closing delimiter")

// Style captures formatting details needed for stable rewriting.
type Style struct {
	Newline string
}

func detectStyle(content []byte) Style {
	if i := bytes.IndexByte(content, '\n'); i > 0 && content[i-1] == '\r' {
		return Style{Newline: "\r\n"}
	}
	return Style{Newline: "\n"}
}

// Split separates YAML frontmatter (`---` delimited) from the Markdown body.
//
// If the document does not start with a frontmatter delimiter, had is false
// and body is the full input.
func Split(content []byte) (fm []byte, body []byte, had bool, style Style, err error) {
	style = detectStyle(content)

	nl := style.Newline
	open := []byte("---" + nl)
	if !bytes.HasPrefix(content, open) {
		return nil, content, false, style, nil
	}

	rest := content[len(open):]
	if bytes.HasPrefix(rest, open) {
		// Empty frontmatter block.
		return []byte{}, rest[len(open):], true, style, nil
	}

	closeSeq := []byte(nl + "---" + nl)
	idx := bytes.Index(rest, closeSeq)
	if idx < 0 {
		return nil, nil, false, style, ErrMissingClosingDelimiter
	}

	fmEnd := idx + len(nl)
	bodyStart := idx + len(closeSeq)
	return rest[:fmEnd], rest[bodyStart:], true, style, nil
}

// Join reassembles a document from raw frontmatter and body.
//
// If had is false, Join returns body as-is.
func Join(fm []byte, body []byte, had bool, style Style) []byte {
	if !had {
		return body
	}

	nl := style.Newline
	if nl == "" {
		nl = "\n"
	}

	delim := []byte("---" + nl)
	out := make([]byte, 0, 2*len(delim)+len(fm)+len(body))
	out = append(out, delim...)
	out = append(out, fm...)
	out = append(out, delim...)
	out = append(out, body...)
	return out
}

// ParseYAML parses raw YAML frontmatter (without --- delimiters) into a map.
func ParseYAML(fm []byte) (map[string]any, error) {
	if len(fm) == 0 {
		return map[string]any{}, nil
	}

	fields := map[string]any{}
	if err := yaml.Unmarshal(fm, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}
