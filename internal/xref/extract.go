// Package xref extracts internal cross-references from documents and
// validates them against the anchor registry.
package xref

import (
	"bytes"
	"path"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	"git.home.luguber.info/inful/docexpand/internal/docmodel"
)

// Reference is an internal link found in a document. It exists only for the
// duration of resolution and is discarded after validation.
type Reference struct {
	SourceDoc string // key of the document the link was found in
	Target    string // resolved target document key
	Anchor    string // anchor within the target, "" when none
	Raw       string // original link destination as written
	Line      int    // 1-based line within the source body (0 if unknown)
}

// documentExtensions lists target suffixes treated as corpus documents.
// Anything else (images, downloads, directories) is not registry-validated.
var documentExtensions = []string{".md", ".mdx"}

// Extract parses the body and returns every internal reference: inline links,
// reference-style links, and reference definitions. External URLs and asset
// links are skipped. Links inside fenced code blocks never reach the AST, so
// sample code cannot produce false references.
func Extract(doc *docmodel.Document) []Reference {
	body := doc.Body()

	md := goldmark.New()
	ctx := parser.NewContext()
	root := md.Parser().Parse(text.NewReader(body), parser.WithContext(ctx))

	var refs []Reference

	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		link, ok := n.(*gmast.Link)
		if !ok {
			return gmast.WalkContinue, nil
		}
		if ref, ok := classify(doc, string(link.Destination), nodeOffset(link)); ok {
			refs = append(refs, ref)
		}
		return gmast.WalkContinue, nil
	})

	// Reference definitions ([label]: target) live in the parse context, not
	// the AST. They have no position; locate them by destination text.
	defs := ctx.References()
	sort.Slice(defs, func(i, j int) bool {
		return string(defs[i].Label()) < string(defs[j].Label())
	})
	for _, def := range defs {
		dest := string(def.Destination())
		if ref, ok := classify(doc, dest, bytes.Index(body, []byte(dest))); ok {
			refs = append(refs, ref)
		}
	}

	for i := range refs {
		if refs[i].Line == 0 {
			refs[i].Line = 1
		}
	}
	return refs
}

// classify turns a link destination into a Reference, resolving relative
// paths against the source document's directory. ok is false for external
// URLs and non-document targets.
func classify(doc *docmodel.Document, dest string, offset int) (Reference, bool) {
	dest = strings.TrimSpace(dest)
	if dest == "" || isExternal(dest) {
		return Reference{}, false
	}

	ref := Reference{
		SourceDoc: doc.Key(),
		Raw:       dest,
	}
	if offset >= 0 {
		ref.Line = doc.BodyLine(offset)
	}

	target, anchor, _ := strings.Cut(dest, "#")
	ref.Anchor = anchor

	if target == "" {
		// Bare #anchor: self-reference.
		ref.Target = doc.Key()
		return ref, true
	}

	if !isDocumentTarget(target) {
		return Reference{}, false
	}

	if strings.HasPrefix(target, "/") {
		ref.Target = path.Clean(strings.TrimPrefix(target, "/"))
	} else {
		ref.Target = path.Clean(path.Join(path.Dir(doc.Key()), target))
	}
	return ref, true
}

func isExternal(dest string) bool {
	if strings.HasPrefix(dest, "//") {
		return true
	}
	scheme, _, ok := strings.Cut(dest, ":")
	if !ok {
		return false
	}
	// A colon before any slash or hash means a URL scheme (http, mailto, …).
	return !strings.ContainsAny(scheme, "/#")
}

func isDocumentTarget(target string) bool {
	lower := strings.ToLower(target)
	for _, ext := range documentExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// nodeOffset finds the byte offset of a link by its first text child.
// Empty-label links ([](x)) have no text child and yield -1.
func nodeOffset(n gmast.Node) int {
	offset := -1
	_ = gmast.Walk(n, func(child gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		if t, ok := child.(*gmast.Text); ok {
			offset = t.Segment.Start
			return gmast.WalkStop, nil
		}
		return gmast.WalkContinue, nil
	})
	return offset
}
