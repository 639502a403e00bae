package registry

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"golang.org/x/net/html"

	"git.home.luguber.info/inful/docexpand/internal/docmodel"
	"git.home.luguber.info/inful/docexpand/internal/util/sets"
)

// collectAnchors gathers every anchor a document defines.
func collectAnchors(doc *docmodel.Document) (sets.Set[string], error) {
	body := doc.Body()
	anchors := sets.New[string]()

	if err := collectHeadingAnchors(body, anchors); err != nil {
		return nil, err
	}
	collectHTMLAnchors(body, anchors)

	// A frontmatter slug acts as an additional alias for the document top.
	fields, err := doc.Frontmatter()
	if err != nil {
		return nil, fmt.Errorf("frontmatter: %w", err)
	}
	if slug, ok := fields["slug"].(string); ok && slug != "" {
		anchors.Add(strings.TrimPrefix(slug, "#"))
	}

	return anchors, nil
}

// collectHeadingAnchors walks the Markdown AST and registers one anchor per
// heading: the explicit {#id} attribute when present, otherwise the slug of
// the heading text. Duplicate slugs get -1, -2, … suffixes in source order.
func collectHeadingAnchors(body []byte, anchors sets.Set[string]) error {
	md := goldmark.New(goldmark.WithParserOptions(parser.WithAttribute()))
	root := md.Parser().Parse(text.NewReader(body))

	taken := map[string]int{}

	return gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		heading, ok := n.(*gmast.Heading)
		if !ok {
			return gmast.WalkContinue, nil
		}

		if id, found := heading.AttributeString("id"); found {
			if idBytes, ok := id.([]byte); ok && len(idBytes) > 0 {
				anchors.Add(string(idBytes))
				return gmast.WalkSkipChildren, nil
			}
		}

		slug := Slugify(headingText(heading, body))
		if slug == "" {
			return gmast.WalkSkipChildren, nil
		}

		// GitHub-style deduplication: second "setup" becomes "setup-1".
		if n, dup := taken[slug]; dup {
			taken[slug] = n + 1
			slug = fmt.Sprintf("%s-%d", slug, n)
		} else {
			taken[slug] = 1
		}
		anchors.Add(slug)

		return gmast.WalkSkipChildren, nil
	})
}

// headingText extracts the plain text content of a heading node.
func headingText(heading *gmast.Heading, body []byte) string {
	var b bytes.Buffer
	_ = gmast.Walk(heading, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *gmast.Text:
			b.Write(node.Segment.Value(body))
		case *gmast.String:
			b.Write(node.Value)
		}
		return gmast.WalkContinue, nil
	})
	return b.String()
}

// collectHTMLAnchors tokenizes the raw body and registers <a id=…> and
// <a name=…> anchors. The documentation corpus relies on these for stable
// link targets that survive heading rewording.
func collectHTMLAnchors(body []byte, anchors sets.Set[string]) {
	tokenizer := html.NewTokenizer(bytes.NewReader(body))
	for {
		tt := tokenizer.Next()
		if tt == html.ErrorToken {
			return
		}
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			continue
		}

		name, hasAttr := tokenizer.TagName()
		if string(name) != "a" || !hasAttr {
			continue
		}

		for {
			key, val, more := tokenizer.TagAttr()
			if k := string(key); (k == "id" || k == "name") && len(val) > 0 {
				anchors.Add(string(val))
			}
			if !more {
				break
			}
		}
	}
}
