// Package registry builds the read-only document/anchor registry that
// reference resolution validates against.
//
// The registry is constructed in a single sequential pass over the full
// document set before any reference is resolved. That ordering is load-bearing:
// a reference may point at a document that iteration order visits later, and
// forward references to anchors defined further down a document must resolve.
package registry

import (
	"fmt"
	"sort"

	"git.home.luguber.info/inful/docexpand/internal/docmodel"
	"git.home.luguber.info/inful/docexpand/internal/util/sets"
)

// Registry maps document keys to the set of anchors each document defines.
// It is immutable after Build; concurrent readers need no locking.
type Registry struct {
	anchors map[string]sets.Set[string]
}

// Build collects anchors from every document. Anchors come from three
// sources: heading slugs (with GitHub-style -1/-2 deduplication), explicit
// {#custom-id} heading attributes, and literal <a id=…>/<a name=…> HTML
// anchors embedded in the body.
func Build(docs []*docmodel.Document) (*Registry, error) {
	reg := &Registry{anchors: make(map[string]sets.Set[string], len(docs))}

	for _, doc := range docs {
		anchorSet, err := collectAnchors(doc)
		if err != nil {
			return nil, fmt.Errorf("collect anchors for %s: %w", doc.Key(), err)
		}
		reg.anchors[doc.Key()] = anchorSet
	}

	return reg, nil
}

// HasDocument reports whether key is part of the corpus.
func (r *Registry) HasDocument(key string) bool {
	_, ok := r.anchors[key]
	return ok
}

// HasAnchor reports whether the given document defines the anchor.
func (r *Registry) HasAnchor(key, anchor string) bool {
	set, ok := r.anchors[key]
	return ok && set.Has(anchor)
}

// Anchors returns the anchors of a document in lexical order, or nil when
// the document is unknown.
func (r *Registry) Anchors(key string) []string {
	set, ok := r.anchors[key]
	if !ok {
		return nil
	}
	return sets.SortedStrings(set)
}

// Keys returns all document keys in lexical order.
func (r *Registry) Keys() []string {
	out := make([]string, 0, len(r.anchors))
	for k := range r.anchors {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of registered documents.
func (r *Registry) Len() int { return len(r.anchors) }
