// Package load discovers and reads the documentation corpus from disk.
// It is the only pipeline collaborator that touches I/O; everything after
// loading operates on in-memory documents.
package load

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"git.home.luguber.info/inful/docexpand/internal/docmodel"
)

// DefaultExtensions are the file extensions treated as documents.
var DefaultExtensions = []string{".md", ".mdx"}

// Loader walks a docs root and parses every document found.
type Loader struct {
	root       string
	extensions []string
}

// NewLoader creates a loader for the given root directory. An empty
// extensions slice selects DefaultExtensions.
func NewLoader(root string, extensions []string) *Loader {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	return &Loader{root: root, extensions: extensions}
}

// Load reads and parses all documents under the root, keyed by their
// slash-separated path relative to the root, sorted by key. Hidden files and
// directories are skipped.
func (l *Loader) Load() ([]*docmodel.Document, error) {
	var docs []*docmodel.Document

	err := filepath.WalkDir(l.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if strings.HasPrefix(d.Name(), ".") && d.Name() != "." {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !l.isDocFile(p) {
			return nil
		}

		rel, err := filepath.Rel(l.root, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)

		doc, err := docmodel.ParseFile(key, p, docmodel.Options{})
		if err != nil {
			return err
		}
		docs = append(docs, doc)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load docs from %s: %w", l.root, err)
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].Key() < docs[j].Key() })
	return docs, nil
}

func (l *Loader) isDocFile(p string) bool {
	ext := strings.ToLower(filepath.Ext(p))
	for _, e := range l.extensions {
		if ext == e {
			return true
		}
	}
	return false
}
