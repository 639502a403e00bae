package state

import (
	"github.com/inful/mdfp"

	"git.home.luguber.info/inful/docexpand/internal/docmodel"
)

// DocFingerprint computes the canonical content fingerprint for a document,
// covering frontmatter and body. Identical content always yields the same
// fingerprint, so watch mode can skip logging unchanged documents.
func DocFingerprint(doc *docmodel.Document) string {
	return mdfp.CalculateFingerprintFromParts(string(doc.FrontmatterRaw()), string(doc.Body()))
}
