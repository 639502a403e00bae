package xref

import (
	"fmt"

	"git.home.luguber.info/inful/docexpand/internal/registry"
	"git.home.luguber.info/inful/docexpand/internal/report"
)

// Resolve validates references against the registry. Every broken reference
// becomes an issue; none is raised early, so one run reports every broken
// link in the corpus.
func Resolve(refs []Reference, reg *registry.Registry) []report.Issue {
	var issues []report.Issue

	for _, ref := range refs {
		if !reg.HasDocument(ref.Target) {
			issues = append(issues, report.Issue{
				Doc:     ref.SourceDoc,
				Line:    ref.Line,
				Kind:    report.KindDanglingReference,
				Message: fmt.Sprintf("target document %q not found (link %q)", ref.Target, ref.Raw),
				Target:  ref.Target,
				Anchor:  ref.Anchor,
			})
			continue
		}

		if ref.Anchor != "" && !reg.HasAnchor(ref.Target, ref.Anchor) {
			issues = append(issues, report.Issue{
				Doc:     ref.SourceDoc,
				Line:    ref.Line,
				Kind:    report.KindUnknownAnchor,
				Message: fmt.Sprintf("anchor %q not defined in %q (link %q)", ref.Anchor, ref.Target, ref.Raw),
				Target:  ref.Target,
				Anchor:  ref.Anchor,
			})
		}
	}

	return issues
}
