// Package report defines the issue taxonomy and the aggregated run report.
//
// Issues are values, not errors: every stage collects what it finds and the
// run always inspects the whole corpus. Nothing in this package aborts
// processing.
package report

import "sort"

// Kind identifies the class of a validation issue.
type Kind string

const (
	// KindSubstitutionWarning flags an unresolved placeholder left in place.
	KindSubstitutionWarning Kind = "SubstitutionWarning"
	// KindMalformedTabGroup flags a code-tab container that could not be
	// parsed into a valid group.
	KindMalformedTabGroup Kind = "MalformedTabGroup"
	// KindDanglingReference flags a link whose target document is unknown.
	KindDanglingReference Kind = "DanglingReference"
	// KindUnknownAnchor flags a link to an existing document whose anchor
	// is not defined there.
	KindUnknownAnchor Kind = "UnknownAnchor"
)

// Severity indicates the importance level of an issue.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

// String returns the human-readable severity name.
func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "WARNING"
	case SeverityError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Severity maps an issue kind to its severity. Only substitution warnings are
// recoverable; every other kind is fatal for the element it describes.
func (k Kind) Severity() Severity {
	if k == KindSubstitutionWarning {
		return SeverityWarning
	}
	return SeverityError
}

// Issue represents a single problem found in a document.
type Issue struct {
	Doc     string `json:"doc"`              // Document key the issue was found in
	Line    int    `json:"line"`             // 1-based line in the source file (0 if unknown)
	Kind    Kind   `json:"kind"`             // Issue classification
	Message string `json:"message"`          // Human-readable description
	Target  string `json:"target,omitempty"` // Referenced document key, if applicable
	Anchor  string `json:"anchor,omitempty"` // Referenced anchor, if applicable
}

// Severity returns the severity implied by the issue kind.
func (i Issue) Severity() Severity { return i.Kind.Severity() }

// Report contains all issues found during a run.
type Report struct {
	RunID     string
	Issues    []Issue
	DocsTotal int
}

// Add appends issues to the report.
func (r *Report) Add(issues ...Issue) {
	r.Issues = append(r.Issues, issues...)
}

// HasErrors returns true if any error-level issues exist.
func (r *Report) HasErrors() bool {
	for _, issue := range r.Issues {
		if issue.Severity() == SeverityError {
			return true
		}
	}
	return false
}

// ErrorCount returns the number of error-level issues.
func (r *Report) ErrorCount() int {
	count := 0
	for _, issue := range r.Issues {
		if issue.Severity() == SeverityError {
			count++
		}
	}
	return count
}

// WarningCount returns the number of warning-level issues.
func (r *Report) WarningCount() int {
	count := 0
	for _, issue := range r.Issues {
		if issue.Severity() == SeverityWarning {
			count++
		}
	}
	return count
}

// CountByKind returns the number of issues of the given kind.
func (r *Report) CountByKind(k Kind) int {
	count := 0
	for _, issue := range r.Issues {
		if issue.Kind == k {
			count++
		}
	}
	return count
}

// Sort orders issues deterministically: by document key, then line, then
// kind, then message. Two runs over identical input produce an identical
// report regardless of goroutine scheduling.
func (r *Report) Sort() {
	sort.SliceStable(r.Issues, func(a, b int) bool {
		ia, ib := r.Issues[a], r.Issues[b]
		if ia.Doc != ib.Doc {
			return ia.Doc < ib.Doc
		}
		if ia.Line != ib.Line {
			return ia.Line < ib.Line
		}
		if ia.Kind != ib.Kind {
			return ia.Kind < ib.Kind
		}
		return ia.Message < ib.Message
	})
}
