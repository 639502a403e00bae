package report

import (
	"io"
	"strconv"
	"time"

	"github.com/nao1215/markdown"
)

// MarkdownWriter renders a run report as a GitHub-flavored markdown document,
// suitable for attaching to review threads or CI summaries.
type MarkdownWriter struct {
	output io.Writer
	now    func() time.Time
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{output: output, now: time.Now}
}

// Write renders the full report.
func (w *MarkdownWriter) Write(r *Report) error {
	md := markdown.NewMarkdown(w.output)

	md.H1("Documentation Validation Report")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Run", "`" + r.RunID + "`"},
			{"Generated", w.now().UTC().Format("2006-01-02 15:04:05 MST")},
			{"Documents", strconv.Itoa(r.DocsTotal)},
			{"Errors", strconv.Itoa(r.ErrorCount())},
			{"Warnings", strconv.Itoa(r.WarningCount())},
		},
	})
	md.PlainText("")

	w.writeSummary(md, r)
	w.writeIssues(md, r)

	return md.Build()
}

func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, r *Report) {
	md.H2("Issues by Kind")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Kind", "Count"},
		Rows: [][]string{
			{string(KindMalformedTabGroup), strconv.Itoa(r.CountByKind(KindMalformedTabGroup))},
			{string(KindDanglingReference), strconv.Itoa(r.CountByKind(KindDanglingReference))},
			{string(KindUnknownAnchor), strconv.Itoa(r.CountByKind(KindUnknownAnchor))},
			{string(KindSubstitutionWarning), strconv.Itoa(r.CountByKind(KindSubstitutionWarning))},
		},
	})
	md.PlainText("")

	switch {
	case r.ErrorCount() > 0:
		md.Cautionf("%d error(s) must be fixed before the corpus can be published.", r.ErrorCount())
	case r.WarningCount() > 0:
		md.Notef("Only warnings found. %d placeholder(s) were left unsubstituted.", r.WarningCount())
	default:
		md.Tip("All documents validated cleanly.")
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeIssues(md *markdown.Markdown, r *Report) {
	md.H2("Issues")
	md.PlainText("")

	if len(r.Issues) == 0 {
		md.PlainText("No issues found.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(r.Issues))
	for i, issue := range r.Issues {
		rows[i] = []string{
			"`" + issue.Doc + "`",
			strconv.Itoa(issue.Line),
			string(issue.Kind),
			issue.Message,
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Document", "Line", "Kind", "Message"},
		Rows:   rows,
	})
	md.PlainText("")
}
