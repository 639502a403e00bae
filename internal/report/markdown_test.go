package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func fixedClock() time.Time {
	return time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
}

func TestMarkdownWriter_WithIssues_RendersTables(t *testing.T) {
	var buf bytes.Buffer
	w := NewMarkdownWriter(&buf)
	w.now = fixedClock

	require.NoError(t, w.Write(sampleReport()))
	out := buf.String()

	require.Contains(t, out, "# Documentation Validation Report")
	require.Contains(t, out, "2026-08-23 12:00:00 UTC")
	require.Contains(t, out, "## Issues by Kind")
	require.Contains(t, out, "DanglingReference")
	require.Contains(t, out, "`latest/quick-start.md`")
	require.Contains(t, out, "unresolved placeholder $SCALA_VERSION$")
	require.Contains(t, out, "1 error(s) must be fixed")
}

func TestMarkdownWriter_CleanReport_RendersTip(t *testing.T) {
	var buf bytes.Buffer
	w := NewMarkdownWriter(&buf)
	w.now = fixedClock

	require.NoError(t, w.Write(&Report{RunID: "run-2", DocsTotal: 5}))
	out := buf.String()

	require.Contains(t, out, "All documents validated cleanly.")
	require.Contains(t, out, "No issues found.")
}

func TestMarkdownWriter_OnlyWarnings_RendersNote(t *testing.T) {
	var buf bytes.Buffer
	w := NewMarkdownWriter(&buf)
	w.now = fixedClock

	rep := &Report{RunID: "run-3", DocsTotal: 1}
	rep.Add(Issue{Doc: "a.md", Line: 1, Kind: KindSubstitutionWarning, Message: "unresolved placeholder $X$"})

	require.NoError(t, w.Write(rep))
	require.Contains(t, buf.String(), "Only warnings found. 1 placeholder(s)")
}
