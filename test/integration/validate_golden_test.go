package integration

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docexpand/internal/pipeline"
	"git.home.luguber.info/inful/docexpand/internal/report"
)

var testPlaceholders = map[string]string{
	"VERSION":       "3.5.0",
	"SCALA_VERSION": "2.13",
}

func TestValidateGolden_ValidCorpus(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping golden test in short mode")
	}

	result := runCorpus(t, "../testdata/corpus/valid", testPlaceholders)
	verifyReportGolden(t, result.Report, "../testdata/golden/valid.golden.json")

	require.False(t, result.Report.HasErrors())
	for _, doc := range result.Docs {
		require.Equal(t, pipeline.StateResolved, doc.State, doc.Key)
	}
}

func TestValidateGolden_InvalidCorpus(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping golden test in short mode")
	}

	result := runCorpus(t, "../testdata/corpus/invalid", testPlaceholders)
	verifyReportGolden(t, result.Report, "../testdata/golden/invalid.golden.json")

	require.True(t, result.Report.HasErrors())
}

func TestValidate_ValidCorpus_OutputsSubstituted(t *testing.T) {
	result := runCorpus(t, "../testdata/corpus/valid", testPlaceholders)

	var index pipeline.DocResult
	for _, doc := range result.Docs {
		if doc.Key == "index.md" {
			index = doc
		}
	}
	require.Equal(t, "index.md", index.Key)
	require.Contains(t, string(index.Output), "pip install pyspark==3.5.0")
	require.NotContains(t, string(index.Output), "$VERSION$")
}

func TestValidate_ValidCorpus_GroupsParsed(t *testing.T) {
	result := runCorpus(t, "../testdata/corpus/valid", testPlaceholders)

	for _, doc := range result.Docs {
		if doc.Key != "latest/quick-start.md" {
			continue
		}
		require.Len(t, doc.Groups, 1)
		require.Equal(t, []string{"python", "scala"}, doc.Groups[0].Languages())
	}
}

func TestValidate_InvalidCorpus_PerDocumentIsolation(t *testing.T) {
	result := runCorpus(t, "../testdata/corpus/invalid", testPlaceholders)

	states := map[string]pipeline.State{}
	for _, doc := range result.Docs {
		states[doc.Key] = doc.State
	}

	// Broken documents fail; the untouched one still resolves.
	require.Equal(t, pipeline.StateFailed, states["bad-tabs.md"])
	require.Equal(t, pipeline.StateFailed, states["broken-links.md"])
	require.Equal(t, pipeline.StateResolved, states["guide.md"])
}

func TestValidate_InvalidCorpus_TextReportLines(t *testing.T) {
	result := runCorpus(t, "../testdata/corpus/invalid", testPlaceholders)

	var buf strings.Builder
	require.NoError(t, report.NewTextFormatter().Format(&buf, result.Report))

	out := buf.String()
	require.Contains(t, out, `broken-links.md:3: DanglingReference: target document "ghost.md" not found (link "ghost.md")`)
	require.Contains(t, out, `broken-links.md:3: UnknownAnchor: anchor "missing-section" not defined in "guide.md" (link "guide.md#missing-section")`)
	require.Contains(t, out, "broken-links.md:5: SubstitutionWarning: unresolved placeholder $UNKNOWN$")
	require.Contains(t, out, `bad-tabs.md:7: MalformedTabGroup: duplicate language "python" in tab group (first at line 4)`)
}
