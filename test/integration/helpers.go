package integration

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docexpand/internal/load"
	"git.home.luguber.info/inful/docexpand/internal/pipeline"
	"git.home.luguber.info/inful/docexpand/internal/report"
)

var updateGolden = flag.Bool("update", false, "update golden files")

// runCorpus loads a fixture corpus and executes one full pipeline run.
func runCorpus(t *testing.T, root string, placeholders map[string]string) *pipeline.Result {
	t.Helper()

	docs, err := load.NewLoader(root, nil).Load()
	require.NoError(t, err, "load corpus")

	p := pipeline.New(pipeline.Options{Placeholders: placeholders})
	result, err := p.Run(context.Background(), docs)
	require.NoError(t, err, "pipeline run")
	return result
}

// verifyReportGolden compares the run report against a golden JSON file.
// The run ID is cleared first; it differs per run by design.
func verifyReportGolden(t *testing.T, rep *report.Report, goldenPath string) {
	t.Helper()

	actual := report.JSONOutput{
		DocsTotal:    rep.DocsTotal,
		ErrorCount:   rep.ErrorCount(),
		WarningCount: rep.WarningCount(),
		Issues:       rep.Issues,
	}
	if actual.Issues == nil {
		actual.Issues = []report.Issue{}
	}

	if *updateGolden {
		data, err := json.MarshalIndent(actual, "", "  ")
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(goldenPath, append(data, '\n'), 0o644))
		return
	}

	goldenData, err := os.ReadFile(goldenPath)
	require.NoError(t, err, "read golden file (run with -update to create)")

	var expected report.JSONOutput
	require.NoError(t, json.Unmarshal(goldenData, &expected))
	require.Equal(t, expected, actual)
}
