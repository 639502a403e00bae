package report

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindSeverity_OnlySubstitutionWarningIsWarning(t *testing.T) {
	require.Equal(t, SeverityWarning, KindSubstitutionWarning.Severity())
	require.Equal(t, SeverityError, KindMalformedTabGroup.Severity())
	require.Equal(t, SeverityError, KindDanglingReference.Severity())
	require.Equal(t, SeverityError, KindUnknownAnchor.Severity())
}

func TestSeverityString(t *testing.T) {
	require.Equal(t, "WARNING", SeverityWarning.String())
	require.Equal(t, "ERROR", SeverityError.String())
}

func TestReport_Counts(t *testing.T) {
	var r Report
	r.Add(
		Issue{Doc: "a.md", Kind: KindSubstitutionWarning},
		Issue{Doc: "a.md", Kind: KindDanglingReference},
		Issue{Doc: "b.md", Kind: KindDanglingReference},
		Issue{Doc: "b.md", Kind: KindUnknownAnchor},
	)

	require.True(t, r.HasErrors())
	require.Equal(t, 3, r.ErrorCount())
	require.Equal(t, 1, r.WarningCount())
	require.Equal(t, 2, r.CountByKind(KindDanglingReference))
	require.Equal(t, 0, r.CountByKind(KindMalformedTabGroup))
}

func TestReport_OnlyWarnings_HasErrorsFalse(t *testing.T) {
	var r Report
	r.Add(Issue{Doc: "a.md", Kind: KindSubstitutionWarning})

	require.False(t, r.HasErrors())
}

func TestReport_Sort_DeterministicOrder(t *testing.T) {
	var r Report
	r.Add(
		Issue{Doc: "b.md", Line: 1, Kind: KindDanglingReference, Message: "x"},
		Issue{Doc: "a.md", Line: 9, Kind: KindUnknownAnchor, Message: "y"},
		Issue{Doc: "a.md", Line: 2, Kind: KindUnknownAnchor, Message: "z"},
		Issue{Doc: "a.md", Line: 2, Kind: KindDanglingReference, Message: "w"},
	)

	r.Sort()

	require.Equal(t, "a.md", r.Issues[0].Doc)
	require.Equal(t, 2, r.Issues[0].Line)
	require.Equal(t, KindDanglingReference, r.Issues[0].Kind)
	require.Equal(t, KindUnknownAnchor, r.Issues[1].Kind)
	require.Equal(t, 9, r.Issues[2].Line)
	require.Equal(t, "b.md", r.Issues[3].Doc)
}
