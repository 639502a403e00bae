package tabs

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docexpand/internal/report"
)

func parse(t *testing.T, body string) ([]Group, []report.Issue) {
	t.Helper()
	return NewParser(nil).Parse("doc.md", []byte(body))
}

func TestParse_WellFormedGroup_PreservesSourceOrder(t *testing.T) {
	body := strings.Join([]string{
		"<CodeTabs>",
		"```python",
		"print('hi')",
		"```",
		"```scala",
		`println("hi")`,
		"```",
		"</CodeTabs>",
	}, "\n")

	groups, issues := parse(t, body)
	require.Empty(t, issues)
	require.Len(t, groups, 1)
	require.Equal(t, 1, groups[0].Line)
	require.Equal(t, []string{"python", "scala"}, groups[0].Languages())
	require.Equal(t, "print('hi')", groups[0].Entries[0].Body)
	require.Equal(t, 2, groups[0].Entries[0].Line)
}

func TestParse_DuplicateLanguage_ReportsMalformedGroup(t *testing.T) {
	body := strings.Join([]string{
		"<CodeTabs>",
		"```python",
		"one",
		"```",
		"```python",
		"two",
		"```",
		"</CodeTabs>",
	}, "\n")

	groups, issues := parse(t, body)
	require.Len(t, issues, 1)
	require.Equal(t, report.KindMalformedTabGroup, issues[0].Kind)
	require.Equal(t, 5, issues[0].Line)
	require.Contains(t, issues[0].Message, `duplicate language "python"`)

	// The first entry survives so later stages still see the group.
	require.Len(t, groups, 1)
	require.Equal(t, []string{"python"}, groups[0].Languages())
}

func TestParse_UnknownLanguage_FallsBackToText(t *testing.T) {
	body := strings.Join([]string{
		"<CodeTabs>",
		"```kotlin",
		"fun main() {}",
		"```",
		"</CodeTabs>",
	}, "\n")

	groups, issues := parse(t, body)
	require.Empty(t, issues)
	require.Len(t, groups, 1)
	require.Equal(t, []string{FallbackLanguage}, groups[0].Languages())
}

func TestParse_TwoUnknownLanguages_CollideOnFallback(t *testing.T) {
	body := strings.Join([]string{
		"<CodeTabs>",
		"```kotlin",
		"a",
		"```",
		"```ruby",
		"b",
		"```",
		"</CodeTabs>",
	}, "\n")

	groups, issues := parse(t, body)
	require.Len(t, issues, 1)
	require.Equal(t, report.KindMalformedTabGroup, issues[0].Kind)
	require.Contains(t, issues[0].Message, `duplicate language "text"`)
	require.Len(t, groups, 1)
}

func TestParse_EmptyContainer_ReportsEmptyGroup(t *testing.T) {
	body := "<CodeTabs>\n</CodeTabs>\n"

	groups, issues := parse(t, body)
	require.Empty(t, groups)
	require.Len(t, issues, 1)
	require.Equal(t, report.KindMalformedTabGroup, issues[0].Kind)
	require.Equal(t, 1, issues[0].Line)
	require.Contains(t, issues[0].Message, "empty")
}

func TestParse_UnclosedFence_ReportsAndContinues(t *testing.T) {
	body := strings.Join([]string{
		"<CodeTabs>",
		"```python",
		"print('hi')",
		"</CodeTabs>",
		"",
		"<CodeTabs>",
		"```scala",
		"ok",
		"```",
		"</CodeTabs>",
	}, "\n")

	groups, issues := parse(t, body)

	// The broken first container yields two issues (unclosed fence, then
	// empty group); the second container still parses.
	require.Len(t, issues, 2)
	require.Equal(t, report.KindMalformedTabGroup, issues[0].Kind)
	require.Equal(t, 2, issues[0].Line)
	require.Contains(t, issues[0].Message, "never closed")
	require.Contains(t, issues[1].Message, "empty")

	require.Len(t, groups, 1)
	require.Equal(t, []string{"scala"}, groups[0].Languages())
}

func TestParse_FenceWithoutLanguageTag_Reported(t *testing.T) {
	body := strings.Join([]string{
		"<CodeTabs>",
		"```",
		"anonymous",
		"```",
		"</CodeTabs>",
	}, "\n")

	_, issues := parse(t, body)
	require.Len(t, issues, 2) // untagged fence, then empty group
	require.Contains(t, issues[0].Message, "no language tag")
}

func TestParse_UnclosedContainer_Reported(t *testing.T) {
	body := strings.Join([]string{
		"intro",
		"<CodeTabs>",
		"```python",
		"print('hi')",
		"```",
	}, "\n")

	groups, issues := parse(t, body)
	require.Len(t, issues, 1)
	require.Equal(t, 2, issues[0].Line)
	require.Contains(t, issues[0].Message, "container is never closed")

	// Entries collected before the end of input are kept.
	require.Len(t, groups, 1)
	require.Equal(t, []string{"python"}, groups[0].Languages())
}

func TestParse_NestedContainer_Reported(t *testing.T) {
	body := strings.Join([]string{
		"<CodeTabs>",
		"<CodeTabs>",
		"```python",
		"x",
		"```",
		"</CodeTabs>",
	}, "\n")

	_, issues := parse(t, body)
	require.NotEmpty(t, issues)
	require.Contains(t, issues[0].Message, "nested tab container")
}

func TestParse_FenceOutsideContainer_Ignored(t *testing.T) {
	body := strings.Join([]string{
		"```python",
		"print('plain')",
		"```",
	}, "\n")

	groups, issues := parse(t, body)
	require.Empty(t, groups)
	require.Empty(t, issues)
}

func TestParse_ContainerTagInsidePlainFence_Ignored(t *testing.T) {
	body := strings.Join([]string{
		"```text",
		"<CodeTabs>",
		"this is documentation about the syntax",
		"</CodeTabs>",
		"```",
	}, "\n")

	groups, issues := parse(t, body)
	require.Empty(t, groups)
	require.Empty(t, issues)
}

func TestParse_TildeFences_Supported(t *testing.T) {
	body := strings.Join([]string{
		"<CodeTabs>",
		"~~~sql",
		"SELECT 1;",
		"~~~",
		"</CodeTabs>",
	}, "\n")

	groups, issues := parse(t, body)
	require.Empty(t, issues)
	require.Len(t, groups, 1)
	require.Equal(t, []string{"sql"}, groups[0].Languages())
}

func TestNewParser_CustomLanguages_RestrictsAllowedSet(t *testing.T) {
	p := NewParser([]string{"go", "text"})

	groups, issues := p.Parse("doc.md", []byte("<CodeTabs>\n```python\nx\n```\n</CodeTabs>\n"))
	require.Empty(t, issues)
	require.Len(t, groups, 1)
	require.Equal(t, []string{"text"}, groups[0].Languages())
}

func TestParse_MultipleGroups_AllCollected(t *testing.T) {
	body := strings.Join([]string{
		"# Title",
		"<CodeTabs>",
		"```python",
		"a",
		"```",
		"</CodeTabs>",
		"prose",
		"<CodeTabs>",
		"```bash",
		"b",
		"```",
		"</CodeTabs>",
	}, "\n")

	groups, issues := parse(t, body)
	require.Empty(t, issues)
	require.Len(t, groups, 2)
	require.Equal(t, 2, groups[0].Line)
	require.Equal(t, 8, groups[1].Line)
}
