package registry

import (
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docexpand/internal/docmodel"
)

func doc(t *testing.T, key, content string) *docmodel.Document {
	t.Helper()
	d, err := docmodel.Parse(key, []byte(content), docmodel.Options{})
	require.NoError(t, err)
	return d
}

func TestBuild_HeadingSlugs_Registered(t *testing.T) {
	reg, err := Build([]*docmodel.Document{
		doc(t, "guide.md", "# Quick Start\n\n## DDL: CREATE TABLE\n"),
	})
	require.NoError(t, err)

	require.True(t, reg.HasDocument("guide.md"))
	require.True(t, reg.HasAnchor("guide.md", "quick-start"))
	require.True(t, reg.HasAnchor("guide.md", "ddl-create-table"))
	require.False(t, reg.HasAnchor("guide.md", "missing"))
}

func TestBuild_DuplicateHeadings_GetSuffixes(t *testing.T) {
	reg, err := Build([]*docmodel.Document{
		doc(t, "a.md", "## Setup\n\ntext\n\n## Setup\n\n## Setup\n"),
	})
	require.NoError(t, err)

	require.Equal(t, []string{"setup", "setup-1", "setup-2"}, reg.Anchors("a.md"))
}

func TestBuild_ExplicitHeadingID_WinsOverSlug(t *testing.T) {
	reg, err := Build([]*docmodel.Document{
		doc(t, "a.md", "## Some Long Title {#short}\n"),
	})
	require.NoError(t, err)

	require.True(t, reg.HasAnchor("a.md", "short"))
	require.False(t, reg.HasAnchor("a.md", "some-long-title"))
}

func TestBuild_HTMLAnchors_Registered(t *testing.T) {
	reg, err := Build([]*docmodel.Document{
		doc(t, "a.md", "intro\n\n<a id=\"stable-target\"></a>\n<a name=\"legacy-target\"/>\n"),
	})
	require.NoError(t, err)

	require.True(t, reg.HasAnchor("a.md", "stable-target"))
	require.True(t, reg.HasAnchor("a.md", "legacy-target"))
}

func TestBuild_FrontmatterSlug_AddedAsAlias(t *testing.T) {
	reg, err := Build([]*docmodel.Document{
		doc(t, "a.md", "---\nslug: getting-started\n---\n# Title\n"),
	})
	require.NoError(t, err)

	require.True(t, reg.HasAnchor("a.md", "getting-started"))
	require.True(t, reg.HasAnchor("a.md", "title"))
}

func TestBuild_HeadingAnchorsInsideCodeFences_NotRegistered(t *testing.T) {
	reg, err := Build([]*docmodel.Document{
		doc(t, "a.md", "# Real\n\n```text\n# Not A Heading\n```\n"),
	})
	require.NoError(t, err)

	require.True(t, reg.HasAnchor("a.md", "real"))
	require.False(t, reg.HasAnchor("a.md", "not-a-heading"))
}

func TestRegistry_Keys_SortedAndComplete(t *testing.T) {
	reg, err := Build([]*docmodel.Document{
		doc(t, "z.md", "# Z\n"),
		doc(t, "a.md", "# A\n"),
		doc(t, "sub/m.md", "# M\n"),
	})
	require.NoError(t, err)

	require.Equal(t, 3, reg.Len())
	require.Equal(t, []string{"a.md", "sub/m.md", "z.md"}, reg.Keys())
}

func TestRegistry_UnknownDocument_NilAnchors(t *testing.T) {
	reg, err := Build(nil)
	require.NoError(t, err)

	require.False(t, reg.HasDocument("ghost.md"))
	require.Nil(t, reg.Anchors("ghost.md"))
}
