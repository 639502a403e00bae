package state

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docexpand/internal/docmodel"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, store.Close()) })
	return store
}

func TestLastRun_EmptyStore_ReturnsNil(t *testing.T) {
	store := openStore(t)

	run, err := store.LastRun(context.Background())
	require.NoError(t, err)
	require.Nil(t, run)
}

func TestRecordRun_RoundTrip(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	started := time.Date(2026, 8, 23, 10, 0, 0, 0, time.UTC)
	require.NoError(t, store.RecordRun(ctx, Run{
		ID:        "run-1",
		StartedAt: started,
		Duration:  1500 * time.Millisecond,
		Docs:      12,
		Errors:    2,
		Warnings:  1,
	}))

	run, err := store.LastRun(ctx)
	require.NoError(t, err)
	require.NotNil(t, run)
	require.Equal(t, "run-1", run.ID)
	require.Equal(t, started.Unix(), run.StartedAt.Unix())
	require.Equal(t, 1500*time.Millisecond, run.Duration)
	require.Equal(t, 12, run.Docs)
	require.Equal(t, 2, run.Errors)
	require.Equal(t, 1, run.Warnings)
}

func TestLastRun_ReturnsMostRecent(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	base := time.Now()
	require.NoError(t, store.RecordRun(ctx, Run{ID: "old", StartedAt: base.Add(-time.Hour)}))
	require.NoError(t, store.RecordRun(ctx, Run{ID: "new", StartedAt: base}))

	run, err := store.LastRun(ctx)
	require.NoError(t, err)
	require.Equal(t, "new", run.ID)
}

func TestFingerprint_UnseenDocument_ReturnsEmpty(t *testing.T) {
	store := openStore(t)

	fp, err := store.Fingerprint(context.Background(), "never-seen.md")
	require.NoError(t, err)
	require.Empty(t, fp)
}

func TestSetFingerprint_Upserts(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	require.NoError(t, store.SetFingerprint(ctx, "a.md", "fp-one"))
	fp, err := store.Fingerprint(ctx, "a.md")
	require.NoError(t, err)
	require.Equal(t, "fp-one", fp)

	require.NoError(t, store.SetFingerprint(ctx, "a.md", "fp-two"))
	fp, err = store.Fingerprint(ctx, "a.md")
	require.NoError(t, err)
	require.Equal(t, "fp-two", fp)
}

func TestDocFingerprint_StableAndContentSensitive(t *testing.T) {
	parse := func(content string) *docmodel.Document {
		d, err := docmodel.Parse("a.md", []byte(content), docmodel.Options{})
		require.NoError(t, err)
		return d
	}

	one := DocFingerprint(parse("---\ntitle: x\n---\nbody\n"))
	same := DocFingerprint(parse("---\ntitle: x\n---\nbody\n"))
	other := DocFingerprint(parse("---\ntitle: x\n---\nchanged\n"))

	require.NotEmpty(t, one)
	require.Equal(t, one, same)
	require.NotEqual(t, one, other)
}
