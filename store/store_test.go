package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevinxiao27/inkdoc/doc"
	"github.com/kevinxiao27/inkdoc/merge"
	"github.com/kevinxiao27/inkdoc/ol"
	"github.com/kevinxiao27/inkdoc/registry"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "inkdoc.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestLoadMissing(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Load(context.Background(), Key{Doc: "d", Author: "a"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	k := Key{Doc: "d1", Author: "alice"}

	e := doc.NewEditor("alice", doc.New(1000, 1500))
	e.Add("p1")
	e.Add("p2")
	e.Erase([]string{"peer"})

	require.NoError(t, s.SaveItems(ctx, k, Meta{Width: 1000, Height: 1500, HistoryLimit: 20}, e.Snapshot().Items()))
	require.NoError(t, s.AppendOps(ctx, k, e.Log().Entries()))
	// idempotent
	require.NoError(t, s.AppendOps(ctx, k, e.Log().Entries()))

	rec, err := s.Load(ctx, k)
	require.NoError(t, err)
	assert.Equal(t, 1000, rec.Width)
	assert.Equal(t, 1500, rec.Height)
	assert.Equal(t, 20, rec.HistoryLimit)
	assert.Equal(t, e.Snapshot().Items().Keys(), rec.Items.Keys())
	assert.Equal(t, e.Log().Entries(), rec.Ops.Entries())

	// replaying the stored log onto an empty document lands on the saved items
	replayed := doc.Load(doc.Flat{Items: registry.New[doc.Item](), Operations: rec.Ops}, rec.Width, rec.Height)
	assert.True(t, replayed.Items().Equal(rec.Items, func(a, b doc.Item) bool { return a == b }))
}

func TestSaveItemsOverwrites(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	k := Key{Doc: "d1", Author: "alice"}

	snap := doc.New(10, 10).Add("a")
	require.NoError(t, s.SaveItems(ctx, k, Meta{Width: 10, Height: 10}, snap.Items()))
	snap = snap.Add("b")
	require.NoError(t, s.SaveItems(ctx, k, Meta{Width: 10, Height: 10}, snap.Items()))

	rec, err := s.Load(ctx, k)
	require.NoError(t, err)
	assert.Equal(t, 2, rec.Items.Len())
	assert.Equal(t, 0, rec.Ops.Len())
}

func TestAuthorsMergeAndDelete(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	alice := doc.New(10, 10).Add("a1")
	bob := doc.New(10, 10).Add("b1").Erase([]string{alice.Strokes()[0].UID})

	require.NoError(t, s.SaveItems(ctx, Key{"d", "bob"}, Meta{Width: 10, Height: 10}, bob.Items()))
	require.NoError(t, s.SaveItems(ctx, Key{"d", "alice"}, Meta{Width: 10, Height: 10}, alice.Items()))
	require.NoError(t, s.SaveItems(ctx, Key{"other", "carol"}, Meta{Width: 10, Height: 10}, alice.Items()))

	authors, err := s.Authors(ctx, "d")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob"}, authors)

	var streams []registry.Map[doc.Item]
	for _, a := range authors {
		rec, err := s.Load(ctx, Key{"d", a})
		require.NoError(t, err)
		streams = append(streams, rec.Items)
	}
	merged := merge.Streams(streams...)
	require.Equal(t, 1, merged.Len())
	assert.Equal(t, "b1", merged.Values()[0].PathData)

	require.NoError(t, s.Delete(ctx, "d"))
	authors, err = s.Authors(ctx, "d")
	require.NoError(t, err)
	assert.Empty(t, authors)
}

func TestOpsSkipsGaps(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	k := Key{Doc: "d", Author: "a"}

	require.NoError(t, s.AppendOps(ctx, k, []ol.Entry{
		{ID: ol.ID{Agent: "a", Seq: 0}, Op: ol.Op{Type: ol.Undo}},
		{ID: ol.ID{Agent: "a", Seq: 2}, Op: ol.Op{Type: ol.Redo}},
	}))
	log, err := s.Ops(ctx, k)
	require.NoError(t, err)
	assert.Equal(t, 1, log.Len())
}
