package composables

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSaveAndRestore(t *testing.T) {
	t.Parallel()

	ctx := WithUser(context.Background(), "main:Alice")
	ctx = WithAuthor(ctx, "main:Bob")
	ctx = WithWiki(ctx, "main")

	snap := Save(ctx, StandardEntries)
	require.Equal(t, Snapshot{"user": "main:Alice", "author": "main:Bob", "wiki": "main"}, snap)

	restored := Restore(context.Background(), snap)
	user, ok := UseUser(restored)
	require.True(t, ok)
	require.Equal(t, "main:Alice", user)
	author, ok := UseAuthor(restored)
	require.True(t, ok)
	require.Equal(t, "main:Bob", author)
	wiki, ok := UseWiki(restored)
	require.True(t, ok)
	require.Equal(t, "main", wiki)
}

func TestSave_SkipsAbsentEntries(t *testing.T) {
	t.Parallel()

	ctx := WithWiki(context.Background(), "main")
	snap := Save(ctx, StandardEntries)
	require.Equal(t, Snapshot{"wiki": "main"}, snap)

	restored := Restore(context.Background(), snap)
	_, ok := UseUser(restored)
	require.False(t, ok)
}

func TestSave_IgnoresUnknownEntries(t *testing.T) {
	t.Parallel()

	snap := Save(WithUser(context.Background(), "u"), []string{"user", "request-id"})
	require.Equal(t, Snapshot{"user": "u"}, snap)
}
