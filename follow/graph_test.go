package follow_test

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"blogyard/domain"
	"blogyard/follow"
	"blogyard/store"
	"blogyard/store/storetest"
)

func newGraph(t *testing.T) (*follow.Graph, *store.Store) {
	t.Helper()

	s := storetest.New(t)
	return follow.NewGraph(s, slog.New(slog.NewTextHandler(io.Discard, nil))), s
}

func TestGraph_FollowUnfollow(t *testing.T) {
	t.Parallel()

	g, s := newGraph(t)
	user := storetest.User(t, s, "TestArt")
	author := storetest.User(t, s, "TestArtov")

	anyone, err := g.FollowsAnyone(t.Context(), user.ID)
	require.NoError(t, err)
	require.False(t, anyone)

	created, err := g.Follow(t.Context(), user.ID, author.ID)
	require.NoError(t, err)
	require.True(t, created)

	anyone, err = g.FollowsAnyone(t.Context(), user.ID)
	require.NoError(t, err)
	require.True(t, anyone)

	authors, err := g.FollowedAuthors(t.Context(), user.ID)
	require.NoError(t, err)
	require.Contains(t, authors, author.ID)

	following, err := g.IsFollowing(t.Context(), user.ID, author.ID)
	require.NoError(t, err)
	require.True(t, following)

	require.NoError(t, g.Unfollow(t.Context(), user.ID, author.ID))

	authors, err = g.FollowedAuthors(t.Context(), user.ID)
	require.NoError(t, err)
	require.NotContains(t, authors, author.ID)
}

func TestGraph_SelfFollow(t *testing.T) {
	t.Parallel()

	g, s := newGraph(t)
	user := storetest.User(t, s, "TestArt")

	_, err := g.Follow(t.Context(), user.ID, user.ID)
	require.ErrorIs(t, err, domain.ErrConflict)

	n, err := s.CountFollows(t.Context())
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestGraph_RepeatFollowIsNoop(t *testing.T) {
	t.Parallel()

	g, s := newGraph(t)
	user := storetest.User(t, s, "TestArt")
	author := storetest.User(t, s, "TestArtov")

	_, err := g.Follow(t.Context(), user.ID, author.ID)
	require.NoError(t, err)

	created, err := g.Follow(t.Context(), user.ID, author.ID)
	require.NoError(t, err)
	require.False(t, created)

	n, err := s.CountFollows(t.Context())
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestGraph_UnfollowAbsent(t *testing.T) {
	t.Parallel()

	g, s := newGraph(t)
	user := storetest.User(t, s, "TestArt")
	author := storetest.User(t, s, "TestArtov")

	require.NoError(t, g.Unfollow(t.Context(), user.ID, author.ID))
}

func TestGraph_UnknownAuthor(t *testing.T) {
	t.Parallel()

	g, s := newGraph(t)
	user := storetest.User(t, s, "TestArt")

	_, err := g.Follow(t.Context(), user.ID, 4242)
	require.ErrorIs(t, err, domain.ErrNotFound)
}
