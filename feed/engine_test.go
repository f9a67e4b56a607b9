package feed_test

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"blogyard/feed"
	"blogyard/follow"
	"blogyard/store"
	"blogyard/store/storetest"
)

func newEngine(t *testing.T) (*feed.Engine, *follow.Graph, *store.Store) {
	t.Helper()

	s := storetest.New(t)
	g := follow.NewGraph(s, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return feed.NewEngine(s, g, 10), g, s
}

func requireNewestFirst(t *testing.T, page feed.Page) {
	t.Helper()

	for i := 1; i < len(page.Posts); i++ {
		prev, cur := page.Posts[i-1], page.Posts[i]
		require.False(t, cur.CreatedAt.After(prev.CreatedAt))
		if cur.CreatedAt.Equal(prev.CreatedAt) {
			require.Less(t, cur.ID, prev.ID)
		}
	}
}

func TestEngine_GroupPagination(t *testing.T) {
	t.Parallel()

	e, _, s := newEngine(t)
	author := storetest.User(t, s, "TestArt")
	group := storetest.Group(t, s, "test-slug_1")
	other := storetest.Group(t, s, "test-slug_2")
	storetest.Posts(t, s, author, &group, 13)
	storetest.Posts(t, s, author, &other, 3)

	page1, err := e.Page(t.Context(), feed.ByGroup(group.ID), 1)
	require.NoError(t, err)
	require.Len(t, page1.Posts, 10)
	require.Equal(t, 13, page1.Total)
	require.True(t, page1.HasNext())
	requireNewestFirst(t, page1)

	page2, err := e.Page(t.Context(), feed.ByGroup(group.ID), 2)
	require.NoError(t, err)
	require.Len(t, page2.Posts, 3)
	require.False(t, page2.HasNext())
	require.True(t, page2.HasPrevious())

	for _, p := range append(page1.Posts, page2.Posts...) {
		require.NotNil(t, p.GroupID)
		require.Equal(t, group.ID, *p.GroupID)
	}

	// A fourteenth post spills one more onto the second page.
	storetest.Posts(t, s, author, &group, 1)

	page1, err = e.Page(t.Context(), feed.ByGroup(group.ID), 1)
	require.NoError(t, err)
	require.Len(t, page1.Posts, 10)

	page2, err = e.Page(t.Context(), feed.ByGroup(group.ID), 2)
	require.NoError(t, err)
	require.Len(t, page2.Posts, 4)
}

func TestEngine_PastTheLastPage(t *testing.T) {
	t.Parallel()

	e, _, s := newEngine(t)
	author := storetest.User(t, s, "TestArt")
	storetest.Posts(t, s, author, nil, 3)

	page, err := e.Page(t.Context(), feed.All(), 7)
	require.NoError(t, err)
	require.Empty(t, page.Posts)
	require.Equal(t, 7, page.Number)
	require.Equal(t, 1, page.NumPages)
	require.False(t, page.HasNext())
}

func TestEngine_All(t *testing.T) {
	t.Parallel()

	e, _, s := newEngine(t)
	a := storetest.User(t, s, "a")
	b := storetest.User(t, s, "b")
	g := storetest.Group(t, s, "g")
	storetest.Posts(t, s, a, &g, 2)
	last := storetest.Posts(t, s, b, nil, 1)[0]

	page, err := e.Page(t.Context(), feed.All(), 1)
	require.NoError(t, err)
	require.Len(t, page.Posts, 3)
	require.Equal(t, last.ID, page.Posts[0].ID)
	requireNewestFirst(t, page)
}

func TestEngine_ByAuthor(t *testing.T) {
	t.Parallel()

	e, _, s := newEngine(t)
	a := storetest.User(t, s, "a")
	b := storetest.User(t, s, "b")
	storetest.Posts(t, s, a, nil, 12)
	storetest.Posts(t, s, b, nil, 4)

	page, err := e.Page(t.Context(), feed.ByAuthor(a.ID), 2)
	require.NoError(t, err)
	require.Len(t, page.Posts, 2)
	for _, p := range page.Posts {
		require.Equal(t, a.ID, p.AuthorID)
	}
}

func TestEngine_ByFollower(t *testing.T) {
	t.Parallel()

	e, g, s := newEngine(t)
	reader := storetest.User(t, s, "reader")
	followed := storetest.User(t, s, "followed")
	stranger := storetest.User(t, s, "stranger")
	storetest.Posts(t, s, followed, nil, 2)
	storetest.Posts(t, s, stranger, nil, 5)

	t.Run("empty follow set", func(t *testing.T) {
		page, err := e.Page(t.Context(), feed.ByFollower(reader.ID), 1)
		require.NoError(t, err)
		require.Empty(t, page.Posts)
		require.Zero(t, page.Total)
	})

	t.Run("followed authors only", func(t *testing.T) {
		_, err := g.Follow(t.Context(), reader.ID, followed.ID)
		require.NoError(t, err)

		fresh := storetest.Posts(t, s, followed, nil, 1)[0]

		page, err := e.Page(t.Context(), feed.ByFollower(reader.ID), 1)
		require.NoError(t, err)
		require.Len(t, page.Posts, 3)
		require.Equal(t, fresh.ID, page.Posts[0].ID)
		for _, p := range page.Posts {
			require.Equal(t, followed.ID, p.AuthorID)
		}
	})
}

func TestParsePage(t *testing.T) {
	t.Parallel()

	require.Equal(t, 1, feed.ParsePage(""))
	require.Equal(t, 1, feed.ParsePage("abc"))
	require.Equal(t, 1, feed.ParsePage("-2"))
	require.Equal(t, 3, feed.ParsePage("3"))
}

func TestEngine_ByFollowerLargeFollowSet(t *testing.T) {
	t.Parallel()

	e, _, s := newEngine(t)
	reader := storetest.User(t, s, "reader")

	// More followed authors than SQLite accepts bound parameters.
	const authors = 33000
	_, err := s.DB.ExecContext(t.Context(), `
WITH RECURSIVE seq(n) AS (SELECT 1 UNION ALL SELECT n + 1 FROM seq WHERE n < ?)
INSERT INTO users (username, password_hash, created_at)
SELECT 'author' || n, '', 0 FROM seq`, authors)
	require.NoError(t, err)
	_, err = s.DB.ExecContext(t.Context(), `
INSERT INTO follows (user_id, author_id, created_at)
SELECT ?, id, 0 FROM users WHERE id <> ?`, reader.ID, reader.ID)
	require.NoError(t, err)

	followed, err := s.UserByUsername(t.Context(), "author33000")
	require.NoError(t, err)
	storetest.Posts(t, s, followed, nil, 12)
	storetest.Posts(t, s, reader, nil, 2)

	page, err := e.Page(t.Context(), feed.ByFollower(reader.ID), 2)
	require.NoError(t, err)
	require.Equal(t, 12, page.Total)
	require.Len(t, page.Posts, 2)
	for _, p := range page.Posts {
		require.Equal(t, followed.ID, p.AuthorID)
	}
}
