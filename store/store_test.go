package store_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"blogyard/domain"
	"blogyard/store"
	"blogyard/store/storetest"
)

func TestStore_Users(t *testing.T) {
	t.Parallel()

	s := storetest.New(t)
	u := storetest.User(t, s, "TestArt")

	t.Run("lookup", func(t *testing.T) {
		byName, err := s.UserByUsername(t.Context(), "TestArt")
		require.NoError(t, err)
		require.Equal(t, u.ID, byName.ID)

		byID, err := s.UserByID(t.Context(), u.ID)
		require.NoError(t, err)
		require.Equal(t, "TestArt", byID.Username)
	})

	t.Run("duplicate username", func(t *testing.T) {
		_, err := s.InsertUser(t.Context(), "TestArt", "other")
		require.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := s.UserByUsername(t.Context(), "nobody")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestStore_ListPostsOrdering(t *testing.T) {
	t.Parallel()

	s := storetest.New(t)
	u := storetest.User(t, s, "author")
	storetest.Posts(t, s, u, nil, 5)

	posts, err := s.ListPosts(t.Context(), store.PostQuery{}, 10, 0)
	require.NoError(t, err)
	require.Len(t, posts, 5)
	for i := 1; i < len(posts); i++ {
		require.True(t, posts[i-1].CreatedAt.After(posts[i].CreatedAt))
	}
	require.Equal(t, "author", posts[0].Author)
}

func TestStore_ListPostsTiesBrokenByID(t *testing.T) {
	t.Parallel()

	s := storetest.New(t)
	s.Now = storetest.Clock(storetest.Epoch, 0)
	u := storetest.User(t, s, "author")
	created := storetest.Posts(t, s, u, nil, 3)

	posts, err := s.ListPosts(t.Context(), store.PostQuery{}, 10, 0)
	require.NoError(t, err)
	require.Equal(t,
		[]int64{created[2].ID, created[1].ID, created[0].ID},
		[]int64{posts[0].ID, posts[1].ID, posts[2].ID},
	)
}

func TestStore_DeleteGroupKeepsPosts(t *testing.T) {
	t.Parallel()

	s := storetest.New(t)
	u := storetest.User(t, s, "author")
	g := storetest.Group(t, s, "test-slug")
	posts := storetest.Posts(t, s, u, &g, 2)

	require.NoError(t, s.DeleteGroup(t.Context(), g.Slug))

	for _, p := range posts {
		got, err := s.PostByID(t.Context(), p.ID)
		require.NoError(t, err)
		require.Nil(t, got.GroupID)
		require.Nil(t, got.Group)
	}

	require.ErrorIs(t, s.DeleteGroup(t.Context(), g.Slug), domain.ErrNotFound)
}

func TestStore_Groups(t *testing.T) {
	t.Parallel()

	s := storetest.New(t)
	g := storetest.Group(t, s, "cats")

	_, err := s.InsertGroup(t.Context(), domain.Group{Title: "Again", Slug: "cats"})
	require.ErrorIs(t, err, domain.ErrConflict)

	g.Title = "Cats and kittens"
	require.NoError(t, s.UpdateGroup(t.Context(), g))

	got, err := s.GroupBySlug(t.Context(), "cats")
	require.NoError(t, err)
	require.Equal(t, "Cats and kittens", got.Title)

	groups, err := s.ListGroups(t.Context())
	require.NoError(t, err)
	require.Len(t, groups, 1)

	_, err = s.GroupByID(t.Context(), 999)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_FollowUniqueness(t *testing.T) {
	t.Parallel()

	s := storetest.New(t)
	a := storetest.User(t, s, "a")
	b := storetest.User(t, s, "b")

	created, err := s.InsertFollow(t.Context(), a.ID, b.ID)
	require.NoError(t, err)
	require.True(t, created)

	created, err = s.InsertFollow(t.Context(), a.ID, b.ID)
	require.NoError(t, err)
	require.False(t, created)

	n, err := s.CountFollows(t.Context())
	require.NoError(t, err)
	require.Equal(t, 1, n)

	_, err = s.InsertFollow(t.Context(), a.ID, a.ID)
	require.Error(t, err)

	exists, err := s.FollowExists(t.Context(), a.ID, b.ID)
	require.NoError(t, err)
	require.True(t, exists)

	require.NoError(t, s.DeleteFollow(t.Context(), a.ID, b.ID))
	require.NoError(t, s.DeleteFollow(t.Context(), a.ID, b.ID))

	ids, err := s.FollowedAuthorIDs(t.Context(), a.ID)
	require.NoError(t, err)
	require.Empty(t, ids)
}

func TestStore_Comments(t *testing.T) {
	t.Parallel()

	s := storetest.New(t)
	u := storetest.User(t, s, "author")
	p := storetest.Posts(t, s, u, nil, 1)[0]

	for _, text := range []string{"first", "second"} {
		_, err := s.InsertComment(t.Context(), domain.Comment{PostID: p.ID, AuthorID: u.ID, Text: text})
		require.NoError(t, err)
	}

	comments, err := s.CommentsByPost(t.Context(), p.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	require.Equal(t, "first", comments[0].Text)
	require.Equal(t, "author", comments[0].Author)

	got, err := s.PostByID(t.Context(), p.ID)
	require.NoError(t, err)
	require.Equal(t, 2, got.CommentsCount)
}
