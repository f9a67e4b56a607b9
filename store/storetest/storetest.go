// Package storetest builds migrated SQLite stores for tests.
package storetest

import (
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"blogyard/domain"
	"blogyard/store"
)

// Epoch is the first timestamp handed out by the store clock in tests.
var Epoch = time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)

// New opens a fresh database under t.TempDir, migrates it and installs a
// clock that advances one second per call.
func New(t testing.TB) *store.Store {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "test.db") + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(3000)"
	s, err := store.Open(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	m, err := store.NewMigrator(s.DB, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	require.NoError(t, m.Up(t.Context()))

	s.Now = Clock(Epoch, time.Second)
	return s
}

// Clock returns a time source that starts at start and moves by step on
// every call.
func Clock(start time.Time, step time.Duration) func() time.Time {
	var (
		mu  sync.Mutex
		cur = start
	)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now := cur
		cur = cur.Add(step)
		return now
	}
}

func User(t testing.TB, s *store.Store, username string) domain.User {
	t.Helper()

	u, err := s.InsertUser(t.Context(), username, "hash")
	require.NoError(t, err)
	return u
}

func Group(t testing.TB, s *store.Store, slug string) domain.Group {
	t.Helper()

	g, err := s.InsertGroup(t.Context(), domain.Group{
		Title:       "Group " + slug,
		Slug:        slug,
		Description: "Description of " + slug,
	})
	require.NoError(t, err)
	return g
}

// Posts inserts n posts by author, in group when it is non-nil.
func Posts(t testing.TB, s *store.Store, author domain.User, group *domain.Group, n int) []domain.Post {
	t.Helper()

	posts := make([]domain.Post, 0, n)
	for range n {
		p := domain.Post{Text: "Test post text", AuthorID: author.ID}
		if group != nil {
			p.GroupID = &group.ID
		}
		created, err := s.InsertPost(t.Context(), p)
		require.NoError(t, err)
		posts = append(posts, created)
	}
	return posts
}
