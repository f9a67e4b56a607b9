// Package follow maintains the directed "user follows author" edges.
package follow

import (
	"context"
	"log/slog"

	"blogyard/domain"
)

type Store interface {
	UserByID(ctx context.Context, id int64) (domain.User, error)
	InsertFollow(ctx context.Context, userID, authorID int64) (bool, error)
	DeleteFollow(ctx context.Context, userID, authorID int64) error
	FollowExists(ctx context.Context, userID, authorID int64) (bool, error)
	FollowedAuthorIDs(ctx context.Context, userID int64) ([]int64, error)
	HasFollows(ctx context.Context, userID int64) (bool, error)
}

type Graph struct {
	Logger *slog.Logger
	Store  Store
}

func NewGraph(s Store, logger *slog.Logger) *Graph {
	return &Graph{
		Logger: logger.With("component", "follow.Graph"),
		Store:  s,
	}
}

// Follow adds the edge user -> author. Following yourself is a conflict.
// Following an author twice is a no-op reported as created == false.
func (g *Graph) Follow(ctx context.Context, userID, authorID int64) (bool, error) {
	if userID == authorID {
		return false, &domain.ConflictError{Reason: "users cannot follow themselves"}
	}
	if err := g.requireUsers(ctx, userID, authorID); err != nil {
		return false, err
	}

	created, err := g.Store.InsertFollow(ctx, userID, authorID)
	if err != nil {
		return false, err
	}
	if created {
		g.Logger.Debug("Follow created", "user_id", userID, "author_id", authorID)
	}
	return created, nil
}

// Unfollow removes the edge if present.
func (g *Graph) Unfollow(ctx context.Context, userID, authorID int64) error {
	return g.Store.DeleteFollow(ctx, userID, authorID)
}

func (g *Graph) IsFollowing(ctx context.Context, userID, authorID int64) (bool, error) {
	return g.Store.FollowExists(ctx, userID, authorID)
}

// FollowedAuthors lists the ids of the authors userID follows.
func (g *Graph) FollowedAuthors(ctx context.Context, userID int64) ([]int64, error) {
	return g.Store.FollowedAuthorIDs(ctx, userID)
}

func (g *Graph) FollowsAnyone(ctx context.Context, userID int64) (bool, error) {
	return g.Store.HasFollows(ctx, userID)
}

func (g *Graph) requireUsers(ctx context.Context, ids ...int64) error {
	for _, id := range ids {
		if _, err := g.Store.UserByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}
