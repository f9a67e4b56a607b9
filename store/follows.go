package store

import (
	"context"
	"fmt"
)

// InsertFollow adds the (user, author) edge. It reports false when the edge
// already existed; the unique pair constraint keeps a single row.
func (s *Store) InsertFollow(ctx context.Context, userID, authorID int64) (bool, error) {
	res, err := s.DB.ExecContext(ctx, `
INSERT INTO follows (user_id, author_id, created_at) VALUES (?, ?, ?)
ON CONFLICT (user_id, author_id) DO NOTHING
`, userID, authorID, s.now())
	if err != nil {
		return false, fmt.Errorf("insert follow: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Store) DeleteFollow(ctx context.Context, userID, authorID int64) error {
	_, err := s.DB.ExecContext(ctx,
		`DELETE FROM follows WHERE user_id = ? AND author_id = ?`, userID, authorID)
	if err != nil {
		return fmt.Errorf("delete follow: %w", err)
	}
	return nil
}

func (s *Store) FollowExists(ctx context.Context, userID, authorID int64) (bool, error) {
	var exists bool
	err := s.DB.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM follows WHERE user_id = ? AND author_id = ?)`,
		userID, authorID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check follow: %w", err)
	}
	return exists, nil
}

func (s *Store) FollowedAuthorIDs(ctx context.Context, userID int64) ([]int64, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT author_id FROM follows WHERE user_id = ? ORDER BY author_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list follows: %w", err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// HasFollows reports whether userID follows at least one author.
func (s *Store) HasFollows(ctx context.Context, userID int64) (bool, error) {
	var exists bool
	err := s.DB.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM follows WHERE user_id = ?)`, userID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check follows: %w", err)
	}
	return exists, nil
}

func (s *Store) CountFollows(ctx context.Context) (int, error) {
	var n int
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(1) FROM follows`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
