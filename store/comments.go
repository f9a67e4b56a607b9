package store

import (
	"context"
	"fmt"

	"blogyard/domain"
)

func (s *Store) InsertComment(ctx context.Context, c domain.Comment) (domain.Comment, error) {
	created := s.now()
	res, err := s.DB.ExecContext(ctx,
		`INSERT INTO comments (post_id, author_id, text, created_at) VALUES (?, ?, ?, ?)`,
		c.PostID, c.AuthorID, c.Text, created,
	)
	if err != nil {
		return domain.Comment{}, fmt.Errorf("insert comment: %w", err)
	}
	c.ID, err = res.LastInsertId()
	if err != nil {
		return domain.Comment{}, err
	}
	c.CreatedAt = fromNanos(created)
	return c, nil
}

// CommentsByPost returns a post's comments oldest first.
func (s *Store) CommentsByPost(ctx context.Context, postID int64) ([]domain.Comment, error) {
	rows, err := s.DB.QueryContext(ctx, `
SELECT c.id, c.post_id, c.author_id, c.text, c.created_at, u.username
  FROM comments c
  JOIN users u ON u.id = c.author_id
 WHERE c.post_id = ?
 ORDER BY c.created_at ASC, c.id ASC
`, postID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	comments := []domain.Comment{}
	for rows.Next() {
		var (
			c       domain.Comment
			created int64
		)
		if err := rows.Scan(&c.ID, &c.PostID, &c.AuthorID, &c.Text, &created, &c.Author); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		c.CreatedAt = fromNanos(created)
		comments = append(comments, c)
	}
	return comments, rows.Err()
}
