package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"blogyard/domain"
)

// PostQuery narrows a post listing. Zero values mean "no restriction"; an
// empty AuthorIDs does not match nothing, callers short-circuit that case.
// FollowerID keeps posts by the authors that user follows, resolved inside
// the query so the follow set size never reaches the bound parameters.
type PostQuery struct {
	GroupID    *int64
	AuthorIDs  []int64
	FollowerID *int64
}

const postSelect = `
SELECT
  p.id, p.text, p.author_id, p.group_id, p.image, p.created_at,
  u.username,
  g.title, g.slug, g.description,
  (SELECT COUNT(1) FROM comments c WHERE c.post_id = p.id) AS comments_count
FROM posts p
JOIN users u ON u.id = p.author_id
LEFT JOIN post_groups g ON g.id = p.group_id
`

func (q PostQuery) where() (string, []any) {
	var (
		sb   strings.Builder
		args []any
	)
	if q.GroupID == nil && len(q.AuthorIDs) == 0 && q.FollowerID == nil {
		return "", nil
	}

	sb.WriteString("WHERE 1=1 ")
	if q.GroupID != nil {
		sb.WriteString("AND p.group_id = ? ")
		args = append(args, *q.GroupID)
	}
	if len(q.AuthorIDs) > 0 {
		sb.WriteString("AND p.author_id IN (")
		for i, id := range q.AuthorIDs {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString("?")
			args = append(args, id)
		}
		sb.WriteString(") ")
	}
	if q.FollowerID != nil {
		sb.WriteString("AND p.author_id IN (SELECT f.author_id FROM follows f WHERE f.user_id = ?) ")
		args = append(args, *q.FollowerID)
	}
	return sb.String(), args
}

func (s *Store) CountPosts(ctx context.Context, q PostQuery) (int, error) {
	where, args := q.where()
	var n int
	err := s.DB.QueryRowContext(ctx, `SELECT COUNT(1) FROM posts p `+where, args...).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return n, nil
}

// ListPosts returns posts newest first, ties broken by id descending.
func (s *Store) ListPosts(ctx context.Context, q PostQuery, limit, offset int) ([]domain.Post, error) {
	where, args := q.where()
	args = append(args, limit, offset)

	rows, err := s.DB.QueryContext(ctx,
		postSelect+where+`ORDER BY p.created_at DESC, p.id DESC LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	posts := []domain.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

func (s *Store) PostByID(ctx context.Context, id int64) (domain.Post, error) {
	row := s.DB.QueryRowContext(ctx, postSelect+`WHERE p.id = ?`, id)
	p, err := scanPost(row)
	if isNoRows(err) {
		return domain.Post{}, domain.NewNotFoundError("post", id)
	}
	if err != nil {
		return domain.Post{}, fmt.Errorf("get post: %w", err)
	}
	return p, nil
}

func (s *Store) InsertPost(ctx context.Context, p domain.Post) (domain.Post, error) {
	created := s.now()
	res, err := s.DB.ExecContext(ctx,
		`INSERT INTO posts (text, author_id, group_id, image, created_at) VALUES (?, ?, ?, ?, ?)`,
		p.Text, p.AuthorID, nullableID(p.GroupID), p.Image, created,
	)
	if err != nil {
		return domain.Post{}, fmt.Errorf("insert post: %w", err)
	}
	p.ID, err = res.LastInsertId()
	if err != nil {
		return domain.Post{}, err
	}
	p.CreatedAt = fromNanos(created)
	return p, nil
}

// UpdatePost rewrites the editable columns. Author and creation time never
// change.
func (s *Store) UpdatePost(ctx context.Context, p domain.Post) error {
	res, err := s.DB.ExecContext(ctx,
		`UPDATE posts SET text = ?, group_id = ?, image = ? WHERE id = ?`,
		p.Text, nullableID(p.GroupID), p.Image, p.ID,
	)
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	return requireAffected(res, "post", p.ID)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPost(row scanner) (domain.Post, error) {
	var (
		p       domain.Post
		groupID sql.NullInt64
		created int64
		title   sql.NullString
		slug    sql.NullString
		desc    sql.NullString
	)
	err := row.Scan(
		&p.ID, &p.Text, &p.AuthorID, &groupID, &p.Image, &created,
		&p.Author,
		&title, &slug, &desc,
		&p.CommentsCount,
	)
	if err != nil {
		return domain.Post{}, err
	}
	p.CreatedAt = fromNanos(created)
	if groupID.Valid {
		id := groupID.Int64
		p.GroupID = &id
		p.Group = &domain.Group{ID: id, Title: title.String, Slug: slug.String, Description: desc.String}
	}
	return p, nil
}

func nullableID(id *int64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *id, Valid: true}
}
