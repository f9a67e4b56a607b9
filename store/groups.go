package store

import (
	"context"
	"database/sql"
	"fmt"

	"blogyard/domain"
)

const groupColumns = `id, title, slug, description`

func (s *Store) InsertGroup(ctx context.Context, g domain.Group) (domain.Group, error) {
	res, err := s.DB.ExecContext(ctx,
		`INSERT INTO post_groups (title, slug, description) VALUES (?, ?, ?)`,
		g.Title, g.Slug, g.Description,
	)
	if isUniqueErr(err, "post_groups.slug") {
		return domain.Group{}, &domain.ConflictError{Reason: fmt.Sprintf("group slug %q already taken", g.Slug)}
	}
	if err != nil {
		return domain.Group{}, fmt.Errorf("insert group: %w", err)
	}
	g.ID, err = res.LastInsertId()
	return g, err
}

func (s *Store) UpdateGroup(ctx context.Context, g domain.Group) error {
	res, err := s.DB.ExecContext(ctx,
		`UPDATE post_groups SET title = ?, slug = ?, description = ? WHERE id = ?`,
		g.Title, g.Slug, g.Description, g.ID,
	)
	if isUniqueErr(err, "post_groups.slug") {
		return &domain.ConflictError{Reason: fmt.Sprintf("group slug %q already taken", g.Slug)}
	}
	if err != nil {
		return fmt.Errorf("update group: %w", err)
	}
	return requireAffected(res, "group", g.ID)
}

// DeleteGroup removes the group. Its posts stay, with group_id set to NULL.
func (s *Store) DeleteGroup(ctx context.Context, slug string) error {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM post_groups WHERE slug = ?`, slug)
	if err != nil {
		return fmt.Errorf("delete group: %w", err)
	}
	return requireAffected(res, "group", slug)
}

func (s *Store) GroupBySlug(ctx context.Context, slug string) (domain.Group, error) {
	var g domain.Group
	err := s.DB.QueryRowContext(ctx,
		`SELECT `+groupColumns+` FROM post_groups WHERE slug = ?`, slug,
	).Scan(&g.ID, &g.Title, &g.Slug, &g.Description)
	if isNoRows(err) {
		return domain.Group{}, domain.NewNotFoundError("group", slug)
	}
	return g, err
}

func (s *Store) GroupByID(ctx context.Context, id int64) (domain.Group, error) {
	var g domain.Group
	err := s.DB.QueryRowContext(ctx,
		`SELECT `+groupColumns+` FROM post_groups WHERE id = ?`, id,
	).Scan(&g.ID, &g.Title, &g.Slug, &g.Description)
	if isNoRows(err) {
		return domain.Group{}, domain.NewNotFoundError("group", id)
	}
	return g, err
}

func (s *Store) ListGroups(ctx context.Context) ([]domain.Group, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT `+groupColumns+` FROM post_groups ORDER BY title`)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	defer rows.Close()

	groups := []domain.Group{}
	for rows.Next() {
		var g domain.Group
		if err := rows.Scan(&g.ID, &g.Title, &g.Slug, &g.Description); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

func requireAffected(res sql.Result, entity string, key any) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.NewNotFoundError(entity, key)
	}
	return nil
}
