package store

import (
	"context"
	"database/sql"
	"fmt"

	"blogyard/domain"
)

func (s *Store) InsertUser(ctx context.Context, username, passwordHash string) (domain.User, error) {
	u := domain.User{Username: username, PasswordHash: passwordHash}
	created := s.now()

	res, err := s.DB.ExecContext(ctx,
		`INSERT INTO users (username, password_hash, created_at) VALUES (?, ?, ?)`,
		username, passwordHash, created,
	)
	if isUniqueErr(err, "users.username") {
		return domain.User{}, &domain.ConflictError{Reason: "username already taken"}
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("insert user: %w", err)
	}

	u.ID, err = res.LastInsertId()
	if err != nil {
		return domain.User{}, err
	}
	u.CreatedAt = fromNanos(created)
	return u, nil
}

func (s *Store) UserByUsername(ctx context.Context, username string) (domain.User, error) {
	row := s.DB.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE username = ?`, username)
	u, err := scanUser(row)
	if isNoRows(err) {
		return domain.User{}, domain.NewNotFoundError("user", username)
	}
	return u, err
}

func (s *Store) UserByID(ctx context.Context, id int64) (domain.User, error) {
	row := s.DB.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if isNoRows(err) {
		return domain.User{}, domain.NewNotFoundError("user", id)
	}
	return u, err
}

func scanUser(row *sql.Row) (domain.User, error) {
	var (
		u       domain.User
		created int64
	)
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &created); err != nil {
		return domain.User{}, err
	}
	u.CreatedAt = fromNanos(created)
	return u, nil
}
