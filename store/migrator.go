package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

type Migrator struct {
	Logger *slog.Logger

	migrator *migrate.Migrate
}

func NewMigrator(db *sql.DB, logger *slog.Logger) (*Migrator, error) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, err
	}

	driver, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		return nil, err
	}

	m, err := migrate.NewWithInstance("iofs", src, DriverName, driver)
	if err != nil {
		return nil, err
	}

	return &Migrator{
		Logger:   logger.With("component", "migrator"),
		migrator: m,
	}, nil
}

// Up applies every pending migration.
func (m *Migrator) Up(ctx context.Context) error {
	return m.run(ctx, "up", m.migrator.Up)
}

// Down rolls back the most recent migration.
func (m *Migrator) Down(ctx context.Context) error {
	return m.run(ctx, "down", func() error { return m.migrator.Steps(-1) })
}

func (m *Migrator) run(ctx context.Context, direction string, step func() error) error {
	if err := m.Fix(ctx); err != nil {
		return err
	}

	from, err := m.current()
	if err != nil {
		return err
	}

	err = step()
	if errors.Is(err, migrate.ErrNoChange) {
		m.Logger.Debug("Schema unchanged", "direction", direction, "version", from)
		return nil
	}
	if err != nil {
		return fmt.Errorf("migrate %s from version %d: %w", direction, from, err)
	}

	to, err := m.current()
	if err != nil {
		return err
	}
	m.Logger.Info("Schema migrated", "direction", direction, "from", from, "to", to)
	return nil
}

// Fix clears the dirty flag an interrupted migration leaves behind by
// forcing the recorded version.
func (m *Migrator) Fix(_ context.Context) error {
	version, dirty, err := m.migrator.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		return nil
	case err != nil:
		return fmt.Errorf("read schema version: %w", err)
	case !dirty:
		return nil
	}

	m.Logger.Warn("Schema is dirty, forcing recorded version", "version", version)
	return m.migrator.Force(int(version)) // nolint:gosec
}

// current is the applied schema version, 0 for an empty database.
func (m *Migrator) current() (uint, error) {
	v, _, err := m.migrator.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return v, nil
}

func (m *Migrator) Version() (uint, bool, error) {
	return m.migrator.Version()
}
