package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v3"

	"blogyard/config"
	"blogyard/domain"
	"blogyard/store"
)

var migrateCmd = &cli.Command{
	Name:  "migrate",
	Usage: "Manage the database schema",
	Commands: []*cli.Command{
		{
			Name:  "up",
			Usage: "Apply all pending migrations",
			Action: func(ctx context.Context, _ *cli.Command) error {
				return withMigrator(ctx, func(m *store.Migrator) error { return m.Up(ctx) })
			},
		},
		{
			Name:  "down",
			Usage: "Roll back the last migration",
			Action: func(ctx context.Context, _ *cli.Command) error {
				return withMigrator(ctx, func(m *store.Migrator) error { return m.Down(ctx) })
			},
		},
	},
}

func withMigrator(ctx context.Context, fn func(*store.Migrator) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	s, err := store.Open(cfg.DBURL)
	if err != nil {
		return err
	}
	defer s.Close()

	m, err := store.NewMigrator(s.DB, slog.Default())
	if err != nil {
		return err
	}
	return fn(m)
}

var groupCmd = &cli.Command{
	Name:  "group",
	Usage: "Administer post groups",
	Commands: []*cli.Command{
		{
			Name:  "create",
			Usage: "Create a group",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "title", Required: true},
				&cli.StringFlag{Name: "slug", Required: true},
				&cli.StringFlag{Name: "description"},
			},
			Action: func(ctx context.Context, c *cli.Command) error {
				g := domain.Group{
					Title:       c.String("title"),
					Slug:        c.String("slug"),
					Description: c.String("description"),
				}
				if err := g.Validate(); err != nil {
					return err
				}
				return withStore(ctx, func(s *store.Store) error {
					created, err := s.InsertGroup(ctx, g)
					if err != nil {
						return err
					}
					slog.Info("Group created", "id", created.ID, "slug", created.Slug)
					return nil
				})
			},
		},
		{
			Name:  "delete",
			Usage: "Delete a group, its posts stay without a group",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "slug", Required: true},
			},
			Action: func(ctx context.Context, c *cli.Command) error {
				return withStore(ctx, func(s *store.Store) error {
					if err := s.DeleteGroup(ctx, c.String("slug")); err != nil {
						return err
					}
					slog.Info("Group deleted", "slug", c.String("slug"))
					return nil
				})
			},
		},
		{
			Name:  "list",
			Usage: "List groups",
			Action: func(ctx context.Context, c *cli.Command) error {
				return withStore(ctx, func(s *store.Store) error {
					groups, err := s.ListGroups(ctx)
					if err != nil {
						return err
					}
					for _, g := range groups {
						fmt.Fprintf(c.Root().Writer, "%d\t%s\t%s\n", g.ID, g.Slug, g)
					}
					return nil
				})
			},
		},
	},
}

func withStore(ctx context.Context, fn func(*store.Store) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	s, err := openStore(ctx, cfg, slog.Default())
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(s)
}
