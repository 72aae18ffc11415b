package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

// migrationsDir is the directory inside the embedded filesystem.
const migrationsDir = "migrations"

// Migrations returns the embedded migration files.
func Migrations() fs.FS {
	return migrations
}

// Migrate applies every pending migration to the database at connString.
func Migrate(ctx context.Context, connString string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	goose.SetBaseFS(migrations)
	defer goose.SetBaseFS(nil)

	db, err := goose.OpenDBWithDriver("postgres", connString)
	if err != nil {
		return fmt.Errorf("open db for migration: %w", err)
	}
	defer db.Close()

	before, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return fmt.Errorf("read migration version: %w", err)
	}

	if err := goose.UpContext(ctx, db, migrationsDir); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	after, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return fmt.Errorf("read migration version: %w", err)
	}

	logger.Info("database migrated", "from_version", before, "to_version", after)
	return nil
}
