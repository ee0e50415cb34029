package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrations embed.FS

// Migrate brings the schema behind db up to date. It runs on the pool the
// stores use, so an in-memory SQLite database keeps its schema. db stays open.
func Migrate(ctx context.Context, db *sql.DB, driver string) error {
	src, err := iofs.New(migrations, "migrations/"+driver)
	if err != nil {
		return fmt.Errorf("load %s migrations: %w", driver, err)
	}
	defer src.Close()

	var target migratedb.Driver
	switch driver {
	case "postgres":
		conn, connErr := db.Conn(ctx)
		if connErr != nil {
			return fmt.Errorf("prepare postgres migration: %w", connErr)
		}
		pg, pgErr := postgres.WithConnection(ctx, conn, &postgres.Config{})
		if pgErr != nil {
			_ = conn.Close()
			return fmt.Errorf("prepare postgres migration: %w", pgErr)
		}
		// closes the borrowed connection only
		defer pg.Close()
		target = pg
	case "sqlite":
		// the sqlite driver's Close would close db, so it is never called
		target, err = migratesqlite.WithInstance(db, &migratesqlite.Config{})
		if err != nil {
			return fmt.Errorf("prepare sqlite migration: %w", err)
		}
	default:
		return fmt.Errorf("unsupported sql driver %q", driver)
	}

	m, err := migrate.NewWithInstance("iofs", src, driver, target)
	if err != nil {
		return fmt.Errorf("prepare %s migration: %w", driver, err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply %s migrations: %w", driver, err)
	}
	return nil
}
