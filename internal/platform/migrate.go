// Package platform owns the daemon's database schema.
package platform

import (
	"context"
	"database/sql"
	"embed"
	"errors"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Source returns the embedded migration source.
func Source() (source.Driver, error) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, eris.Wrap(err, "create migration source")
	}
	return src, nil
}

// OpenDB opens and pings a database/sql handle through lib/pq. Migrations
// run over this handle; the repository uses pgx.
func OpenDB(ctx context.Context, databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, eris.Wrap(err, "open database")
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, eris.Wrap(err, "ping database")
	}
	return db, nil
}

// AutoMigrate runs all pending database migrations.
func AutoMigrate(db *sql.DB) error {
	src, err := Source()
	if err != nil {
		return err
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return eris.Wrap(err, "create migration driver")
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return eris.Wrap(err, "create migrator")
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return eris.Wrap(err, "run migrations")
	}

	version, dirty, err := m.Version()
	if err == nil {
		zap.L().Info("database migrated", zap.Uint("version", version), zap.Bool("dirty", dirty))
	}
	return nil
}
