package db

import (
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
)

// migrationsTable keeps the schema version apart from other apps sharing the database.
const migrationsTable = "fabtrack_schema_migrations"

// RunMigrations applies every pending migration under migrationsPath and returns the
// resulting schema version. A dirty version left by an interrupted run is forced clean first.
func RunMigrations(databaseURL string, migrationsPath string) (uint, error) {
	m, closeDB, err := newMigrator(databaseURL, migrationsPath)
	if err != nil {
		return 0, err
	}
	defer closeDB()

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return 0, fmt.Errorf("failed to get migration version: %w", err)
	}
	if dirty {
		log.Printf("[DB] ⚠️  Database is in a dirty state at version %d, forcing clean state", version)
		if err := m.Force(int(version)); err != nil {
			return 0, fmt.Errorf("failed to force migration: %w", err)
		}
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("migration failed: %w", err)
	}

	after, _, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return 0, fmt.Errorf("failed to read migrated version: %w", err)
	}
	return after, nil
}

func newMigrator(databaseURL, migrationsPath string) (*migrate.Migrate, func(), error) {
	dbConn, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	driver, err := postgres.WithInstance(dbConn, &postgres.Config{MigrationsTable: migrationsTable})
	if err != nil {
		dbConn.Close()
		return nil, nil, fmt.Errorf("failed to create postgres driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+migrationsPath, "postgres", driver)
	if err != nil {
		dbConn.Close()
		return nil, nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return m, func() { dbConn.Close() }, nil
}
