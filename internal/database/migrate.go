package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/leoomartinelli/painel-financeiro-martinelli/internal/config"
	"github.com/leoomartinelli/painel-financeiro-martinelli/internal/logger"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationsFS embed.FS

// MigrateUp applies every pending migration.
func MigrateUp(cfg config.Database) error {
	logger.Get().Info("Running database migrations...")
	err := withMigrator(cfg, func(m *migrate.Migrate) error {
		return m.Up()
	})
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	logger.Get().Info("Database migrations completed successfully")
	return nil
}

// MigrateDown rolls back the given number of migrations.
func MigrateDown(cfg config.Database, steps int) error {
	if steps < 1 {
		return fmt.Errorf("steps must be at least 1, got %d", steps)
	}
	return withMigrator(cfg, func(m *migrate.Migrate) error {
		return m.Steps(-steps)
	})
}

// MigrationVersion reports the current schema version and whether it is dirty.
func MigrationVersion(cfg config.Database) (version uint, dirty bool, err error) {
	err = withMigrator(cfg, func(m *migrate.Migrate) error {
		var verr error
		version, dirty, verr = m.Version()
		if errors.Is(verr, migrate.ErrNilVersion) {
			return nil
		}
		return verr
	})
	return version, dirty, err
}

func withMigrator(cfg config.Database, fn func(*migrate.Migrate) error) error {
	m, closeFn, err := newMigrator(cfg)
	if err != nil {
		return err
	}
	defer closeFn()

	if err := fn(m); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

func newMigrator(cfg config.Database) (*migrate.Migrate, func(), error) {
	src, err := iofs.New(migrationsFS, "migrations/"+cfg.Driver)
	if err != nil {
		return nil, nil, fmt.Errorf("create iofs source: %w", err)
	}

	closeMigrate := func(m *migrate.Migrate) {
		srcErr, dbErr := m.Close()
		if srcErr != nil {
			logger.Get().Warnf("migrate source close error: %v", srcErr)
		}
		if dbErr != nil {
			logger.Get().Warnf("migrate database close error: %v", dbErr)
		}
	}

	switch cfg.Driver {
	case config.DriverPostgres:
		m, err := migrate.NewWithSourceInstance("iofs", src, cfg.MigrateURL())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create migrate instance: %w", err)
		}
		return m, func() { closeMigrate(m) }, nil

	case config.DriverSQLite:
		// Separate connection so the migrator never shares the gorm pool.
		sqlDB, err := sql.Open("sqlite", cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open migration database: %w", err)
		}
		driver, err := sqlite.WithInstance(sqlDB, &sqlite.Config{})
		if err != nil {
			_ = sqlDB.Close()
			return nil, nil, fmt.Errorf("create sqlite driver: %w", err)
		}
		m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
		if err != nil {
			_ = sqlDB.Close()
			return nil, nil, fmt.Errorf("failed to create migrate instance: %w", err)
		}
		return m, func() { closeMigrate(m) }, nil
	}

	return nil, nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
}
