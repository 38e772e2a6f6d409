package database

import (
	"database/sql"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jrsteele09/go-oauth2-core/migrations"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Migrate applies every pending embedded migration for driver on db.
func Migrate(db *sql.DB, driver string) error {
	var (
		target migratedb.Driver
		dir    string
		err    error
	)

	switch driver {
	case DriverPostgres:
		dir = migrations.PostgresDir
		target, err = postgres.WithInstance(db, &postgres.Config{})
	case DriverMySQL:
		dir = migrations.MySQLDir
		target, err = mysql.WithInstance(db, &mysql.Config{})
	default:
		return errors.Errorf("[database.Migrate] unsupported driver %q", driver)
	}
	if err != nil {
		return errors.Wrapf(err, "[database.Migrate] %s driver", driver)
	}

	source, err := iofs.New(migrations.FS, dir)
	if err != nil {
		return errors.Wrap(err, "[database.Migrate] open embedded migrations")
	}

	m, err := migrate.NewWithInstance("iofs", source, driver, target)
	if err != nil {
		return errors.Wrap(err, "[database.Migrate] create migrate instance")
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return errors.Wrap(err, "[database.Migrate] run migrations")
	}

	version, dirty, _ := m.Version()
	log.Info().Str("driver", driver).Uint("version", version).Bool("dirty", dirty).Msg("migrations applied")
	return nil
}
