package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/cenkalti/backoff/v5"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// Config holds database connection settings.
type Config interface {
	GetDBDriver() string
	GetDBConnectionString() string
	GetDBMaxOpenConnections() int
	GetDBMaxIdleConnections() int
	GetDBConnMaxLifetime() time.Duration
	GetDBConnectRetries() int
}

// Connect opens the pool and pings it, retrying with exponential backoff
// until the database answers or the retries run out.
func Connect(ctx context.Context, cfg Config) (*sql.DB, error) {
	db, err := sql.Open(cfg.GetDBDriver(), cfg.GetDBConnectionString())
	if err != nil {
		return nil, errors.Wrap(err, "[database.Connect] open")
	}

	db.SetMaxOpenConns(cfg.GetDBMaxOpenConnections())
	db.SetMaxIdleConns(cfg.GetDBMaxIdleConnections())
	db.SetConnMaxLifetime(cfg.GetDBConnMaxLifetime())

	if err := Ping(ctx, db, cfg.GetDBConnectRetries()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Ping checks the connection, retrying up to retries extra times.
func Ping(ctx context.Context, db *sql.DB, retries int) error {
	if retries < 0 {
		retries = 0
	}

	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = 200 * time.Millisecond

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		return struct{}{}, db.PingContext(ctx)
	},
		backoff.WithBackOff(expBackoff),
		backoff.WithMaxTries(uint(retries+1)), // #nosec G115 -- retries is non-negative
		backoff.WithNotify(func(err error, next time.Duration) {
			log.Warn().Err(err).Dur("retry_in", next).Msg("database not reachable")
		}),
	)
	if err != nil {
		return errors.Wrap(err, "[database.Ping] database unreachable")
	}
	return nil
}
