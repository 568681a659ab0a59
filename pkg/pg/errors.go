package pg

import (
	"errors"

	"github.com/jackc/pgx/v5"
)

var (
	ErrFailedToOpenDBConnection = errors.New("failed to open db connection")
	ErrEmptyConnectionString    = errors.New("empty postgres connection string, set PG_CONN_URL")
	ErrHealthcheckFailed        = errors.New("postgres healthcheck failed")
	ErrFailedToParseDBConfig    = errors.New("failed to parse db config")
	ErrFailedToApplyMigrations  = errors.New("failed to apply migrations")
)

// IsNotFoundError reports whether err is pgx.ErrNoRows.
func IsNotFoundError(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
