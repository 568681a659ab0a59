package pg

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// Migrate applies every pending goose migration found at the root of fsys.
// goose speaks database/sql, so the pool is bridged through pgx's stdlib driver.
func Migrate(ctx context.Context, pool *pgxpool.Pool, fsys fs.FS, log *slog.Logger) error {
	if log == nil {
		log = slog.Default()
	}

	db := stdlib.OpenDBFromPool(pool)
	defer func() {
		if err := db.Close(); err != nil {
			log.ErrorContext(ctx, "close migration connection", slog.String("error", err.Error()))
		}
	}()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, fsys)
	if err != nil {
		return errors.Join(ErrFailedToApplyMigrations, err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return errors.Join(ErrFailedToApplyMigrations, err)
	}

	for _, res := range results {
		log.InfoContext(ctx, "migration applied",
			slog.Int64("version", res.Source.Version),
			slog.String("file", res.Source.Path),
			slog.Duration("took", res.Duration),
		)
	}
	return nil
}
