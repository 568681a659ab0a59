// Package pg connects to Postgres through a pgx pool and applies goose
// migrations embedded in the binary.
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil { ... }
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, db.Migrations(), log); err != nil { ... }
package pg
