package subscription

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrymomot/resumekit/pkg/pg"
	billing "github.com/dmitrymomot/resumekit/pkg/subscription"
)

// Querier is the subset of *pgxpool.Pool used by PGStore.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PGStore is a billing.RecordStore backed by the user_subscriptions table.
type PGStore struct {
	db Querier
}

var _ billing.RecordStore = (*PGStore)(nil)

// NewPGStore creates a store over the given pool or transaction.
func NewPGStore(db Querier) *PGStore {
	if db == nil {
		panic("subscription: nil database")
	}
	return &PGStore{db: db}
}

const recordColumns = `user_id, billing_subscription_id, billing_customer_id, price_id,
	current_period_end, cancel_at_period_end, created_at, updated_at`

const getRecordQuery = `SELECT ` + recordColumns + `
FROM user_subscriptions
WHERE user_id = $1`

// The row lock taken by ON CONFLICT serializes concurrent upserts for one user.
const upsertRecordQuery = `INSERT INTO user_subscriptions (
	user_id, billing_subscription_id, billing_customer_id, price_id,
	current_period_end, cancel_at_period_end
) VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (user_id) DO UPDATE SET
	billing_subscription_id = EXCLUDED.billing_subscription_id,
	billing_customer_id = EXCLUDED.billing_customer_id,
	price_id = EXCLUDED.price_id,
	current_period_end = EXCLUDED.current_period_end,
	cancel_at_period_end = EXCLUDED.cancel_at_period_end,
	updated_at = now()
RETURNING ` + recordColumns

const deleteByCustomerQuery = `DELETE FROM user_subscriptions WHERE billing_customer_id = $1`

// Get implements billing.RecordStore.
func (s *PGStore) Get(ctx context.Context, userID string) (*billing.Record, error) {
	if userID == "" {
		return nil, billing.ErrMissingUserID
	}

	rec, err := scanRecord(s.db.QueryRow(ctx, getRecordQuery, userID))
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, billing.ErrRecordNotFound
		}
		return nil, errors.Join(ErrQueryFailed, err)
	}
	return rec, nil
}

// Upsert implements billing.RecordStore.
func (s *PGStore) Upsert(ctx context.Context, rec billing.Record) (*billing.Record, error) {
	if rec.UserID == "" {
		return nil, billing.ErrMissingUserID
	}
	if rec.CustomerID == "" {
		return nil, billing.ErrMissingCustomerID
	}

	out, err := scanRecord(s.db.QueryRow(ctx, upsertRecordQuery,
		rec.UserID,
		rec.SubscriptionID,
		rec.CustomerID,
		rec.PriceID,
		rec.CurrentPeriodEnd.UTC(),
		rec.CancelAtPeriodEnd,
	))
	if err != nil {
		return nil, errors.Join(ErrQueryFailed, err)
	}
	return out, nil
}

// DeleteByCustomerID implements billing.RecordStore.
func (s *PGStore) DeleteByCustomerID(ctx context.Context, customerID string) (int64, error) {
	if customerID == "" {
		return 0, billing.ErrMissingCustomerID
	}

	tag, err := s.db.Exec(ctx, deleteByCustomerQuery, customerID)
	if err != nil {
		return 0, errors.Join(ErrQueryFailed, err)
	}
	return tag.RowsAffected(), nil
}

func scanRecord(row pgx.Row) (*billing.Record, error) {
	var rec billing.Record
	if err := row.Scan(
		&rec.UserID,
		&rec.SubscriptionID,
		&rec.CustomerID,
		&rec.PriceID,
		&rec.CurrentPeriodEnd,
		&rec.CancelAtPeriodEnd,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	); err != nil {
		return nil, err
	}
	rec.CurrentPeriodEnd = rec.CurrentPeriodEnd.UTC()
	return &rec, nil
}
