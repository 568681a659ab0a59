package resume

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrymomot/resumekit/pkg/pg"
)

// Querier is the subset of *pgxpool.Pool used by PGRepository.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PGRepository is a Repository backed by the resumes table.
type PGRepository struct {
	db Querier
}

var _ Repository = (*PGRepository)(nil)

func NewPGRepository(db Querier) *PGRepository {
	if db == nil {
		panic("resume: nil database")
	}
	return &PGRepository{db: db}
}

const resumeColumns = `id, user_id, title, content, border_style, accent_color, created_at, updated_at`

func (p *PGRepository) Create(ctx context.Context, r Resume) (*Resume, error) {
	content := r.Content
	if len(content) == 0 {
		content = []byte("{}")
	}
	row := p.db.QueryRow(ctx, `INSERT INTO resumes (id, user_id, title, content, border_style, accent_color)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING `+resumeColumns,
		r.ID, r.UserID, r.Title, content, r.BorderStyle, r.AccentColor)
	return scanResume(row)
}

func (p *PGRepository) Get(ctx context.Context, userID string, id uuid.UUID) (*Resume, error) {
	row := p.db.QueryRow(ctx, `SELECT `+resumeColumns+` FROM resumes WHERE id = $1 AND user_id = $2`, id, userID)
	return scanResume(row)
}

func (p *PGRepository) List(ctx context.Context, userID string) ([]Resume, error) {
	rows, err := p.db.Query(ctx, `SELECT `+resumeColumns+` FROM resumes WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, errors.Join(ErrQueryFailed, err)
	}

	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Resume, error) {
		r, err := scanResume(row)
		if err != nil {
			return Resume{}, err
		}
		return *r, nil
	})
	if err != nil {
		return nil, errors.Join(ErrQueryFailed, err)
	}
	return out, nil
}

func (p *PGRepository) Count(ctx context.Context, userID string) (int64, error) {
	var n int64
	if err := p.db.QueryRow(ctx, `SELECT count(*) FROM resumes WHERE user_id = $1`, userID).Scan(&n); err != nil {
		return 0, errors.Join(ErrQueryFailed, err)
	}
	return n, nil
}

func (p *PGRepository) UpdateStyle(ctx context.Context, userID string, id uuid.UUID, borderStyle, accentColor string) (*Resume, error) {
	row := p.db.QueryRow(ctx, `UPDATE resumes SET border_style = $3, accent_color = $4, updated_at = now()
WHERE id = $1 AND user_id = $2
RETURNING `+resumeColumns,
		id, userID, borderStyle, accentColor)
	return scanResume(row)
}

func scanResume(row pgx.Row) (*Resume, error) {
	var (
		r       Resume
		content []byte
	)
	err := row.Scan(&r.ID, &r.UserID, &r.Title, &content, &r.BorderStyle, &r.AccentColor, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrNotFound
		}
		return nil, errors.Join(ErrQueryFailed, err)
	}
	r.Content = content
	return &r, nil
}
