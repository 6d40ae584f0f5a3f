package store

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"jobmate/vacancy-bot/internal/model"
)

// schema creates the vacancies table. The unique index on the identity key
// is what makes InsertIfAbsent race-free; it is created separately so that
// tables created by earlier deployments pick it up too.
const schema = `
CREATE TABLE IF NOT EXISTS vacancies (
	id          BIGSERIAL PRIMARY KEY,
	title       TEXT        NOT NULL,
	company     TEXT        NOT NULL,
	description TEXT        NOT NULL DEFAULT '',
	city        TEXT        NOT NULL DEFAULT 'not specified',
	salary      NUMERIC,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE UNIQUE INDEX IF NOT EXISTS vacancies_identity_key
	ON vacancies (title, company, description);`

// DBTX is the subset of *pgxpool.Pool used by Postgres.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Postgres is the PostgreSQL-backed Store.
type Postgres struct {
	db DBTX
}

// NewPostgres returns a Store backed by db (normally a *pgxpool.Pool).
func NewPostgres(db DBTX) *Postgres {
	return &Postgres{db: db}
}

// Migrate creates the vacancies table and its identity-key index.
func (p *Postgres) Migrate(ctx context.Context) error {
	if _, err := p.db.Exec(ctx, schema); err != nil {
		return &StorageError{Op: "migrate", Err: err}
	}
	return nil
}

// FindByKeyword implements Store.
func (p *Postgres) FindByKeyword(ctx context.Context, keyword string) ([]model.Vacancy, error) {
	rows, err := p.db.Query(ctx,
		`SELECT title, company, description, city, salary::float8
		 FROM vacancies
		 WHERE title ILIKE $1 ESCAPE '\' OR description ILIKE $1 ESCAPE '\'
		 ORDER BY id`,
		"%"+escapeLike(keyword)+"%",
	)
	if err != nil {
		return nil, &StorageError{Op: "find", Keyword: keyword, Err: err}
	}
	defer rows.Close()

	vacancies := make([]model.Vacancy, 0)
	for rows.Next() {
		var v model.Vacancy
		if err := rows.Scan(&v.Title, &v.Company, &v.Description, &v.City, &v.Salary); err != nil {
			return nil, &StorageError{Op: "find", Keyword: keyword, Err: err}
		}
		vacancies = append(vacancies, v)
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: "find", Keyword: keyword, Err: err}
	}
	return vacancies, nil
}

// InsertIfAbsent implements Store. A conflicting identity key is a no-op,
// so the losing side of a race sees zero affected rows and no error.
func (p *Postgres) InsertIfAbsent(ctx context.Context, v model.Vacancy) (bool, error) {
	tag, err := p.db.Exec(ctx,
		`INSERT INTO vacancies (title, company, description, city, salary)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (title, company, description) DO NOTHING`,
		v.Title, v.Company, v.Description, v.City, v.Salary,
	)
	if err != nil {
		key := v.Key()
		return false, &StorageError{Op: "insert", Key: &key, Err: err}
	}
	return tag.RowsAffected() == 1, nil
}

// Count implements Store.
func (p *Postgres) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := p.db.QueryRow(ctx, `SELECT COUNT(*) FROM vacancies`).Scan(&n); err != nil {
		return 0, &StorageError{Op: "count", Err: err}
	}
	return n, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes keyword match literally inside an ILIKE pattern.
func escapeLike(keyword string) string {
	return likeEscaper.Replace(keyword)
}
