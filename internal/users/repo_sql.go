package users

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"business-navigator/internal/shared/storage/db"
)

// SQLRepo stores users in postgres or sqlite.
type SQLRepo struct {
	DB      *sql.DB
	Dialect db.Dialect
	Now     func() time.Time
}

func NewSQLRepo(database *sql.DB, dialect db.Dialect) *SQLRepo {
	return &SQLRepo{DB: database, Dialect: dialect}
}

const userColumns = `id, email, name, created_at, updated_at`

func (r *SQLRepo) Upsert(ctx context.Context, user User) (User, error) {
	const query = `
INSERT INTO users (id, email, name, created_at, updated_at)
VALUES ($1, $2, $3, $4, $4)
ON CONFLICT (email) DO UPDATE SET
  name = COALESCE(EXCLUDED.name, users.name),
  updated_at = EXCLUDED.updated_at
RETURNING ` + userColumns
	id := user.ID
	if id == "" {
		id = uuid.NewString()
	}
	row := r.DB.QueryRowContext(ctx, r.Dialect.Rebind(query),
		id,
		strings.ToLower(strings.TrimSpace(user.Email)),
		nullableString(user.Name),
		r.now(),
	)
	return scanUser(row)
}

func (r *SQLRepo) GetByID(ctx context.Context, userID string) (User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1 LIMIT 1`
	return scanUser(r.DB.QueryRowContext(ctx, r.Dialect.Rebind(query), userID))
}

func (r *SQLRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email = $1 LIMIT 1`
	return scanUser(r.DB.QueryRowContext(ctx, r.Dialect.Rebind(query), strings.ToLower(strings.TrimSpace(email))))
}

func (r *SQLRepo) List(ctx context.Context, limit int) ([]User, error) {
	if limit <= 0 {
		limit = 100
	}
	const query = `SELECT ` + userColumns + ` FROM users ORDER BY created_at ASC, id ASC LIMIT $1`
	rows, err := r.DB.QueryContext(ctx, r.Dialect.Rebind(query), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, user)
	}
	return out, rows.Err()
}

func (r *SQLRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}

func (r *SQLRepo) now() time.Time {
	if r.Now != nil {
		return r.Now().UTC()
	}
	return time.Now().UTC()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (User, error) {
	var user User
	var name sql.NullString
	err := row.Scan(&user.ID, &user.Email, &name, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	user.Name = name.String
	return user, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
