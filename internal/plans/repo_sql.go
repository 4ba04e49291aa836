package plans

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"business-navigator/internal/shared/storage/db"
)

type SQLRepo struct {
	DB      *sql.DB
	Dialect db.Dialect
	Now     func() time.Time
}

func NewSQLRepo(database *sql.DB, dialect db.Dialect) *SQLRepo {
	return &SQLRepo{DB: database, Dialect: dialect}
}

const planColumns = `id, user_id, title, business_idea, target_market, unique_value, content, created_at`

func (r *SQLRepo) Create(ctx context.Context, plan BusinessPlan) (BusinessPlan, error) {
	const query = `
INSERT INTO business_plans (` + planColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if plan.ID == "" {
		plan.ID = uuid.NewString()
	}
	if len(plan.Content) == 0 {
		plan.Content = json.RawMessage(`{}`)
	}
	if plan.CreatedAt.IsZero() {
		plan.CreatedAt = r.now()
	}
	_, err := r.DB.ExecContext(ctx, r.Dialect.Rebind(query),
		plan.ID,
		plan.UserID,
		plan.Title,
		plan.BusinessIdea,
		plan.TargetMarket,
		plan.UniqueValue,
		string(plan.Content),
		plan.CreatedAt,
	)
	if err != nil {
		return BusinessPlan{}, err
	}
	return plan, nil
}

func (r *SQLRepo) GetByID(ctx context.Context, id string) (BusinessPlan, error) {
	const query = `SELECT ` + planColumns + ` FROM business_plans WHERE id = $1 LIMIT 1`
	plan, err := scanPlan(r.DB.QueryRowContext(ctx, r.Dialect.Rebind(query), id))
	if errors.Is(err, sql.ErrNoRows) {
		return BusinessPlan{}, ErrNotFound
	}
	return plan, err
}

func (r *SQLRepo) List(ctx context.Context, filter ListFilter) ([]BusinessPlan, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	var (
		rows *sql.Rows
		err  error
	)
	if filter.UserID != "" {
		const query = `SELECT ` + planColumns + ` FROM business_plans WHERE user_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2`
		rows, err = r.DB.QueryContext(ctx, r.Dialect.Rebind(query), filter.UserID, limit)
	} else {
		const query = `SELECT ` + planColumns + ` FROM business_plans ORDER BY created_at DESC, id DESC LIMIT $1`
		rows, err = r.DB.QueryContext(ctx, r.Dialect.Rebind(query), limit)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []BusinessPlan{}
	for rows.Next() {
		plan, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, plan)
	}
	return out, rows.Err()
}

func (r *SQLRepo) Recent(ctx context.Context, limit int) ([]RecentPlan, error) {
	const query = `
SELECT p.id, p.title, p.business_idea, p.created_at, COALESCE(NULLIF(u.name, ''), u.email)
FROM business_plans p
JOIN users u ON u.id = p.user_id
ORDER BY p.created_at DESC, p.id DESC
LIMIT $1`
	rows, err := r.DB.QueryContext(ctx, r.Dialect.Rebind(query), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []RecentPlan{}
	for rows.Next() {
		var p RecentPlan
		if err := rows.Scan(&p.ID, &p.Title, &p.BusinessIdea, &p.CreatedAt, &p.User); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *SQLRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM business_plans`).Scan(&n)
	return n, err
}

func (r *SQLRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, r.Dialect.Rebind(`DELETE FROM business_plans WHERE id = $1`), id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
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

func scanPlan(row rowScanner) (BusinessPlan, error) {
	var plan BusinessPlan
	var content []byte
	err := row.Scan(
		&plan.ID,
		&plan.UserID,
		&plan.Title,
		&plan.BusinessIdea,
		&plan.TargetMarket,
		&plan.UniqueValue,
		&content,
		&plan.CreatedAt,
	)
	if err != nil {
		return BusinessPlan{}, err
	}
	plan.Content = json.RawMessage(content)
	return plan, nil
}
