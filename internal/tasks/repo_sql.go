package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

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

const taskColumns = `id, user_id, business_plan_id, title, priority, phase, estimated_duration, completed, created_at`

func (r *SQLRepo) Create(ctx context.Context, task Task) (Task, error) {
	out, err := r.CreateMany(ctx, []Task{task})
	if err != nil {
		return Task{}, err
	}
	return out[0], nil
}

// CreateMany inserts all tasks in one transaction.
func (r *SQLRepo) CreateMany(ctx context.Context, tasks []Task) ([]Task, error) {
	const query = `
INSERT INTO tasks (` + taskColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	if len(tasks) == 0 {
		return []Task{}, nil
	}
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	now := r.now()
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		prepared := prepare(t, now)
		_, err := tx.ExecContext(ctx, r.Dialect.Rebind(query),
			prepared.ID,
			prepared.UserID,
			nullableString(prepared.BusinessPlanID),
			prepared.Title,
			string(prepared.Priority),
			prepared.Phase,
			prepared.EstimatedDuration,
			prepared.Completed,
			prepared.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("insert task: %w", err)
		}
		out = append(out, prepared)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *SQLRepo) List(ctx context.Context, filter ListFilter) ([]Task, error) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if filter.UserID != "" {
		add("user_id = $%d", filter.UserID)
	}
	if filter.BusinessPlanID != "" {
		add("business_plan_id = $%d", filter.BusinessPlanID)
	}
	if filter.Phase != "" {
		add("phase = $%d", filter.Phase)
	}
	if filter.Priority != "" {
		add("priority = $%d", string(filter.Priority))
	}
	if filter.Completed != nil {
		add("completed = $%d", *filter.Completed)
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}

	query := `SELECT ` + taskColumns + ` FROM tasks`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	args = append(args, limit)
	query += fmt.Sprintf(` ORDER BY created_at ASC, id ASC LIMIT $%d`, len(args))

	rows, err := r.DB.QueryContext(ctx, r.Dialect.Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *SQLRepo) SetCompleted(ctx context.Context, userID, id string, completed bool) (Task, error) {
	const query = `
UPDATE tasks SET completed = $1
WHERE id = $2 AND user_id = $3
RETURNING ` + taskColumns
	t, err := scanTask(r.DB.QueryRowContext(ctx, r.Dialect.Rebind(query), completed, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return Task{}, ErrNotFound
	}
	return t, err
}

// Count runs one COUNT(*) over tasks with the filter's predicates.
func (r *SQLRepo) Count(ctx context.Context, filter CountFilter) (int, error) {
	query, args := countQuery(filter)
	var n int
	err := r.DB.QueryRowContext(ctx, r.Dialect.Rebind(query), args...).Scan(&n)
	return n, err
}

// countQuery renders the COUNT statement for filter using $N placeholders.
func countQuery(filter CountFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if filter.Priority != nil {
		args = append(args, string(*filter.Priority))
		conds = append(conds, fmt.Sprintf("priority = $%d", len(args)))
	}
	if filter.Completed != nil {
		args = append(args, *filter.Completed)
		conds = append(conds, fmt.Sprintf("completed = $%d", len(args)))
	}
	query := `SELECT COUNT(*) FROM tasks`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	return query, args
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

func scanTask(row rowScanner) (Task, error) {
	var t Task
	var planID sql.NullString
	var priority string
	err := row.Scan(
		&t.ID,
		&t.UserID,
		&planID,
		&t.Title,
		&priority,
		&t.Phase,
		&t.EstimatedDuration,
		&t.Completed,
		&t.CreatedAt,
	)
	if err != nil {
		return Task{}, err
	}
	t.BusinessPlanID = planID.String
	t.Priority = Priority(priority)
	return t, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
