package repo

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"taskboard-backend/internal/storage"
	"taskboard-backend/internal/task/entity"
)

// TaskRepo provides data access for the tasks table using sqlx. Every read
// and write is scoped to the owning user so ownership and non-existence are
// indistinguishable to callers.
type TaskRepo struct {
	db *sqlx.DB
}

func NewTaskRepo(db *sqlx.DB) *TaskRepo { return &TaskRepo{db: db} }

// EnsureTable creates the tasks table if not exists (idempotent).
func (r *TaskRepo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS tasks (
  id BIGSERIAL PRIMARY KEY,
  user_id BIGINT NOT NULL REFERENCES users(id),
  title VARCHAR(255) NOT NULL,
  description TEXT,
  status TEXT NOT NULL DEFAULT 'pending',
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_tasks_user_id ON tasks(user_id);
`
	if _, err := r.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("ensure tasks table: %w", storage.Classify(err))
	}
	return nil
}

// Create inserts a task and fills in the generated id and timestamps.
func (r *TaskRepo) Create(ctx context.Context, t *entity.Task) error {
	const q = `INSERT INTO tasks (user_id, title, description, status)
	           VALUES ($1, $2, $3, $4)
	           RETURNING id, created_at, updated_at`
	err := r.db.QueryRowxContext(ctx, q, t.UserID, t.Title, t.Description, t.Status).
		Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert task: %w", storage.Classify(err))
	}
	return nil
}

// ListByOwner returns all tasks owned by the given user in storage order.
func (r *TaskRepo) ListByOwner(ctx context.Context, userID int64) ([]*entity.Task, error) {
	const q = `SELECT id, user_id, title, description, status, created_at, updated_at
	           FROM tasks WHERE user_id = $1`
	tasks := []*entity.Task{}
	if err := r.db.SelectContext(ctx, &tasks, q, userID); err != nil {
		return nil, fmt.Errorf("list tasks: %w", storage.Classify(err))
	}
	return tasks, nil
}

// GetByIDForOwner returns the task only when it exists and belongs to the
// given user; otherwise storage.ErrNotFound.
func (r *TaskRepo) GetByIDForOwner(ctx context.Context, id, userID int64) (*entity.Task, error) {
	const q = `SELECT id, user_id, title, description, status, created_at, updated_at
	           FROM tasks WHERE id = $1 AND user_id = $2`
	var t entity.Task
	if err := r.db.GetContext(ctx, &t, q, id, userID); err != nil {
		return nil, fmt.Errorf("get task: %w", storage.Classify(err))
	}
	return &t, nil
}

// Update persists title, description and status for a task the given user
// owns, bumping updated_at. A miss on id or ownership is storage.ErrNotFound.
func (r *TaskRepo) Update(ctx context.Context, t *entity.Task) error {
	const q = `UPDATE tasks SET title = $1, description = $2, status = $3, updated_at = NOW()
	           WHERE id = $4 AND user_id = $5
	           RETURNING updated_at`
	err := r.db.QueryRowxContext(ctx, q, t.Title, t.Description, t.Status, t.ID, t.UserID).
		Scan(&t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update task: %w", storage.Classify(err))
	}
	return nil
}

// Delete removes a task the given user owns. A miss on id or ownership is
// storage.ErrNotFound.
func (r *TaskRepo) Delete(ctx context.Context, id, userID int64) error {
	const q = `DELETE FROM tasks WHERE id = $1 AND user_id = $2`
	res, err := r.db.ExecContext(ctx, q, id, userID)
	if err != nil {
		return fmt.Errorf("delete task: %w", storage.Classify(err))
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if rows == 0 {
		return storage.ErrNotFound
	}
	return nil
}
