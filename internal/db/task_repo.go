package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/shahbazasghar1038/injury-back-end/internal/types"
)

// TaskRepository provides data access for case tasks.
type TaskRepository struct {
	db DBTX
}

// NewTaskRepository creates a new TaskRepository backed by the given
// database connection (pool or transaction).
func NewTaskRepository(db DBTX) *TaskRepository {
	return &TaskRepository{db: db}
}

const taskColumns = `t.id, t.case_id, t.title, t.description, t.status, t.due_date,
	t.created_at, t.updated_at`

func scanTask(row pgx.Row) (*types.Task, error) {
	var t types.Task
	var description *string
	err := row.Scan(
		&t.ID,
		&t.CaseID,
		&t.Title,
		&description,
		&t.Status,
		&t.DueDate,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if description != nil {
		t.Description = *description
	}
	return &t, nil
}

// Insert persists a new task under a case.
func (r *TaskRepository) Insert(ctx context.Context, t *types.Task) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO tasks (id, case_id, title, description, status, due_date)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		t.ID,
		t.CaseID,
		t.Title,
		nilIfEmpty(t.Description),
		t.Status,
		t.DueDate,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to create task", err)
	}
	return nil
}

// GetByID retrieves a task by ID.
// Returns ErrCodeNotFoundTask if no task is found.
func (r *TaskRepository) GetByID(ctx context.Context, id string) (*types.Task, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+taskColumns+` FROM tasks t WHERE t.id = $1`,
		id,
	)
	t, err := scanTask(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.NewAppError(types.ErrCodeNotFoundTask, "task not found", nil)
		}
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to retrieve task", err)
	}
	return t, nil
}

// ListByCase returns all tasks for a case ordered by creation time.
func (r *TaskRepository) ListByCase(ctx context.Context, caseID string) ([]types.Task, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+taskColumns+` FROM tasks t WHERE t.case_id = $1 ORDER BY t.created_at`,
		caseID,
	)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to list tasks", err)
	}
	defer rows.Close()

	var tasks []types.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan task row", err)
		}
		tasks = append(tasks, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to iterate task rows", err)
	}
	return tasks, nil
}

// UpdateStatus transitions a task to the given status.
// Returns ErrCodeNotFoundTask if no task is found.
func (r *TaskRepository) UpdateStatus(ctx context.Context, id string, status types.TaskStatus) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE tasks SET status = $1, updated_at = NOW() WHERE id = $2`,
		status,
		id,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to update task status", err)
	}
	if tag.RowsAffected() == 0 {
		return types.NewAppError(types.ErrCodeNotFoundTask, "task not found", nil)
	}
	return nil
}
