package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/songhq/songwork/internal/domain/org"
	"github.com/songhq/songwork/internal/repository"
)

// TaskRepository implements repository.TaskRepository for SQLite
type TaskRepository struct {
	db *DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *DB) *TaskRepository {
	return &TaskRepository{db: db}
}

const taskColumns = `
	id, title, description, dept_id, department_ids, status, priority,
	assignee_name, assignee_ids, start_date, due_date, is_hidden, hidden_at,
	created_at, updated_at
`

// Create inserts a new task
func (r *TaskRepository) Create(ctx context.Context, task *org.Task) error {
	query := `
		INSERT INTO tasks (` + taskColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		task.ID,
		task.Title,
		task.Description,
		task.DeptID,
		task.DepartmentIDs,
		task.Status,
		task.Priority,
		task.AssigneeName,
		task.AssigneeIDs,
		task.StartDate,
		task.DueDate,
		task.IsHidden,
		task.HiddenAt,
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return repository.ErrForeignKeyViolation
		}
		return fmt.Errorf("failed to create task: %w", err)
	}

	return nil
}

// Get retrieves a task by ID
func (r *TaskRepository) Get(ctx context.Context, id string) (*org.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = ?`

	var task org.Task
	err := scanTask(r.db.QueryRowContext(ctx, query, id), &task)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	return &task, nil
}

// List returns all tasks ordered by creation time ascending
func (r *TaskRepository) List(ctx context.Context) ([]org.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks ORDER BY created_at ASC`
	return r.queryTasks(ctx, query)
}

// ListByDepartment returns all tasks owned by a department, oldest first
func (r *TaskRepository) ListByDepartment(ctx context.Context, deptID string) ([]org.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE dept_id = ? ORDER BY created_at ASC`
	return r.queryTasks(ctx, query, deptID)
}

// Delete removes a task and its reports
func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM reports WHERE task_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete task reports: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete: %w", err)
	}

	return nil
}

func (r *TaskRepository) queryTasks(ctx context.Context, query string, args ...interface{}) ([]org.Task, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []org.Task
	for rows.Next() {
		var task org.Task
		if err := scanTask(rows, &task); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating task rows: %w", err)
	}

	return tasks, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTask(row rowScanner, task *org.Task) error {
	return row.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&task.DeptID,
		&task.DepartmentIDs,
		&task.Status,
		&task.Priority,
		&task.AssigneeName,
		&task.AssigneeIDs,
		&task.StartDate,
		&task.DueDate,
		&task.IsHidden,
		&task.HiddenAt,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
}
