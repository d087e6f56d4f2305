package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/songhq/songwork/internal/domain/org"
	"github.com/songhq/songwork/internal/repository"
)

// RestoreStore implements repository.Restorer for SQLite. All upserts issued
// through one Restore call share a single transaction, so the merge either
// commits as a whole or not at all.
type RestoreStore struct {
	db *DB
}

// NewRestoreStore creates a new RestoreStore
func NewRestoreStore(db *DB) *RestoreStore {
	return &RestoreStore{db: db}
}

// Restore runs fn against a transactional upsert surface
func (s *RestoreStore) Restore(ctx context.Context, fn func(tx repository.RestoreTx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin restore transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&restoreTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit restore: %w", err)
	}

	return nil
}

type restoreTx struct {
	tx *sql.Tx
}

// UpsertDepartment inserts a department or overwrites every non-id field
func (t *restoreTx) UpsertDepartment(ctx context.Context, dept *org.Department) error {
	query := `
		INSERT INTO departments (id, name, emoji, description, manager_name, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			emoji = excluded.emoji,
			description = excluded.description,
			manager_name = excluded.manager_name,
			created_at = excluded.created_at
	`

	_, err := t.tx.ExecContext(ctx, query,
		dept.ID,
		dept.Name,
		dept.Emoji,
		dept.Description,
		dept.ManagerName,
		dept.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert department %s: %w", dept.ID, err)
	}
	return nil
}

// UpsertUser inserts a user or overwrites every non-id field. The password
// hash is written verbatim.
func (t *restoreTx) UpsertUser(ctx context.Context, user *org.User) error {
	query := `
		INSERT INTO users (id, username, password, display_name, role, dept_id, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			username = excluded.username,
			password = excluded.password,
			display_name = excluded.display_name,
			role = excluded.role,
			dept_id = excluded.dept_id,
			is_active = excluded.is_active,
			created_at = excluded.created_at
	`

	_, err := t.tx.ExecContext(ctx, query,
		user.ID,
		user.Username,
		user.Password,
		user.DisplayName,
		user.Role,
		user.DeptID,
		user.IsActive,
		user.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return repository.ErrForeignKeyViolation
		}
		return fmt.Errorf("failed to upsert user %s: %w", user.ID, err)
	}
	return nil
}

// UpsertTask inserts a task or overwrites every non-id field
func (t *restoreTx) UpsertTask(ctx context.Context, task *org.Task) error {
	query := `
		INSERT INTO tasks (` + taskColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			dept_id = excluded.dept_id,
			department_ids = excluded.department_ids,
			status = excluded.status,
			priority = excluded.priority,
			assignee_name = excluded.assignee_name,
			assignee_ids = excluded.assignee_ids,
			start_date = excluded.start_date,
			due_date = excluded.due_date,
			is_hidden = excluded.is_hidden,
			hidden_at = excluded.hidden_at,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at
	`

	_, err := t.tx.ExecContext(ctx, query,
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
		return fmt.Errorf("failed to upsert task %s: %w", task.ID, err)
	}
	return nil
}

// UpsertReport inserts a report or overwrites every non-id field
func (t *restoreTx) UpsertReport(ctx context.Context, report *org.Report) error {
	query := `
		INSERT INTO reports (id, task_id, content, reporter_name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			task_id = excluded.task_id,
			content = excluded.content,
			reporter_name = excluded.reporter_name,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at
	`

	_, err := t.tx.ExecContext(ctx, query,
		report.ID,
		report.TaskID,
		report.Content,
		report.ReporterName,
		report.CreatedAt,
		report.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return repository.ErrForeignKeyViolation
		}
		return fmt.Errorf("failed to upsert report %s: %w", report.ID, err)
	}
	return nil
}
