package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/songhq/songwork/internal/domain/org"
	"github.com/songhq/songwork/internal/repository"
)

// DepartmentRepository implements repository.DepartmentRepository for SQLite
type DepartmentRepository struct {
	db *DB
}

// NewDepartmentRepository creates a new DepartmentRepository
func NewDepartmentRepository(db *DB) *DepartmentRepository {
	return &DepartmentRepository{db: db}
}

// Create inserts a new department
func (r *DepartmentRepository) Create(ctx context.Context, dept *org.Department) error {
	query := `
		INSERT INTO departments (id, name, emoji, description, manager_name, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		dept.ID,
		dept.Name,
		dept.Emoji,
		dept.Description,
		dept.ManagerName,
		dept.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrUniqueViolation
		}
		return fmt.Errorf("failed to create department: %w", err)
	}

	return nil
}

// Get retrieves a department by ID
func (r *DepartmentRepository) Get(ctx context.Context, id string) (*org.Department, error) {
	query := `
		SELECT id, name, emoji, description, manager_name, created_at
		FROM departments
		WHERE id = ?
	`

	var dept org.Department
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&dept.ID,
		&dept.Name,
		&dept.Emoji,
		&dept.Description,
		&dept.ManagerName,
		&dept.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get department: %w", err)
	}

	return &dept, nil
}

// List returns all departments ordered by creation time ascending
func (r *DepartmentRepository) List(ctx context.Context) ([]org.Department, error) {
	query := `
		SELECT id, name, emoji, description, manager_name, created_at
		FROM departments
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list departments: %w", err)
	}
	defer rows.Close()

	var depts []org.Department
	for rows.Next() {
		var dept org.Department
		err := rows.Scan(
			&dept.ID,
			&dept.Name,
			&dept.Emoji,
			&dept.Description,
			&dept.ManagerName,
			&dept.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan department: %w", err)
		}
		depts = append(depts, dept)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating department rows: %w", err)
	}

	return depts, nil
}

// Delete removes a department, its tasks and their reports in one
// transaction. Reports go first, then tasks, then the department itself.
func (r *DepartmentRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM reports WHERE task_id IN (SELECT id FROM tasks WHERE dept_id = ?)`, id); err != nil {
		return fmt.Errorf("failed to delete department reports: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE dept_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete department tasks: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM departments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete department: %w", err)
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
