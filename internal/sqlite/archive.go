package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/songhq/songwork/internal/domain/org"
	"github.com/songhq/songwork/internal/repository"
)

// ArchiveStore implements repository.ArchiveStore for SQLite. Every read and
// write issued through one Archive call shares a single transaction, so the
// aggregator sees one consistent view of the store and the archive row it
// writes commits atomically with that view.
type ArchiveStore struct {
	db *DB
}

// NewArchiveStore creates a new ArchiveStore
func NewArchiveStore(db *DB) *ArchiveStore {
	return &ArchiveStore{db: db}
}

// Archive runs fn against a transactional read/write surface
func (s *ArchiveStore) Archive(ctx context.Context, fn func(tx repository.ArchiveTx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin archive transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&archiveTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit archive: %w", err)
	}

	return nil
}

type archiveTx struct {
	tx *sql.Tx
}

// ListDepartments returns all departments ordered by creation time ascending
func (t *archiveTx) ListDepartments(ctx context.Context) ([]org.Department, error) {
	query := `
		SELECT id, name, emoji, description, manager_name, created_at
		FROM departments
		ORDER BY created_at ASC
	`

	rows, err := t.tx.QueryContext(ctx, query)
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

// ListTasksByDepartment returns all tasks owned by a department, oldest first
func (t *archiveTx) ListTasksByDepartment(ctx context.Context, deptID string) ([]org.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE dept_id = ? ORDER BY created_at ASC`

	rows, err := t.tx.QueryContext(ctx, query, deptID)
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

// ListReportsByTask returns all reports attached to a task, oldest first
func (t *archiveTx) ListReportsByTask(ctx context.Context, taskID string) ([]org.Report, error) {
	query := `
		SELECT id, task_id, content, reporter_name, created_at, updated_at
		FROM reports
		WHERE task_id = ?
		ORDER BY created_at ASC
	`

	rows, err := t.tx.QueryContext(ctx, query, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	var reports []org.Report
	for rows.Next() {
		var report org.Report
		err := rows.Scan(
			&report.ID,
			&report.TaskID,
			&report.Content,
			&report.ReporterName,
			&report.CreatedAt,
			&report.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		reports = append(reports, report)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating report rows: %w", err)
	}

	return reports, nil
}

// GetDailyRecordByDate retrieves the archive row for a calendar date
func (t *archiveTx) GetDailyRecordByDate(ctx context.Context, date string) (*repository.DailyRecord, error) {
	query := `SELECT ` + dailyRecordColumns + ` FROM daily_records WHERE date = ?`

	var rec repository.DailyRecord
	err := t.tx.QueryRowContext(ctx, query, date).Scan(
		&rec.ID,
		&rec.Date,
		&rec.SummaryJSON,
		&rec.TotalTasks,
		&rec.DoneCount,
		&rec.InProgress,
		&rec.NotStarted,
		&rec.DeptCount,
		&rec.SavedBy,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get daily record: %w", err)
	}

	return &rec, nil
}

// InsertDailyRecord creates a new archive row. The date column is unique.
func (t *archiveTx) InsertDailyRecord(ctx context.Context, rec *repository.DailyRecord) error {
	query := `
		INSERT INTO daily_records (` + dailyRecordColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := t.tx.ExecContext(ctx, query,
		rec.ID,
		rec.Date,
		rec.SummaryJSON,
		rec.TotalTasks,
		rec.DoneCount,
		rec.InProgress,
		rec.NotStarted,
		rec.DeptCount,
		rec.SavedBy,
		rec.CreatedAt,
		rec.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrUniqueViolation
		}
		return fmt.Errorf("failed to insert daily record: %w", err)
	}

	return nil
}

// UpdateDailyRecord overwrites an existing archive row. The id, date and
// created_at columns are left untouched.
func (t *archiveTx) UpdateDailyRecord(ctx context.Context, rec *repository.DailyRecord) error {
	query := `
		UPDATE daily_records
		SET summary_json = ?, total_tasks = ?, done_count = ?, in_progress = ?,
		    not_started = ?, dept_count = ?, saved_by = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := t.tx.ExecContext(ctx, query,
		rec.SummaryJSON,
		rec.TotalTasks,
		rec.DoneCount,
		rec.InProgress,
		rec.NotStarted,
		rec.DeptCount,
		rec.SavedBy,
		rec.UpdatedAt,
		rec.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update daily record: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}
