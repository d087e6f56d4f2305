package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/songhq/songwork/internal/repository"
)

// DailyRecordRepository implements repository.DailyRecordRepository for SQLite
type DailyRecordRepository struct {
	db *DB
}

// NewDailyRecordRepository creates a new DailyRecordRepository
func NewDailyRecordRepository(db *DB) *DailyRecordRepository {
	return &DailyRecordRepository{db: db}
}

const dailyRecordColumns = `
	id, date, summary_json, total_tasks, done_count, in_progress, not_started,
	dept_count, saved_by, created_at, updated_at
`

// Insert creates a new archive row. The date column is unique.
func (r *DailyRecordRepository) Insert(ctx context.Context, rec *repository.DailyRecord) error {
	query := `
		INSERT INTO daily_records (` + dailyRecordColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
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

// Update overwrites an existing archive row. The id, date and created_at
// columns are left untouched.
func (r *DailyRecordRepository) Update(ctx context.Context, rec *repository.DailyRecord) error {
	query := `
		UPDATE daily_records
		SET summary_json = ?, total_tasks = ?, done_count = ?, in_progress = ?,
		    not_started = ?, dept_count = ?, saved_by = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
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

// GetByDate retrieves the archive row for a calendar date
func (r *DailyRecordRepository) GetByDate(ctx context.Context, date string) (*repository.DailyRecord, error) {
	query := `SELECT ` + dailyRecordColumns + ` FROM daily_records WHERE date = ?`

	var rec repository.DailyRecord
	err := r.db.QueryRowContext(ctx, query, date).Scan(
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

// List returns archive rows, newest date first
func (r *DailyRecordRepository) List(ctx context.Context, limit, offset int) ([]repository.DailyRecord, error) {
	query := `
		SELECT ` + dailyRecordColumns + `
		FROM daily_records
		ORDER BY date DESC
		LIMIT ? OFFSET ?
	`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list daily records: %w", err)
	}
	defer rows.Close()

	var recs []repository.DailyRecord
	for rows.Next() {
		var rec repository.DailyRecord
		err := rows.Scan(
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
		if err != nil {
			return nil, fmt.Errorf("failed to scan daily record: %w", err)
		}
		recs = append(recs, rec)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating daily record rows: %w", err)
	}

	return recs, nil
}

// DeleteByDate removes the archive row for a calendar date
func (r *DailyRecordRepository) DeleteByDate(ctx context.Context, date string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM daily_records WHERE date = ?`, date)
	if err != nil {
		return fmt.Errorf("failed to delete daily record: %w", err)
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
