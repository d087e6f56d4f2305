package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/songhq/songwork/internal/domain/org"
	"github.com/songhq/songwork/internal/repository"
)

// ReportRepository implements repository.ReportRepository for SQLite
type ReportRepository struct {
	db *DB
}

// NewReportRepository creates a new ReportRepository
func NewReportRepository(db *DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// Create inserts a new report
func (r *ReportRepository) Create(ctx context.Context, report *org.Report) error {
	query := `
		INSERT INTO reports (id, task_id, content, reporter_name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
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
		return fmt.Errorf("failed to create report: %w", err)
	}

	return nil
}

// Get retrieves a report by ID
func (r *ReportRepository) Get(ctx context.Context, id string) (*org.Report, error) {
	query := `
		SELECT id, task_id, content, reporter_name, created_at, updated_at
		FROM reports
		WHERE id = ?
	`

	var report org.Report
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&report.ID,
		&report.TaskID,
		&report.Content,
		&report.ReporterName,
		&report.CreatedAt,
		&report.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	return &report, nil
}

// List returns all reports ordered by creation time ascending
func (r *ReportRepository) List(ctx context.Context) ([]org.Report, error) {
	query := `
		SELECT id, task_id, content, reporter_name, created_at, updated_at
		FROM reports
		ORDER BY created_at ASC
	`
	return r.queryReports(ctx, query)
}

// ListByTask returns all reports attached to a task, oldest first
func (r *ReportRepository) ListByTask(ctx context.Context, taskID string) ([]org.Report, error) {
	query := `
		SELECT id, task_id, content, reporter_name, created_at, updated_at
		FROM reports
		WHERE task_id = ?
		ORDER BY created_at ASC
	`
	return r.queryReports(ctx, query, taskID)
}

func (r *ReportRepository) queryReports(ctx context.Context, query string, args ...interface{}) ([]org.Report, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
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
