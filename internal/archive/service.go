package archive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/songhq/songwork/internal/domain/org"
	"github.com/songhq/songwork/internal/repository"
)

const (
	defaultListLimit = 60
	maxListLimit     = 365
)

// Service computes and stores daily activity summaries.
//
// All day-boundary arithmetic is UTC: a report belongs to a date when the
// year/month/day of its UTC-normalized creation time match the target date.
// Aggregation and the archive upsert run inside one store transaction, so a
// summary never mixes states from before and after a concurrent write.
type Service struct {
	store   repository.ArchiveStore
	records repository.DailyRecordRepository
	logger  *slog.Logger
	now     func() time.Time
}

// NewService creates a new archive service.
func NewService(
	store repository.ArchiveStore,
	records repository.DailyRecordRepository,
	logger *slog.Logger,
) *Service {
	return &Service{
		store:   store,
		records: records,
		logger:  logger,
		now:     time.Now,
	}
}

// ParseDate validates an ISO calendar date string.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t.UTC(), nil
}

// BuildSummary computes the activity summary for one calendar date from a
// single consistent view of the store.
//
// A task qualifies when it is currently done, or has at least one report
// created on the target date. Qualifying tasks embed only that date's
// reports. Counters reflect each task's live status, and hidden tasks are
// counted like any other — hiding only affects the active board.
func (s *Service) BuildSummary(ctx context.Context, date time.Time) (*DaySummary, error) {
	var summary *DaySummary
	err := s.store.Archive(ctx, func(tx repository.ArchiveTx) error {
		var err error
		summary, err = buildSummary(ctx, tx, date)
		return err
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

func buildSummary(ctx context.Context, tx repository.ArchiveTx, date time.Time) (*DaySummary, error) {
	depts, err := tx.ListDepartments(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing departments: %w", err)
	}

	summary := &DaySummary{
		Date:        date.UTC().Format("2006-01-02"),
		Departments: []DeptActivity{},
	}

	for _, dept := range depts {
		tasks, err := tx.ListTasksByDepartment(ctx, dept.ID)
		if err != nil {
			return nil, fmt.Errorf("listing tasks for department %s: %w", dept.ID, err)
		}

		var digests []TaskDigest
		for _, task := range tasks {
			reports, err := tx.ListReportsByTask(ctx, task.ID)
			if err != nil {
				return nil, fmt.Errorf("listing reports for task %s: %w", task.ID, err)
			}

			dayReports := reportsOnDate(reports, date)
			if task.Status != org.StatusDone && len(dayReports) == 0 {
				continue
			}

			digests = append(digests, taskDigest(task, dayReports))

			summary.TotalTasks++
			switch task.Status {
			case org.StatusDone:
				summary.DoneCount++
			case org.StatusInProgress:
				summary.InProgress++
			default:
				summary.NotStarted++
			}
		}

		if len(digests) == 0 {
			continue
		}

		summary.Departments = append(summary.Departments, DeptActivity{
			DeptID:      dept.ID,
			DeptName:    dept.Name,
			DeptEmoji:   dept.Emoji,
			ManagerName: dept.ManagerName,
			Tasks:       digests,
		})
	}

	summary.DeptCount = len(summary.Departments)
	return summary, nil
}

// Save upserts the archive row for a date; a zero date means the current UTC
// date. An existing row keeps its id and created timestamp; the summary blob,
// counters, origin tag and updated timestamp are overwritten. The aggregation
// reads and the row write share one transaction, and calling Save twice with
// no intervening writes yields identical stored counters.
func (s *Service) Save(ctx context.Context, date time.Time, origin Origin) (*Record, error) {
	if date.IsZero() {
		date = s.now().UTC()
	}

	now := s.now().UTC()
	var rec *Record
	err := s.store.Archive(ctx, func(tx repository.ArchiveTx) error {
		summary, err := buildSummary(ctx, tx, date)
		if err != nil {
			return err
		}

		blob, err := json.Marshal(summary)
		if err != nil {
			return fmt.Errorf("marshal summary: %w", err)
		}

		existing, err := tx.GetDailyRecordByDate(ctx, summary.Date)
		switch {
		case err == nil:
			existing.SummaryJSON = string(blob)
			existing.TotalTasks = summary.TotalTasks
			existing.DoneCount = summary.DoneCount
			existing.InProgress = summary.InProgress
			existing.NotStarted = summary.NotStarted
			existing.DeptCount = summary.DeptCount
			existing.SavedBy = string(origin)
			existing.UpdatedAt = now
			if err := tx.UpdateDailyRecord(ctx, existing); err != nil {
				return fmt.Errorf("updating archive row: %w", err)
			}
			rec = recordFromRow(existing)
			return nil

		case errors.Is(err, repository.ErrNotFound):
			row := &repository.DailyRecord{
				ID:          uuid.NewString(),
				Date:        summary.Date,
				SummaryJSON: string(blob),
				TotalTasks:  summary.TotalTasks,
				DoneCount:   summary.DoneCount,
				InProgress:  summary.InProgress,
				NotStarted:  summary.NotStarted,
				DeptCount:   summary.DeptCount,
				SavedBy:     string(origin),
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			if err := tx.InsertDailyRecord(ctx, row); err != nil {
				return fmt.Errorf("inserting archive row: %w", err)
			}
			rec = recordFromRow(row)
			return nil

		default:
			return fmt.Errorf("looking up archive row: %w", err)
		}
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// List returns stored archive rows, newest date first.
func (s *Service) List(ctx context.Context, limit, offset int) ([]ListItem, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := s.records.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing archive rows: %w", err)
	}

	items := make([]ListItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, ListItem{
			ID:         row.ID,
			Date:       row.Date,
			TotalTasks: row.TotalTasks,
			DoneCount:  row.DoneCount,
			InProgress: row.InProgress,
			NotStarted: row.NotStarted,
			DeptCount:  row.DeptCount,
			SavedBy:    Origin(row.SavedBy),
			CreatedAt:  row.CreatedAt,
		})
	}
	return items, nil
}

// Get returns the archive row for a date.
func (s *Service) Get(ctx context.Context, date string) (*Record, error) {
	row, err := s.records.GetByDate(ctx, date)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("getting archive row: %w", err)
	}
	return recordFromRow(row), nil
}

// Delete removes the archive row for a date.
func (s *Service) Delete(ctx context.Context, date string) error {
	if err := s.records.DeleteByDate(ctx, date); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrRecordNotFound
		}
		return fmt.Errorf("deleting archive row: %w", err)
	}
	return nil
}

func reportsOnDate(reports []org.Report, date time.Time) []ReportDigest {
	ty, tm, td := date.UTC().Date()
	var out []ReportDigest
	for _, r := range reports {
		y, m, d := r.CreatedAt.UTC().Date()
		if y != ty || m != tm || d != td {
			continue
		}
		out = append(out, ReportDigest{
			ID:           r.ID,
			Content:      r.Content,
			ReporterName: r.ReporterName,
			CreatedAt:    r.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return out
}

func taskDigest(task org.Task, reports []ReportDigest) TaskDigest {
	if reports == nil {
		reports = []ReportDigest{}
	}
	var due *string
	if task.DueDate != nil {
		s := task.DueDate.UTC().Format(time.RFC3339)
		due = &s
	}
	return TaskDigest{
		ID:           task.ID,
		Title:        task.Title,
		Description:  task.Description,
		Status:       string(task.Status),
		Priority:     string(task.Priority),
		AssigneeName: task.AssigneeName,
		DueDate:      due,
		Reports:      reports,
	}
}

func recordFromRow(row *repository.DailyRecord) *Record {
	return &Record{
		ID:          row.ID,
		Date:        row.Date,
		SummaryJSON: row.SummaryJSON,
		TotalTasks:  row.TotalTasks,
		DoneCount:   row.DoneCount,
		InProgress:  row.InProgress,
		NotStarted:  row.NotStarted,
		DeptCount:   row.DeptCount,
		SavedBy:     Origin(row.SavedBy),
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}
