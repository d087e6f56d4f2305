package repository

import (
	"context"
	"time"

	"github.com/songhq/songwork/internal/domain/org"
)

// DepartmentRepository manages department persistence
type DepartmentRepository interface {
	Create(ctx context.Context, dept *org.Department) error
	Get(ctx context.Context, id string) (*org.Department, error)
	// List returns all departments ordered by creation time ascending.
	List(ctx context.Context) ([]org.Department, error)
	// Delete removes a department together with its tasks and their reports.
	Delete(ctx context.Context, id string) error
}

// UserRepository manages user persistence
type UserRepository interface {
	Create(ctx context.Context, user *org.User) error
	Get(ctx context.Context, id string) (*org.User, error)
	List(ctx context.Context) ([]org.User, error)
	Count(ctx context.Context) (int, error)
}

// TaskRepository manages task persistence
type TaskRepository interface {
	Create(ctx context.Context, task *org.Task) error
	Get(ctx context.Context, id string) (*org.Task, error)
	List(ctx context.Context) ([]org.Task, error)
	ListByDepartment(ctx context.Context, deptID string) ([]org.Task, error)
	Delete(ctx context.Context, id string) error
}

// ReportRepository manages report persistence
type ReportRepository interface {
	Create(ctx context.Context, report *org.Report) error
	Get(ctx context.Context, id string) (*org.Report, error)
	List(ctx context.Context) ([]org.Report, error)
	ListByTask(ctx context.Context, taskID string) ([]org.Report, error)
}

// DailyRecord is one archived per-date activity summary row
type DailyRecord struct {
	ID          string
	Date        string // ISO YYYY-MM-DD, unique
	SummaryJSON string
	TotalTasks  int
	DoneCount   int
	InProgress  int
	NotStarted  int
	DeptCount   int
	SavedBy     string // "manual" | "auto"
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// DailyRecordRepository manages archive row persistence
type DailyRecordRepository interface {
	Insert(ctx context.Context, rec *DailyRecord) error
	Update(ctx context.Context, rec *DailyRecord) error
	GetByDate(ctx context.Context, date string) (*DailyRecord, error)
	// List returns archive rows newest-date-first.
	List(ctx context.Context, limit, offset int) ([]DailyRecord, error)
	DeleteByDate(ctx context.Context, date string) error
}

// ArchiveTx is the read/write surface the daily aggregator drives inside one
// transaction, so the entity rows it reads and the archive row it writes come
// from a single consistent view of the store.
type ArchiveTx interface {
	ListDepartments(ctx context.Context) ([]org.Department, error)
	ListTasksByDepartment(ctx context.Context, deptID string) ([]org.Task, error)
	ListReportsByTask(ctx context.Context, taskID string) ([]org.Report, error)
	GetDailyRecordByDate(ctx context.Context, date string) (*DailyRecord, error)
	InsertDailyRecord(ctx context.Context, rec *DailyRecord) error
	UpdateDailyRecord(ctx context.Context, rec *DailyRecord) error
}

// ArchiveStore runs fn inside a single transaction; any error rolls the whole
// archive operation back.
type ArchiveStore interface {
	Archive(ctx context.Context, fn func(tx ArchiveTx) error) error
}

// RestoreTx is the upsert surface the merge engine drives inside one
// transaction. Rows written in earlier phases are visible to foreign-key
// checks in later phases before commit.
type RestoreTx interface {
	UpsertDepartment(ctx context.Context, dept *org.Department) error
	UpsertUser(ctx context.Context, user *org.User) error
	UpsertTask(ctx context.Context, task *org.Task) error
	UpsertReport(ctx context.Context, report *org.Report) error
}

// Restorer runs fn inside a single transaction; any error rolls the whole
// restore back.
type Restorer interface {
	Restore(ctx context.Context, fn func(tx RestoreTx) error) error
}
