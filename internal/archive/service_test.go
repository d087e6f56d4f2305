package archive

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/songhq/songwork/internal/domain/org"
	"github.com/songhq/songwork/internal/repository"
	"github.com/songhq/songwork/internal/sqlite"
	"github.com/stretchr/testify/require"
)

// trackingStore counts Archive calls so tests can assert that an operation's
// reads and writes all ran inside a single transaction.
type trackingStore struct {
	inner repository.ArchiveStore
	txs   int
}

func (s *trackingStore) Archive(ctx context.Context, fn func(tx repository.ArchiveTx) error) error {
	s.txs++
	return s.inner.Archive(ctx, fn)
}

type testFixture struct {
	svc     *Service
	store   *trackingStore
	depts   *sqlite.DepartmentRepository
	tasks   *sqlite.TaskRepository
	reports *sqlite.ReportRepository
}

func newTestFixture(t *testing.T) *testFixture {
	t.Helper()
	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())
	t.Cleanup(func() { db.Close() })

	store := &trackingStore{inner: sqlite.NewArchiveStore(db)}
	records := sqlite.NewDailyRecordRepository(db)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return &testFixture{
		svc:     NewService(store, records, logger),
		store:   store,
		depts:   sqlite.NewDepartmentRepository(db),
		tasks:   sqlite.NewTaskRepository(db),
		reports: sqlite.NewReportRepository(db),
	}
}

func strPtr(val string) *string {
	return &val
}

// seedActivity sets up one department with a done task without reports and an
// in-progress task that was reported on both March 5 and March 6.
func seedActivity(t *testing.T, f *testFixture) {
	t.Helper()
	ctx := context.Background()
	created := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

	require.NoError(t, f.depts.Create(ctx, &org.Department{
		ID: "d1", Name: "Ops", Emoji: "🏢", ManagerName: strPtr("Kim"), CreatedAt: created,
	}))
	require.NoError(t, f.tasks.Create(ctx, &org.Task{
		ID: "task-a", Title: "Task A", DeptID: "d1",
		Status: org.StatusDone, Priority: org.PriorityHigh,
		CreatedAt: created, UpdatedAt: created,
	}))
	require.NoError(t, f.tasks.Create(ctx, &org.Task{
		ID: "task-b", Title: "Task B", DeptID: "d1",
		Status: org.StatusInProgress, Priority: org.PriorityMedium,
		CreatedAt: created.Add(time.Minute), UpdatedAt: created,
	}))
	require.NoError(t, f.reports.Create(ctx, &org.Report{
		ID: "r-05", TaskID: "task-b", Content: "progress on the 5th",
		CreatedAt: time.Date(2024, 3, 5, 14, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2024, 3, 5, 14, 0, 0, 0, time.UTC),
	}))
	require.NoError(t, f.reports.Create(ctx, &org.Report{
		ID: "r-06", TaskID: "task-b", Content: "progress on the 6th",
		CreatedAt: time.Date(2024, 3, 6, 9, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2024, 3, 6, 9, 0, 0, 0, time.UTC),
	}))
}

func TestService_BuildSummaryFiltersReportsByDate(t *testing.T) {
	f := newTestFixture(t)
	seedActivity(t, f)
	ctx := context.Background()

	date, err := ParseDate("2024-03-05")
	require.NoError(t, err)

	summary, err := f.svc.BuildSummary(ctx, date)
	require.NoError(t, err)

	require.Equal(t, "2024-03-05", summary.Date)
	require.Equal(t, 2, summary.TotalTasks)
	require.Equal(t, 1, summary.DoneCount)
	require.Equal(t, 1, summary.InProgress)
	require.Equal(t, 0, summary.NotStarted)
	require.Equal(t, 1, summary.DeptCount)

	require.Len(t, summary.Departments, 1)
	dept := summary.Departments[0]
	require.Equal(t, "d1", dept.DeptID)
	require.Len(t, dept.Tasks, 2)

	// Done task qualifies even without reports; its report list is empty,
	// not null.
	taskA := dept.Tasks[0]
	require.Equal(t, "task-a", taskA.ID)
	require.Empty(t, taskA.Reports)
	require.NotNil(t, taskA.Reports)

	// Reported task embeds only the target date's report.
	taskB := dept.Tasks[1]
	require.Equal(t, "task-b", taskB.ID)
	require.Len(t, taskB.Reports, 1)
	require.Equal(t, "r-05", taskB.Reports[0].ID)
}

func TestService_BuildSummaryOmitsQuietDepartments(t *testing.T) {
	f := newTestFixture(t)
	seedActivity(t, f)
	ctx := context.Background()

	require.NoError(t, f.depts.Create(ctx, &org.Department{
		ID: "d-quiet", Name: "Quiet", Emoji: "📁",
		CreatedAt: time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC),
	}))

	date, err := ParseDate("2024-03-05")
	require.NoError(t, err)

	summary, err := f.svc.BuildSummary(ctx, date)
	require.NoError(t, err)
	require.Len(t, summary.Departments, 1)
	require.Equal(t, 1, summary.DeptCount)
}

func TestService_BuildSummaryCountsHiddenDoneTasks(t *testing.T) {
	f := newTestFixture(t)
	ctx := context.Background()
	created := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	hidden := time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC)

	require.NoError(t, f.depts.Create(ctx, &org.Department{
		ID: "d1", Name: "Ops", Emoji: "🏢", CreatedAt: created,
	}))
	require.NoError(t, f.tasks.Create(ctx, &org.Task{
		ID: "t-hidden", Title: "Archived board item", DeptID: "d1",
		Status: org.StatusDone, Priority: org.PriorityLow,
		IsHidden: true, HiddenAt: &hidden,
		CreatedAt: created, UpdatedAt: hidden,
	}))

	date, err := ParseDate("2024-03-05")
	require.NoError(t, err)

	summary, err := f.svc.BuildSummary(ctx, date)
	require.NoError(t, err)
	require.Equal(t, 1, summary.TotalTasks)
	require.Equal(t, 1, summary.DoneCount)
}

func TestService_SaveThenOverwrite(t *testing.T) {
	f := newTestFixture(t)
	seedActivity(t, f)
	ctx := context.Background()

	date, err := ParseDate("2024-03-05")
	require.NoError(t, err)

	first, err := f.svc.Save(ctx, date, OriginAuto)
	require.NoError(t, err)
	require.Equal(t, "2024-03-05", first.Date)
	require.Equal(t, OriginAuto, first.SavedBy)
	require.Equal(t, 2, first.TotalTasks)

	// Stored blob round-trips back into the summary shape.
	var stored DaySummary
	require.NoError(t, json.Unmarshal([]byte(first.SummaryJSON), &stored))
	require.Equal(t, "2024-03-05", stored.Date)

	// Re-saving the same date keeps identity and switches the origin tag.
	second, err := f.svc.Save(ctx, date, OriginManual)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.WithinDuration(t, first.CreatedAt, second.CreatedAt, time.Second)
	require.Equal(t, OriginManual, second.SavedBy)
	require.Equal(t, first.TotalTasks, second.TotalTasks)
	require.Equal(t, first.DoneCount, second.DoneCount)
}

func TestService_BuildSummaryReadsOneTransaction(t *testing.T) {
	f := newTestFixture(t)
	seedActivity(t, f)
	ctx := context.Background()

	date, err := ParseDate("2024-03-05")
	require.NoError(t, err)

	_, err = f.svc.BuildSummary(ctx, date)
	require.NoError(t, err)
	require.Equal(t, 1, f.store.txs)
}

func TestService_SaveAggregatesAndUpsertsInOneTransaction(t *testing.T) {
	f := newTestFixture(t)
	seedActivity(t, f)
	ctx := context.Background()

	date, err := ParseDate("2024-03-05")
	require.NoError(t, err)

	_, err = f.svc.Save(ctx, date, OriginAuto)
	require.NoError(t, err)
	require.Equal(t, 1, f.store.txs)

	_, err = f.svc.Save(ctx, date, OriginManual)
	require.NoError(t, err)
	require.Equal(t, 2, f.store.txs)
}

func TestService_SaveZeroDateDefaultsToToday(t *testing.T) {
	f := newTestFixture(t)
	seedActivity(t, f)
	ctx := context.Background()

	f.svc.now = func() time.Time {
		return time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC)
	}

	rec, err := f.svc.Save(ctx, time.Time{}, OriginManual)
	require.NoError(t, err)
	require.Equal(t, "2024-03-05", rec.Date)
	require.Equal(t, 2, rec.TotalTasks)
}

func TestService_ListNewestFirstWithClamp(t *testing.T) {
	f := newTestFixture(t)
	seedActivity(t, f)
	ctx := context.Background()

	for _, day := range []string{"2024-03-05", "2024-03-06", "2024-03-07"} {
		date, err := ParseDate(day)
		require.NoError(t, err)
		_, err = f.svc.Save(ctx, date, OriginAuto)
		require.NoError(t, err)
	}

	items, err := f.svc.List(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, items, 3)
	require.Equal(t, "2024-03-07", items[0].Date)
	require.Equal(t, "2024-03-05", items[2].Date)

	page, err := f.svc.List(ctx, 2, 1)
	require.NoError(t, err)
	require.Len(t, page, 2)
	require.Equal(t, "2024-03-06", page[0].Date)
}

func TestService_GetAndDelete(t *testing.T) {
	f := newTestFixture(t)
	seedActivity(t, f)
	ctx := context.Background()

	date, err := ParseDate("2024-03-05")
	require.NoError(t, err)
	_, err = f.svc.Save(ctx, date, OriginManual)
	require.NoError(t, err)

	rec, err := f.svc.Get(ctx, "2024-03-05")
	require.NoError(t, err)
	require.Equal(t, "2024-03-05", rec.Date)

	require.NoError(t, f.svc.Delete(ctx, "2024-03-05"))

	_, err = f.svc.Get(ctx, "2024-03-05")
	require.ErrorIs(t, err, ErrRecordNotFound)
	require.ErrorIs(t, f.svc.Delete(ctx, "2024-03-05"), ErrRecordNotFound)
}

func TestParseDate(t *testing.T) {
	date, err := ParseDate("2024-03-05")
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), date)

	_, err = ParseDate("03/05/2024")
	require.ErrorIs(t, err, ErrInvalidDate)

	_, err = ParseDate("2024-13-40")
	require.ErrorIs(t, err, ErrInvalidDate)
}
