package backup

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/songhq/songwork/internal/domain/org"
	"github.com/songhq/songwork/internal/restore"
	"github.com/songhq/songwork/internal/snapshot"
	"github.com/songhq/songwork/internal/sqlite"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*Service, *sqlite.DB) {
	t.Helper()
	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine := restore.NewEngine(sqlite.NewRestoreStore(db), logger)
	store := snapshot.NewFileStore(filepath.Join(t.TempDir(), "backup.json"))

	svc := NewService(
		sqlite.NewDepartmentRepository(db),
		sqlite.NewUserRepository(db),
		sqlite.NewTaskRepository(db),
		sqlite.NewReportRepository(db),
		engine, store, logger,
	)
	return svc, db
}

func seedStore(t *testing.T, db *sqlite.DB) {
	t.Helper()
	ctx := context.Background()
	created := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

	require.NoError(t, sqlite.NewDepartmentRepository(db).Create(ctx, &org.Department{
		ID: "d1", Name: "Ops", Emoji: "🏢", CreatedAt: created,
	}))
	require.NoError(t, sqlite.NewUserRepository(db).Create(ctx, &org.User{
		ID: "u1", Username: "master", Password: "$2b$12$hash", DisplayName: "Director",
		Role: org.RoleMaster, IsActive: true, CreatedAt: created,
	}))
	require.NoError(t, sqlite.NewTaskRepository(db).Create(ctx, &org.Task{
		ID: "t1", Title: "Inspect", DeptID: "d1",
		Status: org.StatusDone, Priority: org.PriorityHigh,
		CreatedAt: created, UpdatedAt: created,
	}))
	require.NoError(t, sqlite.NewReportRepository(db).Create(ctx, &org.Report{
		ID: "r1", TaskID: "t1", Content: "all clear",
		CreatedAt: created, UpdatedAt: created,
	}))
}

func TestService_SaveNowReflectsDisk(t *testing.T) {
	svc, db := newTestService(t)
	seedStore(t, db)

	result, err := svc.SaveNow(context.Background())
	require.NoError(t, err)
	require.True(t, result.OK)
	require.True(t, result.Exists)
	require.Greater(t, result.SizeBytes, int64(0))
	require.NotEmpty(t, result.Path)

	info := svc.Info()
	require.True(t, info.Exists)
	require.Equal(t, result.SizeBytes, info.SizeBytes)
}

func TestService_ExportImportRoundTrip(t *testing.T) {
	source, sourceDB := newTestService(t)
	seedStore(t, sourceDB)
	ctx := context.Background()

	doc, err := source.Export(ctx)
	require.NoError(t, err)
	require.Len(t, doc.Departments, 1)
	require.Len(t, doc.Users, 1)
	require.Len(t, doc.Tasks, 1)
	require.Len(t, doc.Reports, 1)
	require.NotEmpty(t, doc.SavedAt)

	dest, destDB := newTestService(t)
	counts, err := dest.Import(ctx, doc)
	require.NoError(t, err)
	require.Equal(t, restore.Counts{Departments: 1, Users: 1, Tasks: 1, Reports: 1}, counts)

	user, err := sqlite.NewUserRepository(destDB).Get(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, "$2b$12$hash", user.Password)

	// Import refreshes the destination's own snapshot file.
	info := dest.Info()
	require.True(t, info.Exists)
}

func TestService_RestoreOnStartMissingSnapshot(t *testing.T) {
	svc, _ := newTestService(t)

	counts, restored, err := svc.RestoreOnStart(context.Background())
	require.NoError(t, err)
	require.False(t, restored)
	require.Zero(t, counts)
}

func TestService_RestoreOnStartLoadsSavedSnapshot(t *testing.T) {
	svc, db := newTestService(t)
	seedStore(t, db)
	ctx := context.Background()

	_, err := svc.SaveNow(ctx)
	require.NoError(t, err)

	counts, restored, err := svc.RestoreOnStart(ctx)
	require.NoError(t, err)
	require.True(t, restored)
	require.Equal(t, restore.Counts{Departments: 1, Users: 1, Tasks: 1, Reports: 1}, counts)
}

func TestService_ExportStampsCanonicalSavedAt(t *testing.T) {
	svc, _ := newTestService(t)
	at := time.Date(2024, 3, 6, 0, 0, 5, 123456000, time.UTC)
	svc.now = func() time.Time { return at }

	doc, err := svc.Export(context.Background())
	require.NoError(t, err)
	require.Equal(t, snapshot.EncodeTimestamp(at), doc.SavedAt)
	require.Equal(t, "2024-03-06T00:00:05.123456", doc.SavedAt)
}

func TestService_ExportEmptyStore(t *testing.T) {
	svc, _ := newTestService(t)

	doc, err := svc.Export(context.Background())
	require.NoError(t, err)
	require.Empty(t, doc.Departments)
	require.Empty(t, doc.Users)
	require.Empty(t, doc.Tasks)
	require.Empty(t, doc.Reports)
	require.NotNil(t, doc.Departments)
}
