package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/songhq/songwork/internal/repository"
	"github.com/stretchr/testify/require"
)

func TestDailyRecordRepository_InsertGet(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	repo := NewDailyRecordRepository(db)
	now := time.Now().UTC()
	rec := &repository.DailyRecord{
		ID:          "dr1",
		Date:        "2024-03-05",
		SummaryJSON: `{"date":"2024-03-05"}`,
		TotalTasks:  2,
		DoneCount:   1,
		InProgress:  1,
		DeptCount:   1,
		SavedBy:     "manual",
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	require.NoError(t, repo.Insert(ctx, rec))

	loaded, err := repo.GetByDate(ctx, "2024-03-05")
	require.NoError(t, err)
	require.Equal(t, "dr1", loaded.ID)
	require.Equal(t, 2, loaded.TotalTasks)
	require.Equal(t, "manual", loaded.SavedBy)

	_, err = repo.GetByDate(ctx, "2024-03-06")
	require.Equal(t, repository.ErrNotFound, err)
}

func TestDailyRecordRepository_DateUnique(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	repo := NewDailyRecordRepository(db)
	now := time.Now().UTC()
	rec := &repository.DailyRecord{
		ID: "dr1", Date: "2024-03-05", SummaryJSON: "{}",
		SavedBy: "auto", CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, repo.Insert(ctx, rec))

	dup := &repository.DailyRecord{
		ID: "dr2", Date: "2024-03-05", SummaryJSON: "{}",
		SavedBy: "auto", CreatedAt: now, UpdatedAt: now,
	}
	err := repo.Insert(ctx, dup)
	require.Equal(t, repository.ErrUniqueViolation, err)
}

func TestDailyRecordRepository_UpdatePreservesIdentity(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	repo := NewDailyRecordRepository(db)
	created := time.Date(2024, 3, 6, 0, 0, 5, 0, time.UTC)
	rec := &repository.DailyRecord{
		ID: "dr1", Date: "2024-03-05", SummaryJSON: "{}",
		TotalTasks: 1, SavedBy: "auto", CreatedAt: created, UpdatedAt: created,
	}
	require.NoError(t, repo.Insert(ctx, rec))

	rec.TotalTasks = 3
	rec.SavedBy = "manual"
	rec.UpdatedAt = created.Add(time.Hour)
	require.NoError(t, repo.Update(ctx, rec))

	loaded, err := repo.GetByDate(ctx, "2024-03-05")
	require.NoError(t, err)
	require.Equal(t, "dr1", loaded.ID)
	require.Equal(t, 3, loaded.TotalTasks)
	require.Equal(t, "manual", loaded.SavedBy)
	require.WithinDuration(t, created, loaded.CreatedAt, time.Second)

	missing := &repository.DailyRecord{ID: "nope", UpdatedAt: created}
	require.Equal(t, repository.ErrNotFound, repo.Update(ctx, missing))
}

func TestDailyRecordRepository_ListNewestFirst(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	repo := NewDailyRecordRepository(db)
	now := time.Now().UTC()
	for _, date := range []string{"2024-03-04", "2024-03-06", "2024-03-05"} {
		rec := &repository.DailyRecord{
			ID: "dr-" + date, Date: date, SummaryJSON: "{}",
			SavedBy: "auto", CreatedAt: now, UpdatedAt: now,
		}
		require.NoError(t, repo.Insert(ctx, rec))
	}

	recs, err := repo.List(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	require.Equal(t, "2024-03-06", recs[0].Date)
	require.Equal(t, "2024-03-05", recs[1].Date)
	require.Equal(t, "2024-03-04", recs[2].Date)

	page, err := repo.List(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	require.Equal(t, "2024-03-05", page[0].Date)
}

func TestDailyRecordRepository_DeleteByDate(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	repo := NewDailyRecordRepository(db)
	now := time.Now().UTC()
	rec := &repository.DailyRecord{
		ID: "dr1", Date: "2024-03-05", SummaryJSON: "{}",
		SavedBy: "manual", CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, repo.Insert(ctx, rec))

	require.NoError(t, repo.DeleteByDate(ctx, "2024-03-05"))
	require.Equal(t, repository.ErrNotFound, repo.DeleteByDate(ctx, "2024-03-05"))
}
