package backup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/songhq/songwork/internal/repository"
	"github.com/songhq/songwork/internal/restore"
	"github.com/songhq/songwork/internal/snapshot"
)

// SaveResult reports the outcome of a snapshot write
type SaveResult struct {
	OK        bool   `json:"ok"`
	Path      string `json:"path"`
	Exists    bool   `json:"exists"`
	SizeBytes int64  `json:"size_bytes"`
}

// Info describes the snapshot location for health reporting
type Info struct {
	Path      string `json:"path"`
	Exists    bool   `json:"exists"`
	SizeBytes int64  `json:"size_bytes"`
}

// Service is the durability facade: it exports the full entity store to the
// snapshot file and imports snapshots back through the merge engine.
type Service struct {
	depts   repository.DepartmentRepository
	users   repository.UserRepository
	tasks   repository.TaskRepository
	reports repository.ReportRepository
	engine  *restore.Engine
	store   *snapshot.FileStore
	logger  *slog.Logger
	now     func() time.Time
}

// NewService creates a new backup service.
func NewService(
	depts repository.DepartmentRepository,
	users repository.UserRepository,
	tasks repository.TaskRepository,
	reports repository.ReportRepository,
	engine *restore.Engine,
	store *snapshot.FileStore,
	logger *slog.Logger,
) *Service {
	return &Service{
		depts:   depts,
		users:   users,
		tasks:   tasks,
		reports: reports,
		engine:  engine,
		store:   store,
		logger:  logger,
		now:     time.Now,
	}
}

// Export builds a full-dataset snapshot document from the live store. Each
// list is ordered by creation time ascending for deterministic diffing.
func (s *Service) Export(ctx context.Context) (*snapshot.Document, error) {
	depts, err := s.depts.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing departments: %w", err)
	}
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	tasks, err := s.tasks.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	reports, err := s.reports.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing reports: %w", err)
	}

	doc := &snapshot.Document{
		SavedAt:     snapshot.EncodeTimestamp(s.now()),
		Departments: make([]snapshot.DepartmentRecord, 0, len(depts)),
		Users:       make([]snapshot.UserRecord, 0, len(users)),
		Tasks:       make([]snapshot.TaskRecord, 0, len(tasks)),
		Reports:     make([]snapshot.ReportRecord, 0, len(reports)),
	}
	for _, d := range depts {
		doc.Departments = append(doc.Departments, snapshot.EncodeDepartment(d))
	}
	for _, u := range users {
		doc.Users = append(doc.Users, snapshot.EncodeUser(u))
	}
	for _, t := range tasks {
		doc.Tasks = append(doc.Tasks, snapshot.EncodeTask(t))
	}
	for _, r := range reports {
		doc.Reports = append(doc.Reports, snapshot.EncodeReport(r))
	}

	return doc, nil
}

// SaveNow writes a fresh snapshot of the entire store. A failed write leaves
// any prior snapshot intact; the result always reflects what is on disk.
func (s *Service) SaveNow(ctx context.Context) (SaveResult, error) {
	doc, err := s.Export(ctx)
	if err == nil {
		err = s.store.Write(doc)
	}

	exists, size := s.store.Stat()
	result := SaveResult{
		OK:        err == nil,
		Path:      s.store.Path(),
		Exists:    exists,
		SizeBytes: size,
	}
	if err != nil {
		return result, fmt.Errorf("saving snapshot: %w", err)
	}

	s.logger.Info("snapshot saved",
		"path", result.Path,
		"size_bytes", result.SizeBytes,
		"departments", len(doc.Departments),
		"users", len(doc.Users),
		"tasks", len(doc.Tasks),
		"reports", len(doc.Reports),
	)
	return result, nil
}

// Import merges an externally supplied snapshot document into the store.
// The merge is transactional: it either applies fully or not at all. On
// success the on-disk snapshot is refreshed to match, best-effort.
func (s *Service) Import(ctx context.Context, doc *snapshot.Document) (restore.Counts, error) {
	counts, err := s.engine.Apply(ctx, doc)
	if err != nil {
		return restore.Counts{}, err
	}

	if _, err := s.SaveNow(ctx); err != nil {
		s.logger.Warn("post-import snapshot refresh failed", "error", err)
	}

	return counts, nil
}

// RestoreOnStart loads the snapshot file, if any, and merges it into the
// store. A missing snapshot is not an error — there is simply nothing to
// restore.
func (s *Service) RestoreOnStart(ctx context.Context) (restore.Counts, bool, error) {
	doc, err := s.store.Read()
	if err != nil {
		if errors.Is(err, snapshot.ErrNotFound) {
			s.logger.Info("no snapshot found, starting from the live store")
			return restore.Counts{}, false, nil
		}
		return restore.Counts{}, false, err
	}

	counts, err := s.engine.Apply(ctx, doc)
	if err != nil {
		return restore.Counts{}, false, err
	}

	s.logger.Info("restored from snapshot", "saved_at", doc.SavedAt)
	return counts, true, nil
}

// Info reports the snapshot file state for the health surface
func (s *Service) Info() Info {
	exists, size := s.store.Stat()
	return Info{
		Path:      s.store.Path(),
		Exists:    exists,
		SizeBytes: size,
	}
}
