package restore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/songhq/songwork/internal/domain/org"
	"github.com/songhq/songwork/internal/repository"
	"github.com/songhq/songwork/internal/snapshot"
)

// ErrReferentialIntegrity is returned when a row in the snapshot references
// an id that exists neither in the snapshot's earlier phases nor in the
// live store. The whole restore is rolled back.
var ErrReferentialIntegrity = errors.New("referential integrity violation")

// Counts reports rows processed per entity type (inserted and updated
// combined).
type Counts struct {
	Departments int `json:"departments"`
	Users       int `json:"users"`
	Tasks       int `json:"tasks"`
	Reports     int `json:"reports"`
}

// Engine applies a decoded snapshot to the entity store with upsert
// semantics. Phase order is fixed: departments, users, tasks, reports —
// each later phase may reference ids written by an earlier one. Nothing is
// ever deleted; entities absent from the snapshot are left untouched.
type Engine struct {
	store  repository.Restorer
	logger *slog.Logger
}

// NewEngine creates a new restore engine
func NewEngine(store repository.Restorer, logger *slog.Logger) *Engine {
	return &Engine{store: store, logger: logger}
}

// Apply merges doc into the store inside one transaction. It either commits
// all four phases or none.
func (e *Engine) Apply(ctx context.Context, doc *snapshot.Document) (Counts, error) {
	// Decode everything before touching the store so a malformed record
	// never starts a transaction.
	depts := make([]org.Department, 0, len(doc.Departments))
	for _, rec := range doc.Departments {
		dept, err := snapshot.DecodeDepartment(rec)
		if err != nil {
			return Counts{}, fmt.Errorf("decoding department: %w", err)
		}
		depts = append(depts, dept)
	}

	users := make([]org.User, 0, len(doc.Users))
	for _, rec := range doc.Users {
		user, err := snapshot.DecodeUser(rec)
		if err != nil {
			return Counts{}, fmt.Errorf("decoding user: %w", err)
		}
		users = append(users, user)
	}

	tasks := make([]org.Task, 0, len(doc.Tasks))
	for _, rec := range doc.Tasks {
		task, err := snapshot.DecodeTask(rec)
		if err != nil {
			return Counts{}, fmt.Errorf("decoding task: %w", err)
		}
		tasks = append(tasks, task)
	}

	reports := make([]org.Report, 0, len(doc.Reports))
	for _, rec := range doc.Reports {
		report, err := snapshot.DecodeReport(rec)
		if err != nil {
			return Counts{}, fmt.Errorf("decoding report: %w", err)
		}
		reports = append(reports, report)
	}

	var counts Counts
	err := e.store.Restore(ctx, func(tx repository.RestoreTx) error {
		for i := range depts {
			if err := tx.UpsertDepartment(ctx, &depts[i]); err != nil {
				return mapUpsertErr("department", depts[i].ID, err)
			}
			counts.Departments++
		}

		for i := range users {
			if err := tx.UpsertUser(ctx, &users[i]); err != nil {
				return mapUpsertErr("user", users[i].ID, err)
			}
			counts.Users++
		}

		for i := range tasks {
			if err := tx.UpsertTask(ctx, &tasks[i]); err != nil {
				return mapUpsertErr("task", tasks[i].ID, err)
			}
			counts.Tasks++
		}

		for i := range reports {
			if err := tx.UpsertReport(ctx, &reports[i]); err != nil {
				return mapUpsertErr("report", reports[i].ID, err)
			}
			counts.Reports++
		}

		return nil
	})
	if err != nil {
		return Counts{}, err
	}

	e.logger.Info("restore applied",
		"departments", counts.Departments,
		"users", counts.Users,
		"tasks", counts.Tasks,
		"reports", counts.Reports,
	)

	return counts, nil
}

func mapUpsertErr(entity, id string, err error) error {
	if errors.Is(err, repository.ErrForeignKeyViolation) {
		return fmt.Errorf("%w: %s %s references a missing id", ErrReferentialIntegrity, entity, id)
	}
	return fmt.Errorf("upserting %s %s: %w", entity, id, err)
}
