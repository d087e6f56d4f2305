package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/songhq/songwork/internal/archive"
	"github.com/songhq/songwork/internal/backup"
	"github.com/songhq/songwork/internal/config"
	"github.com/songhq/songwork/internal/restore"
	"github.com/songhq/songwork/internal/scheduler"
	"github.com/songhq/songwork/internal/seed"
	"github.com/songhq/songwork/internal/snapshot"
	"github.com/songhq/songwork/internal/sqlite"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))

	if err := ensureDBDir(cfg.DB.Path); err != nil {
		logger.Error("failed to prepare database path", "error", err)
		os.Exit(1)
	}

	db, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	deptRepo := sqlite.NewDepartmentRepository(db)
	userRepo := sqlite.NewUserRepository(db)
	taskRepo := sqlite.NewTaskRepository(db)
	reportRepo := sqlite.NewReportRepository(db)
	recordRepo := sqlite.NewDailyRecordRepository(db)
	restoreStore := sqlite.NewRestoreStore(db)

	snapStore := snapshot.NewFileStore(cfg.Snapshot.Path)
	engine := restore.NewEngine(restoreStore, logger)
	backupSvc := backup.NewService(deptRepo, userRepo, taskRepo, reportRepo, engine, snapStore, logger)
	archiveSvc := archive.NewService(sqlite.NewArchiveStore(db), recordRepo, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := seed.IfEmpty(ctx, userRepo, deptRepo, logger); err != nil {
		logger.Error("failed to seed initial data", "error", err)
		os.Exit(1)
	}

	// Cold-start restore runs to completion before the scheduler starts,
	// so the first fire never races it.
	if cfg.Snapshot.RestoreOnStart {
		if _, restored, err := backupSvc.RestoreOnStart(ctx); err != nil {
			logger.Error("startup restore failed", "error", err)
		} else if restored {
			logger.Info("startup restore complete")
		}
	}

	sched := scheduler.New(archiveSvc, backupSvc, logger)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: healthRouter(backupSvc),
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sched.Run(ctx)
		return nil
	})
	g.Go(func() error {
		logger.Info("server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server error", "error", err)
	}

	// Best-effort final snapshot before exit.
	logger.Info("shutting down")
	saveCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := backupSvc.SaveNow(saveCtx); err != nil {
		logger.Error("final snapshot failed", "error", err)
	}
}

func healthRouter(backupSvc *backup.Service) http.Handler {
	router := http.NewServeMux()
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		info := backupSvc.Info()
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":              "ok",
			"service":             "songwork",
			"snapshot_exists":     info.Exists,
			"snapshot_size_bytes": info.SizeBytes,
		})
	})
	return router
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
