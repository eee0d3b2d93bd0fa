package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	notificationservice "questboard/contexts/task-engagement/notification-service"
	notificationpostgres "questboard/contexts/task-engagement/notification-service/adapters/postgres"
	submissionservice "questboard/contexts/task-engagement/submission-service"
	submissionpostgres "questboard/contexts/task-engagement/submission-service/adapters/postgres"
	"questboard/contexts/task-engagement/submission-service/application/commands"
	submissionerrors "questboard/contexts/task-engagement/submission-service/domain/errors"
	"questboard/internal/platform/config"
	"questboard/internal/platform/db"
	"questboard/internal/platform/metrics"
	"questboard/internal/platform/objectstore"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

// Runtime holds the wiring shared by the api and worker processes.
type Runtime struct {
	Config        config.Config
	Logger        *slog.Logger
	Database      *db.Database
	Submissions   submissionservice.Module
	Notifications notificationservice.Module
	Repository    *submissionpostgres.Repository
	Registry      *prometheus.Registry
	Metrics       *metrics.Recorder

	notificationRepo *notificationpostgres.Repository
	closers          []func() error
}

func Build(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Runtime, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("service", cfg.ServiceName)

	database, err := openDatabase(cfg)
	if err != nil {
		return nil, err
	}
	rt := &Runtime{
		Config:   cfg,
		Logger:   logger,
		Database: database,
		closers:  []func() error{database.Close},
	}

	store, err := buildObjectStore(ctx, cfg)
	if err != nil {
		_ = rt.Close()
		return nil, err
	}
	if closer, ok := store.(interface{ Close() error }); ok {
		rt.closers = append(rt.closers, closer.Close)
	}

	rt.Registry = prometheus.NewRegistry()
	rt.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	rt.Metrics = metrics.NewRecorder(rt.Registry)

	rt.notificationRepo = notificationpostgres.NewRepository(database.DB, logger)
	rt.Notifications = notificationservice.NewModule(notificationservice.Dependencies{
		Repository:  rt.notificationRepo,
		Clock:       notificationpostgres.SystemClock{},
		IDGenerator: notificationpostgres.UUIDGenerator{},
		Logger:      logger,
	})

	rt.Repository = submissionpostgres.NewRepository(database.DB, logger)
	rt.Submissions = submissionservice.NewModule(submissionservice.Dependencies{
		Repository:   rt.Repository,
		ObjectStore:  evidenceStore{store: store},
		Notifier:     notificationBridge{service: rt.Notifications.Service},
		Metrics:      rt.Metrics,
		Clock:        submissionpostgres.SystemClock{},
		IDGen:        submissionpostgres.UUIDGenerator{},
		Quota:        cfg.SubmissionQuota,
		Window:       cfg.SubmissionWindow,
		MaxBlobBytes: cfg.MaxUploadBytes,
		Logger:       logger,
	})
	return rt, nil
}

// Migrate creates or updates every table owned by the runtime.
func (rt *Runtime) Migrate(ctx context.Context) error {
	if err := rt.Repository.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate submission tables: %w", err)
	}
	if err := rt.notificationRepo.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate notification tables: %w", err)
	}
	rt.Logger.Info("schema migrated",
		"event", "bootstrap_schema_migrated",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"driver", rt.Database.Driver,
	)
	return nil
}

// ImportTasks adds catalog entries that are not present yet and reports how
// many were created.
func (rt *Runtime) ImportTasks(ctx context.Context, specs []config.TaskSpec) (int, error) {
	created := 0
	for _, spec := range specs {
		_, err := rt.Submissions.Handler.CreateTask.Execute(ctx, commands.CreateTaskCommand{
			Title:       spec.Title,
			Description: spec.Description,
			PointValue:  spec.Points,
		})
		if errors.Is(err, submissionerrors.ErrDuplicateTask) {
			continue
		}
		if err != nil {
			return created, fmt.Errorf("import task %q: %w", spec.Title, err)
		}
		created++
	}
	return created, nil
}

func (rt *Runtime) Close() error {
	var errs []error
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func openDatabase(cfg config.Config) (*db.Database, error) {
	switch cfg.DBDriver {
	case config.DBDriverPostgres:
		return db.Connect(cfg.PostgresDSN)
	case config.DBDriverSQLite:
		return db.OpenSQLite(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
}

func buildObjectStore(ctx context.Context, cfg config.Config) (objectstore.Store, error) {
	switch cfg.ObjectStore {
	case config.ObjectStoreS3:
		return objectstore.NewS3Store(ctx, objectstore.S3Config{
			Bucket:       cfg.S3Bucket,
			Region:       cfg.S3Region,
			Endpoint:     cfg.S3Endpoint,
			UsePathStyle: cfg.S3UsePathStyle,
			Prefix:       cfg.ObjectPrefix,
		})
	case config.ObjectStoreGCS:
		return objectstore.NewGCSStore(ctx, objectstore.GCSConfig{
			Bucket: cfg.GCSBucket,
			Prefix: cfg.ObjectPrefix,
		})
	case config.ObjectStoreMemory, "":
		return objectstore.NewMemoryStore(cfg.ObjectPrefix), nil
	default:
		return nil, fmt.Errorf("unsupported OBJECT_STORE %q", cfg.ObjectStore)
	}
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
