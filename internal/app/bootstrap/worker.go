package bootstrap

import (
	"context"
	"log/slog"

	postgresadapter "questboard/contexts/task-engagement/submission-service/adapters/postgres"
	"questboard/contexts/task-engagement/submission-service/application/workers"
	"questboard/internal/platform/config"
	"questboard/internal/platform/messaging"
)

type WorkerApp struct {
	runtime     *Runtime
	bus         *messaging.Bus
	outboxRelay workers.OutboxRelay
	audit       workers.DecisionAuditConsumer
	enableAudit bool
	logger      *slog.Logger
}

func BuildWorker(ctx context.Context, cfg config.Config, logger *slog.Logger) (*WorkerApp, error) {
	rt, err := Build(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	logger = rt.Logger.With("process", "worker")
	if cfg.DBDriver == config.DBDriverSQLite {
		if err := rt.Migrate(ctx); err != nil {
			_ = rt.Close()
			return nil, err
		}
	}
	bus := messaging.NewBus(logger)

	return &WorkerApp{
		runtime: rt,
		bus:     bus,
		outboxRelay: workers.OutboxRelay{
			Outbox:    rt.Repository,
			Publisher: bus,
			Clock:     postgresadapter.SystemClock{},
			BatchSize: 100,
			Interval:  cfg.OutboxInterval,
			Logger:    logger,
		},
		audit: workers.DecisionAuditConsumer{
			Subscriber: bus,
			Logger:     logger,
		},
		enableAudit: cfg.EnableDecisionAudit,
		logger:      logger,
	}, nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	if w.enableAudit {
		if err := w.audit.Start(ctx); err != nil {
			return err
		}
	}
	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", w.outboxRelay.Interval.String(),
		"decision_audit", w.enableAudit,
	)
	return w.outboxRelay.Run(ctx)
}

func (w *WorkerApp) Close() error {
	_ = w.bus.Close()
	return w.runtime.Close()
}
