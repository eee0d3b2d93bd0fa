package bootstrap

import (
	"context"
	"log/slog"
	"strings"

	"questboard/internal/platform/auth"
	"questboard/internal/platform/config"
	"questboard/internal/platform/httpserver"
	"questboard/internal/platform/metrics"
	"questboard/internal/platform/throttle"
)

type APIApp struct {
	runtime *Runtime
	server  *httpserver.Server
	logger  *slog.Logger
}

func BuildAPI(ctx context.Context, cfg config.Config, logger *slog.Logger) (*APIApp, error) {
	rt, err := Build(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	logger = rt.Logger.With("process", "api")

	if cfg.DBDriver == config.DBDriverSQLite {
		if err := rt.Migrate(ctx); err != nil {
			_ = rt.Close()
			return nil, err
		}
	}
	if strings.TrimSpace(cfg.TaskCatalogPath) != "" {
		specs, err := config.LoadTaskCatalog(cfg.TaskCatalogPath)
		if err != nil {
			_ = rt.Close()
			return nil, err
		}
		created, err := rt.ImportTasks(ctx, specs)
		if err != nil {
			_ = rt.Close()
			return nil, err
		}
		logger.Info("task catalog imported",
			"event", "bootstrap_task_catalog_imported",
			"module", "internal/app/bootstrap",
			"layer", "platform",
			"path", cfg.TaskCatalogPath,
			"created_count", created,
		)
	}

	verifier := auth.NewVerifier(cfg.JWTSecret, cfg.JWTIssuer)
	if verifier == nil {
		logger.Warn("JWT_SECRET is empty, authenticated routes will reject every request",
			"event", "bootstrap_auth_not_configured",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}

	server := httpserver.New(httpserver.Options{
		Submissions:    rt.Submissions,
		Notifications:  rt.Notifications,
		Verifier:       verifier,
		UploadLimiter:  buildLimiter(cfg, rt),
		Throttled:      rt.Metrics,
		Database:       rt.Database,
		MetricsHandler: metrics.Handler(rt.Registry),
		MaxUploadBytes: cfg.MaxUploadBytes,
		Addr:           normalizeAddr(cfg.HTTPPort),
		Logger:         logger,
	})
	return &APIApp{
		runtime: rt,
		server:  server,
		logger:  logger,
	}, nil
}

func buildLimiter(cfg config.Config, rt *Runtime) throttle.Limiter {
	policy := throttle.Policy{
		PerMinute: cfg.UploadRatePerMinute,
		Burst:     cfg.UploadBurst,
	}
	if strings.TrimSpace(cfg.RedisAddr) == "" {
		return throttle.NewLocalLimiter(policy)
	}
	client := throttle.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword)
	rt.closers = append(rt.closers, client.Close)
	return throttle.NewRedisLimiter(client, policy)
}

func (a *APIApp) Run(ctx context.Context) error {
	a.logger.Info("api app started",
		"event", "bootstrap_api_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
	)
	return a.server.Run(ctx)
}

func (a *APIApp) Close() error {
	return a.runtime.Close()
}
