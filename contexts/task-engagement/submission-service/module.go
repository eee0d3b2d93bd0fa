package submissionservice

import (
	"log/slog"
	"time"

	httpadapter "questboard/contexts/task-engagement/submission-service/adapters/http"
	"questboard/contexts/task-engagement/submission-service/adapters/memory"
	"questboard/contexts/task-engagement/submission-service/application/commands"
	"questboard/contexts/task-engagement/submission-service/application/queries"
	"questboard/contexts/task-engagement/submission-service/domain/services"
	"questboard/contexts/task-engagement/submission-service/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Repository   ports.Repository
	ObjectStore  ports.ObjectStore
	Notifier     ports.Notifier
	Metrics      ports.Metrics
	Clock        ports.Clock
	IDGen        ports.IDGenerator
	Quota        int
	Window       time.Duration
	MaxBlobBytes int64
	Logger       *slog.Logger
}

func NewModule(deps Dependencies) Module {
	gate := services.NewSubmissionGate(deps.Quota, deps.Window)
	submitTask := commands.SubmitTaskUseCase{
		Repository:   deps.Repository,
		ObjectStore:  deps.ObjectStore,
		Gate:         gate,
		Clock:        deps.Clock,
		IDGen:        deps.IDGen,
		Metrics:      deps.Metrics,
		MaxBlobBytes: deps.MaxBlobBytes,
		Logger:       deps.Logger,
	}
	decideSubmission := commands.DecideSubmissionUseCase{
		Repository:  deps.Repository,
		ObjectStore: deps.ObjectStore,
		Notifier:    deps.Notifier,
		Clock:       deps.Clock,
		IDGen:       deps.IDGen,
		Metrics:     deps.Metrics,
		Logger:      deps.Logger,
	}
	createTask := commands.CreateTaskUseCase{
		Repository: deps.Repository,
		Clock:      deps.Clock,
		IDGen:      deps.IDGen,
		Logger:     deps.Logger,
	}
	ensureMember := commands.EnsureMemberUseCase{
		Repository: deps.Repository,
		Clock:      deps.Clock,
		Logger:     deps.Logger,
	}
	queryUseCase := queries.QueryUseCase{
		Repository: deps.Repository,
		Gate:       gate,
		Clock:      deps.Clock,
		Logger:     deps.Logger,
	}

	return Module{
		Handler: httpadapter.Handler{
			SubmitTask:       submitTask,
			DecideSubmission: decideSubmission,
			CreateTask:       createTask,
			EnsureMember:     ensureMember,
			Queries:          queryUseCase,
			Logger:           deps.Logger,
		},
	}
}

// NewInMemoryModule wires the module onto a memory store that also acts as
// clock and ID generator.
func NewInMemoryModule(seed memory.Seed, objectStore ports.ObjectStore, notifier ports.Notifier, logger *slog.Logger) Module {
	store := memory.NewStore(seed)
	module := NewModule(Dependencies{
		Repository:  store,
		ObjectStore: objectStore,
		Notifier:    notifier,
		Clock:       store,
		IDGen:       store,
		Logger:      logger,
	})
	module.Store = store
	return module
}
