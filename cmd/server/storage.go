package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/fastygo/taskmanager/internal/config"
	"github.com/fastygo/taskmanager/internal/infrastructure/monitor"
	pgInfra "github.com/fastygo/taskmanager/internal/infrastructure/postgres"
	redisInfra "github.com/fastygo/taskmanager/internal/infrastructure/redis"
	"github.com/fastygo/taskmanager/internal/services/lifecycle"
	"github.com/fastygo/taskmanager/repository"
	"github.com/fastygo/taskmanager/repository/memory"
	"github.com/fastygo/taskmanager/repository/postgres"
	redisRepo "github.com/fastygo/taskmanager/repository/redis"
)

type storage struct {
	users    repository.UserRepository
	tasks    repository.TaskRepository
	subtasks repository.SubtaskRepository
	sessions repository.SessionRepository
	checks   map[string]monitor.Check
}

func openStorage(ctx context.Context, cfg *config.Config, manager *lifecycle.Manager, logger *zap.Logger) (*storage, error) {
	if cfg.Storage.Driver == config.StorageMemory {
		logger.Warn("using in-memory storage, data is lost on restart")
		store := memory.NewStore()
		return &storage{
			users:    store.Users(),
			tasks:    store.Tasks(),
			subtasks: store.Subtasks(),
			sessions: store.Sessions(),
			checks:   map[string]monitor.Check{},
		}, nil
	}

	if err := pgInfra.RunMigrations(cfg, logger); err != nil {
		return nil, err
	}

	pool, err := pgInfra.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	manager.Register("postgres", func(ctx context.Context) error {
		pool.Close()
		return nil
	})

	redisClient, err := redisInfra.NewClient(ctx, cfg.Redis, logger)
	if err != nil {
		return nil, err
	}
	manager.Register("redis", func(ctx context.Context) error {
		return redisClient.Close()
	})

	return &storage{
		users:    postgres.NewUserRepository(pool),
		tasks:    postgres.NewTaskRepository(pool),
		subtasks: postgres.NewSubtaskRepository(pool),
		sessions: redisRepo.NewSessionRepository(redisClient, cfg.JWT.SessionTTL),
		checks: map[string]monitor.Check{
			"postgresql": pgInfra.Ping(pool),
			"redis":      redisInfra.Ping(redisClient),
		},
	}, nil
}
