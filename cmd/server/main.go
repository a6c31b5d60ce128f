package main

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/taskmanager/api/handler"
	"github.com/fastygo/taskmanager/internal/config"
	"github.com/fastygo/taskmanager/internal/infrastructure/buffer"
	"github.com/fastygo/taskmanager/internal/infrastructure/llm"
	"github.com/fastygo/taskmanager/internal/infrastructure/monitor"
	"github.com/fastygo/taskmanager/internal/middleware"
	"github.com/fastygo/taskmanager/internal/router"
	"github.com/fastygo/taskmanager/internal/services"
	"github.com/fastygo/taskmanager/internal/services/lifecycle"
	"github.com/fastygo/taskmanager/pkg/httpcontext"
	"github.com/fastygo/taskmanager/pkg/logger"
	"github.com/fastygo/taskmanager/usecase"
	authUC "github.com/fastygo/taskmanager/usecase/auth"
	profileUC "github.com/fastygo/taskmanager/usecase/profile"
	subtaskUC "github.com/fastygo/taskmanager/usecase/subtask"
	suggestUC "github.com/fastygo/taskmanager/usecase/suggest"
	taskUC "github.com/fastygo/taskmanager/usecase/task"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
		File:     cfg.Logger.File,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	store, err := openStorage(appCtx, cfg, manager, zapLogger)
	if err != nil {
		zapLogger.Fatal("storage init failed", zap.String("driver", cfg.Storage.Driver), zap.Error(err))
	}

	var (
		bufferStore *buffer.Store
		sizer       monitor.BufferSizer
	)
	if cfg.Buffer.Enabled {
		bufferStore, err = buffer.Open(cfg.Buffer.Path, "buffer")
		if err != nil {
			zapLogger.Fatal("failed to open buffer store", zap.Error(err))
		}
		manager.Register("buffer", func(ctx context.Context) error {
			return bufferStore.Close()
		})
		sizer = bufferStore
	}

	mon := monitor.New(store.checks, sizer, 10*time.Second, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	// A nil *BufferBridge must not leak into the interface.
	var opBuffer usecase.OperationBuffer
	if bufferStore != nil {
		bufferProcessor := services.NewBufferProcessor(
			bufferStore,
			mon,
			services.Repositories{Users: store.users, Tasks: store.tasks, Subtasks: store.subtasks},
			zapLogger,
			services.ProcessorConfig{
				Interval:   cfg.Buffer.SyncInterval,
				BatchSize:  cfg.Buffer.BatchSize,
				MaxRetries: cfg.Buffer.MaxRetry,
				Retention:  time.Duration(cfg.Buffer.RetentionHours) * time.Hour,
			},
		)
		bufferProcessor.Start()
		manager.Register("buffer_processor", func(ctx context.Context) error {
			bufferProcessor.Stop(ctx)
			return nil
		})
		opBuffer = services.NewBufferBridge(bufferProcessor)
	}

	var generator suggestUC.Generator
	if gen, err := llm.New(cfg.LLM); err != nil {
		zapLogger.Warn("subtask generation disabled", zap.Error(err))
	} else {
		generator = gen
	}

	tokens := authUC.NewTokenIssuer(cfg.JWT.Secret, cfg.JWT.Issuer)
	authUseCase := authUC.New(store.users, store.sessions, tokens, cfg.JWT.SessionTTL, zapLogger)
	profileUseCase := profileUC.New(store.users, opBuffer, zapLogger)
	taskUseCase := taskUC.New(store.tasks, opBuffer, zapLogger)
	subtaskUseCase := subtaskUC.New(store.subtasks, store.tasks, opBuffer, zapLogger)
	suggestUseCase := suggestUC.New(generator, cfg.LLM.SuggestLimit, zapLogger)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)
	suggestAdapter := httpcontext.NewAdapter(cfg.LLM.Timeout)

	handlers := router.Handlers{
		Auth:    apiHandler.NewAuthHandler(authUseCase, ctxAdapter, zapLogger),
		Profile: apiHandler.NewProfileHandler(profileUseCase, ctxAdapter, zapLogger),
		Task:    apiHandler.NewTaskHandler(taskUseCase, ctxAdapter, zapLogger),
		Subtask: apiHandler.NewSubtaskHandler(subtaskUseCase, ctxAdapter, zapLogger),
		Suggest: apiHandler.NewSuggestHandler(suggestUseCase, suggestAdapter, zapLogger),
		Health:  apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	authMiddleware := middleware.Auth(authUseCase, cfg.Context.RequestTimeout, zapLogger)
	r := router.New(handlers, authMiddleware)

	server := &fasthttp.Server{
		Handler:            r.Handler,
		ReadTimeout:        cfg.HTTP.ReadTimeout,
		WriteTimeout:       cfg.HTTP.WriteTimeout,
		IdleTimeout:        cfg.HTTP.IdleTimeout,
		MaxConnsPerIP:      cfg.HTTP.MaxConn,
		MaxRequestBodySize: cfg.HTTP.MaxBodySize,
		Name:               cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started",
			zap.String("address", cfg.Address()),
			zap.String("storage", cfg.Storage.Driver))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.ShutdownWithContext(ctx)
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
