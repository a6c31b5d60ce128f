package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/taskmanager/client"
	"github.com/fastygo/taskmanager/pkg/logger"
)

type rootOptions struct {
	server      string
	credentials string
	verbose     bool
}

// app is one command invocation's wiring.
type app struct {
	opts    *rootOptions
	logger  *zap.Logger
	api     *client.HTTPClient
	session *client.Session
	store   *client.HTTPClient
}

func newApp(opts *rootOptions) (*app, error) {
	level := "warn"
	if opts.verbose {
		level = "debug"
	}
	log, err := logger.New(logger.Config{Level: level, Encoding: "console"})
	if err != nil {
		return nil, err
	}

	api := client.NewHTTPClient(opts.server, client.WithTimeout(30*time.Second))
	session := client.NewSession(api, log)
	return &app{
		opts:    opts,
		logger:  log,
		api:     api,
		session: session,
		store:   api.WithTokens(session),
	}, nil
}

// restore resumes the saved session. Commands that need a user fail with the
// managers' own unauthenticated error when nothing is saved.
func (a *app) restore(ctx context.Context) error {
	creds, err := loadCredentials(a.opts.credentials)
	if err != nil {
		return err
	}
	if creds == nil || creds.Token == "" {
		return nil
	}
	if creds.Server != "" && creds.Server != a.opts.server {
		a.logger.Debug("saved credentials belong to another server", zap.String("server", creds.Server))
		return nil
	}
	if err := a.session.Restore(ctx, creds.Token); err != nil {
		a.logger.Warn("saved session is no longer valid", zap.Error(err))
	}
	return nil
}

func (a *app) close() {
	_ = a.logger.Sync()
}

func (a *app) tasks() *client.TaskManager {
	return client.NewTaskManager(a.store, a.session, a.logger)
}

func (a *app) subtasks(parentTaskID string) *client.SubtaskManager {
	return client.NewSubtaskManager(a.store, a.session, parentTaskID, a.logger)
}

func commandContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), time.Minute)
}
