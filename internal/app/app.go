// Package app holds the assembled application and its lifecycle.
package app

import (
	"log/slog"

	"github.com/oaixnah/llm-for-gitlab-code-review/internal/config"
	"github.com/oaixnah/llm-for-gitlab-code-review/internal/core"
	"github.com/oaixnah/llm-for-gitlab-code-review/internal/server"
	"github.com/oaixnah/llm-for-gitlab-code-review/internal/storage"
)

// App bundles the running components. Cfg, Store and Job are exported for
// the CLI, which drives reviews synchronously instead of through the
// dispatcher.
type App struct {
	Cfg   *config.Config
	Store storage.Store
	Job   core.Job

	server     *server.Server
	dispatcher core.JobDispatcher
	logger     *slog.Logger
}

// NewApp assembles the application from its wired components.
func NewApp(cfg *config.Config, srv *server.Server, dispatcher core.JobDispatcher, store storage.Store, job core.Job, logger *slog.Logger) *App {
	return &App{
		Cfg:        cfg,
		Store:      store,
		Job:        job,
		server:     srv,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Start runs the HTTP server and blocks until it stops.
func (a *App) Start() error {
	a.logger.Info("starting review service",
		"server_port", a.Cfg.ServerPort,
		"gitlab_url", a.Cfg.GitLabURL,
		"llm_model", a.Cfg.LLMModel,
		"max_workers", a.Cfg.MaxWorkers,
		"locale", a.Cfg.Locale,
	)
	return a.server.Start()
}

// Stop shuts the application down cleanly: no new requests, then drain the
// job queue.
func (a *App) Stop() error {
	a.logger.Info("shutting down review service")

	err := a.server.Stop()
	if err != nil {
		a.logger.Error("error during HTTP server shutdown", "error", err)
	}

	a.dispatcher.Stop()

	if err != nil {
		return err
	}
	a.logger.Info("review service stopped")
	return nil
}
