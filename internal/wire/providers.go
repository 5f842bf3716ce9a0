// Package wire assembles the application's dependency graph.
package wire

import (
	"io"
	"os"

	"github.com/google/wire"
	"github.com/jmoiron/sqlx"

	"github.com/oaixnah/llm-for-gitlab-code-review/internal/app"
	"github.com/oaixnah/llm-for-gitlab-code-review/internal/config"
	"github.com/oaixnah/llm-for-gitlab-code-review/internal/core"
	"github.com/oaixnah/llm-for-gitlab-code-review/internal/db"
	"github.com/oaixnah/llm-for-gitlab-code-review/internal/gitlab"
	"github.com/oaixnah/llm-for-gitlab-code-review/internal/jobs"
	"github.com/oaixnah/llm-for-gitlab-code-review/internal/llm"
	"github.com/oaixnah/llm-for-gitlab-code-review/internal/logger"
	"github.com/oaixnah/llm-for-gitlab-code-review/internal/render"
	"github.com/oaixnah/llm-for-gitlab-code-review/internal/server"
	"github.com/oaixnah/llm-for-gitlab-code-review/internal/storage"
)

// AppSet is the full provider set for the service binary.
var AppSet = wire.NewSet(
	app.NewApp,
	server.NewServer,
	config.LoadConfig,
	logger.NewLogger,
	db.NewDatabase,
	storage.NewStore,
	render.New,
	gitlab.NewClient,
	llm.NewClient,
	llm.NewPromptManager,
	llm.NewEvaluator,
	jobs.NewBinder,
	jobs.NewReviewJob,
	jobs.NewDispatcher,
	provideLoggerConfig,
	provideLogWriter,
	provideDBConfig,
	provideLocale,
	provideSQLX,
	wire.Bind(new(core.SourceControl), new(*gitlab.Client)),
	wire.Bind(new(core.Notifier), new(*gitlab.Client)),
	wire.Bind(new(core.Completer), new(*llm.Client)),
	wire.Bind(new(jobs.Evaluator), new(*llm.Evaluator)),
	wire.Bind(new(core.Job), new(*jobs.ReviewJob)),
	wire.FieldsOf(new(*config.Config), "MaxWorkers"),
)

func provideLoggerConfig(cfg *config.Config) logger.Config {
	return cfg.Logger
}

func provideLogWriter() io.Writer {
	return os.Stdout
}

func provideDBConfig(cfg *config.Config) *config.DBConfig {
	return cfg.Database
}

func provideLocale(cfg *config.Config) string {
	return cfg.Locale
}

func provideSQLX(database *db.DB) *sqlx.DB {
	return database.DB
}
