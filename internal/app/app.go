// Package app wires the tracker's components together: configuration,
// logging, database, the GitHub client, the optional summarizer, and the
// sync engine. Credentials are checked here, at construction time, so a
// missing token fails before any network or store activity.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Gajesh2007/weekend-activity/internal/config"
	"github.com/Gajesh2007/weekend-activity/internal/db"
	"github.com/Gajesh2007/weekend-activity/internal/github"
	"github.com/Gajesh2007/weekend-activity/internal/logger"
	"github.com/Gajesh2007/weekend-activity/internal/storage"
	"github.com/Gajesh2007/weekend-activity/internal/summary"
	"github.com/Gajesh2007/weekend-activity/internal/tracker"
)

// App holds the initialized application components.
type App struct {
	Cfg    *config.Config
	Logger *slog.Logger
	DB     *db.DB
	Store  storage.Store
	GitHub github.Client
	Engine *tracker.Engine
}

// New loads configuration from cfgPath and constructs every component the
// CLI needs. The returned cleanup function closes the database connection.
func New(ctx context.Context, cfgPath string) (*App, func(), error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, err
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Format, nil)

	if cfg.GitHubToken == "" {
		return nil, nil, fmt.Errorf("GITHUB_TOKEN environment variable not set")
	}

	dbConn, err := db.Open(cfg.DatabaseURL, log)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := dbConn.Close(); err != nil {
			log.Error("failed to close database connection", "error", err)
		}
	}

	store := storage.NewStore(dbConn.DB)
	gh := github.NewClient(ctx, cfg.GitHubToken, log)

	var summarizer *summary.Summarizer
	if cfg.SummarizationEnabled() {
		llm := summary.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIModel)
		summarizer, err = summary.New(gh, llm, log)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		log.Info("AI summaries enabled", "model", cfg.OpenAIModel)
	} else {
		log.Info("OPENAI_API_KEY not set, AI summaries disabled")
	}

	engine := tracker.NewEngine(store, gh, summarizer, log)

	return &App{
		Cfg:    cfg,
		Logger: log,
		DB:     dbConn,
		Store:  store,
		GitHub: gh,
		Engine: engine,
	}, cleanup, nil
}
