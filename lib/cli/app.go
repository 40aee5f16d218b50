package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/icco/movies/lib/collection"
	"github.com/icco/movies/lib/config"
	"github.com/icco/movies/lib/db"
	"github.com/icco/movies/lib/lock"
	"github.com/icco/movies/lib/omdb"
	"github.com/icco/movies/lib/query"
	"github.com/icco/movies/lib/website"
	"gorm.io/gorm"
)

// App holds the handles every command works with. It is built once per
// process and closed on the way out.
type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	DB       *gorm.DB
	Store    *collection.Store
	Engine   *query.Engine
	Renderer *website.Renderer
}

// NewApp opens the database, provisions the schema, and wires the gateway,
// store, query engine and renderer together.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	gormDB, err := db.Open(cfg.DBPath, logger)
	if err != nil {
		return nil, err
	}

	if err := db.RunMigrations(ctx, gormDB, logger); err != nil {
		_ = db.Close(gormDB)
		return nil, fmt.Errorf("failed to provision database: %w", err)
	}

	gateway := omdb.NewClient(cfg.OMDbAPIKey,
		omdb.WithBaseURL(cfg.OMDbURL),
		omdb.WithTimeout(cfg.OMDbTimeout),
		omdb.WithLogger(logger),
	)
	store := collection.New(gormDB, gateway, lock.NewFileLock(cfg.LockDir, logger), logger)

	return &App{
		Config:   cfg,
		Logger:   logger,
		DB:       gormDB,
		Store:    store,
		Engine:   query.New(store),
		Renderer: website.NewRenderer(cfg.StaticDir),
	}, nil
}

// Close releases the database.
func (a *App) Close() error {
	return db.Close(a.DB)
}
