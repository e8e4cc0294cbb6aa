// Package server initializes and runs the main application server.
// It opens the database, runs migrations, bootstraps the first superuser,
// and starts the HTTP API with graceful shutdown on OS signals.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/aicodehub/aicodehub/internal/logging"
	"github.com/aicodehub/aicodehub/internal/server/config"
	"github.com/aicodehub/aicodehub/internal/server/repositories/repomanager"
	"github.com/aicodehub/aicodehub/internal/server/rest"
	"github.com/aicodehub/aicodehub/internal/server/services"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	userService *services.UserService
	restServer  *rest.Server
}

func NewApp(cfg *config.Config) (*App, error) {

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()

	us := services.NewUserService(db, rm, cfg)
	ps := services.NewProjectService(db, rm)
	ms := services.NewModelService(db, rm, cfg)

	srv := rest.NewServer(cfg, logger, us, ps, ms)

	return &App{
		config:      cfg,
		logger:      logger,
		db:          db,
		userService: us,
		restServer:  srv,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startRESTServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.restServer.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) error {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, app.db); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}

	if err := app.userService.EnsureSuperuser(ctx,
		app.config.FirstSuperuser,
		app.config.FirstSuperuserEmail,
		app.config.FirstSuperuserPassword); err != nil {
		return fmt.Errorf("superuser bootstrap error: %w", err)
	}

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startRESTServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err.Error())
	}
	return nil
}
