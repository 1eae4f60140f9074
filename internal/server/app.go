// Package server wires the application together: configuration, database,
// object storage, services, and the HTTP server, with graceful shutdown.
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

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/lojabox/lojabox/internal/logging"
	"github.com/lojabox/lojabox/internal/server/api"
	"github.com/lojabox/lojabox/internal/server/config"
	"github.com/lojabox/lojabox/internal/server/repositories/repomanager"
	"github.com/lojabox/lojabox/internal/server/services"
	"github.com/lojabox/lojabox/internal/server/storage"
)

type App struct {
	config         *config.Config
	logger         logging.Logger
	db             *sql.DB
	userService    *services.UserService
	profileService *services.ProfileService
	productService *services.ProductService
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	slog := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(slog)

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	objects := storage.NewS3Store(cfg)

	return &App{
		config:         cfg,
		logger:         logger,
		db:             db,
		userService:    services.NewUserService(db, rm, cfg),
		profileService: services.NewProfileService(db, rm, objects, logger),
		productService: services.NewProductService(db, rm),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s := api.NewServer(app.config.EndpointAddrHTTP, app.logger,
		app.userService, app.profileService, app.productService, app.config.SecretKey)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "error closing db", "error", err)
	}
}
