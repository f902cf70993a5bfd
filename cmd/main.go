// @title                       Film API
// @version                     1.0
// @description                 Movie and director catalog with JWT-gated writes and an audit trail.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the token.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"film_api/internal/config"
	"film_api/internal/handlers"
	"film_api/internal/logger"
	"film_api/internal/metrics"
	"film_api/internal/repository"
	"film_api/internal/repository/db"
	"film_api/internal/server"
	"film_api/internal/service"

	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

// app is the wired dependency graph shared by the commands.
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	db       *sql.DB
	services *service.Service
}

func newRootCommand() *cobra.Command {
	var configDir string

	cmd := &cobra.Command{
		Use:          "film-api [command] [flags]",
		Short:        "Movie catalog HTTP API",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), configDir)
		},
	}
	cmd.PersistentFlags().StringVarP(&configDir, "config", "c", "configs", "directory holding config.yml")

	cmd.AddCommand(
		serveCommand(&configDir),
		migrateCommand(&configDir),
		createAdminCommand(&configDir),
	)
	return cmd
}

func serveCommand(configDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), *configDir)
		},
	}
}

// bootstrap loads config, builds the logger, opens and migrates the store
// and wires the services.
func bootstrap(ctx context.Context, configDir string) (*app, error) {
	cfg, err := config.Load(configDir)
	if err != nil {
		return nil, fmt.Errorf("error reading config: %w", err)
	}

	log := logger.Get(cfg.Log.Level, cfg.Log.Format)
	log.Infow("configuration loaded", "config", cfg.String())

	conn, dialect, err := db.Open(ctx, db.Options{
		Driver:       cfg.DB.Driver,
		DSN:          cfg.DB.DSN,
		MaxOpenConns: cfg.DB.MaxOpenConns,
		Logger:       log,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to init %s store: %w", cfg.DB.Driver, err)
	}

	repos := repository.NewRepository(conn, dialect)
	services := service.NewService(repos, service.Deps{
		Tokens: service.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		AuditErrors: func(err error) {
			log.Warnw("audit_record_failed", "err", err)
		},
	})
	return &app{cfg: cfg, log: log, db: conn, services: services}, nil
}

func (a *app) close() error {
	return a.db.Close()
}

func runServe(ctx context.Context, configDir string) (runErr error) {
	a, err := bootstrap(ctx, configDir)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.close(); cerr != nil {
			runErr = errors.Join(runErr, fmt.Errorf("failed to close store: %w", cerr))
		}
	}()

	apiHandler := handlers.NewHandler(a.services, a.log, handlers.Options{
		BootstrapSecret: a.cfg.Auth.BootstrapSecret,
		Metrics:         metrics.NewHTTP(),
	})

	srv := &server.Server{}
	serveErr := runHTTPServer(srv, a.cfg.Port, apiHandler, a.log)

	return waitForShutdown(srv, serveErr, a.log)
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) <-chan error {
	errc := make(chan error, 1)
	go func() {
		if port == "" {
			port = server.DefaultPort
		}
		log.Infow("starting server", "port", port)
		errc <- srv.Run(port, handler.InitRoutes())
	}()
	return errc
}

// waitForShutdown blocks until a termination signal or a server failure, then
// drains in-flight requests.
func waitForShutdown(srv *server.Server, serveErr <-chan error, log *logger.Logger) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serveErr:
		if err != nil {
			log.Errorw("error starting server", "err", err)
		}
		return err
	case <-quit:
	}

	log.Infow("shutting down server...")

	// allow in-flight requests to complete
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
		return err
	}
	return <-serveErr
}
