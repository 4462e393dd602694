package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	"github.com/ericfisherdev/statpanel/internal/adapter/driven/remote"
	sqliteadapter "github.com/ericfisherdev/statpanel/internal/adapter/driven/sqlite"
	httphandler "github.com/ericfisherdev/statpanel/internal/adapter/driving/http"
	webhandler "github.com/ericfisherdev/statpanel/internal/adapter/driving/web"
	"github.com/ericfisherdev/statpanel/internal/application"
	"github.com/ericfisherdev/statpanel/internal/config"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration (defaults, optional TOML file, env overrides).
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"signin_url", cfg.SigninURL,
		"graphql_url", cfg.GraphQLURL,
		"sealed_credential", cfg.HasSecretKey(),
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open database (dual reader/writer with WAL mode).
	db, err := sqliteadapter.NewDB(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()
	slog.Info("database opened", "path", db.Path())

	// 4. Run migrations on writer connection.
	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		return err
	}
	slog.Info("migrations complete")

	// 5. Wire driven adapters.
	kvStore := sqliteadapter.NewKVRepo(db, cfg.SecretKey, application.CredentialKey)

	client, err := remote.NewClient(cfg.SigninURL, cfg.GraphQLURL)
	if err != nil {
		return err
	}

	// 6. Build the session context and the services sharing it.
	sc := application.NewSessionContext(kvStore, application.WithLogger(slog.Default()))
	auth := application.NewAuthGateway(sc, client)
	guard := application.NewSessionGuard(sc)
	pipeline := application.NewRequestPipeline(sc, client)

	// 7. Attach the activity listener once for the process lifetime.
	listener := sc.Attach(ctx, cfg.ActivityThrottle)

	// 8. Register API and GUI routes.
	mux := http.NewServeMux()
	apiHandler := httphandler.NewHandler(pipeline, guard, listener, slog.Default())
	httphandler.RegisterAPIRoutes(mux, apiHandler)

	webHandler := webhandler.NewHandler(auth, guard, pipeline, cfg.LoginNotice, slog.Default())
	webhandler.RegisterRoutes(mux, webHandler)

	handler := httphandler.ApplyMiddleware(mux, slog.Default())

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "error", err)
			stop()
		}
	}()

	slog.Info("statpanel started", "listen_addr", cfg.ListenAddr)

	// 9. Wait for shutdown signal.
	<-ctx.Done()
	slog.Info("shutting down")

	// 10. Graceful shutdown with 10s timeout for in-flight requests.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}
