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

	didoxadapter "github.com/docvision/docvision/internal/adapter/driven/didox"
	eimzoadapter "github.com/docvision/docvision/internal/adapter/driven/eimzo"
	regosadapter "github.com/docvision/docvision/internal/adapter/driven/regos"
	sqliteadapter "github.com/docvision/docvision/internal/adapter/driven/sqlite"
	httphandler "github.com/docvision/docvision/internal/adapter/driving/http"
	"github.com/docvision/docvision/internal/application"
	"github.com/docvision/docvision/internal/config"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration (fail fast on missing required env vars).
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"didox_base_url", cfg.DidoxBaseURL,
		"regos_base_url", cfg.RegosBaseURL,
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open database (dual reader/writer with WAL mode).
	db, err := sqliteadapter.NewDB(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()
	slog.Info("database opened", "path", cfg.DBPath)

	// 4. Run migrations on writer connection.
	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		return err
	}
	slog.Info("migrations complete")

	// 5. Wire driven adapters.
	userStore := sqliteadapter.NewUserRepo(db)
	sessionStore := sqliteadapter.NewSessionRepo(db)
	didoxClient := didoxadapter.NewClient(didoxadapter.Config{
		BaseURL:        cfg.DidoxBaseURL,
		PartnerBaseURL: cfg.DidoxPartnerBaseURL,
		PartnerToken:   cfg.PartnerToken,
		Timeout:        cfg.DidoxTimeout,
	})
	regosClient := regosadapter.NewClient(regosadapter.Config{
		BaseURL:          cfg.RegosBaseURL,
		IntegrationToken: cfg.RegosToken,
		Timeout:          cfg.RegosTimeout,
	})
	signer := eimzoadapter.NewClient(eimzoadapter.Config{
		URL:    cfg.SignerURL,
		Origin: cfg.SignerOrigin,
	})

	// 6. Wire application services.
	authSvc := application.NewAuthService(userStore, cfg.JWTSecret, cfg.TokenTTL)
	relaySvc := application.NewRelayService(didoxClient, sessionStore, signer)
	docSvc := application.NewDocumentService(didoxClient, sessionStore)
	catalogSvc := application.NewCatalogService(regosClient)

	// 7. Ensure the bootstrap superuser exists.
	created, err := authSvc.EnsureBootstrapSuperuser(ctx)
	if err != nil {
		return err
	}
	if created {
		slog.Info("bootstrap superuser created", "username", sqliteadapter.BootstrapUsername)
	}

	// 8. Create HTTP handler and register routes.
	apiHandler := httphandler.NewHandler(authSvc, relaySvc, docSvc, catalogSvc, slog.Default())
	handler := httphandler.NewServeMux(apiHandler, cfg.AllowedOrigins, slog.Default())

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		// Upstream document calls can take up to the full provider timeout.
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "error", err)
		}
	}()

	slog.Info("docvision started", "listen_addr", cfg.ListenAddr)

	// 9. Wait for shutdown signal.
	<-ctx.Done()
	slog.Info("shutting down")

	// 10. Graceful shutdown with 10s timeout to drain in-flight requests.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}
