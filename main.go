package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/navarrastar/mentorship-landing/pkg/api"
	"github.com/navarrastar/mentorship-landing/pkg/brochure"
	"github.com/navarrastar/mentorship-landing/pkg/clients/airtable"
	"github.com/navarrastar/mentorship-landing/pkg/clients/firebase"
	"github.com/navarrastar/mentorship-landing/pkg/config"
	"github.com/navarrastar/mentorship-landing/pkg/leads"
	"github.com/navarrastar/mentorship-landing/pkg/middleware"
	"github.com/navarrastar/mentorship-landing/pkg/services"
	"github.com/navarrastar/mentorship-landing/pkg/storage"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file loaded", "error", err)
	}

	// Initialize configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("error loading config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(newLogger(cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	// Initialize local durable store
	kv, err := storage.Open(cfg.StorageBackend, cfg.StoragePath)
	if err != nil {
		return fmt.Errorf("error opening storage: %w", err)
	}
	defer kv.Close()

	local := leads.NewLocalStore(kv)
	remote, err := newRemoteStore(ctx, cfg, kv)
	if err != nil {
		return err
	}

	// Initialize services
	desk := brochure.NewDesk(cfg.BrochurePath)
	submissionService := services.NewLeadSubmissionService(
		leads.NewFanoutStore(local, remote),
		local,
		brochure.NewScheduler(cfg.BrochureDelay, desk),
	)
	authService := services.NewDemoAuthService(kv)

	gin.SetMode(cfg.GinMode)
	router := gin.Default()
	router.Use(middleware.CORS(cfg.CORSOrigin))

	handlers := api.NewHandlers(submissionService, authService, desk, cfg.AdminToken)
	handlers.Register(router)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.Port, "storage", cfg.StorageBackend, "remote", remote != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newRemoteStore returns nil when the selected remote backend lacks credentials;
// submissions are then kept locally only.
func newRemoteStore(ctx context.Context, cfg *config.Config, kv storage.Store) (leads.Store, error) {
	if !cfg.RemoteEnabled() {
		slog.Info("remote lead store disabled", "backend", cfg.RemoteBackend)
		return nil, nil
	}

	switch cfg.RemoteBackend {
	case "firebase":
		client := firebase.NewClient(cfg.FirebaseAPIKey, cfg.FirebaseProjectID, cfg.FirebaseAppID)
		identity := leads.NewAnonymousIdentity(client)
		identity.Establish(ctx)
		return leads.NewRemoteStore(leads.NewFirestoreWriter(client), identity), nil
	case "airtable":
		identity, err := leads.NewDeviceIdentity(ctx, kv)
		if err != nil {
			return nil, err
		}
		client := airtable.NewClient(cfg.AirtableAPIKey, cfg.AirtableBaseID)
		return leads.NewRemoteStore(leads.NewAirtableWriter(client, cfg.AirtableLeadsTable), identity), nil
	}
	return nil, nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
