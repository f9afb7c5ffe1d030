package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"taskflow/internal/ai"
	"taskflow/internal/auth"
	"taskflow/internal/config"
	"taskflow/internal/httpapi"
	"taskflow/internal/repository"
	"taskflow/internal/service"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// A missing .env is fine; real environment variables still apply.
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:           "taskflow",
		Short:         "TaskFlow task management API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(serveCmd(), resetDBCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		slog.Error("taskflow failed", "error", err)
		stop()
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context())
		},
	}
}

func resetDBCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset-db",
		Short: "Drop all tables and recreate the schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return errors.New("refusing to drop data without --yes")
			}
			cfg, err := setup()
			if err != nil {
				return err
			}
			db, err := repository.NewDB(cfg.DatabaseURL)
			if err != nil {
				return err
			}
			if sqlDB, err := db.DB(); err == nil {
				defer sqlDB.Close()
			}
			if err := repository.Reset(cmd.Context(), db); err != nil {
				return err
			}
			slog.Info("database reset", "database", cfg.DatabaseURL)
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm dropping every table")
	return cmd
}

// setup loads configuration and installs the process-wide logger.
func setup() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(cfg.LogLevel),
	})))
	return cfg, nil
}

func serve(ctx context.Context) error {
	cfg, err := setup()
	if err != nil {
		return err
	}

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	issuer, err := auth.NewTokenIssuer(cfg.Auth.SecretKey, cfg.Auth.Algorithm, cfg.Auth.TokenTTL)
	if err != nil {
		return fmt.Errorf("token issuer: %w", err)
	}

	store := repository.NewStore(db)
	authSvc := service.NewAuthService(store.Users, issuer)
	taskSvc := service.NewTaskService(store)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := httpapi.NewMetrics(reg)

	var provider ai.Provider
	if p := ai.NewProvider(cfg.AI); p != nil {
		provider = p
	}
	summarySvc := service.NewSummaryService(taskSvc, provider, metrics.ObserveFallback)

	scheduler := service.NewSchedulerService(time.Local)
	scheduled, err := scheduler.ScheduleDigest(service.NewDigestService(store.Users, taskSvc), cfg.DigestTime, cfg.DigestInterval)
	if err != nil {
		return err
	}
	if scheduled {
		scheduler.Start()
		defer scheduler.Stop()
	}

	if !strings.EqualFold(cfg.LogLevel, "debug") {
		gin.SetMode(gin.ReleaseMode)
	}
	router := httpapi.NewRouter(httpapi.Deps{
		Auth:         authSvc,
		Tasks:        taskSvc,
		Summary:      summarySvc,
		Metrics:      metrics,
		Gatherer:     reg,
		DefaultLimit: cfg.DefaultLimit,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("TaskFlow API listening", "addr", cfg.HTTPAddr, "ai_enabled", cfg.AIConfigured(), "digest", scheduled)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	slog.Info("Shutdown complete.")
	return nil
}

func parseLevel(raw string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(raw)); err != nil {
		return slog.LevelInfo
	}
	return level
}
