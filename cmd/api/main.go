package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/medcoda/codepair/internal/adapters/cache"
	"github.com/medcoda/codepair/internal/adapters/database"
	"github.com/medcoda/codepair/internal/api/handlers"
	"github.com/medcoda/codepair/internal/api/routes"
	"github.com/medcoda/codepair/internal/application/services"
	"github.com/medcoda/codepair/internal/domain/providers"
	"github.com/medcoda/codepair/internal/infrastructure/clients/openai"
	"github.com/medcoda/codepair/internal/infrastructure/clients/postgres"
	"github.com/medcoda/codepair/internal/infrastructure/clients/redis"
	"github.com/medcoda/codepair/internal/infrastructure/observability"
	"github.com/medcoda/codepair/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Server.Env)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			log.Warn().Err(err).Msg("failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Error().Err(err).Msg("error shutting down OpenTelemetry")
				}
			}()
			log.Info().Msg("OpenTelemetry initialized")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize metrics")
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize PostgreSQL client")
	}
	defer pgClient.Close()
	log.Info().Msg("PostgreSQL client initialized")

	referenceRepo := database.NewReferenceAdapter(pgClient)
	auditRepo := database.NewAuditAdapter(pgClient)

	modelClient, err := openai.NewClient(&cfg.OpenAI, metrics)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize model client")
	}

	// The verdict cache is the enforcement mechanism of the determinism
	// promise. Without Redis the service still answers, but repeat queries
	// pay for repeat model calls.
	var verdictProvider providers.VerdictProvider = modelClient
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("Redis unavailable, running with uncached verdicts")
	} else {
		defer redisClient.Close()
		verdictProvider = cache.NewCachedVerdictProvider(modelClient, cache.NewRedisAdapter(redisClient), metrics)
		log.Info().Msg("verdict provider wrapped with Redis cache")
	}

	retriever := services.NewRetrievalService(referenceRepo)
	validationService := services.NewValidationService(referenceRepo, auditRepo, retriever, verdictProvider, metrics)
	reviewService := services.NewReviewService(auditRepo, referenceRepo)

	validationHandler := handlers.NewValidationHandler(validationService, reviewService)
	router := routes.NewRouter(validationHandler, metrics)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.SetupRoutes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
}
