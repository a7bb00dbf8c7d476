package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/zatekoja/claim-appeal/backend/internal/adapters/database"
	"github.com/zatekoja/claim-appeal/backend/internal/adapters/events"
	"github.com/zatekoja/claim-appeal/backend/internal/api/handlers"
	"github.com/zatekoja/claim-appeal/backend/internal/api/routes"
	"github.com/zatekoja/claim-appeal/backend/internal/application/appeal"
	"github.com/zatekoja/claim-appeal/backend/internal/application/services"
	"github.com/zatekoja/claim-appeal/backend/internal/domain/providers"
	"github.com/zatekoja/claim-appeal/backend/internal/infrastructure/clients/anthropic"
	"github.com/zatekoja/claim-appeal/backend/internal/infrastructure/clients/openai"
	"github.com/zatekoja/claim-appeal/backend/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/claim-appeal/backend/internal/infrastructure/clients/redis"
	"github.com/zatekoja/claim-appeal/backend/internal/infrastructure/observability"
	"github.com/zatekoja/claim-appeal/backend/pkg/config"
	"github.com/zatekoja/claim-appeal/backend/pkg/secrets"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	vaultResult, err := secrets.ApplyVaultSecrets(context.Background(), secrets.LoadVaultConfigFromEnv())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load secrets from Vault: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Log.Environment, cfg.Log.Level)
	if vaultResult.Enabled {
		log.Info().
			Str("path", vaultResult.Path).
			Strs("loaded", vaultResult.Loaded).
			Int("skipped", vaultResult.Skipped).
			Msg("Secrets loaded from Vault")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Error().Err(err).Msg("Error shutting down OpenTelemetry")
				}
			}()
			log.Info().Str("endpoint", cfg.OTEL.Endpoint).Msg("OpenTelemetry initialized")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize metrics")
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize PostgreSQL client")
	}
	defer pgClient.Close()

	if err := pgClient.EnsureSchema(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to prepare database schema")
	}

	// Redis only backs the claim event stream; the API works without it.
	var eventBus providers.EventBus
	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(ctx, &cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, claim stream disabled")
		} else {
			defer redisClient.Close()
			eventBus = events.NewRedisEventBus(redisClient)
		}
	}

	generator, err := newGenerationProvider(&cfg.Generation)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize generation provider")
	}
	log.Info().
		Str("provider", cfg.Generation.Provider).
		Str("model", cfg.Generation.Model).
		Msg("Generation provider initialized")

	claimAdapter := database.NewClaimAdapter(pgClient, metrics)

	appealService := services.NewAppealService(
		claimAdapter,
		generator,
		appeal.NewHeuristicParser(),
		services.GenerationOptions{
			Model:       cfg.Generation.Model,
			MaxTokens:   cfg.Generation.MaxTokens,
			Temperature: cfg.Generation.Temperature,
		},
	)
	if eventBus != nil {
		appealService.SetEventBus(eventBus)
	}

	router := routes.NewRouter(
		handlers.NewAppealHandler(appealService),
		handlers.NewClaimStreamHandler(eventBus),
		cfg.Server.AllowedOrigins,
		metrics,
	)

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router.SetupRoutes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", serverAddr).Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Server shutting down")

	// Open SSE streams only end once the event bus is closed.
	if eventBus != nil {
		if err := eventBus.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing event bus")
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during server shutdown")
	}

	log.Info().Msg("Server stopped")
}

func newGenerationProvider(cfg *config.GenerationConfig) (providers.TextGenerationProvider, error) {
	switch cfg.Provider {
	case config.ProviderAnthropic:
		client, err := anthropic.NewClient(cfg)
		if err != nil {
			return nil, err
		}
		return client, nil
	case config.ProviderOpenAI:
		client, err := openai.NewClient(cfg)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unsupported generation provider %q", cfg.Provider)
	}
}
