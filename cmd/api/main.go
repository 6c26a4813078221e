package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/zatekoja/tripweaver/backend/internal/adapters/cache"
	"github.com/zatekoja/tripweaver/backend/internal/adapters/database"
	"github.com/zatekoja/tripweaver/backend/internal/adapters/providers/hotels"
	"github.com/zatekoja/tripweaver/backend/internal/adapters/providers/places"
	"github.com/zatekoja/tripweaver/backend/internal/adapters/providers/weather"
	"github.com/zatekoja/tripweaver/backend/internal/adapters/search"
	"github.com/zatekoja/tripweaver/backend/internal/api/handlers"
	"github.com/zatekoja/tripweaver/backend/internal/api/routes"
	"github.com/zatekoja/tripweaver/backend/internal/application/services"
	domainproviders "github.com/zatekoja/tripweaver/backend/internal/domain/providers"
	"github.com/zatekoja/tripweaver/backend/internal/infrastructure/clients/cohere"
	"github.com/zatekoja/tripweaver/backend/internal/infrastructure/clients/gemini"
	"github.com/zatekoja/tripweaver/backend/internal/infrastructure/clients/postgres"
	redisclient "github.com/zatekoja/tripweaver/backend/internal/infrastructure/clients/redis"
	tsclient "github.com/zatekoja/tripweaver/backend/internal/infrastructure/clients/typesense"
	"github.com/zatekoja/tripweaver/backend/internal/infrastructure/observability"
	"github.com/zatekoja/tripweaver/backend/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, os.Getenv("APP_ENV"))
	logger := observability.GetLogger()

	ctx := context.Background()

	var otelShutdown func(context.Context) error
	var metrics *observability.Metrics
	if cfg.OTEL.Enabled {
		otelShutdown, err = observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to set up OpenTelemetry")
		}
		metrics, err = observability.InitMetrics()
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to init metrics")
		}
	}

	// Infrastructure clients
	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to PostgreSQL")
	}
	defer pgClient.Close()

	redisClient, err := redisclient.NewClient(&cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer redisClient.Close()

	typesenseClient, err := tsclient.NewClient(&cfg.Typesense)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to Typesense")
	}
	if err := typesenseClient.InitSchema(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to init Typesense schema")
	}

	embedder, err := cohere.NewClient(&cfg.Cohere)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create embedding client")
	}
	generator, err := gemini.NewClient(&cfg.Gemini)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create generation client")
	}

	// Data providers, mock by default for local development
	var placesProvider domainproviders.PlacesProvider
	if cfg.Places.Provider == "google" {
		placesProvider, err = places.NewGoogleProvider(cfg.Places.APIKey)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to create places provider")
		}
	} else {
		placesProvider = places.NewMockProvider()
	}

	var hotelProvider domainproviders.HotelProvider
	if cfg.Hotels.Provider == "xotelo" {
		hotelProvider = hotels.NewXoteloProvider(cfg.Hotels.BaseURL)
	} else {
		hotelProvider = hotels.NewMockProvider()
	}

	var weatherProvider domainproviders.WeatherProvider
	if cfg.Weather.Provider == "openmeteo" {
		weatherProvider = weather.NewOpenMeteoProvider()
	} else {
		weatherProvider = weather.NewMockProvider()
	}

	// Adapters
	cacheProvider := cache.NewRedisAdapter(redisClient)
	documentRepo := search.NewTypesenseAdapter(typesenseClient)
	feedbackRepo := database.NewFeedbackAdapter(pgClient)
	itineraryRepo := database.NewItineraryAdapter(pgClient)

	// Services
	personalizationService := services.NewPersonalizationService(documentRepo, itineraryRepo, embedder, cacheProvider, cfg.Planner)
	acquisitionService := services.NewAcquisitionService(generator, placesProvider, hotelProvider, weatherProvider, metrics)
	budgetService := services.NewBudgetService()
	plannerService := services.NewPlannerService(
		acquisitionService,
		personalizationService,
		budgetService,
		generator,
		itineraryRepo,
		placesProvider,
		hotelProvider,
		metrics,
		cfg.Planner,
	)
	feedbackService := services.NewFeedbackService(feedbackRepo, personalizationService)

	// Handlers and routes
	itineraryHandler := handlers.NewItineraryHandler(plannerService)
	feedbackHandler := handlers.NewFeedbackHandler(feedbackService)
	router := routes.NewRouter(itineraryHandler, feedbackHandler, metrics)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.SetupRoutes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", server.Addr).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
	}
	if otelShutdown != nil {
		if err := otelShutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("otel shutdown failed")
		}
	}

	logger.Info().Msg("server stopped")
}
