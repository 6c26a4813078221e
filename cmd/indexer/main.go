// Command indexer backfills the personalization index from stored
// feedback. Ratings of 4 or above are embedded and upserted, anything
// lower is removed, so a run also repairs index writes that failed
// during request handling.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/zatekoja/tripweaver/backend/internal/adapters/database"
	"github.com/zatekoja/tripweaver/backend/internal/adapters/search"
	"github.com/zatekoja/tripweaver/backend/internal/application/services"
	"github.com/zatekoja/tripweaver/backend/internal/infrastructure/clients/cohere"
	"github.com/zatekoja/tripweaver/backend/internal/infrastructure/clients/postgres"
	tsclient "github.com/zatekoja/tripweaver/backend/internal/infrastructure/clients/typesense"
	"github.com/zatekoja/tripweaver/backend/internal/infrastructure/observability"
	"github.com/zatekoja/tripweaver/backend/pkg/config"
)

const batchSize = 200

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger("tripweaver-indexer", os.Getenv("APP_ENV"))
	logger := observability.GetLogger()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to PostgreSQL")
	}
	defer pgClient.Close()

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

	feedbackRepo := database.NewFeedbackAdapter(pgClient)
	itineraryRepo := database.NewItineraryAdapter(pgClient)
	documentRepo := search.NewTypesenseAdapter(typesenseClient)

	personalization := services.NewPersonalizationService(documentRepo, itineraryRepo, embedder, nil, cfg.Planner)

	indexed, removed, failed := 0, 0, 0
	for offset := 0; ; offset += batchSize {
		batch, err := feedbackRepo.List(ctx, batchSize, offset)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to list feedback")
		}
		if len(batch) == 0 {
			break
		}

		for _, feedback := range batch {
			if err := personalization.IndexFeedback(ctx, feedback); err != nil {
				failed++
				logger.Warn().
					Err(err).
					Str("feedback_id", feedback.ID.String()).
					Msg("failed to index feedback")
				continue
			}
			if feedback.IndexWorthy() {
				indexed++
			} else {
				removed++
			}
		}
	}

	logger.Info().
		Int("indexed", indexed).
		Int("removed", removed).
		Int("failed", failed).
		Msg("backfill complete")

	if failed > 0 {
		os.Exit(1)
	}
}
