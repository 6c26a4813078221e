package typesense

import (
	"context"
	"fmt"
	"time"

	"github.com/typesense/typesense-go/v2/typesense"
	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"
	"github.com/zatekoja/tripweaver/backend/internal/infrastructure/observability"
	"github.com/zatekoja/tripweaver/backend/pkg/config"
	"github.com/zatekoja/tripweaver/backend/pkg/retry"
)

const (
	// TravelDocumentsCollection holds one document per highly-rated past
	// trip, keyed by feedback id
	TravelDocumentsCollection = "travel_documents"

	// EmbeddingDimension matches the embedding model's output width
	EmbeddingDimension = 1024
)

// Client represents a Typesense client
type Client struct {
	client *typesense.Client
}

// NewClient creates a new Typesense client with exponential backoff retry
func NewClient(cfg *config.TypesenseConfig) (*Client, error) {
	client := typesense.NewClient(
		typesense.WithServer(cfg.URL),
		typesense.WithAPIKey(cfg.APIKey),
		typesense.WithConnectionTimeout(5*time.Second),
	)

	// Test connection with retry
	retryConfig := retry.DefaultConfig()
	err := retry.DoWithLog(
		context.Background(),
		retryConfig,
		"Typesense",
		func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_, err := client.Health(ctx, 2*time.Second)
			return err
		},
		func(attempt int, err error, nextDelay time.Duration) {
			observability.GetLogger().Warn().
				Err(err).
				Int("attempt", attempt).
				Dur("next_delay", nextDelay).
				Msg("Typesense connection attempt failed, retrying")
		},
	)

	if err != nil {
		return nil, fmt.Errorf("failed to connect to Typesense after retries: %w", err)
	}

	observability.GetLogger().Info().Msg("connected to Typesense")
	return &Client{client: client}, nil
}

// Client returns the underlying Typesense client
func (c *Client) Client() *typesense.Client {
	return c.client
}

// InitSchema ensures the travel documents collection exists
func (c *Client) InitSchema(ctx context.Context) error {
	collections, err := c.client.Collections().Retrieve(ctx)
	if err != nil {
		return fmt.Errorf("failed to retrieve collections: %w", err)
	}

	for _, col := range collections {
		if col.Name == TravelDocumentsCollection {
			return nil
		}
	}

	schema := &api.CollectionSchema{
		Name: TravelDocumentsCollection,
		Fields: []api.Field{
			{
				Name: "id",
				Type: "string",
			},
			{
				Name:  "user_id",
				Type:  "string",
				Facet: pointer.True(),
			},
			{
				Name: "itinerary_id",
				Type: "string",
			},
			{
				Name: "text",
				Type: "string",
			},
			{
				Name:   "embedding",
				Type:   "float[]",
				NumDim: pointer.Int(EmbeddingDimension),
			},
			{
				Name:  "city",
				Type:  "string",
				Facet: pointer.True(),
			},
			{
				Name:     "start_date",
				Type:     "string",
				Optional: pointer.True(),
			},
			{
				Name:     "end_date",
				Type:     "string",
				Optional: pointer.True(),
			},
			{
				Name:     "preferences",
				Type:     "string",
				Optional: pointer.True(),
			},
			{
				Name: "rating",
				Type: "int32",
			},
			{
				Name: "created_at",
				Type: "int64",
			},
		},
		DefaultSortingField: pointer.String("created_at"),
	}

	_, err = c.client.Collections().Create(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	observability.GetLogger().Info().
		Str("collection", TravelDocumentsCollection).
		Msg("created Typesense collection")
	return nil
}
