package cohere

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/zatekoja/tripweaver/backend/pkg/config"
	apperrors "github.com/zatekoja/tripweaver/backend/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	defaultBaseURL = "https://api.cohere.com/v1"

	// embeddingDimension is the output width of the embed-english-v3.0
	// family
	embeddingDimension = 1024

	inputTypeDocument = "search_document"
	inputTypeQuery    = "search_query"
)

// Client implements the embedding provider on the Cohere embed API.
// Documents and queries use distinct input types so index-side and
// query-side vectors stay comparable.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	limiter    *tokenBucket
}

// NewClient creates a new Cohere client
func NewClient(cfg *config.CohereConfig) (*Client, error) {
	if cfg == nil || cfg.APIKey == "" {
		return nil, errors.New("cohere api key is required")
	}

	model := cfg.Model
	if model == "" {
		model = "embed-english-v3.0"
	}

	return &Client{
		apiKey:  cfg.APIKey,
		model:   model,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
		limiter: newTokenBucket(cfg.RateLimitRPM, cfg.RateLimitBurst),
	}, nil
}

// NewClientWithOptions creates a client pointed at a custom endpoint,
// used by tests
func NewClientWithOptions(apiKey, model, baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 20 * time.Second}
	}
	return &Client{
		apiKey:     apiKey,
		model:      model,
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

type embedRequest struct {
	Model     string   `json:"model"`
	Texts     []string `json:"texts"`
	InputType string   `json:"input_type"`
}

type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// EmbedDocument embeds text for indexing
func (c *Client) EmbedDocument(ctx context.Context, text string) ([]float32, error) {
	return c.embed(ctx, text, inputTypeDocument)
}

// EmbedQuery embeds text for searching
func (c *Client) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return c.embed(ctx, text, inputTypeQuery)
}

// Dimension returns the embedding vector width
func (c *Client) Dimension() int {
	return embeddingDimension
}

func (c *Client) embed(ctx context.Context, text string, inputType string) ([]float32, error) {
	if text == "" {
		return nil, errors.New("text is required")
	}

	if c.limiter != nil {
		waitStart := time.Now()
		if err := c.limiter.Wait(ctx); err != nil {
			recordCohereMetric(ctx, c.model, 0, 0, err)
			return nil, err
		}
		recordCohereRateLimitWait(ctx, c.model, time.Since(waitStart))
	}

	body, err := json.Marshal(embedRequest{
		Model:     c.model,
		Texts:     []string{text},
		InputType: inputType,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/embed", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		recordCohereMetric(ctx, c.model, 0, time.Since(start), err)
		return nil, apperrors.NewUnavailableError("embedding request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		statusErr := fmt.Errorf("status %d", resp.StatusCode)
		recordCohereMetric(ctx, c.model, resp.StatusCode, time.Since(start), statusErr)
		return nil, apperrors.NewUnavailableError(
			fmt.Sprintf("cohere request failed with status %d", resp.StatusCode), statusErr,
		)
	}

	var envelope embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		recordCohereMetric(ctx, c.model, resp.StatusCode, time.Since(start), err)
		return nil, err
	}

	if len(envelope.Embeddings) == 0 || len(envelope.Embeddings[0]) == 0 {
		err := errors.New("cohere response missing embeddings")
		recordCohereMetric(ctx, c.model, resp.StatusCode, time.Since(start), err)
		return nil, err
	}

	recordCohereMetric(ctx, c.model, resp.StatusCode, time.Since(start), nil)
	return envelope.Embeddings[0], nil
}

func newTokenBucket(rpm int, burst int) *tokenBucket {
	if rpm == 0 {
		rpm = 100
	}
	if rpm < 0 {
		return nil
	}
	if burst <= 0 {
		burst = 5
	}

	bucket := &tokenBucket{
		tokens: make(chan struct{}, burst),
	}

	for i := 0; i < burst; i++ {
		bucket.tokens <- struct{}{}
	}

	interval := time.Minute / time.Duration(rpm)
	if interval <= 0 {
		interval = time.Millisecond
	}

	ticker := time.NewTicker(interval)
	go func() {
		for range ticker.C {
			select {
			case bucket.tokens <- struct{}{}:
			default:
			}
		}
	}()

	return bucket
}

type tokenBucket struct {
	tokens chan struct{}
}

func (b *tokenBucket) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-b.tokens:
		return nil
	}
}

type cohereMetricSet struct {
	requestCount    metric.Int64Counter
	requestDuration metric.Float64Histogram
	requestErrors   metric.Int64Counter
	rateLimitWait   metric.Float64Histogram
}

var cohereMetricsInit = false
var cohereMetrics cohereMetricSet

func ensureCohereMetrics() {
	if cohereMetricsInit {
		return
	}
	meter := otel.Meter("github.com/zatekoja/tripweaver/backend/cohere")

	requestCount, err := meter.Int64Counter(
		"ai.cohere.request.count",
		metric.WithDescription("Number of Cohere embed requests"),
	)
	if err != nil {
		return
	}
	requestDuration, err := meter.Float64Histogram(
		"ai.cohere.request.duration",
		metric.WithDescription("Cohere request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return
	}
	requestErrors, err := meter.Int64Counter(
		"ai.cohere.request.errors",
		metric.WithDescription("Number of Cohere request errors"),
	)
	if err != nil {
		return
	}
	rateLimitWait, err := meter.Float64Histogram(
		"ai.cohere.rate_limit.wait",
		metric.WithDescription("Time spent waiting for Cohere rate limiter in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return
	}

	cohereMetrics = cohereMetricSet{
		requestCount:    requestCount,
		requestDuration: requestDuration,
		requestErrors:   requestErrors,
		rateLimitWait:   rateLimitWait,
	}
	cohereMetricsInit = true
}

func recordCohereMetric(ctx context.Context, model string, statusCode int, duration time.Duration, err error) {
	ensureCohereMetrics()
	if !cohereMetricsInit {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("ai.provider", "cohere"),
		attribute.String("ai.model", model),
	}
	if statusCode > 0 {
		attrs = append(attrs, attribute.Int("http.status_code", statusCode))
	}

	cohereMetrics.requestCount.Add(ctx, 1, metric.WithAttributes(attrs...))
	cohereMetrics.requestDuration.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
	if err != nil {
		cohereMetrics.requestErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

func recordCohereRateLimitWait(ctx context.Context, model string, wait time.Duration) {
	ensureCohereMetrics()
	if !cohereMetricsInit {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String("ai.provider", "cohere"),
		attribute.String("ai.model", model),
	}
	cohereMetrics.rateLimitWait.Record(ctx, float64(wait.Milliseconds()), metric.WithAttributes(attrs...))
}
