package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/zatekoja/tripweaver/backend/internal/domain/providers"
	"github.com/zatekoja/tripweaver/backend/pkg/config"
	apperrors "github.com/zatekoja/tripweaver/backend/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	// maxToolTurns bounds the reasoning loop; a model that keeps calling
	// tools past this is not converging
	maxToolTurns = 8
)

// Client implements the generation provider on the Gemini
// generateContent API
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	limiter    *tokenBucket
}

// NewClient creates a new Gemini client
func NewClient(cfg *config.GeminiConfig) (*Client, error) {
	if cfg == nil || cfg.APIKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	model := cfg.Model
	if model == "" {
		model = "gemini-2.0-flash-lite"
	}

	return &Client{
		apiKey:  cfg.APIKey,
		model:   model,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		limiter: newTokenBucket(cfg.RateLimitRPM, cfg.RateLimitBurst),
	}, nil
}

// NewClientWithOptions creates a client pointed at a custom endpoint,
// used by tests
func NewClientWithOptions(apiKey, model, baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &Client{
		apiKey:     apiKey,
		model:      model,
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text             string            `json:"text,omitempty"`
	FunctionCall     *functionCall     `json:"functionCall,omitempty"`
	FunctionResponse *functionResponse `json:"functionResponse,omitempty"`
}

type functionCall struct {
	Name string         `json:"name"`
	Args map[string]any `json:"args"`
}

type functionResponse struct {
	Name     string         `json:"name"`
	Response map[string]any `json:"response"`
}

type functionDeclaration struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

type generationConfig struct {
	Temperature      *float64       `json:"temperature,omitempty"`
	ResponseMimeType string         `json:"responseMimeType,omitempty"`
	ResponseSchema   map[string]any `json:"responseSchema,omitempty"`
}

type generateRequest struct {
	Contents         []content         `json:"contents"`
	Tools            []map[string]any  `json:"tools,omitempty"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type safetyRating struct {
	Category string `json:"category"`
	Blocked  bool   `json:"blocked"`
}

type candidate struct {
	Content       content        `json:"content"`
	FinishReason  string         `json:"finishReason"`
	SafetyRatings []safetyRating `json:"safetyRatings"`
}

type promptFeedback struct {
	BlockReason string `json:"blockReason"`
}

type generateResponse struct {
	Candidates     []candidate     `json:"candidates"`
	PromptFeedback *promptFeedback `json:"promptFeedback,omitempty"`
}

// RunTools drives a function-calling loop. Tool results go back as
// functionResponse parts; the loop ends when the model answers without
// requesting a tool or the turn cap is hit.
func (c *Client) RunTools(ctx context.Context, instruction string, tools []providers.ToolDefinition) ([]providers.ToolCall, string, error) {
	declarations := make([]functionDeclaration, 0, len(tools))
	byName := make(map[string]providers.ToolDefinition, len(tools))
	for _, tool := range tools {
		declarations = append(declarations, functionDeclaration{
			Name:        tool.Name,
			Description: tool.Description,
			Parameters:  tool.Parameters,
		})
		byName[tool.Name] = tool
	}

	contents := []content{
		{Role: "user", Parts: []part{{Text: instruction}}},
	}

	var calls []providers.ToolCall

	for turn := 0; turn < maxToolTurns; turn++ {
		req := generateRequest{
			Contents: contents,
			Tools: []map[string]any{
				{"functionDeclarations": declarations},
			},
		}

		resp, err := c.generate(ctx, req)
		if err != nil {
			return calls, "", err
		}

		modelContent := resp.Candidates[0].Content
		modelContent.Role = "model"
		contents = append(contents, modelContent)

		pending := pendingCalls(modelContent)
		if len(pending) == 0 {
			return calls, firstText(modelContent), nil
		}

		responseParts := make([]part, 0, len(pending))
		for _, fc := range pending {
			tool, known := byName[fc.Name]
			var result string
			if !known {
				result = fmt.Sprintf("Error: unknown tool %q", fc.Name)
			} else {
				result, err = tool.Invoke(ctx, fc.Args)
				if err != nil {
					return calls, "", err
				}
			}

			calls = append(calls, providers.ToolCall{
				Name:   fc.Name,
				Args:   fc.Args,
				Result: result,
			})
			responseParts = append(responseParts, part{
				FunctionResponse: &functionResponse{
					Name:     fc.Name,
					Response: map[string]any{"result": result},
				},
			})
		}

		contents = append(contents, content{Role: "user", Parts: responseParts})
	}

	return calls, "", apperrors.NewInternalError(
		fmt.Sprintf("tool loop did not converge within %d turns", maxToolTurns), nil,
	)
}

// GenerateStructured produces JSON constrained to the given schema. The
// schema must already be normalized to the dialect the API accepts.
func (c *Client) GenerateStructured(ctx context.Context, prompt string, schema map[string]any) (json.RawMessage, error) {
	temperature := 0.2
	req := generateRequest{
		Contents: []content{
			{Role: "user", Parts: []part{{Text: prompt}}},
		},
		GenerationConfig: &generationConfig{
			Temperature:      &temperature,
			ResponseMimeType: "application/json",
			ResponseSchema:   schema,
		},
	}

	resp, err := c.generate(ctx, req)
	if err != nil {
		return nil, err
	}

	text := firstText(resp.Candidates[0].Content)
	if text == "" {
		return nil, apperrors.NewInfeasibleError("model returned an empty structured response")
	}
	return json.RawMessage(text), nil
}

func (c *Client) generate(ctx context.Context, payload generateRequest) (*generateResponse, error) {
	if c.limiter != nil {
		waitStart := time.Now()
		if err := c.limiter.Wait(ctx); err != nil {
			recordGeminiMetric(ctx, c.model, 0, 0, err)
			return nil, err
		}
		recordGeminiRateLimitWait(ctx, c.model, time.Since(waitStart))
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		recordGeminiMetric(ctx, c.model, 0, time.Since(start), err)
		return nil, apperrors.NewUnavailableError("generation request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		statusErr := fmt.Errorf("status %d", resp.StatusCode)
		recordGeminiMetric(ctx, c.model, resp.StatusCode, time.Since(start), statusErr)
		return nil, apperrors.NewUnavailableError(
			fmt.Sprintf("gemini request failed with status %d", resp.StatusCode), statusErr,
		)
	}

	var envelope generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		recordGeminiMetric(ctx, c.model, resp.StatusCode, time.Since(start), err)
		return nil, err
	}

	if envelope.PromptFeedback != nil && envelope.PromptFeedback.BlockReason != "" {
		err := apperrors.NewContentSafetyError(
			fmt.Sprintf("prompt blocked: %s", envelope.PromptFeedback.BlockReason),
		)
		recordGeminiMetric(ctx, c.model, resp.StatusCode, time.Since(start), err)
		return nil, err
	}

	if len(envelope.Candidates) == 0 {
		err := errors.New("gemini response missing candidates")
		recordGeminiMetric(ctx, c.model, resp.StatusCode, time.Since(start), err)
		return nil, err
	}

	cand := envelope.Candidates[0]
	if cand.FinishReason == "SAFETY" || anyBlocked(cand.SafetyRatings) {
		err := apperrors.NewContentSafetyError("generated content flagged by safety filter")
		recordGeminiMetric(ctx, c.model, resp.StatusCode, time.Since(start), err)
		return nil, err
	}

	recordGeminiMetric(ctx, c.model, resp.StatusCode, time.Since(start), nil)
	return &envelope, nil
}

func anyBlocked(ratings []safetyRating) bool {
	for _, r := range ratings {
		if r.Blocked {
			return true
		}
	}
	return false
}

func pendingCalls(c content) []functionCall {
	var calls []functionCall
	for _, p := range c.Parts {
		if p.FunctionCall != nil {
			calls = append(calls, *p.FunctionCall)
		}
	}
	return calls
}

func firstText(c content) string {
	for _, p := range c.Parts {
		if p.Text != "" {
			return p.Text
		}
	}
	return ""
}

func newTokenBucket(rpm int, burst int) *tokenBucket {
	if rpm == 0 {
		rpm = 60
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

type geminiMetricSet struct {
	requestCount    metric.Int64Counter
	requestDuration metric.Float64Histogram
	requestErrors   metric.Int64Counter
	rateLimitWait   metric.Float64Histogram
}

var geminiMetricsInit = false
var geminiMetrics geminiMetricSet

func ensureGeminiMetrics() {
	if geminiMetricsInit {
		return
	}
	meter := otel.Meter("github.com/zatekoja/tripweaver/backend/gemini")

	requestCount, err := meter.Int64Counter(
		"ai.gemini.request.count",
		metric.WithDescription("Number of Gemini requests"),
	)
	if err != nil {
		return
	}
	requestDuration, err := meter.Float64Histogram(
		"ai.gemini.request.duration",
		metric.WithDescription("Gemini request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return
	}
	requestErrors, err := meter.Int64Counter(
		"ai.gemini.request.errors",
		metric.WithDescription("Number of Gemini request errors"),
	)
	if err != nil {
		return
	}
	rateLimitWait, err := meter.Float64Histogram(
		"ai.gemini.rate_limit.wait",
		metric.WithDescription("Time spent waiting for Gemini rate limiter in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return
	}

	geminiMetrics = geminiMetricSet{
		requestCount:    requestCount,
		requestDuration: requestDuration,
		requestErrors:   requestErrors,
		rateLimitWait:   rateLimitWait,
	}
	geminiMetricsInit = true
}

func recordGeminiMetric(ctx context.Context, model string, statusCode int, duration time.Duration, err error) {
	ensureGeminiMetrics()
	if !geminiMetricsInit {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("ai.provider", "gemini"),
		attribute.String("ai.model", model),
	}
	if statusCode > 0 {
		attrs = append(attrs, attribute.Int("http.status_code", statusCode))
	}

	geminiMetrics.requestCount.Add(ctx, 1, metric.WithAttributes(attrs...))
	geminiMetrics.requestDuration.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
	if err != nil {
		geminiMetrics.requestErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

func recordGeminiRateLimitWait(ctx context.Context, model string, wait time.Duration) {
	ensureGeminiMetrics()
	if !geminiMetricsInit {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String("ai.provider", "gemini"),
		attribute.String("ai.model", model),
	}
	geminiMetrics.rateLimitWait.Record(ctx, float64(wait.Milliseconds()), metric.WithAttributes(attrs...))
}
