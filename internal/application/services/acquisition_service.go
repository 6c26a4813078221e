package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/zatekoja/tripweaver/backend/internal/domain/entities"
	"github.com/zatekoja/tripweaver/backend/internal/domain/providers"
	"github.com/zatekoja/tripweaver/backend/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/tripweaver/backend/pkg/errors"
)

const (
	sourceAttractions = "search_attractions"
	sourceWeather     = "get_weather_forecast"
	sourceHotels      = "search_hotels"
	sourceRestaurants = "search_restaurants"

	// forecastHorizonDays is how far ahead the weather source can see
	forecastHorizonDays = 10

	weatherUnavailableText = "Weather data unavailable"
	hotelUnavailableText   = "Hotel search unavailable - itinerary will not include accommodation"
)

// fallbackAttractionTypes widens the attraction search on retry
var fallbackAttractionTypes = []string{"tourist_attraction", "beach", "park", "night_club", "bar"}

// ToolResult is the outcome of one data source call within a session
type ToolResult struct {
	Source  string
	RawText string
	Retried bool
}

// AcquisitionSession accumulates everything gathered for one request.
// The structured slices feed plan assembly; the raw texts feed the
// planning prompt. Sessions are request-scoped and never shared.
type AcquisitionSession struct {
	Trip        *entities.TripRequest
	Hotels      []entities.Hotel
	Attractions []entities.Attraction
	Restaurants []entities.Restaurant
	Forecast    []entities.WeatherDay
	Results     map[string]*ToolResult
	Warnings    []string
}

func newAcquisitionSession(trip *entities.TripRequest) *AcquisitionSession {
	return &AcquisitionSession{
		Trip:    trip,
		Results: map[string]*ToolResult{},
	}
}

func (s *AcquisitionSession) record(source, text string, retried bool) {
	if existing, ok := s.Results[source]; ok {
		existing.RawText = text
		existing.Retried = existing.Retried || retried
		return
	}
	s.Results[source] = &ToolResult{Source: source, RawText: text, Retried: retried}
}

// sourcePolicy is one row of the acquisition reliability policy. A
// source fails when its result is missing or starts with one of the
// failure markers; what happens next depends on the row.
type sourcePolicy struct {
	source         string
	critical       bool
	failureMarkers []string
	retry          func(ctx context.Context, session *AcquisitionSession) string
	degradedText   string
	warnOnly       bool
}

// AcquisitionService gathers trip data through a tool-calling reasoning
// run and enforces per-source reliability policy afterwards
type AcquisitionService struct {
	generator providers.GenerationProvider
	places    providers.PlacesProvider
	hotels    providers.HotelProvider
	weather   providers.WeatherProvider
	metrics   *observability.Metrics
}

// NewAcquisitionService creates a new acquisition service
func NewAcquisitionService(
	generator providers.GenerationProvider,
	places providers.PlacesProvider,
	hotels providers.HotelProvider,
	weather providers.WeatherProvider,
	metrics *observability.Metrics,
) *AcquisitionService {
	return &AcquisitionService{
		generator: generator,
		places:    places,
		hotels:    hotels,
		weather:   weather,
		metrics:   metrics,
	}
}

// Gather runs the reasoning stage for a trip and returns the session.
// The personalization context is folded into the goal instruction; an
// empty context is fine.
func (s *AcquisitionService) Gather(ctx context.Context, trip *entities.TripRequest, personalizationContext string) (*AcquisitionSession, error) {
	if trip == nil {
		return nil, apperrors.NewValidationError("trip request is required")
	}

	session := newAcquisitionSession(trip)
	tools := s.buildTools(session)
	instruction := buildGoalInstruction(trip, personalizationContext)

	_, _, err := s.generator.RunTools(ctx, instruction, tools)
	if err != nil {
		return nil, err
	}

	if err := s.applyPolicy(ctx, session); err != nil {
		return nil, err
	}

	return session, nil
}

// applyPolicy walks the policy table in fixed order so retries and
// failures are deterministic per run
func (s *AcquisitionService) applyPolicy(ctx context.Context, session *AcquisitionSession) error {
	logger := observability.LoggerFromContext(ctx)

	for _, policy := range s.policyTable() {
		result := session.Results[policy.source]
		if !sourceFailed(result, policy.failureMarkers) {
			continue
		}

		if policy.retry != nil {
			logger.Warn().
				Str("source", policy.source).
				Msg("data source failed, retrying once")
			if s.metrics != nil {
				observability.RecordSourceRetry(ctx, s.metrics, policy.source)
			}

			text := policy.retry(ctx, session)
			session.record(policy.source, text, true)
			result = session.Results[policy.source]
			if !sourceFailed(result, policy.failureMarkers) {
				continue
			}
		}

		if policy.critical {
			return apperrors.NewCriticalSourceError(
				fmt.Sprintf("%s failed after retry", policy.source), nil,
			)
		}

		if policy.warnOnly {
			warning := fmt.Sprintf("%s returned no usable data", policy.source)
			session.Warnings = append(session.Warnings, warning)
			logger.Warn().Str("source", policy.source).Msg(warning)
		}

		if policy.degradedText != "" {
			session.record(policy.source, policy.degradedText, result != nil && result.Retried)
			logger.Warn().
				Str("source", policy.source).
				Msg("data source degraded to placeholder")
		}
	}

	return nil
}

func (s *AcquisitionService) policyTable() []sourcePolicy {
	return []sourcePolicy{
		{
			source:         sourceAttractions,
			critical:       true,
			failureMarkers: []string{"Error", "No attractions"},
			retry: func(ctx context.Context, session *AcquisitionSession) string {
				return s.fetchAttractions(ctx, session, fallbackAttractionTypes)
			},
		},
		{
			source:         sourceWeather,
			failureMarkers: []string{"Error", "Weather unavailable"},
			retry: func(ctx context.Context, session *AcquisitionSession) string {
				return s.fetchWeather(ctx, session)
			},
			degradedText: weatherUnavailableText,
		},
		{
			source:         sourceHotels,
			failureMarkers: []string{"Error", "No hotels"},
			degradedText:   hotelUnavailableText,
		},
		{
			source:         sourceRestaurants,
			failureMarkers: []string{"Error", "No restaurants"},
			warnOnly:       true,
		},
	}
}

// sourceFailed reports whether a result is missing or carries a failure
// marker prefix
func sourceFailed(result *ToolResult, markers []string) bool {
	if result == nil || result.RawText == "" {
		return true
	}
	for _, marker := range markers {
		if strings.HasPrefix(result.RawText, marker) {
			return true
		}
	}
	return false
}

func (s *AcquisitionService) buildTools(session *AcquisitionSession) []providers.ToolDefinition {
	return []providers.ToolDefinition{
		{
			Name:        sourceAttractions,
			Description: "Search attractions near the destination. Optionally pass place_types to widen the search.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"place_types": map[string]any{
						"type":        "array",
						"items":       map[string]any{"type": "string"},
						"description": "Place type filters, e.g. tourist_attraction, park, beach",
					},
				},
			},
			Invoke: func(ctx context.Context, args map[string]any) (string, error) {
				text := s.fetchAttractions(ctx, session, stringSliceArg(args, "place_types"))
				session.record(sourceAttractions, text, false)
				return text, nil
			},
		},
		{
			Name:        sourceWeather,
			Description: "Get the daily weather forecast for the trip dates.",
			Parameters: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			},
			Invoke: func(ctx context.Context, args map[string]any) (string, error) {
				text := s.fetchWeather(ctx, session)
				session.record(sourceWeather, text, false)
				return text, nil
			},
		},
		{
			Name:        sourceHotels,
			Description: "Search hotels for the trip dates. Only call this when the traveler wants accommodation included.",
			Parameters: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			},
			Invoke: func(ctx context.Context, args map[string]any) (string, error) {
				text := s.fetchHotels(ctx, session)
				session.record(sourceHotels, text, false)
				return text, nil
			},
		},
		{
			Name:        sourceRestaurants,
			Description: "Search restaurants near the destination.",
			Parameters: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			},
			Invoke: func(ctx context.Context, args map[string]any) (string, error) {
				text := s.fetchRestaurants(ctx, session)
				session.record(sourceRestaurants, text, false)
				return text, nil
			},
		},
	}
}

// fetchAttractions fills the session's attraction list and returns the
// formatted text. Errors become marker text so the reasoning loop can
// keep going; policy enforcement happens afterwards.
func (s *AcquisitionService) fetchAttractions(ctx context.Context, session *AcquisitionSession, placeTypes []string) string {
	attractions, err := s.places.SearchAttractions(ctx, session.Trip.Latitude, session.Trip.Longitude, placeTypes)
	if err != nil {
		return fmt.Sprintf("Error searching attractions: %v", err)
	}
	if len(attractions) == 0 {
		return fmt.Sprintf("No attractions found in %s", session.Trip.City)
	}

	session.Attractions = attractions
	return formatAttractions(attractions)
}

func (s *AcquisitionService) fetchWeather(ctx context.Context, session *AcquisitionSession) string {
	trip := session.Trip
	if daysUntil(trip.StartDate) > forecastHorizonDays {
		return fmt.Sprintf(
			"Forecast not yet available: the trip starts more than %d days from now. Plan activities without weather data.",
			forecastHorizonDays,
		)
	}

	forecast, err := s.weather.GetForecast(ctx, trip.Latitude, trip.Longitude, trip.StartDate, trip.EndDate)
	if err != nil {
		return fmt.Sprintf("Error fetching weather: %v", err)
	}
	if len(forecast) == 0 {
		return "Weather unavailable for the requested dates"
	}

	session.Forecast = forecast
	return formatForecast(forecast)
}

func (s *AcquisitionService) fetchHotels(ctx context.Context, session *AcquisitionSession) string {
	trip := session.Trip
	hotels, err := s.hotels.SearchHotels(ctx, trip.City, trip.StartDate, trip.EndDate)
	if err != nil {
		return fmt.Sprintf("Error searching hotels: %v", err)
	}
	if len(hotels) == 0 {
		return fmt.Sprintf("No hotels found in %s", trip.City)
	}

	session.Hotels = hotels
	return formatHotels(hotels)
}

func (s *AcquisitionService) fetchRestaurants(ctx context.Context, session *AcquisitionSession) string {
	restaurants, err := s.places.SearchRestaurants(ctx, session.Trip.Latitude, session.Trip.Longitude)
	if err != nil {
		return fmt.Sprintf("Error searching restaurants: %v", err)
	}
	if len(restaurants) == 0 {
		return fmt.Sprintf("No restaurants found in %s", session.Trip.City)
	}

	session.Restaurants = restaurants
	return formatRestaurants(restaurants)
}

func formatAttractions(attractions []entities.Attraction) string {
	var b strings.Builder
	b.WriteString("Attractions:\n")
	for i, a := range attractions {
		b.WriteString(fmt.Sprintf("%d. %s", i+1, a.Name))
		if a.Address != "" {
			b.WriteString(fmt.Sprintf(" - %s", a.Address))
		}
		b.WriteString(fmt.Sprintf(" (entry: $%.2f", a.Price))
		if a.Rating != nil {
			b.WriteString(fmt.Sprintf(", rating: %.1f", *a.Rating))
		}
		b.WriteString(")\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatRestaurants(restaurants []entities.Restaurant) string {
	var b strings.Builder
	b.WriteString("Restaurants:\n")
	for i, r := range restaurants {
		b.WriteString(fmt.Sprintf("%d. %s", i+1, r.Name))
		if r.Cuisine != "" {
			b.WriteString(fmt.Sprintf(" (%s)", r.Cuisine))
		}
		b.WriteString(fmt.Sprintf(" - avg meal $%.2f", r.MealCost))
		if r.Rating != nil {
			b.WriteString(fmt.Sprintf(", rating: %.1f", *r.Rating))
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatHotels(hotels []entities.Hotel) string {
	var b strings.Builder
	b.WriteString("Hotels:\n")
	for i, h := range hotels {
		b.WriteString(fmt.Sprintf("%d. %s - $%.2f/night ($%.2f total)", i+1, h.Name, h.PricePerNight, h.TotalPrice))
		if h.Rating != nil {
			b.WriteString(fmt.Sprintf(", rating: %.1f", *h.Rating))
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatForecast(forecast []entities.WeatherDay) string {
	var b strings.Builder
	b.WriteString("Weather forecast:\n")
	for _, day := range forecast {
		b.WriteString(fmt.Sprintf(
			"%s: %s, high %.0f°C, low %.0f°C, %d%% chance of precipitation\n",
			day.Date.Format("2006-01-02"), day.Summary, day.HighC, day.LowC, day.PrecipChance,
		))
	}
	return strings.TrimRight(b.String(), "\n")
}

func daysUntil(date time.Time) int {
	return int(time.Until(date).Hours() / 24)
}

func stringSliceArg(args map[string]any, key string) []string {
	raw, ok := args[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, entry := range raw {
		if s, ok := entry.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
