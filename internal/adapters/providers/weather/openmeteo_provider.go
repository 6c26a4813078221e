package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/zatekoja/tripweaver/backend/internal/domain/entities"
	"github.com/zatekoja/tripweaver/backend/internal/domain/providers"
	apperrors "github.com/zatekoja/tripweaver/backend/pkg/errors"
)

const defaultBaseURL = "https://api.open-meteo.com/v1"

// OpenMeteoProvider implements daily forecasts on the Open-Meteo API
type OpenMeteoProvider struct {
	baseURL    string
	httpClient *http.Client
}

// Ensure OpenMeteoProvider implements WeatherProvider
var _ providers.WeatherProvider = (*OpenMeteoProvider)(nil)

// NewOpenMeteoProvider creates a new Open-Meteo provider
func NewOpenMeteoProvider() *OpenMeteoProvider {
	return NewOpenMeteoProviderWithOptions(defaultBaseURL, &http.Client{
		Timeout: 10 * time.Second,
	})
}

// NewOpenMeteoProviderWithOptions creates a provider pointed at a custom
// endpoint, used by tests
func NewOpenMeteoProviderWithOptions(baseURL string, httpClient *http.Client) *OpenMeteoProvider {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &OpenMeteoProvider{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

type forecastResponse struct {
	Daily struct {
		Time                     []string  `json:"time"`
		WeatherCode              []int     `json:"weather_code"`
		Temperature2mMax         []float64 `json:"temperature_2m_max"`
		Temperature2mMin         []float64 `json:"temperature_2m_min"`
		PrecipitationProbability []int     `json:"precipitation_probability_max"`
	} `json:"daily"`
}

// GetForecast returns a daily forecast for the date range
func (p *OpenMeteoProvider) GetForecast(ctx context.Context, lat, lng float64, start, end time.Time) ([]entities.WeatherDay, error) {
	params := url.Values{}
	params.Set("latitude", fmt.Sprintf("%f", lat))
	params.Set("longitude", fmt.Sprintf("%f", lng))
	params.Set("daily", "weather_code,temperature_2m_max,temperature_2m_min,precipitation_probability_max")
	params.Set("start_date", start.Format("2006-01-02"))
	params.Set("end_date", end.Format("2006-01-02"))
	params.Set("timezone", "auto")

	endpoint := fmt.Sprintf("%s/forecast?%s", p.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.NewUnavailableError("weather request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.NewUnavailableError(
			fmt.Sprintf("weather request failed with status %d", resp.StatusCode), nil,
		)
	}

	var envelope forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, err
	}

	days := make([]entities.WeatherDay, 0, len(envelope.Daily.Time))
	for i, day := range envelope.Daily.Time {
		date, err := time.Parse("2006-01-02", day)
		if err != nil {
			continue
		}

		entry := entities.WeatherDay{Date: date}
		if i < len(envelope.Daily.WeatherCode) {
			entry.Summary = summaryFromCode(envelope.Daily.WeatherCode[i])
		}
		if i < len(envelope.Daily.Temperature2mMax) {
			entry.HighC = envelope.Daily.Temperature2mMax[i]
		}
		if i < len(envelope.Daily.Temperature2mMin) {
			entry.LowC = envelope.Daily.Temperature2mMin[i]
		}
		if i < len(envelope.Daily.PrecipitationProbability) {
			entry.PrecipChance = envelope.Daily.PrecipitationProbability[i]
		}
		days = append(days, entry)
	}

	return days, nil
}

// summaryFromCode maps WMO weather codes to short labels
func summaryFromCode(code int) string {
	switch {
	case code == 0:
		return "clear"
	case code <= 3:
		return "partly cloudy"
	case code <= 48:
		return "fog"
	case code <= 57:
		return "drizzle"
	case code <= 67:
		return "rain"
	case code <= 77:
		return "snow"
	case code <= 82:
		return "showers"
	case code <= 86:
		return "snow showers"
	default:
		return "thunderstorm"
	}
}
