package weather

import (
	"context"
	"time"

	"github.com/zatekoja/tripweaver/backend/internal/domain/entities"
	"github.com/zatekoja/tripweaver/backend/internal/domain/providers"
)

// MockProvider returns deterministic forecasts for development
type MockProvider struct{}

// Ensure MockProvider implements WeatherProvider
var _ providers.WeatherProvider = (*MockProvider)(nil)

// NewMockProvider creates a mock weather provider
func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

// GetForecast returns one mild day per date in the range
func (p *MockProvider) GetForecast(_ context.Context, _, _ float64, start, end time.Time) ([]entities.WeatherDay, error) {
	summaries := []string{"clear", "partly cloudy", "showers"}

	days := []entities.WeatherDay{}
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, entities.WeatherDay{
			Date:         d,
			Summary:      summaries[len(days)%len(summaries)],
			HighC:        22,
			LowC:         14,
			PrecipChance: 20,
		})
	}
	return days, nil
}
