package hotels

import (
	"context"
	"time"

	"github.com/zatekoja/tripweaver/backend/internal/domain/entities"
	"github.com/zatekoja/tripweaver/backend/internal/domain/providers"
)

// MockProvider returns deterministic hotel data for development
type MockProvider struct{}

// Ensure MockProvider implements HotelProvider
var _ providers.HotelProvider = (*MockProvider)(nil)

// NewMockProvider creates a mock hotel provider
func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

func floatPtr(v float64) *float64 { return &v }

// SearchHotels returns a fixed hotel list priced for the stay length
func (p *MockProvider) SearchHotels(_ context.Context, _ string, checkIn, checkOut time.Time) ([]entities.Hotel, error) {
	nights := int(checkOut.Sub(checkIn).Hours() / 24)
	if nights < 1 {
		nights = 1
	}

	base := []entities.Hotel{
		{Name: "Budget Stay Inn", Address: "5 Station Road", PricePerNight: 60, Rating: floatPtr(3.8), Amenities: []string{"wifi"}},
		{Name: "Central Plaza Hotel", Address: "1 Plaza Square", PricePerNight: 120, Rating: floatPtr(4.3), Amenities: []string{"wifi", "breakfast", "gym"}},
		{Name: "Grand Riverside", Address: "30 River Walk", PricePerNight: 210, Rating: floatPtr(4.7), Amenities: []string{"wifi", "breakfast", "spa", "pool"}},
	}

	for i := range base {
		base[i].TotalPrice = base[i].PricePerNight * float64(nights)
	}
	return base, nil
}
