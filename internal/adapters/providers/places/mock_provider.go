package places

import (
	"context"

	"github.com/zatekoja/tripweaver/backend/internal/domain/entities"
	"github.com/zatekoja/tripweaver/backend/internal/domain/providers"
)

// MockProvider returns deterministic places data for development
type MockProvider struct{}

// Ensure MockProvider implements PlacesProvider
var _ providers.PlacesProvider = (*MockProvider)(nil)

// NewMockProvider creates a mock places provider
func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

// SearchAttractions returns a fixed attraction list
func (p *MockProvider) SearchAttractions(_ context.Context, _, _ float64, placeTypes []string) ([]entities.Attraction, error) {
	category := "tourist_attraction"
	if len(placeTypes) > 0 {
		category = placeTypes[0]
	}
	return []entities.Attraction{
		{Name: "Old Town Walking Tour", Address: "1 Market Square", Price: 15, Rating: floatPtr(4.7), Category: category, PriceLevel: intPtr(1)},
		{Name: "City Art Museum", Address: "22 Gallery Lane", Price: 25, Rating: floatPtr(4.5), Category: category, PriceLevel: intPtr(2)},
		{Name: "Harbor Viewpoint", Address: "9 Seaside Drive", Price: 0, Rating: floatPtr(4.8), Category: category},
		{Name: "Botanical Gardens", Address: "3 Greenhouse Road", Price: 12, Rating: floatPtr(4.4), Category: category, PriceLevel: intPtr(1)},
	}, nil
}

// SearchRestaurants returns a fixed restaurant list
func (p *MockProvider) SearchRestaurants(_ context.Context, _, _ float64) ([]entities.Restaurant, error) {
	return []entities.Restaurant{
		{Name: "Trattoria Mare", Address: "14 Canal Street", MealCost: 35, Cuisine: "italian", Rating: floatPtr(4.6), PriceLevel: intPtr(2)},
		{Name: "Spice Route", Address: "8 Bazaar Alley", MealCost: 22, Cuisine: "indian", Rating: floatPtr(4.3), PriceLevel: intPtr(1)},
		{Name: "The Corner Bistro", Address: "41 High Street", MealCost: 48, Cuisine: "french", Rating: floatPtr(4.7), PriceLevel: intPtr(3)},
	}, nil
}
