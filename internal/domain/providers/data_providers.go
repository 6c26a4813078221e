package providers

import (
	"context"
	"time"

	"github.com/zatekoja/tripweaver/backend/internal/domain/entities"
)

// PlacesProvider searches attractions and restaurants around a location
type PlacesProvider interface {
	SearchAttractions(ctx context.Context, lat, lng float64, placeTypes []string) ([]entities.Attraction, error)
	SearchRestaurants(ctx context.Context, lat, lng float64) ([]entities.Restaurant, error)
}

// HotelProvider searches hotel availability for a stay
type HotelProvider interface {
	SearchHotels(ctx context.Context, city string, checkIn, checkOut time.Time) ([]entities.Hotel, error)
}

// WeatherProvider returns a daily forecast for a date range
type WeatherProvider interface {
	GetForecast(ctx context.Context, lat, lng float64, start, end time.Time) ([]entities.WeatherDay, error)
}

// CacheProvider defines caching operations
type CacheProvider interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}
