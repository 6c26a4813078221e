package places

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/zatekoja/tripweaver/backend/internal/domain/entities"
	"github.com/zatekoja/tripweaver/backend/internal/domain/providers"
	apperrors "github.com/zatekoja/tripweaver/backend/pkg/errors"
)

const (
	defaultBaseURL = "https://maps.googleapis.com/maps/api/place"

	searchRadiusMeters = 5000

	// mealCostPerLevel approximates a meal price from Google's 0..4
	// price level scale
	mealCostPerLevel = 15.0

	// attractionCostPerLevel approximates an entry price from the same
	// scale
	attractionCostPerLevel = 12.5
)

// GoogleProvider implements attraction and restaurant search on the
// Google Places nearby search API
type GoogleProvider struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// Ensure GoogleProvider implements PlacesProvider
var _ providers.PlacesProvider = (*GoogleProvider)(nil)

// NewGoogleProvider creates a new Google Places provider
func NewGoogleProvider(apiKey string) (*GoogleProvider, error) {
	if apiKey == "" {
		return nil, errors.New("google places api key is required")
	}
	return NewGoogleProviderWithOptions(apiKey, defaultBaseURL, &http.Client{
		Timeout: 10 * time.Second,
	}), nil
}

// NewGoogleProviderWithOptions creates a provider pointed at a custom
// endpoint, used by tests
func NewGoogleProviderWithOptions(apiKey, baseURL string, httpClient *http.Client) *GoogleProvider {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &GoogleProvider{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

type placeResult struct {
	Name       string   `json:"name"`
	Vicinity   string   `json:"vicinity"`
	Rating     *float64 `json:"rating,omitempty"`
	PriceLevel *int     `json:"price_level,omitempty"`
	Types      []string `json:"types,omitempty"`
}

type nearbyResponse struct {
	Status  string        `json:"status"`
	Results []placeResult `json:"results"`
}

// SearchAttractions searches attractions of the given place types near a
// location. An empty type list searches tourist attractions.
func (p *GoogleProvider) SearchAttractions(ctx context.Context, lat, lng float64, placeTypes []string) ([]entities.Attraction, error) {
	if len(placeTypes) == 0 {
		placeTypes = []string{"tourist_attraction"}
	}

	seen := map[string]bool{}
	attractions := []entities.Attraction{}

	for _, placeType := range placeTypes {
		results, err := p.nearbySearch(ctx, lat, lng, placeType)
		if err != nil {
			return nil, err
		}
		for _, result := range results {
			if seen[result.Name] {
				continue
			}
			seen[result.Name] = true
			attractions = append(attractions, attractionFromResult(result, placeType))
		}
	}

	return attractions, nil
}

// SearchRestaurants searches restaurants near a location
func (p *GoogleProvider) SearchRestaurants(ctx context.Context, lat, lng float64) ([]entities.Restaurant, error) {
	results, err := p.nearbySearch(ctx, lat, lng, "restaurant")
	if err != nil {
		return nil, err
	}

	restaurants := make([]entities.Restaurant, 0, len(results))
	for _, result := range results {
		restaurants = append(restaurants, restaurantFromResult(result))
	}
	return restaurants, nil
}

func (p *GoogleProvider) nearbySearch(ctx context.Context, lat, lng float64, placeType string) ([]placeResult, error) {
	params := url.Values{}
	params.Set("location", fmt.Sprintf("%f,%f", lat, lng))
	params.Set("radius", fmt.Sprintf("%d", searchRadiusMeters))
	params.Set("type", placeType)
	params.Set("key", p.apiKey)

	endpoint := fmt.Sprintf("%s/nearbysearch/json?%s", p.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.NewUnavailableError("places request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.NewUnavailableError(
			fmt.Sprintf("places request failed with status %d", resp.StatusCode), nil,
		)
	}

	var envelope nearbyResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, err
	}

	if envelope.Status != "OK" && envelope.Status != "ZERO_RESULTS" {
		return nil, apperrors.NewUnavailableError(
			fmt.Sprintf("places request failed with status %s", envelope.Status), nil,
		)
	}

	return envelope.Results, nil
}

func attractionFromResult(result placeResult, placeType string) entities.Attraction {
	price := 0.0
	if result.PriceLevel != nil {
		price = float64(*result.PriceLevel) * attractionCostPerLevel
	}
	return entities.Attraction{
		Name:       result.Name,
		Address:    result.Vicinity,
		Price:      price,
		Rating:     result.Rating,
		Category:   placeType,
		Types:      result.Types,
		PriceLevel: result.PriceLevel,
	}
}

func restaurantFromResult(result placeResult) entities.Restaurant {
	// Without a price level assume a mid-range meal
	mealCost := 2 * mealCostPerLevel
	if result.PriceLevel != nil {
		mealCost = float64(*result.PriceLevel) * mealCostPerLevel
	}
	return entities.Restaurant{
		Name:       result.Name,
		Address:    result.Vicinity,
		MealCost:   mealCost,
		Cuisine:    cuisineFromTypes(result.Types),
		Rating:     result.Rating,
		PriceLevel: result.PriceLevel,
	}
}

func cuisineFromTypes(types []string) string {
	for _, t := range types {
		if t != "restaurant" && t != "food" && t != "point_of_interest" && t != "establishment" {
			return strings.ReplaceAll(t, "_", " ")
		}
	}
	return ""
}
