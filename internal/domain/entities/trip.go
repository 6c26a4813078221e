package entities

import (
	"time"

	"github.com/google/uuid"
)

// TripRequest is the input to the itinerary pipeline
type TripRequest struct {
	UserID      uuid.UUID `json:"user_id"`
	City        string    `json:"city"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	Preferences string    `json:"preferences"`
	Budget      *float64  `json:"budget,omitempty"`
}

// Days returns the trip length in days, inclusive of both endpoints.
// A same-day trip counts as one day.
func (t *TripRequest) Days() int {
	days := int(t.EndDate.Sub(t.StartDate).Hours()/24) + 1
	if days < 1 {
		return 1
	}
	return days
}

// Hotel represents a hotel option returned by a hotel provider
type Hotel struct {
	Name          string   `json:"name"`
	Address       string   `json:"address"`
	PricePerNight float64  `json:"price_per_night"`
	TotalPrice    float64  `json:"total_price"`
	Rating        *float64 `json:"rating,omitempty"`
	Amenities     []string `json:"amenities,omitempty"`
}

// Attraction represents an attraction returned by a places provider
type Attraction struct {
	Name       string   `json:"name"`
	Address    string   `json:"address"`
	Price      float64  `json:"price"`
	Rating     *float64 `json:"rating,omitempty"`
	Category   string   `json:"category,omitempty"`
	Types      []string `json:"types,omitempty"`
	PriceLevel *int     `json:"price_level,omitempty"`
}

// Restaurant represents a restaurant returned by a places provider
type Restaurant struct {
	Name       string   `json:"name"`
	Address    string   `json:"address"`
	MealCost   float64  `json:"meal_cost"`
	Cuisine    string   `json:"cuisine,omitempty"`
	Rating     *float64 `json:"rating,omitempty"`
	PriceLevel *int     `json:"price_level,omitempty"`
}

// WeatherDay is a single day of a weather forecast
type WeatherDay struct {
	Date         time.Time `json:"date"`
	Summary      string    `json:"summary"`
	HighC        float64   `json:"high_c"`
	LowC         float64   `json:"low_c"`
	PrecipChance int       `json:"precip_chance"`
}
