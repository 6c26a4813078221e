package entities

import (
	"time"

	"github.com/google/uuid"
)

// Itinerary is the assembled, persistable result of a generation run.
// Legacy budget-mode responses reuse the same shape with Attractions,
// Restaurants, TotalCost and RemainingBudget populated instead of
// DailyPlans.
type Itinerary struct {
	ID                 uuid.UUID          `json:"id"`
	UserID             uuid.UUID          `json:"user_id"`
	City               string             `json:"city"`
	StartDate          time.Time          `json:"start_date"`
	EndDate            time.Time          `json:"end_date"`
	Preferences        string             `json:"preferences"`
	Hotel              *Hotel             `json:"hotel,omitempty"`
	DailyPlans         []DayPlan          `json:"daily_plans,omitempty"`
	OptionalActivities []OptionalActivity `json:"optional_activities,omitempty"`
	EstimatedTotal     *string            `json:"estimated_total,omitempty"`
	Reasoning          string             `json:"reasoning,omitempty"`

	Attractions     []Attraction `json:"attractions,omitempty"`
	Restaurants     []Restaurant `json:"restaurants,omitempty"`
	TotalCost       *float64     `json:"total_cost,omitempty"`
	RemainingBudget *float64     `json:"remaining_budget,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// DayPlan is one assembled day with its resolved activities
type DayPlan struct {
	DayNumber  int        `json:"day_number"`
	Date       string     `json:"date"`
	Weather    string     `json:"weather,omitempty"`
	Activities []Activity `json:"activities"`
}

// Activity is a scheduled entry in an assembled day plan
type Activity struct {
	Time        string `json:"time"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}
