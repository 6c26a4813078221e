package entities

import (
	"fmt"
	"unicode/utf8"

	"github.com/zatekoja/tripweaver/backend/pkg/errors"
)

const (
	reasoningMinChars = 50
	reasoningMaxChars = 400
)

// ItineraryPlan is the structured output of the generation stage. Hotel,
// attraction and restaurant fields reference the acquisition session's
// candidate lists by position; assembly resolves them into full records.
type ItineraryPlan struct {
	HotelIndex         *int               `json:"hotel_index,omitempty" jsonschema:"description=Index of the chosen hotel in the hotel candidate list"`
	AttractionIndices  []int              `json:"attraction_indices" jsonschema:"description=Indices of chosen attractions in the attraction candidate list"`
	RestaurantIndices  []int              `json:"restaurant_indices" jsonschema:"description=Indices of chosen restaurants in the restaurant candidate list"`
	DailySchedule      []DaySchedule      `json:"daily_schedule" jsonschema:"description=Day-by-day schedule covering the whole trip"`
	OptionalActivities []OptionalActivity `json:"optional_activities,omitempty" jsonschema:"description=Extra activities the traveler may add"`
	EstimatedTotal     *string            `json:"estimated_total,omitempty" jsonschema:"description=Rough total cost estimate as free text"`
	Reasoning          string             `json:"reasoning" jsonschema:"description=Short explanation of how the plan matches the request"`
}

// DaySchedule is one day of the generated plan
type DaySchedule struct {
	DayNumber  int            `json:"day_number" jsonschema:"description=1-based day number, sequential"`
	Date       string         `json:"date" jsonschema:"description=Calendar date in YYYY-MM-DD"`
	Weather    string         `json:"weather,omitempty" jsonschema:"description=Expected weather for the day"`
	Activities []PlanActivity `json:"activities" jsonschema:"description=Scheduled activities for the day"`
}

// PlanActivity is a single scheduled entry in a day
type PlanActivity struct {
	Time        string `json:"time" jsonschema:"description=Time or period of the activity"`
	Name        string `json:"name" jsonschema:"description=Activity name"`
	Description string `json:"description,omitempty" jsonschema:"description=What the activity involves"`
}

// OptionalActivity is an unscheduled suggestion
type OptionalActivity struct {
	Name     string `json:"name" jsonschema:"description=Activity name"`
	Category string `json:"category,omitempty" jsonschema:"description=Activity category"`
	Reason   string `json:"reason,omitempty" jsonschema:"description=Why the traveler might enjoy it"`
}

// Validate checks the structural invariants of a generated plan. It runs
// after sentinel repair, so index values are assumed in-range already.
func (p *ItineraryPlan) Validate() error {
	if p.HotelIndex != nil && *p.HotelIndex < 0 {
		return errors.NewValidationError("hotel_index must be non-negative")
	}
	if len(p.AttractionIndices) == 0 {
		return errors.NewValidationError("plan must include at least one attraction")
	}
	for _, idx := range p.AttractionIndices {
		if idx < 0 {
			return errors.NewValidationError("attraction_indices must be non-negative")
		}
	}
	for _, idx := range p.RestaurantIndices {
		if idx < 0 {
			return errors.NewValidationError("restaurant_indices must be non-negative")
		}
	}
	if len(p.DailySchedule) == 0 {
		return errors.NewValidationError("daily_schedule must cover at least one day")
	}
	for i, day := range p.DailySchedule {
		if day.DayNumber != i+1 {
			return errors.NewValidationError(fmt.Sprintf(
				"daily_schedule day numbers must be sequential from 1, got %d at position %d", day.DayNumber, i,
			))
		}
	}
	if n := utf8.RuneCountInString(p.Reasoning); n < reasoningMinChars || n > reasoningMaxChars {
		return errors.NewValidationError(fmt.Sprintf(
			"reasoning must be between %d and %d characters, got %d", reasoningMinChars, reasoningMaxChars, n,
		))
	}
	return nil
}
