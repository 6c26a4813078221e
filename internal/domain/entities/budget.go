package entities

// Budget allocation fractions. They sum to 1.0; the contingency share is
// held back and never spent by the combination search.
const (
	BudgetHotelFraction       = 0.50
	BudgetAttractionsFraction = 0.20
	BudgetRestaurantsFraction = 0.25
	BudgetContingencyFraction = 0.05
)

// BudgetAllocation splits a total trip budget across spending categories
type BudgetAllocation struct {
	Total       float64 `json:"total"`
	Hotel       float64 `json:"hotel"`
	Attractions float64 `json:"attractions"`
	Restaurants float64 `json:"restaurants"`
	Contingency float64 `json:"contingency"`
}

// ItineraryOption is one budget-feasible combination found by the legacy
// combination search
type ItineraryOption struct {
	Hotel           Hotel        `json:"hotel"`
	Attractions     []Attraction `json:"attractions"`
	Restaurants     []Restaurant `json:"restaurants"`
	TotalCost       float64      `json:"total_cost"`
	RemainingBudget float64      `json:"remaining_budget"`
}
