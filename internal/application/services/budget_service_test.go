package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/tripweaver/backend/internal/domain/entities"
	apperrors "github.com/zatekoja/tripweaver/backend/pkg/errors"
)

func TestAllocateSplitsBudget(t *testing.T) {
	allocation := NewBudgetService().Allocate(1000)

	assert.Equal(t, 500.0, allocation.Hotel)
	assert.Equal(t, 200.0, allocation.Attractions)
	assert.Equal(t, 250.0, allocation.Restaurants)
	assert.Equal(t, 50.0, allocation.Contingency)
	assert.InDelta(t, allocation.Total, allocation.Hotel+allocation.Attractions+allocation.Restaurants+allocation.Contingency, 0.001)
}

func budgetCandidates() ([]entities.Hotel, []entities.Attraction, []entities.Restaurant) {
	hotels := []entities.Hotel{
		{Name: "Budget Stay", TotalPrice: 180},
		{Name: "Midtown", TotalPrice: 360},
		{Name: "Grand", TotalPrice: 630},
	}
	attractions := []entities.Attraction{
		{Name: "Park", Price: 0},
		{Name: "Museum", Price: 25},
		{Name: "Tour", Price: 60},
	}
	restaurants := []entities.Restaurant{
		{Name: "Street Food", MealCost: 10},
		{Name: "Bistro", MealCost: 30},
		{Name: "Fine Dining", MealCost: 80},
	}
	return hotels, attractions, restaurants
}

func TestSearchCombinationsCanonicalTriples(t *testing.T) {
	hotels, attractions, restaurants := budgetCandidates()

	// Day cost for the cheapest triple: 180 + 0 + 10*3*3 = 270
	options, err := NewBudgetService().SearchCombinations(hotels, attractions, restaurants, 1000, 3)
	require.NoError(t, err)

	require.Len(t, options, 2)
	assert.Equal(t, "Budget Stay", options[0].Hotel.Name)
	assert.Equal(t, 270.0, options[0].TotalCost)
	assert.Equal(t, 730.0, options[0].RemainingBudget)
	assert.Equal(t, "Midtown", options[1].Hotel.Name)
}

func TestSearchCombinationsNeverExceedsBudget(t *testing.T) {
	hotels, attractions, restaurants := budgetCandidates()

	options, err := NewBudgetService().SearchCombinations(hotels, attractions, restaurants, 5000, 3)
	require.NoError(t, err)

	assert.LessOrEqual(t, len(options), 3)
	for _, option := range options {
		assert.LessOrEqual(t, option.TotalCost, 5000.0)
		assert.InDelta(t, 5000.0-option.TotalCost, option.RemainingBudget, 0.001)
	}
}

func TestSearchCombinationsExhaustiveFallback(t *testing.T) {
	// Unsorted input defeats the same-rank heuristic: both canonical
	// triples bust the budget, but a cross-rank combination fits
	hotels := []entities.Hotel{
		{Name: "Pricey", TotalPrice: 5000},
		{Name: "Cheap", TotalPrice: 100},
	}
	attractions := []entities.Attraction{
		{Name: "Free Walk", Price: 0},
		{Name: "Helicopter", Price: 900},
	}
	restaurants := []entities.Restaurant{
		{Name: "Cart", MealCost: 200},
		{Name: "Chef's Table", MealCost: 400},
	}

	options, err := NewBudgetService().SearchCombinations(hotels, attractions, restaurants, 800, 1)
	require.NoError(t, err)

	require.Len(t, options, 1)
	assert.Equal(t, "Cheap", options[0].Hotel.Name)
	assert.Equal(t, "Free Walk", options[0].Attractions[0].Name)
	assert.Equal(t, 700.0, options[0].TotalCost)
}

func TestSearchCombinationsInfeasible(t *testing.T) {
	hotels, attractions, restaurants := budgetCandidates()

	_, err := NewBudgetService().SearchCombinations(hotels, attractions, restaurants, 50, 3)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInfeasible))
}

func TestSearchCombinationsEmptyCategory(t *testing.T) {
	hotels, attractions, _ := budgetCandidates()

	_, err := NewBudgetService().SearchCombinations(hotels, attractions, nil, 1000, 3)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInfeasible))
}
