package services

import (
	"github.com/zatekoja/tripweaver/backend/internal/domain/entities"
	apperrors "github.com/zatekoja/tripweaver/backend/pkg/errors"
)

const maxCombinations = 3

// mealsPerDay is how many restaurant meals the cost model charges per
// trip day
const mealsPerDay = 3

// BudgetService implements the legacy budget-constrained planning mode:
// fixed allocation fractions plus a bounded combination search over
// price-sorted candidate lists
type BudgetService struct{}

// NewBudgetService creates a new budget service
func NewBudgetService() *BudgetService {
	return &BudgetService{}
}

// Allocate splits a total budget by the fixed category fractions
func (s *BudgetService) Allocate(total float64) entities.BudgetAllocation {
	return entities.BudgetAllocation{
		Total:       total,
		Hotel:       total * entities.BudgetHotelFraction,
		Attractions: total * entities.BudgetAttractionsFraction,
		Restaurants: total * entities.BudgetRestaurantsFraction,
		Contingency: total * entities.BudgetContingencyFraction,
	}
}

// SearchCombinations finds up to three budget-feasible combinations of
// one hotel, one attraction and one restaurant. Candidate lists are
// assumed sorted by ascending price, so the canonical same-rank triples
// (cheapest/cheapest/cheapest, then second, then third) are tried first;
// if none fits, an exhaustive scan runs until three fits are found.
// The canonical pass is a heuristic, not a cheapest-first guarantee.
func (s *BudgetService) SearchCombinations(
	hotels []entities.Hotel,
	attractions []entities.Attraction,
	restaurants []entities.Restaurant,
	budget float64,
	tripDays int,
) ([]entities.ItineraryOption, error) {
	if len(hotels) == 0 || len(attractions) == 0 || len(restaurants) == 0 {
		return nil, apperrors.NewInfeasibleError("no candidates available for one or more categories")
	}
	if tripDays < 1 {
		tripDays = 1
	}

	options := []entities.ItineraryOption{}
	tried := map[[3]int]bool{}

	consider := func(h, a, r int) {
		key := [3]int{h, a, r}
		if tried[key] {
			return
		}
		tried[key] = true

		cost := combinationCost(hotels[h], attractions[a], restaurants[r], tripDays)
		if cost > budget {
			return
		}
		options = append(options, entities.ItineraryOption{
			Hotel:           hotels[h],
			Attractions:     []entities.Attraction{attractions[a]},
			Restaurants:     []entities.Restaurant{restaurants[r]},
			TotalCost:       cost,
			RemainingBudget: budget - cost,
		})
	}

	for rank := 0; rank < maxCombinations; rank++ {
		if rank >= len(hotels) || rank >= len(attractions) || rank >= len(restaurants) {
			break
		}
		consider(rank, rank, rank)
	}

	if len(options) == 0 {
		for h := 0; h < len(hotels) && len(options) < maxCombinations; h++ {
			for a := 0; a < len(attractions) && len(options) < maxCombinations; a++ {
				for r := 0; r < len(restaurants) && len(options) < maxCombinations; r++ {
					consider(h, a, r)
				}
			}
		}
	}

	if len(options) == 0 {
		return nil, apperrors.NewInfeasibleError("no combination fits the budget")
	}
	if len(options) > maxCombinations {
		options = options[:maxCombinations]
	}
	return options, nil
}

// combinationCost prices one combination for the whole trip
func combinationCost(hotel entities.Hotel, attraction entities.Attraction, restaurant entities.Restaurant, tripDays int) float64 {
	return hotel.TotalPrice + attraction.Price + restaurant.MealCost*mealsPerDay*float64(tripDays)
}
