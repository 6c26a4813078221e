package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/zatekoja/tripweaver/backend/internal/domain/entities"
	"github.com/zatekoja/tripweaver/backend/internal/domain/providers"
	"github.com/zatekoja/tripweaver/backend/internal/domain/repositories"
	"github.com/zatekoja/tripweaver/backend/internal/infrastructure/observability"
	"github.com/zatekoja/tripweaver/backend/pkg/config"
	apperrors "github.com/zatekoja/tripweaver/backend/pkg/errors"
	"github.com/zatekoja/tripweaver/backend/pkg/schema"
)

const reasoningTruncateChars = 400

// unsafeReasoningPatterns is a cheap scan over generated prose. The
// generation backend's own safety filter is the first line; this catches
// instruction-leak artifacts it does not flag.
var unsafeReasoningPatterns = []string{
	"ignore previous instructions",
	"system prompt",
	"api key",
}

// PlannerService orchestrates the full itinerary pipeline: retrieval
// context, tool-driven acquisition, schema-constrained generation,
// repair, validation and assembly
type PlannerService struct {
	acquisition     *AcquisitionService
	personalization *PersonalizationService
	budget          *BudgetService
	generator       providers.GenerationProvider
	itineraries     repositories.ItineraryRepository
	places          providers.PlacesProvider
	hotels          providers.HotelProvider
	metrics         *observability.Metrics
	cfg             config.PlannerConfig

	schemaOnce sync.Once
	planSchema map[string]any
	schemaErr  error
}

// NewPlannerService creates a new planner service
func NewPlannerService(
	acquisition *AcquisitionService,
	personalization *PersonalizationService,
	budget *BudgetService,
	generator providers.GenerationProvider,
	itineraries repositories.ItineraryRepository,
	places providers.PlacesProvider,
	hotels providers.HotelProvider,
	metrics *observability.Metrics,
	cfg config.PlannerConfig,
) *PlannerService {
	return &PlannerService{
		acquisition:     acquisition,
		personalization: personalization,
		budget:          budget,
		generator:       generator,
		itineraries:     itineraries,
		places:          places,
		hotels:          hotels,
		metrics:         metrics,
		cfg:             cfg,
	}
}

// GenerateItinerary runs the full pipeline for one trip request
func (s *PlannerService) GenerateItinerary(ctx context.Context, trip *entities.TripRequest) (*entities.Itinerary, error) {
	logger := observability.LoggerFromContext(ctx)
	start := time.Now()

	personalizationContext := s.personalization.GetPersonalizationContext(ctx, trip.UserID, trip.City, trip.Preferences)
	if personalizationContext != "" && s.metrics != nil {
		observability.RecordContextHit(ctx, s.metrics)
	}

	session, err := s.acquisition.Gather(ctx, trip, personalizationContext)
	if err != nil {
		s.recordGeneration(ctx, "structured", false, start)
		return nil, err
	}

	itinerary, err := s.synthesize(ctx, session, personalizationContext)
	if err != nil {
		if s.shouldFallBack(err, trip) {
			logger.Warn().Err(err).Msg("structured synthesis failed, falling back to budget mode")
			itinerary, err = s.budgetItinerary(ctx, trip, session)
		}
	}
	if err != nil {
		s.recordGeneration(ctx, "structured", false, start)
		return nil, err
	}

	if err := s.itineraries.Create(ctx, itinerary); err != nil {
		logger.Warn().Err(err).Msg("failed to persist itinerary")
	}

	s.recordGeneration(ctx, "structured", true, start)
	return itinerary, nil
}

// GenerateOptions runs the legacy budget mode: fixed allocation plus
// combination search over price-sorted candidates
func (s *PlannerService) GenerateOptions(ctx context.Context, trip *entities.TripRequest) ([]entities.ItineraryOption, entities.BudgetAllocation, error) {
	start := time.Now()

	if trip.Budget == nil {
		return nil, entities.BudgetAllocation{}, apperrors.NewValidationError("budget is required for option generation")
	}

	allocation := s.budget.Allocate(*trip.Budget)

	hotels, err := s.hotels.SearchHotels(ctx, trip.City, trip.StartDate, trip.EndDate)
	if err != nil {
		s.recordGeneration(ctx, "budget", false, start)
		return nil, allocation, err
	}
	attractions, err := s.places.SearchAttractions(ctx, trip.Latitude, trip.Longitude, nil)
	if err != nil {
		s.recordGeneration(ctx, "budget", false, start)
		return nil, allocation, err
	}
	restaurants, err := s.places.SearchRestaurants(ctx, trip.Latitude, trip.Longitude)
	if err != nil {
		s.recordGeneration(ctx, "budget", false, start)
		return nil, allocation, err
	}

	sortCandidatesByPrice(hotels, attractions, restaurants)

	options, err := s.budget.SearchCombinations(hotels, attractions, restaurants, *trip.Budget, trip.Days())
	if err != nil {
		s.recordGeneration(ctx, "budget", false, start)
		return nil, allocation, err
	}

	s.recordGeneration(ctx, "budget", true, start)
	return options, allocation, nil
}

// synthesize runs the structured generation stage against an acquisition
// session and assembles the result
func (s *PlannerService) synthesize(ctx context.Context, session *AcquisitionSession, personalizationContext string) (*entities.Itinerary, error) {
	planSchema, err := s.loadPlanSchema()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build plan schema", err)
	}

	prompt := buildPlanningPrompt(session, personalizationContext)
	raw, err := s.generator.GenerateStructured(ctx, prompt, planSchema)
	if err != nil {
		return nil, err
	}

	var plan entities.ItineraryPlan
	if err := json.Unmarshal(raw, &plan); err != nil {
		return nil, apperrors.NewInfeasibleError(fmt.Sprintf("model output is not a valid plan: %v", err))
	}

	repairPlan(&plan, session)

	if err := plan.Validate(); err != nil {
		return nil, apperrors.NewInfeasibleError(fmt.Sprintf("model output failed validation: %v", err))
	}

	if pattern := unsafeReasoningPattern(plan.Reasoning); pattern != "" {
		return nil, apperrors.NewContentSafetyError(
			fmt.Sprintf("generated reasoning contains unsafe content: %q", pattern),
		)
	}

	return assembleItinerary(session, &plan), nil
}

// shouldFallBack decides whether a synthesis failure diverts to the
// legacy budget mode instead of surfacing
func (s *PlannerService) shouldFallBack(err error, trip *entities.TripRequest) bool {
	if !s.cfg.FallbackToBudget || trip.Budget == nil {
		return false
	}
	return apperrors.IsType(err, apperrors.ErrorTypeInfeasible) ||
		apperrors.IsType(err, apperrors.ErrorTypeValidation)
}

// budgetItinerary converts the best legacy option into an itinerary
func (s *PlannerService) budgetItinerary(ctx context.Context, trip *entities.TripRequest, session *AcquisitionSession) (*entities.Itinerary, error) {
	hotels := append([]entities.Hotel{}, session.Hotels...)
	attractions := append([]entities.Attraction{}, session.Attractions...)
	restaurants := append([]entities.Restaurant{}, session.Restaurants...)
	sortCandidatesByPrice(hotels, attractions, restaurants)

	options, err := s.budget.SearchCombinations(hotels, attractions, restaurants, *trip.Budget, trip.Days())
	if err != nil {
		return nil, err
	}

	best := options[0]
	return &entities.Itinerary{
		ID:              uuid.New(),
		UserID:          trip.UserID,
		City:            trip.City,
		StartDate:       trip.StartDate,
		EndDate:         trip.EndDate,
		Preferences:     trip.Preferences,
		Hotel:           &best.Hotel,
		Attractions:     best.Attractions,
		Restaurants:     best.Restaurants,
		TotalCost:       &best.TotalCost,
		RemainingBudget: &best.RemainingBudget,
		CreatedAt:       time.Now().UTC(),
	}, nil
}

// loadPlanSchema reflects and normalizes the plan schema once
func (s *PlannerService) loadPlanSchema() (map[string]any, error) {
	s.schemaOnce.Do(func() {
		tree, err := schema.Reflect(&entities.ItineraryPlan{})
		if err != nil {
			s.schemaErr = err
			return
		}
		s.planSchema = schema.Normalize(tree)
	})
	return s.planSchema, s.schemaErr
}

// repairPlan drops sentinel and out-of-range index values before
// validation. Models sometimes emit -1 or an index past the candidate
// list instead of omitting the field.
func repairPlan(plan *entities.ItineraryPlan, session *AcquisitionSession) {
	if plan.HotelIndex != nil {
		if *plan.HotelIndex < 0 || *plan.HotelIndex >= len(session.Hotels) {
			plan.HotelIndex = nil
		}
	}

	plan.AttractionIndices = filterIndices(plan.AttractionIndices, len(session.Attractions))
	plan.RestaurantIndices = filterIndices(plan.RestaurantIndices, len(session.Restaurants))
}

func filterIndices(indices []int, limit int) []int {
	kept := indices[:0]
	for _, idx := range indices {
		if idx >= 0 && idx < limit {
			kept = append(kept, idx)
		}
	}
	return kept
}

// assembleItinerary resolves plan indices against the session's
// candidate lists
func assembleItinerary(session *AcquisitionSession, plan *entities.ItineraryPlan) *entities.Itinerary {
	trip := session.Trip

	itinerary := &entities.Itinerary{
		ID:                 uuid.New(),
		UserID:             trip.UserID,
		City:               trip.City,
		StartDate:          trip.StartDate,
		EndDate:            trip.EndDate,
		Preferences:        trip.Preferences,
		OptionalActivities: plan.OptionalActivities,
		EstimatedTotal:     plan.EstimatedTotal,
		Reasoning:          truncateOnWordBoundary(plan.Reasoning, reasoningTruncateChars),
		CreatedAt:          time.Now().UTC(),
	}

	if plan.HotelIndex != nil {
		hotel := session.Hotels[*plan.HotelIndex]
		itinerary.Hotel = &hotel
	}
	for _, idx := range plan.AttractionIndices {
		itinerary.Attractions = append(itinerary.Attractions, session.Attractions[idx])
	}
	for _, idx := range plan.RestaurantIndices {
		itinerary.Restaurants = append(itinerary.Restaurants, session.Restaurants[idx])
	}

	for _, day := range plan.DailySchedule {
		assembled := entities.DayPlan{
			DayNumber: day.DayNumber,
			Date:      day.Date,
			Weather:   day.Weather,
		}
		for _, activity := range day.Activities {
			assembled.Activities = append(assembled.Activities, entities.Activity{
				Time:        activity.Time,
				Name:        activity.Name,
				Description: activity.Description,
			})
		}
		itinerary.DailyPlans = append(itinerary.DailyPlans, assembled)
	}

	return itinerary
}

// truncateOnWordBoundary caps text at max characters, cutting at the
// last space when one exists in the kept range. Counts runes, not
// bytes, so multi-byte text is never split mid-character.
func truncateOnWordBoundary(text string, max int) string {
	if utf8.RuneCountInString(text) <= max {
		return text
	}

	cut := string([]rune(text)[:max])
	if idx := strings.LastIndex(cut, " "); idx > 0 {
		cut = cut[:idx]
	}
	return cut
}

func unsafeReasoningPattern(reasoning string) string {
	lowered := strings.ToLower(reasoning)
	for _, pattern := range unsafeReasoningPatterns {
		if strings.Contains(lowered, pattern) {
			return pattern
		}
	}
	return ""
}

func sortCandidatesByPrice(hotels []entities.Hotel, attractions []entities.Attraction, restaurants []entities.Restaurant) {
	sort.SliceStable(hotels, func(i, j int) bool { return hotels[i].TotalPrice < hotels[j].TotalPrice })
	sort.SliceStable(attractions, func(i, j int) bool { return attractions[i].Price < attractions[j].Price })
	sort.SliceStable(restaurants, func(i, j int) bool { return restaurants[i].MealCost < restaurants[j].MealCost })
}

func (s *PlannerService) recordGeneration(ctx context.Context, mode string, success bool, start time.Time) {
	if s.metrics == nil {
		return
	}
	observability.RecordGenerationMetric(ctx, s.metrics, mode, success, time.Since(start))
}
