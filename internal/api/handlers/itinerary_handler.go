package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/zatekoja/tripweaver/backend/internal/domain/entities"
	"github.com/zatekoja/tripweaver/backend/internal/infrastructure/observability"
)

// PlannerService defines the planning operations used by the handler.
type PlannerService interface {
	GenerateItinerary(ctx context.Context, trip *entities.TripRequest) (*entities.Itinerary, error)
	GenerateOptions(ctx context.Context, trip *entities.TripRequest) ([]entities.ItineraryOption, entities.BudgetAllocation, error)
}

// ItineraryHandler handles itinerary generation requests.
type ItineraryHandler struct {
	planner PlannerService
}

// NewItineraryHandler creates a new itinerary handler.
func NewItineraryHandler(planner PlannerService) *ItineraryHandler {
	return &ItineraryHandler{planner: planner}
}

type tripRequestPayload struct {
	UserID      string   `json:"user_id"`
	City        string   `json:"city"`
	Latitude    float64  `json:"latitude"`
	Longitude   float64  `json:"longitude"`
	StartDate   string   `json:"start_date"`
	EndDate     string   `json:"end_date"`
	Preferences string   `json:"preferences"`
	Budget      *float64 `json:"budget,omitempty"`
}

// GenerateItinerary handles POST /api/itineraries/generate
func (h *ItineraryHandler) GenerateItinerary(w http.ResponseWriter, r *http.Request) {
	trip, ok := h.decodeTrip(w, r)
	if !ok {
		return
	}

	itinerary, err := h.planner.GenerateItinerary(r.Context(), trip)
	if err != nil {
		observability.LoggerFromContext(r.Context()).Error().Err(err).Msg("itinerary generation failed")
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, itinerary)
}

// GenerateOptions handles POST /api/itineraries/options
func (h *ItineraryHandler) GenerateOptions(w http.ResponseWriter, r *http.Request) {
	trip, ok := h.decodeTrip(w, r)
	if !ok {
		return
	}
	if trip.Budget == nil {
		respondWithError(w, http.StatusBadRequest, "budget is required for option generation")
		return
	}

	options, allocation, err := h.planner.GenerateOptions(r.Context(), trip)
	if err != nil {
		observability.LoggerFromContext(r.Context()).Error().Err(err).Msg("option generation failed")
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"allocation": allocation,
		"options":    options,
	})
}

func (h *ItineraryHandler) decodeTrip(w http.ResponseWriter, r *http.Request) (*entities.TripRequest, bool) {
	var payload tripRequestPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return nil, false
	}

	userID, err := uuid.Parse(payload.UserID)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "user_id must be a valid UUID")
		return nil, false
	}

	startDate, err := time.Parse("2006-01-02", payload.StartDate)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "start_date must be YYYY-MM-DD")
		return nil, false
	}
	endDate, err := time.Parse("2006-01-02", payload.EndDate)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "end_date must be YYYY-MM-DD")
		return nil, false
	}

	if err := validateCity(payload.City); err != nil {
		respondWithAppError(w, err)
		return nil, false
	}
	if err := validateDates(startDate, endDate); err != nil {
		respondWithAppError(w, err)
		return nil, false
	}
	if err := validatePreferences(payload.Preferences); err != nil {
		respondWithAppError(w, err)
		return nil, false
	}
	if payload.Budget != nil && *payload.Budget <= 0 {
		respondWithError(w, http.StatusBadRequest, "budget must be positive")
		return nil, false
	}

	return &entities.TripRequest{
		UserID:      userID,
		City:        payload.City,
		Latitude:    payload.Latitude,
		Longitude:   payload.Longitude,
		StartDate:   startDate,
		EndDate:     endDate,
		Preferences: payload.Preferences,
		Budget:      payload.Budget,
	}, true
}
