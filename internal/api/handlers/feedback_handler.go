package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/zatekoja/tripweaver/backend/internal/domain/entities"
	"github.com/zatekoja/tripweaver/backend/internal/infrastructure/observability"
)

const maxCommentLen = 1000

// FeedbackService defines the feedback operations used by the handler.
type FeedbackService interface {
	Submit(ctx context.Context, userID, itineraryID uuid.UUID, rating int, comment string) (*entities.Feedback, error)
	Update(ctx context.Context, id uuid.UUID, rating int, comment string) (*entities.Feedback, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*entities.Feedback, error)
}

// FeedbackHandler handles feedback submissions.
type FeedbackHandler struct {
	service FeedbackService
}

// NewFeedbackHandler creates a new feedback handler.
func NewFeedbackHandler(service FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{service: service}
}

type feedbackRequest struct {
	UserID      string `json:"user_id"`
	ItineraryID string `json:"itinerary_id"`
	Rating      int    `json:"rating"`
	Comment     string `json:"comment"`
}

// SubmitFeedback handles POST /api/feedback
func (h *FeedbackHandler) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	var payload feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	userID, err := uuid.Parse(payload.UserID)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "user_id must be a valid UUID")
		return
	}
	itineraryID, err := uuid.Parse(payload.ItineraryID)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "itinerary_id must be a valid UUID")
		return
	}
	if payload.Rating < 1 || payload.Rating > 5 {
		respondWithError(w, http.StatusBadRequest, "rating must be between 1 and 5")
		return
	}
	if len(payload.Comment) > maxCommentLen {
		respondWithError(w, http.StatusBadRequest, "comment is too long")
		return
	}

	feedback, err := h.service.Submit(r.Context(), userID, itineraryID, payload.Rating, payload.Comment)
	if err != nil {
		observability.LoggerFromContext(r.Context()).Error().Err(err).Msg("feedback submission failed")
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, feedback)
}

// UpdateFeedback handles PATCH /api/feedback/{id}
func (h *FeedbackHandler) UpdateFeedback(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "feedback id must be a valid UUID")
		return
	}

	var payload feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if payload.Rating < 1 || payload.Rating > 5 {
		respondWithError(w, http.StatusBadRequest, "rating must be between 1 and 5")
		return
	}
	if len(payload.Comment) > maxCommentLen {
		respondWithError(w, http.StatusBadRequest, "comment is too long")
		return
	}

	feedback, err := h.service.Update(r.Context(), id, payload.Rating, payload.Comment)
	if err != nil {
		observability.LoggerFromContext(r.Context()).Error().Err(err).Msg("feedback update failed")
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, feedback)
}

// DeleteFeedback handles DELETE /api/feedback/{id}
func (h *FeedbackHandler) DeleteFeedback(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "feedback id must be a valid UUID")
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		observability.LoggerFromContext(r.Context()).Error().Err(err).Msg("feedback deletion failed")
		respondWithAppError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetFeedback handles GET /api/feedback/{id}
func (h *FeedbackHandler) GetFeedback(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "feedback id must be a valid UUID")
		return
	}

	feedback, err := h.service.Get(r.Context(), id)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, feedback)
}
