package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/zatekoja/tripweaver/backend/internal/domain/entities"
	"github.com/zatekoja/tripweaver/backend/internal/domain/repositories"
	"github.com/zatekoja/tripweaver/backend/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/tripweaver/backend/pkg/errors"
)

// FeedbackService handles feedback lifecycle and keeps the
// personalization index in sync with rating changes. Index maintenance
// is best-effort; persistence is the source of truth and a failed index
// write is picked up by the next indexing pass.
type FeedbackService struct {
	feedback        repositories.FeedbackRepository
	personalization *PersonalizationService
}

// NewFeedbackService creates a new feedback service
func NewFeedbackService(feedback repositories.FeedbackRepository, personalization *PersonalizationService) *FeedbackService {
	return &FeedbackService{
		feedback:        feedback,
		personalization: personalization,
	}
}

// Submit records new feedback for an itinerary
func (s *FeedbackService) Submit(ctx context.Context, userID, itineraryID uuid.UUID, rating int, comment string) (*entities.Feedback, error) {
	if rating < 1 || rating > 5 {
		return nil, apperrors.NewValidationError("rating must be between 1 and 5")
	}

	now := time.Now().UTC()
	feedback := &entities.Feedback{
		ID:          uuid.New(),
		UserID:      userID,
		ItineraryID: itineraryID,
		Rating:      rating,
		Comment:     comment,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.feedback.Create(ctx, feedback); err != nil {
		return nil, err
	}

	s.syncIndex(ctx, feedback)
	return feedback, nil
}

// Update edits a feedback's rating or comment. A rating that crosses
// the index threshold in either direction takes effect immediately.
func (s *FeedbackService) Update(ctx context.Context, id uuid.UUID, rating int, comment string) (*entities.Feedback, error) {
	if rating < 1 || rating > 5 {
		return nil, apperrors.NewValidationError("rating must be between 1 and 5")
	}

	feedback, err := s.feedback.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	feedback.Rating = rating
	feedback.Comment = comment
	feedback.UpdatedAt = time.Now().UTC()

	if err := s.feedback.Update(ctx, feedback); err != nil {
		return nil, err
	}

	s.syncIndex(ctx, feedback)
	return feedback, nil
}

// Delete removes a feedback and its index document
func (s *FeedbackService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.feedback.Delete(ctx, id); err != nil {
		return err
	}

	if err := s.personalization.RemoveFeedback(ctx, id); err != nil {
		observability.LoggerFromContext(ctx).Warn().
			Err(err).
			Str("feedback_id", id.String()).
			Msg("failed to remove feedback from personalization index")
	}
	return nil
}

// Get fetches a feedback by id
func (s *FeedbackService) Get(ctx context.Context, id uuid.UUID) (*entities.Feedback, error) {
	return s.feedback.GetByID(ctx, id)
}

func (s *FeedbackService) syncIndex(ctx context.Context, feedback *entities.Feedback) {
	if err := s.personalization.IndexFeedback(ctx, feedback); err != nil {
		observability.LoggerFromContext(ctx).Warn().
			Err(err).
			Str("feedback_id", feedback.ID.String()).
			Msg("failed to sync feedback to personalization index")
	}
}
