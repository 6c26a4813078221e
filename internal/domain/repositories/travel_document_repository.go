package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/zatekoja/tripweaver/backend/internal/domain/entities"
)

// SimilaritySearchParams narrows a vector search. UserID is mandatory;
// a search never crosses user boundaries. City is optional.
type SimilaritySearchParams struct {
	Embedding []float32
	UserID    uuid.UUID
	Limit     int
	MinScore  float64
	City      string
}

// TravelDocumentRepository is the personalization index
type TravelDocumentRepository interface {
	// Upsert writes a document keyed by its feedback id; re-indexing the
	// same feedback overwrites in place
	Upsert(ctx context.Context, doc *entities.TravelDocument) error

	// SimilaritySearch returns at most Limit documents for the given
	// user, every score >= MinScore, descending by score
	SimilaritySearch(ctx context.Context, params SimilaritySearchParams) ([]entities.ScoredDocument, error)

	// DeleteByFeedbackID removes at most one document; returns whether a
	// document existed
	DeleteByFeedbackID(ctx context.Context, feedbackID uuid.UUID) (bool, error)

	// CountByUser returns the number of indexed documents for a user
	CountByUser(ctx context.Context, userID uuid.UUID) (int, error)
}
