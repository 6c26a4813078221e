package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/zatekoja/tripweaver/backend/internal/domain/entities"
)

// ItineraryRepository handles saved itinerary persistence
type ItineraryRepository interface {
	Create(ctx context.Context, itinerary *entities.Itinerary) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Itinerary, error)
}
