package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/zatekoja/tripweaver/backend/internal/domain/entities"
)

// FeedbackRepository handles feedback persistence
type FeedbackRepository interface {
	Create(ctx context.Context, feedback *entities.Feedback) error
	Update(ctx context.Context, feedback *entities.Feedback) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Feedback, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*entities.Feedback, error)
}
