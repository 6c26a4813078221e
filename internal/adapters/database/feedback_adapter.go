package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
	"github.com/zatekoja/tripweaver/backend/internal/domain/entities"
	"github.com/zatekoja/tripweaver/backend/internal/domain/repositories"
	"github.com/zatekoja/tripweaver/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/tripweaver/backend/pkg/errors"
)

// FeedbackAdapter implements feedback persistence in Postgres.
type FeedbackAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewFeedbackAdapter creates a new feedback adapter.
func NewFeedbackAdapter(client *postgres.Client) repositories.FeedbackRepository {
	return &FeedbackAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create inserts a feedback record.
func (a *FeedbackAdapter) Create(ctx context.Context, feedback *entities.Feedback) error {
	if feedback == nil {
		return apperrors.NewInternalError("feedback is nil", fmt.Errorf("feedback is nil"))
	}

	record := goqu.Record{
		"id":           feedback.ID,
		"user_id":      feedback.UserID,
		"itinerary_id": feedback.ItineraryID,
		"rating":       feedback.Rating,
		"comment":      sql.NullString{String: feedback.Comment, Valid: feedback.Comment != ""},
		"created_at":   feedback.CreatedAt,
		"updated_at":   feedback.UpdatedAt,
	}

	query, args, err := a.db.Insert("feedback").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build feedback insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create feedback", err)
	}

	return nil
}

// Update rewrites the mutable fields of a feedback record.
func (a *FeedbackAdapter) Update(ctx context.Context, feedback *entities.Feedback) error {
	if feedback == nil {
		return apperrors.NewInternalError("feedback is nil", fmt.Errorf("feedback is nil"))
	}

	record := goqu.Record{
		"rating":     feedback.Rating,
		"comment":    sql.NullString{String: feedback.Comment, Valid: feedback.Comment != ""},
		"updated_at": feedback.UpdatedAt,
	}

	query, args, err := a.db.Update("feedback").
		Set(record).
		Where(goqu.C("id").Eq(feedback.ID)).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build feedback update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update feedback", err)
	}

	rows, err := result.RowsAffected()
	if err == nil && rows == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("feedback %s not found", feedback.ID))
	}

	return nil
}

// GetByID fetches a feedback record by id.
func (a *FeedbackAdapter) GetByID(ctx context.Context, id uuid.UUID) (*entities.Feedback, error) {
	query, args, err := a.db.From("feedback").
		Select("id", "user_id", "itinerary_id", "rating", "comment", "created_at", "updated_at").
		Where(goqu.C("id").Eq(id)).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build feedback select query", err)
	}

	row := a.client.DB().QueryRowContext(ctx, query, args...)

	feedback, err := scanFeedback(row)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("feedback %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get feedback", err)
	}
	return feedback, nil
}

// Delete removes a feedback record.
func (a *FeedbackAdapter) Delete(ctx context.Context, id uuid.UUID) error {
	query, args, err := a.db.Delete("feedback").
		Where(goqu.C("id").Eq(id)).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build feedback delete query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to delete feedback", err)
	}

	rows, err := result.RowsAffected()
	if err == nil && rows == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("feedback %s not found", id))
	}

	return nil
}

// List returns feedback records ordered by creation time.
func (a *FeedbackAdapter) List(ctx context.Context, limit, offset int) ([]*entities.Feedback, error) {
	if limit <= 0 {
		limit = 100
	}

	query, args, err := a.db.From("feedback").
		Select("id", "user_id", "itinerary_id", "rating", "comment", "created_at", "updated_at").
		Order(goqu.C("created_at").Asc()).
		Limit(uint(limit)).
		Offset(uint(offset)).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build feedback list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list feedback", err)
	}
	defer rows.Close()

	feedbacks := []*entities.Feedback{}
	for rows.Next() {
		feedback, err := scanFeedback(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan feedback", err)
		}
		feedbacks = append(feedbacks, feedback)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate feedback rows", err)
	}

	return feedbacks, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanFeedback(row rowScanner) (*entities.Feedback, error) {
	var feedback entities.Feedback
	var comment sql.NullString

	err := row.Scan(
		&feedback.ID,
		&feedback.UserID,
		&feedback.ItineraryID,
		&feedback.Rating,
		&comment,
		&feedback.CreatedAt,
		&feedback.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	feedback.Comment = comment.String
	return &feedback, nil
}
