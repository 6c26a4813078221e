package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
	"github.com/zatekoja/tripweaver/backend/internal/domain/entities"
	"github.com/zatekoja/tripweaver/backend/internal/domain/repositories"
	"github.com/zatekoja/tripweaver/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/tripweaver/backend/pkg/errors"
)

// ItineraryAdapter implements itinerary persistence in Postgres. The
// assembled itinerary is stored whole as JSONB; the scalar columns exist
// for listing and lookups.
type ItineraryAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewItineraryAdapter creates a new itinerary adapter.
func NewItineraryAdapter(client *postgres.Client) repositories.ItineraryRepository {
	return &ItineraryAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create inserts an itinerary record.
func (a *ItineraryAdapter) Create(ctx context.Context, itinerary *entities.Itinerary) error {
	if itinerary == nil {
		return apperrors.NewInternalError("itinerary is nil", fmt.Errorf("itinerary is nil"))
	}

	data, err := json.Marshal(itinerary)
	if err != nil {
		return apperrors.NewInternalError("failed to marshal itinerary", err)
	}

	record := goqu.Record{
		"id":             itinerary.ID,
		"user_id":        itinerary.UserID,
		"city":           itinerary.City,
		"start_date":     itinerary.StartDate,
		"end_date":       itinerary.EndDate,
		"itinerary_data": data,
		"created_at":     itinerary.CreatedAt,
	}

	query, args, err := a.db.Insert("itineraries").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build itinerary insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create itinerary", err)
	}

	return nil
}

// GetByID fetches an itinerary by id.
func (a *ItineraryAdapter) GetByID(ctx context.Context, id uuid.UUID) (*entities.Itinerary, error) {
	query, args, err := a.db.From("itineraries").
		Select("itinerary_data").
		Where(goqu.C("id").Eq(id)).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build itinerary select query", err)
	}

	var data []byte
	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("itinerary %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get itinerary", err)
	}

	var itinerary entities.Itinerary
	if err := json.Unmarshal(data, &itinerary); err != nil {
		return nil, apperrors.NewInternalError("failed to unmarshal itinerary", err)
	}

	return &itinerary, nil
}
