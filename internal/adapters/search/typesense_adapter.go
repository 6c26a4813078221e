package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"
	"github.com/zatekoja/tripweaver/backend/internal/domain/entities"
	"github.com/zatekoja/tripweaver/backend/internal/domain/repositories"
	tsclient "github.com/zatekoja/tripweaver/backend/internal/infrastructure/clients/typesense"
	apperrors "github.com/zatekoja/tripweaver/backend/pkg/errors"
)

const collectionName = tsclient.TravelDocumentsCollection

// TypesenseAdapter implements the personalization index on Typesense.
// Document ids are feedback ids, so upserts are idempotent and a delete
// removes at most one document.
type TypesenseAdapter struct {
	client *tsclient.Client
}

// Ensure TypesenseAdapter implements TravelDocumentRepository
var _ repositories.TravelDocumentRepository = (*TypesenseAdapter)(nil)

// NewTypesenseAdapter creates a new Typesense adapter
func NewTypesenseAdapter(client *tsclient.Client) *TypesenseAdapter {
	return &TypesenseAdapter{client: client}
}

// Upsert indexes a travel document keyed by its feedback id
func (a *TypesenseAdapter) Upsert(ctx context.Context, doc *entities.TravelDocument) error {
	if doc == nil {
		return apperrors.NewInternalError("travel document is nil", nil)
	}
	if len(doc.Embedding) == 0 {
		return apperrors.NewValidationError("travel document embedding is empty")
	}

	document := documentFields(doc)
	_, err := a.client.Client().Collection(collectionName).Documents().Upsert(ctx, document)
	if err != nil {
		return fmt.Errorf("failed to index travel document: %w", err)
	}
	return nil
}

// SimilaritySearch runs a vector query scoped to one user
func (a *TypesenseAdapter) SimilaritySearch(ctx context.Context, params repositories.SimilaritySearchParams) ([]entities.ScoredDocument, error) {
	if len(params.Embedding) == 0 {
		return nil, apperrors.NewValidationError("query embedding is empty")
	}
	if params.UserID == uuid.Nil {
		return nil, apperrors.NewValidationError("user id is required")
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 3
	}

	searchParams := &api.SearchCollectionParams{
		Q:           pointer.String("*"),
		QueryBy:     pointer.String("text"),
		FilterBy:    pointer.String(buildFilter(params.UserID, params.City)),
		VectorQuery: pointer.String(buildVectorQuery(params.Embedding, limit)),
		PerPage:     pointer.Int(limit),
	}

	result, err := a.client.Client().Collection(collectionName).Documents().Search(ctx, searchParams)
	if err != nil {
		return nil, fmt.Errorf("failed to search travel documents: %w", err)
	}

	if result.Hits == nil {
		return []entities.ScoredDocument{}, nil
	}

	docs := []entities.ScoredDocument{}
	for _, hit := range *result.Hits {
		scored, ok := scoredDocumentFromHit(hit)
		if !ok {
			continue
		}
		if scored.Score < params.MinScore {
			continue
		}
		docs = append(docs, scored)
		if len(docs) == limit {
			break
		}
	}

	return docs, nil
}

// DeleteByFeedbackID removes the document for one feedback, if indexed
func (a *TypesenseAdapter) DeleteByFeedbackID(ctx context.Context, feedbackID uuid.UUID) (bool, error) {
	_, err := a.client.Client().Collection(collectionName).Document(feedbackID.String()).Delete(ctx)
	if err != nil {
		if strings.Contains(err.Error(), "404") || strings.Contains(strings.ToLower(err.Error()), "not found") {
			return false, nil
		}
		return false, fmt.Errorf("failed to delete travel document: %w", err)
	}
	return true, nil
}

// CountByUser returns the number of indexed documents for a user
func (a *TypesenseAdapter) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	searchParams := &api.SearchCollectionParams{
		Q:        pointer.String("*"),
		QueryBy:  pointer.String("text"),
		FilterBy: pointer.String(buildFilter(userID, "")),
		PerPage:  pointer.Int(1),
	}

	result, err := a.client.Client().Collection(collectionName).Documents().Search(ctx, searchParams)
	if err != nil {
		return 0, fmt.Errorf("failed to count travel documents: %w", err)
	}
	if result.Found == nil {
		return 0, nil
	}
	return *result.Found, nil
}

// documentFields flattens a travel document for indexing
func documentFields(doc *entities.TravelDocument) map[string]interface{} {
	embedding := make([]float32, len(doc.Embedding))
	copy(embedding, doc.Embedding)

	return map[string]interface{}{
		"id":           doc.FeedbackID.String(),
		"user_id":      doc.UserID.String(),
		"itinerary_id": doc.ItineraryID.String(),
		"text":         doc.Text,
		"embedding":    embedding,
		"city":         doc.City,
		"start_date":   doc.StartDate,
		"end_date":     doc.EndDate,
		"preferences":  doc.Preferences,
		"rating":       doc.Rating,
		"created_at":   doc.CreatedAt.Unix(),
	}
}

// buildFilter scopes a search to one user, optionally to one city. The
// user filter is unconditional so one user's history never leaks into
// another's results.
func buildFilter(userID uuid.UUID, city string) string {
	filter := fmt.Sprintf("user_id:=%s", userID.String())
	if city != "" {
		filter += fmt.Sprintf(" && city:=%s", city)
	}
	return filter
}

// buildVectorQuery renders a k-nearest query over the embedding field
func buildVectorQuery(embedding []float32, k int) string {
	parts := make([]string, len(embedding))
	for i, v := range embedding {
		parts[i] = fmt.Sprintf("%g", v)
	}
	return fmt.Sprintf("embedding:([%s], k:%d)", strings.Join(parts, ", "), k)
}

// scoredDocumentFromHit maps a search hit back to a scored document.
// Typesense reports vector distance; the score is its complement so
// higher means more similar.
func scoredDocumentFromHit(hit api.SearchResultHit) (entities.ScoredDocument, bool) {
	if hit.Document == nil {
		return entities.ScoredDocument{}, false
	}
	doc := *hit.Document

	feedbackID, err := uuid.Parse(stringField(doc, "id"))
	if err != nil {
		return entities.ScoredDocument{}, false
	}
	userID, err := uuid.Parse(stringField(doc, "user_id"))
	if err != nil {
		return entities.ScoredDocument{}, false
	}
	itineraryID, _ := uuid.Parse(stringField(doc, "itinerary_id"))

	score := 0.0
	if hit.VectorDistance != nil {
		score = 1.0 - float64(*hit.VectorDistance)
	}
	if score < 0 {
		score = 0
	}

	rating := 0
	if val, ok := doc["rating"].(float64); ok {
		rating = int(val)
	}

	var createdAt time.Time
	if val, ok := doc["created_at"].(float64); ok {
		createdAt = time.Unix(int64(val), 0)
	}

	return entities.ScoredDocument{
		Document: entities.TravelDocument{
			UserID:      userID,
			ItineraryID: itineraryID,
			FeedbackID:  feedbackID,
			Text:        stringField(doc, "text"),
			City:        stringField(doc, "city"),
			StartDate:   stringField(doc, "start_date"),
			EndDate:     stringField(doc, "end_date"),
			Preferences: stringField(doc, "preferences"),
			Rating:      rating,
			CreatedAt:   createdAt,
		},
		Score: score,
	}, true
}

func stringField(doc map[string]interface{}, key string) string {
	if val, ok := doc[key].(string); ok {
		return val
	}
	return ""
}
