package search

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/zatekoja/tripweaver/backend/internal/domain/entities"
)

func TestBuildFilterScopesToUser(t *testing.T) {
	userID := uuid.New()

	filter := buildFilter(userID, "")
	assert.Equal(t, "user_id:="+userID.String(), filter)
}

func TestBuildFilterAddsCity(t *testing.T) {
	userID := uuid.New()

	filter := buildFilter(userID, "Lisbon")
	assert.Equal(t, "user_id:="+userID.String()+" && city:=Lisbon", filter)
}

func TestBuildVectorQuery(t *testing.T) {
	query := buildVectorQuery([]float32{0.5, -0.25, 1}, 3)
	assert.Equal(t, "embedding:([0.5, -0.25, 1], k:3)", query)
}

func TestScoredDocumentFromHit(t *testing.T) {
	feedbackID := uuid.New()
	userID := uuid.New()
	itineraryID := uuid.New()
	createdAt := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	distance := float32(0.2)
	doc := map[string]interface{}{
		"id":           feedbackID.String(),
		"user_id":      userID.String(),
		"itinerary_id": itineraryID.String(),
		"text":         "Trip to Porto.",
		"city":         "Porto",
		"start_date":   "2026-04-01",
		"end_date":     "2026-04-04",
		"preferences":  "wine tours",
		"rating":       float64(5),
		"created_at":   float64(createdAt.Unix()),
	}
	hit := api.SearchResultHit{Document: &doc, VectorDistance: &distance}

	scored, ok := scoredDocumentFromHit(hit)
	require.True(t, ok)

	assert.InDelta(t, 0.8, scored.Score, 0.0001)
	assert.Equal(t, feedbackID, scored.Document.FeedbackID)
	assert.Equal(t, userID, scored.Document.UserID)
	assert.Equal(t, itineraryID, scored.Document.ItineraryID)
	assert.Equal(t, "Porto", scored.Document.City)
	assert.Equal(t, 5, scored.Document.Rating)
	assert.True(t, createdAt.Equal(scored.Document.CreatedAt))
}

func TestScoredDocumentFromHitRejectsMalformed(t *testing.T) {
	_, ok := scoredDocumentFromHit(api.SearchResultHit{})
	assert.False(t, ok)

	doc := map[string]interface{}{"id": "not-a-uuid", "user_id": uuid.New().String()}
	_, ok = scoredDocumentFromHit(api.SearchResultHit{Document: &doc})
	assert.False(t, ok)
}

func TestScoredDocumentScoreClampsAtZero(t *testing.T) {
	distance := float32(1.7)
	doc := map[string]interface{}{
		"id":      uuid.New().String(),
		"user_id": uuid.New().String(),
	}
	hit := api.SearchResultHit{Document: &doc, VectorDistance: &distance}

	scored, ok := scoredDocumentFromHit(hit)
	require.True(t, ok)
	assert.Equal(t, 0.0, scored.Score)
}

func TestDocumentFieldsUsesFeedbackIDAsDocumentID(t *testing.T) {
	feedbackID := uuid.New()
	doc := &entities.TravelDocument{
		UserID:      uuid.New(),
		ItineraryID: uuid.New(),
		FeedbackID:  feedbackID,
		Text:        "Trip to Porto.",
		Embedding:   []float32{0.1, 0.2},
		City:        "Porto",
		Rating:      5,
		CreatedAt:   time.Now(),
	}

	fields := documentFields(doc)
	assert.Equal(t, feedbackID.String(), fields["id"])
	assert.Equal(t, doc.UserID.String(), fields["user_id"])
	assert.Equal(t, []float32{0.1, 0.2}, fields["embedding"])
}
