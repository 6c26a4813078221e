package entities

import (
	"time"

	"github.com/google/uuid"
)

// TravelDocument is one indexed past trip in the personalization index.
// FeedbackID doubles as the index document id, so re-indexing the same
// feedback overwrites in place instead of duplicating.
type TravelDocument struct {
	UserID      uuid.UUID `json:"user_id"`
	ItineraryID uuid.UUID `json:"itinerary_id"`
	FeedbackID  uuid.UUID `json:"feedback_id"`
	Text        string    `json:"text"`
	Embedding   []float32 `json:"embedding"`
	City        string    `json:"city"`
	StartDate   string    `json:"start_date"`
	EndDate     string    `json:"end_date"`
	Preferences string    `json:"preferences"`
	Rating      int       `json:"rating"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ScoredDocument is a similarity-search hit with its normalized score
type ScoredDocument struct {
	Document TravelDocument
	Score    float64
}
