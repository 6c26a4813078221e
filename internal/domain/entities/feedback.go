package entities

import (
	"time"

	"github.com/google/uuid"
)

// Feedback is a user's rating of a saved itinerary. One feedback exists
// per (user, itinerary); ratings of 4 or above feed the personalization
// index, lower ratings are kept but never indexed.
type Feedback struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	ItineraryID uuid.UUID `json:"itinerary_id"`
	Rating      int       `json:"rating"`
	Comment     string    `json:"comment,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IndexWorthy reports whether this feedback qualifies for the
// personalization index.
func (f *Feedback) IndexWorthy() bool {
	return f.Rating >= 4
}
