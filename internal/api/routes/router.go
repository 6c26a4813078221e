package routes

import (
	"net/http"

	"github.com/zatekoja/tripweaver/backend/internal/api/handlers"
	"github.com/zatekoja/tripweaver/backend/internal/api/middleware"
	"github.com/zatekoja/tripweaver/backend/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	itineraryHandler *handlers.ItineraryHandler
	feedbackHandler  *handlers.FeedbackHandler

	metrics *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	itineraryHandler *handlers.ItineraryHandler,
	feedbackHandler *handlers.FeedbackHandler,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:              http.NewServeMux(),
		itineraryHandler: itineraryHandler,
		feedbackHandler:  feedbackHandler,
		metrics:          metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// Health check endpoint
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Itinerary endpoints
	r.mux.HandleFunc("POST /api/itineraries/generate", r.itineraryHandler.GenerateItinerary)
	r.mux.HandleFunc("POST /api/itineraries/options", r.itineraryHandler.GenerateOptions)

	// Feedback endpoints
	r.mux.HandleFunc("POST /api/feedback", r.feedbackHandler.SubmitFeedback)
	r.mux.HandleFunc("GET /api/feedback/{id}", r.feedbackHandler.GetFeedback)
	r.mux.HandleFunc("PATCH /api/feedback/{id}", r.feedbackHandler.UpdateFeedback)
	r.mux.HandleFunc("DELETE /api/feedback/{id}", r.feedbackHandler.DeleteFeedback)

	// Apply middleware chain
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)
	if r.metrics != nil {
		handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	}

	return handler
}
