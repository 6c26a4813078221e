package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/zatekoja/tripweaver/backend/internal/domain/entities"
	"github.com/zatekoja/tripweaver/backend/internal/domain/providers"
	"github.com/zatekoja/tripweaver/backend/internal/domain/repositories"
	"github.com/zatekoja/tripweaver/backend/internal/infrastructure/observability"
	"github.com/zatekoja/tripweaver/backend/pkg/config"
)

const contextCacheTTL = 5 * time.Minute

// PersonalizationService maintains the vector index of highly-rated past
// trips and renders retrieval context for new requests. Retrieval is
// strictly best-effort: every failure degrades to an empty context so
// generation always proceeds.
type PersonalizationService struct {
	documents   repositories.TravelDocumentRepository
	itineraries repositories.ItineraryRepository
	embedder    providers.EmbeddingProvider
	cache       providers.CacheProvider
	cfg         config.PlannerConfig
}

// NewPersonalizationService creates a new personalization service. The
// cache is optional.
func NewPersonalizationService(
	documents repositories.TravelDocumentRepository,
	itineraries repositories.ItineraryRepository,
	embedder providers.EmbeddingProvider,
	cache providers.CacheProvider,
	cfg config.PlannerConfig,
) *PersonalizationService {
	return &PersonalizationService{
		documents:   documents,
		itineraries: itineraries,
		embedder:    embedder,
		cache:       cache,
		cfg:         cfg,
	}
}

// IndexFeedback brings the index in line with one feedback: ratings of 4
// or above are embedded and upserted, anything lower is removed. Called
// on create and on every edit, so a rating dropped from 5 to 3 leaves
// the index.
func (s *PersonalizationService) IndexFeedback(ctx context.Context, feedback *entities.Feedback) error {
	if feedback == nil {
		return nil
	}

	if !feedback.IndexWorthy() {
		_, err := s.documents.DeleteByFeedbackID(ctx, feedback.ID)
		return err
	}

	itinerary, err := s.itineraries.GetByID(ctx, feedback.ItineraryID)
	if err != nil {
		return err
	}

	text := documentText(itinerary, feedback)
	embedding, err := s.embedder.EmbedDocument(ctx, text)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	return s.documents.Upsert(ctx, &entities.TravelDocument{
		UserID:      feedback.UserID,
		ItineraryID: feedback.ItineraryID,
		FeedbackID:  feedback.ID,
		Text:        text,
		Embedding:   embedding,
		City:        itinerary.City,
		StartDate:   itinerary.StartDate.Format("2006-01-02"),
		EndDate:     itinerary.EndDate.Format("2006-01-02"),
		Preferences: itinerary.Preferences,
		Rating:      feedback.Rating,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

// RemoveFeedback removes a deleted feedback's document, if indexed
func (s *PersonalizationService) RemoveFeedback(ctx context.Context, feedbackID uuid.UUID) error {
	_, err := s.documents.DeleteByFeedbackID(ctx, feedbackID)
	return err
}

// GetPersonalizationContext renders retrieval context for a request.
// Returns "" when the user has no indexed trips, nothing scores above
// the floor, or anything fails along the way.
func (s *PersonalizationService) GetPersonalizationContext(ctx context.Context, userID uuid.UUID, city, preferences string) string {
	logger := observability.LoggerFromContext(ctx)

	cacheKey := contextCacheKey(userID, city, preferences)
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey); err == nil {
			return cached
		}
	}

	// Skip the embedding call entirely for users with no history
	count, err := s.documents.CountByUser(ctx, userID)
	if err != nil {
		logger.Warn().Err(err).Msg("personalization count failed, continuing without context")
		return ""
	}
	if count == 0 {
		return ""
	}

	queryText := fmt.Sprintf("Planning trip to %s with interests: %s", city, preferences)
	embedding, err := s.embedder.EmbedQuery(ctx, queryText)
	if err != nil {
		logger.Warn().Err(err).Msg("personalization embedding failed, continuing without context")
		return ""
	}

	hits, err := s.documents.SimilaritySearch(ctx, repositories.SimilaritySearchParams{
		Embedding: embedding,
		UserID:    userID,
		Limit:     s.cfg.PersonalizationTopK,
		MinScore:  s.cfg.PersonalizationMinScore,
	})
	if err != nil {
		logger.Warn().Err(err).Msg("personalization search failed, continuing without context")
		return ""
	}
	if len(hits) == 0 {
		return ""
	}

	rendered := renderContext(hits, s.cfg.MaxContextChars)

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, rendered, contextCacheTTL); err != nil {
			logger.Debug().Err(err).Msg("personalization context cache write failed")
		}
	}

	return rendered
}

// documentText is the canonical index-side text for a rated trip
func documentText(itinerary *entities.Itinerary, feedback *entities.Feedback) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Trip to %s.", itinerary.City)
	if itinerary.Preferences != "" {
		fmt.Fprintf(&b, " Interests: %s.", itinerary.Preferences)
	}

	activities := activityNames(itinerary)
	if len(activities) > 0 {
		fmt.Fprintf(&b, " Activities: %s.", strings.Join(activities, ", "))
	}
	if feedback.Comment != "" {
		fmt.Fprintf(&b, " Feedback: %s", feedback.Comment)
	}
	return b.String()
}

func activityNames(itinerary *entities.Itinerary) []string {
	var names []string
	for _, day := range itinerary.DailyPlans {
		for _, activity := range day.Activities {
			names = append(names, activity.Name)
		}
	}
	for _, attraction := range itinerary.Attractions {
		names = append(names, attraction.Name)
	}
	return names
}

// renderContext formats hits into the prompt block, truncated to the
// character budget on a line boundary
func renderContext(hits []entities.ScoredDocument, maxChars int) string {
	var b strings.Builder
	b.WriteString("Based on your past highly-rated trips:\n")
	for i, hit := range hits {
		line := fmt.Sprintf("%d. %s (%s, %.0f%% match): You enjoyed %s.\n",
			i+1,
			hit.Document.City,
			strings.Repeat("⭐", hit.Document.Rating),
			hit.Score*100,
			hit.Document.Preferences,
		)
		if maxChars > 0 && b.Len()+len(line) > maxChars {
			break
		}
		b.WriteString(line)
	}
	return strings.TrimRight(b.String(), "\n")
}

func contextCacheKey(userID uuid.UUID, city, preferences string) string {
	sum := sha256.Sum256([]byte(city + "|" + preferences))
	return fmt.Sprintf("personalization:%s:%s", userID, hex.EncodeToString(sum[:8]))
}
