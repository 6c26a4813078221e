package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/zatekoja/tripweaver/backend/internal/domain/entities"
	"github.com/zatekoja/tripweaver/backend/internal/domain/providers"
	"github.com/zatekoja/tripweaver/backend/internal/domain/repositories"
	apperrors "github.com/zatekoja/tripweaver/backend/pkg/errors"
)

// fakeGenerator drives every advertised tool once in order, standing in
// for the reasoning loop, and returns canned structured output
type fakeGenerator struct {
	structured    json.RawMessage
	structuredErr error
	toolArgs      map[string]map[string]any
	runToolsErr   error
	prompts       []string
}

func (g *fakeGenerator) RunTools(ctx context.Context, instruction string, tools []providers.ToolDefinition) ([]providers.ToolCall, string, error) {
	if g.runToolsErr != nil {
		return nil, "", g.runToolsErr
	}
	var calls []providers.ToolCall
	for _, tool := range tools {
		args := g.toolArgs[tool.Name]
		result, err := tool.Invoke(ctx, args)
		if err != nil {
			return calls, "", err
		}
		calls = append(calls, providers.ToolCall{Name: tool.Name, Args: args, Result: result})
	}
	return calls, "done", nil
}

func (g *fakeGenerator) GenerateStructured(ctx context.Context, prompt string, schema map[string]any) (json.RawMessage, error) {
	g.prompts = append(g.prompts, prompt)
	if g.structuredErr != nil {
		return nil, g.structuredErr
	}
	return g.structured, nil
}

// fakePlaces fails attraction searches failCount times before
// succeeding, and records the place types of each call
type fakePlaces struct {
	attractionFails int
	restaurantErr   error
	attractionCalls [][]string
	restaurantCalls int
}

func (p *fakePlaces) SearchAttractions(_ context.Context, _, _ float64, placeTypes []string) ([]entities.Attraction, error) {
	p.attractionCalls = append(p.attractionCalls, placeTypes)
	if p.attractionFails > 0 {
		p.attractionFails--
		return nil, errors.New("places backend down")
	}
	return []entities.Attraction{
		{Name: "Old Town Walking Tour", Price: 15},
		{Name: "City Art Museum", Price: 25},
	}, nil
}

func (p *fakePlaces) SearchRestaurants(_ context.Context, _, _ float64) ([]entities.Restaurant, error) {
	p.restaurantCalls++
	if p.restaurantErr != nil {
		return nil, p.restaurantErr
	}
	return []entities.Restaurant{
		{Name: "Trattoria Mare", MealCost: 35},
	}, nil
}

type fakeHotels struct {
	err   error
	calls int
}

func (h *fakeHotels) SearchHotels(_ context.Context, _ string, checkIn, checkOut time.Time) ([]entities.Hotel, error) {
	h.calls++
	if h.err != nil {
		return nil, h.err
	}
	nights := int(checkOut.Sub(checkIn).Hours() / 24)
	if nights < 1 {
		nights = 1
	}
	return []entities.Hotel{
		{Name: "Central Plaza Hotel", PricePerNight: 120, TotalPrice: 120 * float64(nights)},
	}, nil
}

type fakeWeather struct {
	fails int
	calls int
}

func (w *fakeWeather) GetForecast(_ context.Context, _, _ float64, start, end time.Time) ([]entities.WeatherDay, error) {
	w.calls++
	if w.fails > 0 {
		w.fails--
		return nil, errors.New("weather backend down")
	}
	var days []entities.WeatherDay
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, entities.WeatherDay{Date: d, Summary: "clear", HighC: 22, LowC: 14})
	}
	return days, nil
}

// fakeDocumentRepo is an in-memory personalization index
type fakeDocumentRepo struct {
	docs       map[uuid.UUID]*entities.TravelDocument
	hits       []entities.ScoredDocument
	countErr   error
	searchErr  error
	lastSearch repositories.SimilaritySearchParams
}

func newFakeDocumentRepo() *fakeDocumentRepo {
	return &fakeDocumentRepo{docs: map[uuid.UUID]*entities.TravelDocument{}}
}

func (r *fakeDocumentRepo) Upsert(_ context.Context, doc *entities.TravelDocument) error {
	copied := *doc
	r.docs[doc.FeedbackID] = &copied
	return nil
}

func (r *fakeDocumentRepo) SimilaritySearch(_ context.Context, params repositories.SimilaritySearchParams) ([]entities.ScoredDocument, error) {
	r.lastSearch = params
	if r.searchErr != nil {
		return nil, r.searchErr
	}
	return r.hits, nil
}

func (r *fakeDocumentRepo) DeleteByFeedbackID(_ context.Context, feedbackID uuid.UUID) (bool, error) {
	_, existed := r.docs[feedbackID]
	delete(r.docs, feedbackID)
	return existed, nil
}

func (r *fakeDocumentRepo) CountByUser(_ context.Context, _ uuid.UUID) (int, error) {
	if r.countErr != nil {
		return 0, r.countErr
	}
	return len(r.docs), nil
}

type fakeItineraryRepo struct {
	stored map[uuid.UUID]*entities.Itinerary
}

func newFakeItineraryRepo() *fakeItineraryRepo {
	return &fakeItineraryRepo{stored: map[uuid.UUID]*entities.Itinerary{}}
}

func (r *fakeItineraryRepo) Create(_ context.Context, itinerary *entities.Itinerary) error {
	copied := *itinerary
	r.stored[itinerary.ID] = &copied
	return nil
}

func (r *fakeItineraryRepo) GetByID(_ context.Context, id uuid.UUID) (*entities.Itinerary, error) {
	if itinerary, ok := r.stored[id]; ok {
		return itinerary, nil
	}
	return nil, errors.New("itinerary not found")
}

type fakeFeedbackRepo struct {
	stored    map[uuid.UUID]*entities.Feedback
	createErr error
}

func newFakeFeedbackRepo() *fakeFeedbackRepo {
	return &fakeFeedbackRepo{stored: map[uuid.UUID]*entities.Feedback{}}
}

func (r *fakeFeedbackRepo) Create(_ context.Context, feedback *entities.Feedback) error {
	if r.createErr != nil {
		return r.createErr
	}
	copied := *feedback
	r.stored[feedback.ID] = &copied
	return nil
}

func (r *fakeFeedbackRepo) Update(_ context.Context, feedback *entities.Feedback) error {
	if _, ok := r.stored[feedback.ID]; !ok {
		return apperrors.NewNotFoundError("feedback not found")
	}
	copied := *feedback
	r.stored[feedback.ID] = &copied
	return nil
}

func (r *fakeFeedbackRepo) GetByID(_ context.Context, id uuid.UUID) (*entities.Feedback, error) {
	feedback, ok := r.stored[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("feedback not found")
	}
	copied := *feedback
	return &copied, nil
}

func (r *fakeFeedbackRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.stored[id]; !ok {
		return apperrors.NewNotFoundError("feedback not found")
	}
	delete(r.stored, id)
	return nil
}

func (r *fakeFeedbackRepo) List(_ context.Context, limit, offset int) ([]*entities.Feedback, error) {
	var all []*entities.Feedback
	for _, feedback := range r.stored {
		copied := *feedback
		all = append(all, &copied)
	}
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

type fakeEmbedder struct {
	documentCalls []string
	queryCalls    []string
	err           error
}

func (e *fakeEmbedder) EmbedDocument(_ context.Context, text string) ([]float32, error) {
	e.documentCalls = append(e.documentCalls, text)
	if e.err != nil {
		return nil, e.err
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

func (e *fakeEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	e.queryCalls = append(e.queryCalls, text)
	if e.err != nil {
		return nil, e.err
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

func (e *fakeEmbedder) Dimension() int { return 3 }
