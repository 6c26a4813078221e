package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/tripweaver/backend/internal/domain/entities"
	apperrors "github.com/zatekoja/tripweaver/backend/pkg/errors"
)

func testTrip() *entities.TripRequest {
	start := time.Now().AddDate(0, 0, 3).Truncate(24 * time.Hour)
	return &entities.TripRequest{
		UserID:      uuid.New(),
		City:        "Lisbon",
		Latitude:    38.72,
		Longitude:   -9.14,
		StartDate:   start,
		EndDate:     start.AddDate(0, 0, 2),
		Preferences: "museums and seafood",
	}
}

func newTestAcquisition(gen *fakeGenerator, places *fakePlaces, hotels *fakeHotels, weather *fakeWeather) *AcquisitionService {
	return NewAcquisitionService(gen, places, hotels, weather, nil)
}

func TestGatherHappyPath(t *testing.T) {
	places := &fakePlaces{}
	hotels := &fakeHotels{}
	weather := &fakeWeather{}
	svc := newTestAcquisition(&fakeGenerator{}, places, hotels, weather)

	session, err := svc.Gather(context.Background(), testTrip(), "")
	require.NoError(t, err)

	assert.Len(t, session.Attractions, 2)
	assert.Len(t, session.Restaurants, 1)
	assert.Len(t, session.Hotels, 1)
	assert.Len(t, session.Forecast, 3)
	assert.Empty(t, session.Warnings)

	for _, source := range []string{sourceAttractions, sourceWeather, sourceHotels, sourceRestaurants} {
		require.Contains(t, session.Results, source)
		assert.False(t, session.Results[source].Retried)
	}
}

func TestGatherCriticalSourceRetriesWithFallbackTypes(t *testing.T) {
	places := &fakePlaces{attractionFails: 1}
	svc := newTestAcquisition(&fakeGenerator{}, places, &fakeHotels{}, &fakeWeather{})

	session, err := svc.Gather(context.Background(), testTrip(), "")
	require.NoError(t, err)

	require.Len(t, places.attractionCalls, 2)
	assert.Equal(t, fallbackAttractionTypes, places.attractionCalls[1])
	assert.True(t, session.Results[sourceAttractions].Retried)
	assert.Len(t, session.Attractions, 2)
}

func TestGatherCriticalSourceDoubleFailureAborts(t *testing.T) {
	places := &fakePlaces{attractionFails: 2}
	svc := newTestAcquisition(&fakeGenerator{}, places, &fakeHotels{}, &fakeWeather{})

	_, err := svc.Gather(context.Background(), testTrip(), "")
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeCriticalSource))
	assert.Len(t, places.attractionCalls, 2)
}

func TestGatherWeatherDegradesAfterRetry(t *testing.T) {
	weather := &fakeWeather{fails: 2}
	svc := newTestAcquisition(&fakeGenerator{}, &fakePlaces{}, &fakeHotels{}, weather)

	session, err := svc.Gather(context.Background(), testTrip(), "")
	require.NoError(t, err)

	assert.Equal(t, 2, weather.calls)
	assert.Equal(t, weatherUnavailableText, session.Results[sourceWeather].RawText)
	assert.True(t, session.Results[sourceWeather].Retried)
	assert.Empty(t, session.Forecast)
}

func TestGatherWeatherRetrySucceeds(t *testing.T) {
	weather := &fakeWeather{fails: 1}
	svc := newTestAcquisition(&fakeGenerator{}, &fakePlaces{}, &fakeHotels{}, weather)

	session, err := svc.Gather(context.Background(), testTrip(), "")
	require.NoError(t, err)

	assert.Equal(t, 2, weather.calls)
	assert.Len(t, session.Forecast, 3)
	assert.True(t, strings.HasPrefix(session.Results[sourceWeather].RawText, "Weather forecast:"))
}

func TestGatherHotelFailureDegradesWithoutRetry(t *testing.T) {
	hotels := &fakeHotels{err: errors.New("hotel backend down")}
	svc := newTestAcquisition(&fakeGenerator{}, &fakePlaces{}, hotels, &fakeWeather{})

	session, err := svc.Gather(context.Background(), testTrip(), "")
	require.NoError(t, err)

	assert.Equal(t, 1, hotels.calls)
	assert.Equal(t, hotelUnavailableText, session.Results[sourceHotels].RawText)
	assert.Empty(t, session.Hotels)
}

func TestGatherRestaurantFailureOnlyWarns(t *testing.T) {
	places := &fakePlaces{restaurantErr: errors.New("places backend down")}
	svc := newTestAcquisition(&fakeGenerator{}, places, &fakeHotels{}, &fakeWeather{})

	session, err := svc.Gather(context.Background(), testTrip(), "")
	require.NoError(t, err)

	assert.Equal(t, 1, places.restaurantCalls)
	require.Len(t, session.Warnings, 1)
	assert.Contains(t, session.Warnings[0], sourceRestaurants)
	assert.Len(t, session.Attractions, 2)
}

func TestWeatherToolRefusesFarFutureTrips(t *testing.T) {
	trip := testTrip()
	trip.StartDate = time.Now().AddDate(0, 0, 20)
	trip.EndDate = trip.StartDate.AddDate(0, 0, 2)

	weather := &fakeWeather{}
	svc := newTestAcquisition(&fakeGenerator{}, &fakePlaces{}, &fakeHotels{}, weather)

	session, err := svc.Gather(context.Background(), trip, "")
	require.NoError(t, err)

	assert.Equal(t, 0, weather.calls)
	assert.Contains(t, session.Results[sourceWeather].RawText, "more than 10 days")
	assert.False(t, session.Results[sourceWeather].Retried)
}

func TestSourceFailedMarkers(t *testing.T) {
	markers := []string{"Error", "No attractions"}

	assert.True(t, sourceFailed(nil, markers))
	assert.True(t, sourceFailed(&ToolResult{RawText: ""}, markers))
	assert.True(t, sourceFailed(&ToolResult{RawText: "Error searching attractions: boom"}, markers))
	assert.True(t, sourceFailed(&ToolResult{RawText: "No attractions found in Lisbon"}, markers))
	assert.False(t, sourceFailed(&ToolResult{RawText: "Attractions:\n1. Museum"}, markers))
}
