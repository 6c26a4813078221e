package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTimeGranularityRule(t *testing.T) {
	assert.Contains(t, timeGranularityRule(2), "specific times")
	assert.Contains(t, timeGranularityRule(4), "part of day")
	assert.Contains(t, timeGranularityRule(9), "highlights per day")
}

func TestBuildGoalInstructionPinsDestination(t *testing.T) {
	trip := testTrip()
	instruction := buildGoalInstruction(trip, "")

	assert.Contains(t, instruction, "trip to Lisbon")
	assert.Contains(t, instruction, "ONLY search for places in Lisbon")
	assert.Contains(t, instruction, "museums and seafood")
	assert.Contains(t, instruction, "No budget was given.")
}

func TestBuildGoalInstructionIncludesBudgetAndContext(t *testing.T) {
	trip := testTrip()
	budget := 1500.0
	trip.Budget = &budget

	instruction := buildGoalInstruction(trip, "Based on your past highly-rated trips:\n1. Porto (5 stars, 91% match): You enjoyed wine tours.")

	assert.Contains(t, instruction, "Total budget: $1500.00")
	assert.Contains(t, instruction, "Based on your past highly-rated trips:")
}

func TestBuildPlanningPromptCarriesSourceTexts(t *testing.T) {
	session := &AcquisitionSession{
		Trip: testTrip(),
		Results: map[string]*ToolResult{
			sourceAttractions: {RawText: "Attractions:\n1. Old Town Walking Tour ($15)"},
			sourceHotels:      {RawText: "Hotel search unavailable - itinerary will not include accommodation"},
		},
	}

	prompt := buildPlanningPrompt(session, "")

	assert.Contains(t, prompt, "Old Town Walking Tour")
	assert.Contains(t, prompt, "Hotel search unavailable")
	assert.Contains(t, prompt, "0-based index")
	assert.Contains(t, prompt, "day_number starting at 1")

	// Attraction candidates come before hotel text
	assert.Less(t, strings.Index(prompt, "Attractions:"), strings.Index(prompt, "Hotel search unavailable"))
}
