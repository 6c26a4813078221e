package handlers

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/zatekoja/tripweaver/backend/pkg/errors"
)

const (
	maxTripDays       = 30
	maxPreferencesLen = 500
	maxCityLen        = 100
)

// injectionPatterns are rejected inside free-text preferences before
// they ever reach a prompt
var injectionPatterns = []string{
	"ignore previous instructions",
	"ignore all previous",
	"disregard the above",
	"system prompt",
	"you are now",
}

// validateCity enforces a conservative charset so city names can be
// embedded in prompts and search filters verbatim
func validateCity(city string) error {
	city = strings.TrimSpace(city)
	if city == "" {
		return apperrors.NewValidationError("city is required")
	}
	if len(city) > maxCityLen {
		return apperrors.NewValidationError("city name is too long")
	}
	for _, r := range city {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			continue
		}
		switch r {
		case ' ', '-', '\'', '.':
			continue
		}
		return apperrors.NewValidationError(fmt.Sprintf("city contains invalid character %q", r))
	}
	return nil
}

// validateDates enforces ordering and the supported trip length
func validateDates(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return apperrors.NewValidationError("start_date and end_date are required")
	}
	if end.Before(start) {
		return apperrors.NewValidationError("end_date must not be before start_date")
	}
	days := int(end.Sub(start).Hours()/24) + 1
	if days > maxTripDays {
		return apperrors.NewValidationError(fmt.Sprintf("trip length must be at most %d days", maxTripDays))
	}
	return nil
}

// validatePreferences caps length and rejects prompt-injection phrasing
func validatePreferences(preferences string) error {
	if len(preferences) > maxPreferencesLen {
		return apperrors.NewValidationError("preferences text is too long")
	}
	lowered := strings.ToLower(preferences)
	for _, pattern := range injectionPatterns {
		if strings.Contains(lowered, pattern) {
			return apperrors.NewValidationError("preferences contain disallowed content")
		}
	}
	return nil
}
