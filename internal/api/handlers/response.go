package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	apperrors "github.com/zatekoja/tripweaver/backend/pkg/errors"
)

func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{
		"error": message,
	})
}

// respondWithAppError maps the error taxonomy to HTTP statuses. Unknown
// errors surface as 500 without leaking internals.
func respondWithAppError(w http.ResponseWriter, err error) {
	switch {
	case apperrors.IsType(err, apperrors.ErrorTypeValidation):
		respondWithError(w, http.StatusBadRequest, appErrorMessage(err))
	case apperrors.IsType(err, apperrors.ErrorTypeNotFound):
		respondWithError(w, http.StatusNotFound, appErrorMessage(err))
	case apperrors.IsType(err, apperrors.ErrorTypeContentSafety):
		respondWithError(w, http.StatusUnprocessableEntity, appErrorMessage(err))
	case apperrors.IsType(err, apperrors.ErrorTypeInfeasible):
		respondWithError(w, http.StatusUnprocessableEntity, appErrorMessage(err))
	case apperrors.IsType(err, apperrors.ErrorTypeCriticalSource):
		respondWithError(w, http.StatusBadGateway, appErrorMessage(err))
	case apperrors.IsType(err, apperrors.ErrorTypeUnavailable):
		respondWithError(w, http.StatusServiceUnavailable, appErrorMessage(err))
	default:
		respondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}

func appErrorMessage(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}
