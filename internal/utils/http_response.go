package utils

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gov-dx-sandbox/team-roster/internal/models"
)

// GenericErrorMessage is returned for failures the API cannot classify
const GenericErrorMessage = "Something went wrong!"

// RespondWithJSON sends a JSON response with the given status code
func RespondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		// headers are already written, nothing else can be sent
		slog.Error("Failed to encode JSON response", "error", err, "statusCode", statusCode)
	}
}

// RespondWithError sends a {message} error body; detail, when non-nil, is exposed as "error"
func RespondWithError(w http.ResponseWriter, statusCode int, message string, detail error) {
	errorResp := models.ErrorResponse{
		Message: message,
	}
	if detail != nil {
		errorResp.Error = detail.Error()
	}

	RespondWithJSON(w, statusCode, errorResp)
}

// RespondWithValidationError sends a 400 naming the offending fields
func RespondWithValidationError(w http.ResponseWriter, message string, fields []string) {
	RespondWithJSON(w, http.StatusBadRequest, models.ErrorResponse{
		Message: message,
		Errors:  fields,
	})
}
