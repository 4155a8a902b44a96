package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"contacthub/internal/common"
)

// errorResponse is the uniform JSON error body. Internal distinctions
// (expired vs tampered token, storage details) never reach the client.
type errorResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Message: message})
}

// writeServiceError maps the common error taxonomy to HTTP statuses with
// default messages.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, common.ErrorValidation):
		writeError(w, http.StatusBadRequest, "Bad request")
	case errors.Is(err, common.ErrorUnauthorized):
		writeError(w, http.StatusUnauthorized, "Not authorized")
	case errors.Is(err, common.ErrorNotFound):
		writeError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, common.ErrorConflict):
		writeError(w, http.StatusConflict, "Email is already in use")
	case errors.Is(err, common.ErrorUnprocessable):
		writeError(w, http.StatusUnprocessableEntity, "Unprocessable Content")
	default:
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
	}
}

// decodeJSON parses a request body into dst; a malformed body is a 400-level
// concern reported by the caller.
func decodeJSON(r *http.Request, dst any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dst)
}
