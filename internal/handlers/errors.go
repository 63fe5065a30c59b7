package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"dicteeclash/internal/extract"
	"dicteeclash/internal/service"
	"dicteeclash/internal/validation"
)

func respondWithError(w http.ResponseWriter, status int, userMsg, logMsg string, err error) {
	if err != nil {
		if logMsg == "" {
			logMsg = userMsg
		}
		log.Printf("%s: %v", logMsg, err)
	}

	respondJSON(w, status, map[string]string{"error": userMsg})
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", nil)
		return false
	}
	return true
}

// respondWithServiceError maps a service error to its status code. Anything
// it does not recognise is logged and reported as a 500.
func respondWithServiceError(w http.ResponseWriter, logMsg string, err error) {
	var verr validation.ValidationError
	switch {
	case errors.As(err, &verr):
		respondWithError(w, http.StatusBadRequest, verr.Error(), "", nil)
	case errors.Is(err, service.ErrListNotFound),
		errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrStudentNotFound):
		respondWithError(w, http.StatusNotFound, err.Error(), "", nil)
	case errors.Is(err, service.ErrUnauthorized):
		respondWithError(w, http.StatusForbidden, ErrForbidden, "", nil)
	case errors.Is(err, service.ErrInvalidCredentials):
		respondWithError(w, http.StatusUnauthorized, err.Error(), "", nil)
	case errors.Is(err, service.ErrEmailTaken):
		respondWithError(w, http.StatusConflict, err.Error(), "", nil)
	case errors.Is(err, service.ErrInvalidMode),
		errors.Is(err, service.ErrNameRejected),
		errors.Is(err, service.ErrUnknownWord),
		errors.Is(err, service.ErrInvalidSession):
		respondWithError(w, http.StatusBadRequest, err.Error(), "", nil)
	case errors.Is(err, service.ErrEmptyList):
		respondWithError(w, http.StatusUnprocessableEntity, err.Error(), "", nil)
	case errors.Is(err, service.ErrAudioDisabled),
		errors.Is(err, service.ErrEmailDisabled):
		respondWithError(w, http.StatusServiceUnavailable, err.Error(), "", nil)
	case errors.Is(err, extract.ErrUnsupportedFormat):
		respondWithError(w, http.StatusUnsupportedMediaType, "unsupported format, accepted: "+strings.Join(extract.AcceptedExtensions, ", "), "", nil)
	case errors.Is(err, extract.ErrInvalidDocument):
		respondWithError(w, http.StatusUnprocessableEntity, ErrInvalidFile, logMsg, err)
	default:
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, logMsg, err)
	}
}
