package handlers

import (
	"net/http"
	"strconv"

	"dicteeclash/internal/models"
	"dicteeclash/internal/service"
)

// DrillHandler serves exercises built from a shared list
type DrillHandler struct {
	drillService *service.DrillService
}

// NewDrillHandler creates a new drill handler
func NewDrillHandler(drillService *service.DrillService) *DrillHandler {
	return &DrillHandler{drillService: drillService}
}

type checkRequest struct {
	Mode    models.DrillMode `json:"mode"`
	Answers []service.Answer `json:"answers"`
}

// Dictation returns a fill-in-the-blanks text. ?ai=1 asks for the remote
// writer, with the caller's key in X-Synthesis-Key when it has one.
func (h *DrillHandler) Dictation(w http.ResponseWriter, r *http.Request) {
	useAI, _ := strconv.ParseBool(r.URL.Query().Get("ai"))

	d, err := h.drillService.Dictation(r.Context(), r.PathValue("code"), useAI, r.Header.Get(SynthesisKeyHeader))
	if err != nil {
		respondWithServiceError(w, "Error generating dictation", err)
		return
	}
	respondJSON(w, http.StatusOK, d)
}

// Choices returns a right/wrong spelling pair per word
func (h *DrillHandler) Choices(w http.ResponseWriter, r *http.Request) {
	choices, err := h.drillService.Choices(r.Context(), r.PathValue("code"))
	if err != nil {
		respondWithServiceError(w, "Error building choices", err)
		return
	}
	respondJSON(w, http.StatusOK, choices)
}

// Check grades a batch of answers
func (h *DrillHandler) Check(w http.ResponseWriter, r *http.Request) {
	var req checkRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.drillService.Check(r.Context(), r.PathValue("code"), req.Mode, req.Answers)
	if err != nil {
		respondWithServiceError(w, "Error checking answers", err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

// Audio speaks ?text=, or a fresh dictation of the list
func (h *DrillHandler) Audio(w http.ResponseWriter, r *http.Request) {
	data, err := h.drillService.Audio(r.Context(), r.PathValue("code"), r.URL.Query().Get("text"))
	if err != nil {
		respondWithServiceError(w, "Error generating audio", err)
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.Write(data)
}
