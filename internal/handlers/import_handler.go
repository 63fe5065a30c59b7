package handlers

import (
	"errors"
	"net/http"

	"dicteeclash/internal/service"
)

// ImportHandler turns uploaded documents into word lists
type ImportHandler struct {
	importService *service.ImportService
	maxSize       int64
}

// NewImportHandler creates a new import handler accepting uploads up to maxSize bytes
func NewImportHandler(importService *service.ImportService, maxSize int64) *ImportHandler {
	return &ImportHandler{importService: importService, maxSize: maxSize}
}

// Import reads the multipart "file" field and returns the detected words
func (h *ImportHandler) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxSize)
	if err := r.ParseMultipartForm(h.maxSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondWithError(w, http.StatusRequestEntityTooLarge, ErrFileTooLarge, "", nil)
			return
		}
		respondWithError(w, http.StatusBadRequest, "Invalid upload", "", nil)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Missing file", "", nil)
		return
	}
	defer file.Close()

	report, err := h.importService.Import(r.Context(), header.Filename, file, header.Size)
	if err != nil {
		respondWithServiceError(w, "Error importing "+header.Filename, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}
