package handlers

import (
	"net/http"
	"strconv"

	"dicteeclash/internal/models"
	"dicteeclash/internal/service"
)

// ListHandler handles word list HTTP requests
type ListHandler struct {
	listService *service.ListService
}

// NewListHandler creates a new list handler
func NewListHandler(listService *service.ListService) *ListHandler {
	return &ListHandler{listService: listService}
}

type listRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Mode        models.ListMode `json:"mode"`
	Words       []string        `json:"words"`
}

type wordsRequest struct {
	Words []string `json:"words"`
}

type shareRequest struct {
	Email string `json:"email"`
}

// CreateList stores a new list. Anonymous callers get a list nobody can edit.
func (h *ListHandler) CreateList(w http.ResponseWriter, r *http.Request) {
	var req listRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	list, err := h.listService.CreateList(r.Context(), teacherID(r), req.Title, req.Description, req.Mode, req.Words)
	if err != nil {
		respondWithServiceError(w, "Error creating list", err)
		return
	}
	respondJSON(w, http.StatusCreated, list)
}

// MyLists returns the signed-in teacher's lists
func (h *ListHandler) MyLists(w http.ResponseWriter, r *http.Request) {
	teacher := GetTeacherFromContext(r.Context())

	lists, err := h.listService.ListsForTeacher(r.Context(), teacher.ID)
	if err != nil {
		respondWithServiceError(w, "Error getting lists", err)
		return
	}
	if lists == nil {
		lists = []models.WordList{}
	}
	respondJSON(w, http.StatusOK, lists)
}

// GetList returns a list by share code
func (h *ListHandler) GetList(w http.ResponseWriter, r *http.Request) {
	list, err := h.listService.GetByCode(r.Context(), r.PathValue("code"))
	if err != nil {
		respondWithServiceError(w, "Error getting list", err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

// UpdateList changes a list's title, description and mode
func (h *ListHandler) UpdateList(w http.ResponseWriter, r *http.Request) {
	listID, ok := pathID(w, r)
	if !ok {
		return
	}
	var req listRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	teacher := GetTeacherFromContext(r.Context())
	list, err := h.listService.UpdateList(r.Context(), teacher.ID, listID, req.Title, req.Description, req.Mode)
	if err != nil {
		respondWithServiceError(w, "Error updating list", err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

// ReplaceWords swaps every word of a list
func (h *ListHandler) ReplaceWords(w http.ResponseWriter, r *http.Request) {
	listID, ok := pathID(w, r)
	if !ok {
		return
	}
	var req wordsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	teacher := GetTeacherFromContext(r.Context())
	list, err := h.listService.ReplaceWords(r.Context(), teacher.ID, listID, req.Words)
	if err != nil {
		respondWithServiceError(w, "Error replacing words", err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

// DeleteList removes a list
func (h *ListHandler) DeleteList(w http.ResponseWriter, r *http.Request) {
	listID, ok := pathID(w, r)
	if !ok {
		return
	}

	teacher := GetTeacherFromContext(r.Context())
	if err := h.listService.DeleteList(r.Context(), teacher.ID, listID); err != nil {
		respondWithServiceError(w, "Error deleting list", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ShareList emails a list's share code
func (h *ListHandler) ShareList(w http.ResponseWriter, r *http.Request) {
	listID, ok := pathID(w, r)
	if !ok {
		return
	}
	var req shareRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	teacher := GetTeacherFromContext(r.Context())
	if err := h.listService.ShareList(r.Context(), teacher.ID, listID, req.Email); err != nil {
		respondWithServiceError(w, "Error sharing list", err)
		return
	}
	respondJSON(w, http.StatusAccepted, map[string]string{"status": "sent"})
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		respondWithError(w, http.StatusBadRequest, "Invalid list ID", "", nil)
		return 0, false
	}
	return id, true
}
