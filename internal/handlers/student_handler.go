package handlers

import (
	"net/http"

	"dicteeclash/internal/models"
	"dicteeclash/internal/service"
)

// StudentHandler hands out and resolves student codes
type StudentHandler struct {
	studentService *service.StudentService
}

// NewStudentHandler creates a new student handler
func NewStudentHandler(studentService *service.StudentService) *StudentHandler {
	return &StudentHandler{studentService: studentService}
}

type studentRequest struct {
	Name string `json:"name"`
}

// CreateStudent registers a student, under the signed-in teacher if any
func (h *StudentHandler) CreateStudent(w http.ResponseWriter, r *http.Request) {
	var req studentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	student, err := h.studentService.CreateStudent(r.Context(), teacherID(r), req.Name)
	if err != nil {
		respondWithServiceError(w, "Error creating student", err)
		return
	}
	respondJSON(w, http.StatusCreated, student)
}

// GetStudent resolves a student code
func (h *StudentHandler) GetStudent(w http.ResponseWriter, r *http.Request) {
	student, err := h.studentService.GetByCode(r.Context(), r.PathValue("code"))
	if err != nil {
		respondWithServiceError(w, "Error getting student", err)
		return
	}
	respondJSON(w, http.StatusOK, student)
}

// MyStudents returns the signed-in teacher's students
func (h *StudentHandler) MyStudents(w http.ResponseWriter, r *http.Request) {
	teacher := GetTeacherFromContext(r.Context())

	students, err := h.studentService.StudentsForTeacher(r.Context(), teacher.ID)
	if err != nil {
		respondWithServiceError(w, "Error getting students", err)
		return
	}
	if students == nil {
		students = []models.Student{}
	}
	respondJSON(w, http.StatusOK, students)
}
