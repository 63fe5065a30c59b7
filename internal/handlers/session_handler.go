package handlers

import (
	"net/http"
	"strconv"
	"time"

	"dicteeclash/internal/models"
	"dicteeclash/internal/service"
)

// SessionHandler records training sessions and serves their history
type SessionHandler struct {
	sessionService *service.SessionService
	studentService *service.StudentService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessionService *service.SessionService, studentService *service.StudentService) *SessionHandler {
	return &SessionHandler{
		sessionService: sessionService,
		studentService: studentService,
	}
}

type attemptRequest struct {
	Word       string `json:"word"`
	UserAnswer string `json:"userAnswer"`
	IsCorrect  bool   `json:"isCorrect"`
}

type sessionRequest struct {
	ShareCode         string           `json:"shareCode"`
	StudentName       string           `json:"studentName"`
	StudentCode       string           `json:"studentCode"`
	ModeUsed          models.DrillMode `json:"modeUsed"`
	TotalWords        int              `json:"totalWords"`
	CorrectWords      int              `json:"correctWords"`
	TimeSpentSeconds  int              `json:"timeSpentSeconds"`
	ChronoTimeSeconds *int             `json:"chronoTimeSeconds"`
	StartedAt         time.Time        `json:"startedAt"`
	FinishedAt        time.Time        `json:"finishedAt"`
	Attempts          []attemptRequest `json:"attempts"`
}

// RecordSession stores a finished session. A student code, when given,
// ties the session to that student and supplies the name.
func (h *SessionHandler) RecordSession(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	session := &models.TrainingSession{
		StudentName:       req.StudentName,
		ModeUsed:          req.ModeUsed,
		TotalWords:        req.TotalWords,
		CorrectWords:      req.CorrectWords,
		TimeSpentSeconds:  req.TimeSpentSeconds,
		ChronoTimeSeconds: req.ChronoTimeSeconds,
		StartedAt:         req.StartedAt,
		FinishedAt:        req.FinishedAt,
	}
	for _, a := range req.Attempts {
		session.Attempts = append(session.Attempts, models.WordAttempt{
			Word:       a.Word,
			UserAnswer: a.UserAnswer,
			IsCorrect:  a.IsCorrect,
		})
	}

	if req.StudentCode != "" {
		student, err := h.studentService.GetByCode(r.Context(), req.StudentCode)
		if err != nil {
			respondWithServiceError(w, "Error finding student", err)
			return
		}
		session.StudentID = &student.ID
		session.StudentName = student.Name
	}

	if err := h.sessionService.Record(r.Context(), req.ShareCode, session); err != nil {
		respondWithServiceError(w, "Error recording session", err)
		return
	}
	respondJSON(w, http.StatusCreated, session)
}

// History lists sessions filtered by ?list=, ?student=, ?code= and ?limit=
func (h *SessionHandler) History(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := service.HistoryQuery{
		ListCode:    q.Get("list"),
		StudentName: q.Get("student"),
		StudentCode: q.Get("code"),
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			respondWithError(w, http.StatusBadRequest, "Invalid limit", "", nil)
			return
		}
		query.Limit = limit
	}

	sessions, err := h.sessionService.History(r.Context(), query)
	if err != nil {
		respondWithServiceError(w, "Error getting history", err)
		return
	}
	if sessions == nil {
		sessions = []models.TrainingSession{}
	}
	respondJSON(w, http.StatusOK, sessions)
}

// Attempts returns the answers of one session
func (h *SessionHandler) Attempts(w http.ResponseWriter, r *http.Request) {
	attempts, err := h.sessionService.Attempts(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithServiceError(w, "Error getting attempts", err)
		return
	}
	if attempts == nil {
		attempts = []models.WordAttempt{}
	}
	respondJSON(w, http.StatusOK, attempts)
}
