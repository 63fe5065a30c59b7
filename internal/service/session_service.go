package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"dicteeclash/internal/models"
	"dicteeclash/internal/repository"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrInvalidSession  = errors.New("invalid session")
)

// HistoryQuery selects sessions by list code and student
type HistoryQuery struct {
	ListCode    string
	StudentName string
	StudentCode string
	Limit       int
}

// SessionService records training sessions and serves their history
type SessionService struct {
	sessions *repository.SessionRepository
	students *repository.StudentRepository
	lists    *ListService
}

// NewSessionService creates a new session service
func NewSessionService(sessions *repository.SessionRepository, students *repository.StudentRepository, lists *ListService) *SessionService {
	return &SessionService{sessions: sessions, students: students, lists: lists}
}

// Record stores a finished session for the list with the given share code.
// Counters are recomputed from the attempts when there are any.
func (s *SessionService) Record(ctx context.Context, code string, session *models.TrainingSession) error {
	list, err := s.lists.GetByCode(ctx, code)
	if err != nil {
		return err
	}

	session.ID = uuid.NewString()
	session.ListID = list.ID
	session.StudentName = strings.TrimSpace(session.StudentName)
	if session.FinishedAt.IsZero() {
		session.FinishedAt = time.Now().UTC()
	}
	if session.StartedAt.IsZero() {
		session.StartedAt = session.FinishedAt.Add(-time.Duration(session.TimeSpentSeconds) * time.Second)
	}
	session.Score()
	if err := session.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}

	if err := s.sessions.RecordSession(ctx, session); err != nil {
		return fmt.Errorf("failed to record session: %w", err)
	}
	return nil
}

// History returns matching sessions, most recent first
func (s *SessionService) History(ctx context.Context, q HistoryQuery) ([]models.TrainingSession, error) {
	filter := repository.SessionFilter{StudentName: q.StudentName, Limit: q.Limit}

	if q.ListCode != "" {
		list, err := s.lists.GetByCode(ctx, q.ListCode)
		if err != nil {
			return nil, err
		}
		filter.ListID = list.ID
	}
	if q.StudentCode != "" {
		student, err := s.students.GetStudentByCode(ctx, q.StudentCode)
		if err != nil {
			return nil, fmt.Errorf("failed to get student: %w", err)
		}
		if student == nil {
			return nil, ErrStudentNotFound
		}
		filter.StudentID = student.ID
	}

	sessions, err := s.sessions.FindSessions(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find sessions: %w", err)
	}
	return sessions, nil
}

// Attempts returns the answers given in a session
func (s *SessionService) Attempts(ctx context.Context, id string) ([]models.WordAttempt, error) {
	session, err := s.sessions.GetSession(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	return session.Attempts, nil
}
