package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"dicteeclash/internal/database"
	"dicteeclash/internal/models"
)

// DefaultSessionLimit caps history queries that do not set a limit
const DefaultSessionLimit = 100

const sessionColumns = "id, list_id, student_id, student_name, mode_used, total_words, correct_words, percentage, time_spent_seconds, chrono_time_seconds, started_at, finished_at"

// SessionFilter narrows a session history query. Zero fields are ignored.
type SessionFilter struct {
	ListID      int64
	StudentID   int64
	StudentName string
	Limit       int
}

// SessionRepository handles training sessions and their word attempts
type SessionRepository struct {
	db *database.DB
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *database.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// RecordSession inserts a session and all its attempts in one transaction
func (r *SessionRepository) RecordSession(ctx context.Context, s *models.TrainingSession) error {
	return r.db.WithTx(ctx, func(tx *database.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO training_sessions (`+sessionColumns+`, student_key)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			s.ID, s.ListID, s.StudentID, s.StudentName, string(s.ModeUsed),
			s.TotalWords, s.CorrectWords, s.Percentage, s.TimeSpentSeconds, s.ChronoTimeSeconds,
			s.StartedAt.UTC(), s.FinishedAt.UTC(), studentKey(s.StudentName),
		)
		if err != nil {
			return fmt.Errorf("failed to record session: %w", err)
		}

		for i := range s.Attempts {
			a := &s.Attempts[i]
			a.SessionID = s.ID
			id, err := tx.ExecReturningID(ctx,
				"INSERT INTO word_attempts (session_id, word, user_answer, is_correct) VALUES (?, ?, ?, ?)",
				s.ID, a.Word, a.UserAnswer, a.IsCorrect)
			if err != nil {
				return fmt.Errorf("failed to record attempt: %w", err)
			}
			a.ID = id
		}
		return nil
	})
}

// FindSessions returns sessions matching filter, most recent first.
// The student name comparison ignores case.
func (r *SessionRepository) FindSessions(ctx context.Context, filter SessionFilter) ([]models.TrainingSession, error) {
	q := database.StatementBuilder(r.db.Dialect).
		Select(strings.Split(sessionColumns, ", ")...).
		From("training_sessions").
		OrderBy("started_at DESC", "id")

	if filter.ListID != 0 {
		q = q.Where(sq.Eq{"list_id": filter.ListID})
	}
	if filter.StudentID != 0 {
		q = q.Where(sq.Eq{"student_id": filter.StudentID})
	}
	if name := strings.TrimSpace(filter.StudentName); name != "" {
		q = q.Where(sq.Eq{"student_key": studentKey(name)})
	}

	limit := filter.Limit
	if limit <= 0 || limit > DefaultSessionLimit {
		limit = DefaultSessionLimit
	}
	q = q.Limit(uint64(limit))

	return r.querySessions(ctx, q)
}

// AllSessions returns every session with its attempts, oldest first
func (r *SessionRepository) AllSessions(ctx context.Context) ([]models.TrainingSession, error) {
	q := database.StatementBuilder(r.db.Dialect).
		Select(strings.Split(sessionColumns, ", ")...).
		From("training_sessions").
		OrderBy("started_at", "id")

	sessions, err := r.querySessions(ctx, q)
	if err != nil {
		return nil, err
	}
	for i := range sessions {
		sessions[i].Attempts, err = r.GetSessionAttempts(ctx, sessions[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return sessions, nil
}

func (r *SessionRepository) querySessions(ctx context.Context, q sq.SelectBuilder) ([]models.TrainingSession, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build session query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	sessions := []models.TrainingSession{}
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, *s)
	}
	return sessions, rows.Err()
}

// GetSession retrieves a session by ID, with its attempts.
// It returns nil, nil when the session does not exist.
func (r *SessionRepository) GetSession(ctx context.Context, id string) (*models.TrainingSession, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+sessionColumns+" FROM training_sessions WHERE id = ?", id)
	s, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	s.Attempts, err = r.GetSessionAttempts(ctx, id)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// GetSessionAttempts retrieves a session's attempts in answer order
func (r *SessionRepository) GetSessionAttempts(ctx context.Context, sessionID string) ([]models.WordAttempt, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, session_id, word, user_answer, is_correct FROM word_attempts WHERE session_id = ? ORDER BY id",
		sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query attempts: %w", err)
	}
	defer rows.Close()

	attempts := []models.WordAttempt{}
	for rows.Next() {
		var a models.WordAttempt
		if err := rows.Scan(&a.ID, &a.SessionID, &a.Word, &a.UserAnswer, &a.IsCorrect); err != nil {
			return nil, fmt.Errorf("failed to scan attempt: %w", err)
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

// studentKey folds a student name for case-insensitive lookups. SQL LOWER()
// only folds ASCII on SQLite, so the folded form is stored alongside.
func studentKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func scanSession(row rowScanner) (*models.TrainingSession, error) {
	s := &models.TrainingSession{}
	var mode string
	var chrono sql.NullInt64
	err := row.Scan(
		&s.ID,
		&s.ListID,
		&s.StudentID,
		&s.StudentName,
		&mode,
		&s.TotalWords,
		&s.CorrectWords,
		&s.Percentage,
		&s.TimeSpentSeconds,
		&chrono,
		&s.StartedAt,
		&s.FinishedAt,
	)
	if err != nil {
		return nil, err
	}
	s.ModeUsed = models.DrillMode(mode)
	if chrono.Valid {
		v := int(chrono.Int64)
		s.ChronoTimeSeconds = &v
	}
	return s, nil
}
