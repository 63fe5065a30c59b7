package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"dicteeclash/internal/database"
	"dicteeclash/internal/models"
)

const teacherColumns = "id, email, name, password_hash, oauth_provider, oauth_subject, created_at"

// TeacherRepository handles database operations for teacher accounts
type TeacherRepository struct {
	db *database.DB
}

// NewTeacherRepository creates a new teacher repository
func NewTeacherRepository(db *database.DB) *TeacherRepository {
	return &TeacherRepository{db: db}
}

// CreateTeacher inserts a new teacher. Email is stored lowercased.
func (r *TeacherRepository) CreateTeacher(ctx context.Context, t *models.Teacher) error {
	t.Email = strings.ToLower(strings.TrimSpace(t.Email))
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}

	id, err := r.db.ExecReturningID(ctx, `
		INSERT INTO teachers (email, name, password_hash, oauth_provider, oauth_subject, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, t.Email, t.Name, t.PasswordHash, t.OAuthProvider, t.OAuthSubject, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create teacher: %w", err)
	}
	t.ID = id
	return nil
}

// GetByEmail retrieves a teacher by email address
func (r *TeacherRepository) GetByEmail(ctx context.Context, email string) (*models.Teacher, error) {
	return r.getTeacher(ctx, "email = ?", strings.ToLower(strings.TrimSpace(email)))
}

// GetByID retrieves a teacher by ID
func (r *TeacherRepository) GetByID(ctx context.Context, id int64) (*models.Teacher, error) {
	return r.getTeacher(ctx, "id = ?", id)
}

// GetByOAuth retrieves a teacher by OAuth provider and subject
func (r *TeacherRepository) GetByOAuth(ctx context.Context, provider, subject string) (*models.Teacher, error) {
	return r.getTeacher(ctx, "oauth_provider = ? AND oauth_subject = ?", provider, subject)
}

func (r *TeacherRepository) getTeacher(ctx context.Context, where string, args ...any) (*models.Teacher, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+teacherColumns+" FROM teachers WHERE "+where, args...)
	t, err := scanTeacher(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get teacher: %w", err)
	}
	return t, nil
}

// LinkOAuthProvider attaches an OAuth identity to an existing teacher
func (r *TeacherRepository) LinkOAuthProvider(ctx context.Context, teacherID int64, provider, subject string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE teachers SET oauth_provider = ?, oauth_subject = ? WHERE id = ?",
		provider, subject, teacherID)
	if err != nil {
		return fmt.Errorf("failed to link OAuth provider: %w", err)
	}
	return nil
}

// GetAllTeachers retrieves every teacher ordered by ID
func (r *TeacherRepository) GetAllTeachers(ctx context.Context) ([]models.Teacher, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+teacherColumns+" FROM teachers ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query teachers: %w", err)
	}
	defer rows.Close()

	teachers := []models.Teacher{}
	for rows.Next() {
		t, err := scanTeacher(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan teacher: %w", err)
		}
		teachers = append(teachers, *t)
	}
	return teachers, rows.Err()
}

func scanTeacher(row rowScanner) (*models.Teacher, error) {
	t := &models.Teacher{}
	err := row.Scan(&t.ID, &t.Email, &t.Name, &t.PasswordHash, &t.OAuthProvider, &t.OAuthSubject, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return t, nil
}
