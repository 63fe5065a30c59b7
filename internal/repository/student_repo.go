package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"dicteeclash/internal/credentials"
	"dicteeclash/internal/database"
	"dicteeclash/internal/models"
)

// ErrStudentCodeExhausted is returned when no free student code was found
var ErrStudentCodeExhausted = errors.New("could not allocate a unique student code")

const studentColumns = "id, teacher_id, name, student_code, created_at"

// StudentRepository handles database operations for students
type StudentRepository struct {
	db *database.DB
}

// NewStudentRepository creates a new student repository
func NewStudentRepository(db *database.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// CreateStudent stores a student under a freshly generated NAME-XXXX code
func (r *StudentRepository) CreateStudent(ctx context.Context, teacherID *int64, name string) (*models.Student, error) {
	name = strings.TrimSpace(name)

	for attempt := 0; attempt < maxShareCodeAttempts; attempt++ {
		code, err := credentials.GenerateStudentCode(name)
		if err != nil {
			return nil, fmt.Errorf("failed to generate student code: %w", err)
		}
		existing, err := r.GetStudentByCode(ctx, code)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			continue
		}

		s := &models.Student{TeacherID: teacherID, Name: name, StudentCode: code, CreatedAt: time.Now().UTC()}
		if err := r.InsertStudent(ctx, s); err != nil {
			return nil, err
		}
		return s, nil
	}
	return nil, ErrStudentCodeExhausted
}

// InsertStudent stores s as given, filling in its ID
func (r *StudentRepository) InsertStudent(ctx context.Context, s *models.Student) error {
	id, err := r.db.ExecReturningID(ctx,
		"INSERT INTO students (teacher_id, name, student_code, created_at) VALUES (?, ?, ?, ?)",
		s.TeacherID, s.Name, s.StudentCode, s.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create student: %w", err)
	}
	s.ID = id
	return nil
}

// GetStudentByCode retrieves a student by code, ignoring case
func (r *StudentRepository) GetStudentByCode(ctx context.Context, code string) (*models.Student, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+studentColumns+" FROM students WHERE student_code = ?", credentials.NormalizeCode(code))
	s, err := scanStudent(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	return s, nil
}

// GetStudentsByTeacher retrieves a teacher's students ordered by name
func (r *StudentRepository) GetStudentsByTeacher(ctx context.Context, teacherID int64) ([]models.Student, error) {
	return r.queryStudents(ctx, "SELECT "+studentColumns+" FROM students WHERE teacher_id = ? ORDER BY name", teacherID)
}

// GetAllStudents retrieves every student ordered by ID
func (r *StudentRepository) GetAllStudents(ctx context.Context) ([]models.Student, error) {
	return r.queryStudents(ctx, "SELECT "+studentColumns+" FROM students ORDER BY id")
}

func (r *StudentRepository) queryStudents(ctx context.Context, query string, args ...any) ([]models.Student, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query students: %w", err)
	}
	defer rows.Close()

	students := []models.Student{}
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan student: %w", err)
		}
		students = append(students, *s)
	}
	return students, rows.Err()
}

func scanStudent(row rowScanner) (*models.Student, error) {
	s := &models.Student{}
	if err := row.Scan(&s.ID, &s.TeacherID, &s.Name, &s.StudentCode, &s.CreatedAt); err != nil {
		return nil, err
	}
	return s, nil
}
