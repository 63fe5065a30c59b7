package service

import (
	"context"
	"errors"
	"fmt"

	"dicteeclash/internal/models"
	"dicteeclash/internal/repository"
	"dicteeclash/internal/validation"
)

var (
	ErrStudentNotFound = errors.New("student not found")
	ErrNameRejected    = errors.New("name is not allowed")
)

// wordScreen rejects text containing blocked words
type wordScreen interface {
	ContainsBlockedWord(ctx context.Context, text string) (bool, error)
}

// StudentService manages student codes
type StudentService struct {
	students *repository.StudentRepository
	screen   wordScreen
}

// NewStudentService creates a new student service
func NewStudentService(students *repository.StudentRepository, screen wordScreen) *StudentService {
	return &StudentService{students: students, screen: screen}
}

// CreateStudent registers a student and hands out a NAME-XXXX code
func (s *StudentService) CreateStudent(ctx context.Context, teacherID *int64, name string) (*models.Student, error) {
	if err := validation.ValidateName(name); err != nil {
		return nil, err
	}
	blocked, err := s.screen.ContainsBlockedWord(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to screen name: %w", err)
	}
	if blocked {
		return nil, ErrNameRejected
	}

	student, err := s.students.CreateStudent(ctx, teacherID, name)
	if err != nil {
		return nil, fmt.Errorf("failed to create student: %w", err)
	}
	return student, nil
}

// GetByCode finds a student by code, ignoring case
func (s *StudentService) GetByCode(ctx context.Context, code string) (*models.Student, error) {
	student, err := s.students.GetStudentByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	if student == nil {
		return nil, ErrStudentNotFound
	}
	return student, nil
}

// StudentsForTeacher returns a teacher's students ordered by name
func (s *StudentService) StudentsForTeacher(ctx context.Context, teacherID int64) ([]models.Student, error) {
	students, err := s.students.GetStudentsByTeacher(ctx, teacherID)
	if err != nil {
		return nil, fmt.Errorf("failed to get students: %w", err)
	}
	return students, nil
}
