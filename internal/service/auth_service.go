package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"dicteeclash/internal/models"
	"dicteeclash/internal/repository"
	"dicteeclash/internal/security"
	"dicteeclash/internal/validation"
)

var (
	ErrEmailTaken         = errors.New("email already taken")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// AuthResult is a signed-in teacher and the bearer token to use
type AuthResult struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expiresAt"`
	Teacher   *models.Teacher `json:"teacher"`
}

// AuthService handles teacher accounts and access tokens
type AuthService struct {
	teachers *repository.TeacherRepository
	tokens   *security.TokenIssuer
	emails   *EmailService
}

// NewAuthService creates a new auth service. emails may be nil.
func NewAuthService(teachers *repository.TeacherRepository, tokens *security.TokenIssuer, emails *EmailService) *AuthService {
	return &AuthService{
		teachers: teachers,
		tokens:   tokens,
		emails:   emails,
	}
}

// Register creates a teacher account and signs it in
func (s *AuthService) Register(ctx context.Context, email, password, name string) (*AuthResult, error) {
	if err := validation.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, err
	}
	if err := validation.ValidateName(name); err != nil {
		return nil, err
	}

	existing, err := s.teachers.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing teacher: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	teacher := &models.Teacher{Email: email, Name: strings.TrimSpace(name), PasswordHash: hash}
	if err := s.teachers.CreateTeacher(ctx, teacher); err != nil {
		return nil, fmt.Errorf("failed to create teacher: %w", err)
	}

	if s.emails != nil && s.emails.IsEnabled() {
		if err := s.emails.SendWelcomeEmail(ctx, teacher.Email, teacher.Name); err != nil {
			log.Printf("Warning: failed to send welcome email to %s: %v", teacher.Email, err)
		}
	}

	return s.issue(teacher)
}

// Login checks a teacher's password and returns a fresh token
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	teacher, err := s.teachers.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to get teacher: %w", err)
	}
	if teacher == nil || !security.CheckPassword(password, teacher.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return s.issue(teacher)
}

// OAuthLogin signs in the teacher linked to an OAuth identity. An account
// with the same email is linked on first use; otherwise one is created.
func (s *AuthService) OAuthLogin(ctx context.Context, provider, subject, email, name string) (*AuthResult, error) {
	if provider == "" || subject == "" {
		return nil, errors.New("missing oauth provider information")
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, err
	}

	teacher, err := s.teachers.GetByOAuth(ctx, provider, subject)
	if err != nil {
		return nil, fmt.Errorf("failed to lookup oauth teacher: %w", err)
	}
	if teacher != nil {
		return s.issue(teacher)
	}

	existing, err := s.teachers.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing teacher: %w", err)
	}
	if existing != nil {
		if existing.OAuthProvider != "" && existing.OAuthProvider != provider {
			return nil, ErrEmailTaken
		}
		if err := s.teachers.LinkOAuthProvider(ctx, existing.ID, provider, subject); err != nil {
			return nil, fmt.Errorf("failed to link oauth provider: %w", err)
		}
		existing.OAuthProvider, existing.OAuthSubject = provider, subject
		return s.issue(existing)
	}

	if strings.TrimSpace(name) == "" {
		name = strings.Split(email, "@")[0]
	}
	teacher = &models.Teacher{Email: email, Name: name, OAuthProvider: provider, OAuthSubject: subject}
	if err := s.teachers.CreateTeacher(ctx, teacher); err != nil {
		return nil, fmt.Errorf("failed to create oauth teacher: %w", err)
	}
	return s.issue(teacher)
}

// Authenticate resolves a bearer token to its teacher
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.Teacher, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, ErrUnauthorized
	}
	id, err := claims.TeacherID()
	if err != nil {
		return nil, ErrUnauthorized
	}
	teacher, err := s.teachers.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get teacher: %w", err)
	}
	if teacher == nil {
		return nil, ErrUnauthorized
	}
	return teacher, nil
}

func (s *AuthService) issue(teacher *models.Teacher) (*AuthResult, error) {
	token, expiresAt, err := s.tokens.Issue(teacher.ID, teacher.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &AuthResult{Token: token, ExpiresAt: expiresAt, Teacher: teacher}, nil
}
