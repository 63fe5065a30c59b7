package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"dicteeclash/internal/models"
	"dicteeclash/internal/repository"
	"dicteeclash/internal/validation"
)

var (
	ErrListNotFound  = errors.New("list not found")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrInvalidMode   = errors.New("invalid mode")
	ErrEmptyList     = errors.New("list has no words")
	ErrEmailDisabled = errors.New("email is not configured")
)

// ListService handles word list business logic
type ListService struct {
	lists  *repository.ListRepository
	emails *EmailService
}

// NewListService creates a new list service. emails may be nil.
func NewListService(lists *repository.ListRepository, emails *EmailService) *ListService {
	return &ListService{lists: lists, emails: emails}
}

// CreateList validates and stores a new list. teacherID is nil for an
// anonymous list, which nobody can edit afterwards.
func (s *ListService) CreateList(ctx context.Context, teacherID *int64, title, description string, mode models.ListMode, words []string) (*models.WordList, error) {
	if err := validation.ValidateListTitle(title); err != nil {
		return nil, err
	}
	if mode == "" {
		mode = models.ListModeFlashcard
	}
	if !mode.Valid() {
		return nil, ErrInvalidMode
	}
	cleaned, err := cleanWords(words)
	if err != nil {
		return nil, err
	}

	list, err := s.lists.CreateWordList(ctx, teacherID, strings.TrimSpace(title), strings.TrimSpace(description), mode, cleaned)
	if err != nil {
		return nil, fmt.Errorf("failed to create list: %w", err)
	}
	return list, nil
}

// GetByCode finds a list by its share code
func (s *ListService) GetByCode(ctx context.Context, code string) (*models.WordList, error) {
	list, err := s.lists.FindListByShareCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to find list: %w", err)
	}
	if list == nil {
		return nil, ErrListNotFound
	}
	return list, nil
}

// ListsForTeacher returns the lists a teacher created
func (s *ListService) ListsForTeacher(ctx context.Context, teacherID int64) ([]models.WordList, error) {
	lists, err := s.lists.GetListsByTeacher(ctx, teacherID)
	if err != nil {
		return nil, fmt.Errorf("failed to get lists: %w", err)
	}
	return lists, nil
}

// UpdateList changes the title, description and mode of a list the teacher owns
func (s *ListService) UpdateList(ctx context.Context, teacherID, listID int64, title, description string, mode models.ListMode) (*models.WordList, error) {
	list, err := s.owned(ctx, teacherID, listID)
	if err != nil {
		return nil, err
	}
	if err := validation.ValidateListTitle(title); err != nil {
		return nil, err
	}
	if !mode.Valid() {
		return nil, ErrInvalidMode
	}

	list.Title, list.Description, list.Mode = strings.TrimSpace(title), strings.TrimSpace(description), mode
	if err := s.lists.UpdateList(ctx, list.ID, list.Title, list.Description, list.Mode); err != nil {
		return nil, fmt.Errorf("failed to update list: %w", err)
	}
	return list, nil
}

// ReplaceWords swaps the words of a list the teacher owns
func (s *ListService) ReplaceWords(ctx context.Context, teacherID, listID int64, words []string) (*models.WordList, error) {
	list, err := s.owned(ctx, teacherID, listID)
	if err != nil {
		return nil, err
	}
	cleaned, err := cleanWords(words)
	if err != nil {
		return nil, err
	}

	entries := make([]models.Word, len(cleaned))
	for i, w := range cleaned {
		entries[i] = models.Word{Word: w}
	}
	if err := s.lists.ReplaceWords(ctx, list.ID, entries); err != nil {
		return nil, fmt.Errorf("failed to replace words: %w", err)
	}
	list.Words = entries
	return list, nil
}

// DeleteList removes a list the teacher owns, with its words and sessions
func (s *ListService) DeleteList(ctx context.Context, teacherID, listID int64) error {
	if _, err := s.owned(ctx, teacherID, listID); err != nil {
		return err
	}
	if err := s.lists.DeleteList(ctx, listID); err != nil {
		return fmt.Errorf("failed to delete list: %w", err)
	}
	return nil
}

// ShareList emails the share code of a list the teacher owns
func (s *ListService) ShareList(ctx context.Context, teacherID, listID int64, email string) error {
	if !s.emails.IsEnabled() {
		return ErrEmailDisabled
	}
	if err := validation.ValidateEmail(email); err != nil {
		return err
	}
	list, err := s.owned(ctx, teacherID, listID)
	if err != nil {
		return err
	}
	return s.emails.SendShareCodeEmail(ctx, strings.TrimSpace(email), list.Title, list.ShareCode)
}

func (s *ListService) owned(ctx context.Context, teacherID, listID int64) (*models.WordList, error) {
	list, err := s.lists.GetListByID(ctx, listID)
	if err != nil {
		return nil, fmt.Errorf("failed to get list: %w", err)
	}
	if list == nil {
		return nil, ErrListNotFound
	}
	if !list.OwnedBy(teacherID) {
		return nil, ErrUnauthorized
	}
	return list, nil
}

// cleanWords reports a list with nothing but blanks as ErrEmptyList and
// leaves the other limits to validation.
func cleanWords(words []string) ([]string, error) {
	for _, w := range words {
		if strings.TrimSpace(w) != "" {
			return validation.CleanWords(words)
		}
	}
	return nil, ErrEmptyList
}
