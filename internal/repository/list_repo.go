package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"

	"dicteeclash/internal/credentials"
	"dicteeclash/internal/database"
	"dicteeclash/internal/models"
)

// maxShareCodeAttempts bounds the retries when a generated share code is taken
const maxShareCodeAttempts = 5

// ErrShareCodeExhausted is returned when no free share code was found
var ErrShareCodeExhausted = errors.New("could not allocate a unique share code")

const listColumns = "id, teacher_id, title, description, mode, share_code, created_at, updated_at"

// ListRepository handles database operations for word lists and their words
type ListRepository struct {
	db *database.DB
}

// NewListRepository creates a new list repository
func NewListRepository(db *database.DB) *ListRepository {
	return &ListRepository{db: db}
}

// CreateWordList stores a list with its words and assigns it a fresh share code
func (r *ListRepository) CreateWordList(ctx context.Context, teacherID *int64, title, description string, mode models.ListMode, words []string) (*models.WordList, error) {
	list := &models.WordList{
		TeacherID:   teacherID,
		Title:       title,
		Description: description,
		Mode:        mode,
		CreatedAt:   time.Now().UTC(),
	}
	list.UpdatedAt = list.CreatedAt
	for i, w := range words {
		list.Words = append(list.Words, models.Word{Word: w, Position: i})
	}

	for attempt := 0; attempt < maxShareCodeAttempts; attempt++ {
		code, err := credentials.GenerateShareCode()
		if err != nil {
			return nil, fmt.Errorf("failed to generate share code: %w", err)
		}
		taken, err := r.shareCodeTaken(ctx, code)
		if err != nil {
			return nil, err
		}
		if taken {
			continue
		}

		list.ShareCode = code
		if err := r.InsertList(ctx, list); err != nil {
			return nil, err
		}
		return list, nil
	}
	return nil, ErrShareCodeExhausted
}

// InsertList stores list and its words as given, including the share code.
// IDs are filled in on success.
func (r *ListRepository) InsertList(ctx context.Context, list *models.WordList) error {
	return r.db.WithTx(ctx, func(tx *database.Tx) error {
		id, err := tx.ExecReturningID(ctx, `
			INSERT INTO word_lists (teacher_id, title, description, mode, share_code, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, list.TeacherID, list.Title, list.Description, string(list.Mode), list.ShareCode, list.CreatedAt, list.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to create list: %w", err)
		}
		list.ID = id
		return insertWords(ctx, tx, id, list.Words)
	})
}

func insertWords(ctx context.Context, tx *database.Tx, listID int64, words []models.Word) error {
	for i := range words {
		words[i].ListID = listID
		words[i].Position = i
		id, err := tx.ExecReturningID(ctx,
			"INSERT INTO words (list_id, word, hint, position) VALUES (?, ?, ?, ?)",
			listID, words[i].Word, words[i].Hint, i)
		if err != nil {
			return fmt.Errorf("failed to add word: %w", err)
		}
		words[i].ID = id
	}
	return nil
}

func (r *ListRepository) shareCodeTaken(ctx context.Context, code string) (bool, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM word_lists WHERE share_code = ?", code).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check share code: %w", err)
	}
	return count > 0, nil
}

// FindListByShareCode retrieves a list and its words by share code,
// ignoring case. It returns nil, nil when no list matches.
func (r *ListRepository) FindListByShareCode(ctx context.Context, code string) (*models.WordList, error) {
	return r.getList(ctx, "share_code = ?", credentials.NormalizeCode(code))
}

// GetListByID retrieves a list and its words by ID
func (r *ListRepository) GetListByID(ctx context.Context, listID int64) (*models.WordList, error) {
	return r.getList(ctx, "id = ?", listID)
}

func (r *ListRepository) getList(ctx context.Context, where string, arg any) (*models.WordList, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+listColumns+" FROM word_lists WHERE "+where, arg)
	list, err := scanList(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get list: %w", err)
	}

	words, err := r.GetWords(ctx, list.ID)
	if err != nil {
		return nil, err
	}
	list.Words = words
	return list, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanList(row rowScanner) (*models.WordList, error) {
	list := &models.WordList{}
	var mode string
	err := row.Scan(
		&list.ID,
		&list.TeacherID,
		&list.Title,
		&list.Description,
		&mode,
		&list.ShareCode,
		&list.CreatedAt,
		&list.UpdatedAt,
	)
	list.Mode = models.ListMode(mode)
	return list, err
}

// GetWords retrieves a list's words in position order
func (r *ListRepository) GetWords(ctx context.Context, listID int64) ([]models.Word, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, list_id, word, hint, position FROM words WHERE list_id = ? ORDER BY position, id", listID)
	if err != nil {
		return nil, fmt.Errorf("failed to query words: %w", err)
	}
	defer rows.Close()

	words := []models.Word{}
	for rows.Next() {
		var w models.Word
		if err := rows.Scan(&w.ID, &w.ListID, &w.Word, &w.Hint, &w.Position); err != nil {
			return nil, fmt.Errorf("failed to scan word: %w", err)
		}
		words = append(words, w)
	}
	return words, rows.Err()
}

// GetListsByTeacher retrieves a teacher's lists, newest first, with their words
func (r *ListRepository) GetListsByTeacher(ctx context.Context, teacherID int64) ([]models.WordList, error) {
	return r.queryLists(ctx, sq.Eq{"teacher_id": teacherID})
}

// GetAllLists retrieves every list with its words
func (r *ListRepository) GetAllLists(ctx context.Context) ([]models.WordList, error) {
	return r.queryLists(ctx, nil)
}

func (r *ListRepository) queryLists(ctx context.Context, where sq.Sqlizer) ([]models.WordList, error) {
	q := database.StatementBuilder(r.db.Dialect).
		Select(strings.Split(listColumns, ", ")...).
		From("word_lists").
		OrderBy("created_at DESC", "id DESC")
	if where != nil {
		q = q.Where(where)
	}
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query lists: %w", err)
	}
	defer rows.Close()

	lists := []models.WordList{}
	index := map[int64]int{}
	var ids []int64
	for rows.Next() {
		list, err := scanList(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan list: %w", err)
		}
		list.Words = []models.Word{}
		index[list.ID] = len(lists)
		ids = append(ids, list.ID)
		lists = append(lists, *list)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return lists, nil
	}

	query, args, err = database.StatementBuilder(r.db.Dialect).
		Select("id", "list_id", "word", "hint", "position").
		From("words").
		Where(sq.Eq{"list_id": ids}).
		OrderBy("list_id", "position", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build word query: %w", err)
	}
	wordRows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query words: %w", err)
	}
	defer wordRows.Close()

	for wordRows.Next() {
		var w models.Word
		if err := wordRows.Scan(&w.ID, &w.ListID, &w.Word, &w.Hint, &w.Position); err != nil {
			return nil, fmt.Errorf("failed to scan word: %w", err)
		}
		i := index[w.ListID]
		lists[i].Words = append(lists[i].Words, w)
	}
	return lists, wordRows.Err()
}

// UpdateList updates a list's title, description and mode
func (r *ListRepository) UpdateList(ctx context.Context, listID int64, title, description string, mode models.ListMode) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE word_lists SET title = ?, description = ?, mode = ?, updated_at = ? WHERE id = ?",
		title, description, string(mode), time.Now().UTC(), listID)
	if err != nil {
		return fmt.Errorf("failed to update list: %w", err)
	}
	return nil
}

// ReplaceWords swaps a list's words for the given ones, renumbering positions
func (r *ListRepository) ReplaceWords(ctx context.Context, listID int64, words []models.Word) error {
	return r.db.WithTx(ctx, func(tx *database.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM words WHERE list_id = ?", listID); err != nil {
			return fmt.Errorf("failed to clear words: %w", err)
		}
		if err := insertWords(ctx, tx, listID, words); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "UPDATE word_lists SET updated_at = ? WHERE id = ?", time.Now().UTC(), listID); err != nil {
			return fmt.Errorf("failed to touch list: %w", err)
		}
		return nil
	})
}

// DeleteList deletes a list along with its words and sessions
func (r *ListRepository) DeleteList(ctx context.Context, listID int64) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM word_lists WHERE id = ?", listID); err != nil {
		return fmt.Errorf("failed to delete list: %w", err)
	}
	return nil
}
