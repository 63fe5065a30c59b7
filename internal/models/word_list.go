package models

import "time"

// ListMode is the drill a list is primarily meant for
type ListMode string

const (
	ListModeFlashcard   ListMode = "flashcard"
	ListModeAudio       ListMode = "audio"
	ListModeProgression ListMode = "progression"
)

// Valid reports whether m is a known list mode
func (m ListMode) Valid() bool {
	switch m {
	case ListModeFlashcard, ListModeAudio, ListModeProgression:
		return true
	}
	return false
}

// WordList is a named vocabulary list reachable through its share code
type WordList struct {
	ID          int64     `json:"id"`
	TeacherID   *int64    `json:"teacherId,omitempty"` // nil for anonymous lists
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Mode        ListMode  `json:"mode"`
	ShareCode   string    `json:"shareCode"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Words       []Word    `json:"words"`
}

// Word is one entry of a word list
type Word struct {
	ID       int64  `json:"id"`
	ListID   int64  `json:"listId"`
	Word     string `json:"word"`
	Hint     string `json:"hint,omitempty"`
	Position int    `json:"position"`
}

// WordTexts returns the list's words in position order
func (l *WordList) WordTexts() []string {
	out := make([]string, len(l.Words))
	for i, w := range l.Words {
		out[i] = w.Word
	}
	return out
}

// OwnedBy reports whether the list belongs to the given teacher
func (l *WordList) OwnedBy(teacherID int64) bool {
	return l.TeacherID != nil && *l.TeacherID == teacherID
}
