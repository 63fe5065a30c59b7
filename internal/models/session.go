package models

import (
	"errors"
	"math"
	"time"
)

// DrillMode is the exercise a training session was run in
type DrillMode string

const (
	DrillFlashcard DrillMode = "flashcard"
	DrillAudio     DrillMode = "audio"
	DrillChoice    DrillMode = "choice"
	DrillBlanks    DrillMode = "blanks"
)

// Valid reports whether m is a known drill mode
func (m DrillMode) Valid() bool {
	switch m {
	case DrillFlashcard, DrillAudio, DrillChoice, DrillBlanks:
		return true
	}
	return false
}

// TrainingSession is one completed run through a word list
type TrainingSession struct {
	ID                string        `json:"id"`
	ListID            int64         `json:"listId"`
	StudentID         *int64        `json:"studentId,omitempty"`
	StudentName       string        `json:"studentName"`
	ModeUsed          DrillMode     `json:"modeUsed"`
	TotalWords        int           `json:"totalWords"`
	CorrectWords      int           `json:"correctWords"`
	Percentage        int           `json:"percentage"`
	TimeSpentSeconds  int           `json:"timeSpentSeconds"`
	ChronoTimeSeconds *int          `json:"chronoTimeSeconds,omitempty"`
	StartedAt         time.Time     `json:"startedAt"`
	FinishedAt        time.Time     `json:"finishedAt"`
	Attempts          []WordAttempt `json:"attempts,omitempty"`
}

// WordAttempt is a single answer given during a session
type WordAttempt struct {
	ID         int64  `json:"id"`
	SessionID  string `json:"sessionId"`
	Word       string `json:"word"`
	UserAnswer string `json:"userAnswer"`
	IsCorrect  bool   `json:"isCorrect"`
}

// Percentage returns correct/total as a rounded percentage, 0 for an empty run
func Percentage(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(correct) * 100 / float64(total)))
}

// Validate checks the session's counters are consistent
func (s *TrainingSession) Validate() error {
	if !s.ModeUsed.Valid() {
		return errors.New("unknown drill mode")
	}
	if s.TotalWords <= 0 {
		return errors.New("total words must be positive")
	}
	if s.CorrectWords < 0 || s.CorrectWords > s.TotalWords {
		return errors.New("correct words out of range")
	}
	if s.TimeSpentSeconds < 0 {
		return errors.New("time spent must not be negative")
	}
	if !s.FinishedAt.IsZero() && s.FinishedAt.Before(s.StartedAt) {
		return errors.New("session finished before it started")
	}
	return nil
}

// Score fills CorrectWords and Percentage from the attempts when present
func (s *TrainingSession) Score() {
	if len(s.Attempts) > 0 {
		s.TotalWords = len(s.Attempts)
		s.CorrectWords = 0
		for _, a := range s.Attempts {
			if a.IsCorrect {
				s.CorrectWords++
			}
		}
	}
	s.Percentage = Percentage(s.CorrectWords, s.TotalWords)
}
