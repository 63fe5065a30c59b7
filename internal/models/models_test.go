package models

import (
	"testing"
	"time"
)

func TestPercentage(t *testing.T) {
	tests := []struct {
		correct, total, want int
	}{
		{0, 0, 0},
		{0, 5, 0},
		{5, 5, 100},
		{2, 3, 67},
		{1, 3, 33},
		{1, 8, 13},
	}
	for _, tt := range tests {
		if got := Percentage(tt.correct, tt.total); got != tt.want {
			t.Errorf("Percentage(%d, %d) = %d, want %d", tt.correct, tt.total, got, tt.want)
		}
	}
}

func TestTrainingSessionValidate(t *testing.T) {
	now := time.Now()
	valid := TrainingSession{
		ModeUsed:     DrillBlanks,
		TotalWords:   4,
		CorrectWords: 3,
		StartedAt:    now.Add(-time.Minute),
		FinishedAt:   now,
	}

	tests := []struct {
		name    string
		mutate  func(s *TrainingSession)
		wantErr bool
	}{
		{"valid session", func(s *TrainingSession) {}, false},
		{"unknown mode", func(s *TrainingSession) { s.ModeUsed = "karaoke" }, true},
		{"no words", func(s *TrainingSession) { s.TotalWords = 0; s.CorrectWords = 0 }, true},
		{"too many correct", func(s *TrainingSession) { s.CorrectWords = 5 }, true},
		{"negative time", func(s *TrainingSession) { s.TimeSpentSeconds = -1 }, true},
		{"finished before start", func(s *TrainingSession) { s.FinishedAt = s.StartedAt.Add(-time.Second) }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid
			tt.mutate(&s)
			err := s.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestTrainingSessionScore(t *testing.T) {
	s := TrainingSession{
		TotalWords:   10,
		CorrectWords: 10,
		Attempts: []WordAttempt{
			{Word: "chat", IsCorrect: true},
			{Word: "chien", IsCorrect: false},
			{Word: "oiseau", IsCorrect: true},
		},
	}
	s.Score()
	if s.TotalWords != 3 || s.CorrectWords != 2 || s.Percentage != 67 {
		t.Errorf("Score() = %d/%d (%d%%), want 2/3 (67%%)", s.CorrectWords, s.TotalWords, s.Percentage)
	}

	noAttempts := TrainingSession{TotalWords: 4, CorrectWords: 1}
	noAttempts.Score()
	if noAttempts.Percentage != 25 {
		t.Errorf("Score() without attempts = %d%%, want 25%%", noAttempts.Percentage)
	}
}

func TestModes(t *testing.T) {
	for _, m := range []ListMode{ListModeFlashcard, ListModeAudio, ListModeProgression} {
		if !m.Valid() {
			t.Errorf("ListMode %q should be valid", m)
		}
	}
	if ListMode("choice").Valid() {
		t.Error("choice is a drill, not a list mode")
	}
	for _, m := range []DrillMode{DrillFlashcard, DrillAudio, DrillChoice, DrillBlanks} {
		if !m.Valid() {
			t.Errorf("DrillMode %q should be valid", m)
		}
	}
}

func TestWordListHelpers(t *testing.T) {
	owner := int64(7)
	l := WordList{
		TeacherID: &owner,
		Words:     []Word{{Word: "chat", Position: 0}, {Word: "chien", Position: 1}},
	}
	if got := l.WordTexts(); len(got) != 2 || got[0] != "chat" || got[1] != "chien" {
		t.Errorf("WordTexts() = %v", got)
	}
	if !l.OwnedBy(7) || l.OwnedBy(8) {
		t.Error("OwnedBy() mismatch")
	}
	anonymous := WordList{}
	if anonymous.OwnedBy(7) {
		t.Error("anonymous list must not be owned")
	}
}
