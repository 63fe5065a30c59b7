package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"time"

	"dicteeclash/internal/database"
	"dicteeclash/internal/models"
	"dicteeclash/internal/repository"
)

const backupVersion = "1.0"

// BackupData represents the complete database backup structure
type BackupData struct {
	Version      string                   `json:"version"`
	ExportedAt   time.Time                `json:"exported_at"`
	DatabaseType string                   `json:"database_type"`
	Teachers     []TeacherBackup          `json:"teachers"`
	Lists        []models.WordList        `json:"lists"`
	Students     []models.Student         `json:"students"`
	Sessions     []models.TrainingSession `json:"sessions"`
}

// TeacherBackup carries the credentials the public model hides
type TeacherBackup struct {
	ID            int64     `json:"id"`
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	PasswordHash  string    `json:"password_hash"`
	OAuthProvider string    `json:"oauth_provider"`
	OAuthSubject  string    `json:"oauth_subject"`
	CreatedAt     time.Time `json:"created_at"`
}

// ImportStats counts what an import added and what it skipped
type ImportStats struct {
	Teachers int
	Lists    int
	Students int
	Sessions int
	Skipped  int
}

// BackupService handles database backup and restore operations
type BackupService struct {
	db       *database.DB
	teachers *repository.TeacherRepository
	lists    *repository.ListRepository
	students *repository.StudentRepository
	sessions *repository.SessionRepository
}

// NewBackupService creates a new backup service
func NewBackupService(db *database.DB) *BackupService {
	return &BackupService{
		db:       db,
		teachers: repository.NewTeacherRepository(db),
		lists:    repository.NewListRepository(db),
		students: repository.NewStudentRepository(db),
		sessions: repository.NewSessionRepository(db),
	}
}

// Export writes a complete backup of the database to w
func (s *BackupService) Export(ctx context.Context, w io.Writer) error {
	log.Println("Starting database export...")

	backup := &BackupData{
		Version:      backupVersion,
		ExportedAt:   time.Now().UTC(),
		DatabaseType: s.db.Dialect.DriverName(),
	}

	teachers, err := s.teachers.GetAllTeachers(ctx)
	if err != nil {
		return fmt.Errorf("failed to export teachers: %w", err)
	}
	for _, t := range teachers {
		backup.Teachers = append(backup.Teachers, TeacherBackup{
			ID:            t.ID,
			Email:         t.Email,
			Name:          t.Name,
			PasswordHash:  t.PasswordHash,
			OAuthProvider: t.OAuthProvider,
			OAuthSubject:  t.OAuthSubject,
			CreatedAt:     t.CreatedAt,
		})
	}

	if backup.Lists, err = s.lists.GetAllLists(ctx); err != nil {
		return fmt.Errorf("failed to export lists: %w", err)
	}
	if backup.Students, err = s.students.GetAllStudents(ctx); err != nil {
		return fmt.Errorf("failed to export students: %w", err)
	}
	if backup.Sessions, err = s.sessions.AllSessions(ctx); err != nil {
		return fmt.Errorf("failed to export sessions: %w", err)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return fmt.Errorf("failed to encode backup: %w", err)
	}

	log.Printf("Exported: %d teachers, %d lists, %d students, %d sessions",
		len(backup.Teachers), len(backup.Lists), len(backup.Students), len(backup.Sessions))
	return nil
}

// Import merges a backup into the database. Rows that already exist, by
// email, share code, student code or session ID, are kept as they are and
// references to them are remapped.
func (s *BackupService) Import(ctx context.Context, r io.Reader) (*ImportStats, error) {
	var backup BackupData
	if err := json.NewDecoder(r).Decode(&backup); err != nil {
		return nil, fmt.Errorf("failed to decode backup: %w", err)
	}
	log.Printf("Backup version: %s, exported at: %s", backup.Version, backup.ExportedAt)

	stats := &ImportStats{}

	teacherIDs, err := s.importTeachers(ctx, backup.Teachers, stats)
	if err != nil {
		return nil, fmt.Errorf("failed to import teachers: %w", err)
	}
	listIDs, err := s.importLists(ctx, backup.Lists, teacherIDs, stats)
	if err != nil {
		return nil, fmt.Errorf("failed to import lists: %w", err)
	}
	studentIDs, err := s.importStudents(ctx, backup.Students, teacherIDs, stats)
	if err != nil {
		return nil, fmt.Errorf("failed to import students: %w", err)
	}
	if err := s.importSessions(ctx, backup.Sessions, listIDs, studentIDs, stats); err != nil {
		return nil, fmt.Errorf("failed to import sessions: %w", err)
	}

	log.Printf("Imported: %d teachers, %d lists, %d students, %d sessions (%d skipped)",
		stats.Teachers, stats.Lists, stats.Students, stats.Sessions, stats.Skipped)
	return stats, nil
}

// ClearAll deletes every teacher, list, student and session
func (s *BackupService) ClearAll(ctx context.Context) error {
	// Delete in reverse order of dependencies
	tables := []string{
		"word_attempts",
		"training_sessions",
		"words",
		"word_lists",
		"students",
		"teachers",
	}
	return s.db.WithTx(ctx, func(tx *database.Tx) error {
		for _, table := range tables {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("failed to clear table %s: %w", table, err)
			}
			log.Printf("Cleared table: %s", table)
		}
		return nil
	})
}

func (s *BackupService) importTeachers(ctx context.Context, teachers []TeacherBackup, stats *ImportStats) (map[int64]int64, error) {
	ids := make(map[int64]int64, len(teachers))
	for _, b := range teachers {
		existing, err := s.teachers.GetByEmail(ctx, b.Email)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			ids[b.ID] = existing.ID
			stats.Skipped++
			continue
		}
		t := &models.Teacher{
			Email:         b.Email,
			Name:          b.Name,
			PasswordHash:  b.PasswordHash,
			OAuthProvider: b.OAuthProvider,
			OAuthSubject:  b.OAuthSubject,
			CreatedAt:     b.CreatedAt,
		}
		if err := s.teachers.CreateTeacher(ctx, t); err != nil {
			return nil, err
		}
		ids[b.ID] = t.ID
		stats.Teachers++
	}
	return ids, nil
}

func (s *BackupService) importLists(ctx context.Context, lists []models.WordList, teacherIDs map[int64]int64, stats *ImportStats) (map[int64]int64, error) {
	ids := make(map[int64]int64, len(lists))
	for _, l := range lists {
		existing, err := s.lists.FindListByShareCode(ctx, l.ShareCode)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			ids[l.ID] = existing.ID
			stats.Skipped++
			continue
		}

		oldID := l.ID
		l.TeacherID = remapID(l.TeacherID, teacherIDs)
		words := make([]models.Word, len(l.Words))
		for i, w := range l.Words {
			words[i] = models.Word{Word: w.Word, Hint: w.Hint}
		}
		l.Words = words
		if err := s.lists.InsertList(ctx, &l); err != nil {
			return nil, err
		}
		ids[oldID] = l.ID
		stats.Lists++
	}
	return ids, nil
}

func (s *BackupService) importStudents(ctx context.Context, students []models.Student, teacherIDs map[int64]int64, stats *ImportStats) (map[int64]int64, error) {
	ids := make(map[int64]int64, len(students))
	for _, st := range students {
		existing, err := s.students.GetStudentByCode(ctx, st.StudentCode)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			ids[st.ID] = existing.ID
			stats.Skipped++
			continue
		}
		oldID := st.ID
		st.TeacherID = remapID(st.TeacherID, teacherIDs)
		if err := s.students.InsertStudent(ctx, &st); err != nil {
			return nil, err
		}
		ids[oldID] = st.ID
		stats.Students++
	}
	return ids, nil
}

func (s *BackupService) importSessions(ctx context.Context, sessions []models.TrainingSession, listIDs, studentIDs map[int64]int64, stats *ImportStats) error {
	for _, session := range sessions {
		existing, err := s.sessions.GetSession(ctx, session.ID)
		if err != nil {
			return err
		}
		listID, ok := listIDs[session.ListID]
		if existing != nil || !ok {
			if !ok {
				log.Printf("Warning: skipping session %s: list %d not in backup", session.ID, session.ListID)
			}
			stats.Skipped++
			continue
		}
		session.ListID = listID
		session.StudentID = remapID(session.StudentID, studentIDs)
		for i := range session.Attempts {
			session.Attempts[i].ID = 0
		}
		if err := s.sessions.RecordSession(ctx, &session); err != nil {
			return err
		}
		stats.Sessions++
	}
	return nil
}

// remapID translates a nullable foreign key. Unknown IDs become nil.
func remapID(id *int64, ids map[int64]int64) *int64 {
	if id == nil {
		return nil
	}
	mapped, ok := ids[*id]
	if !ok {
		return nil
	}
	return &mapped
}
