package service

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"dicteeclash/internal/database"
	"dicteeclash/internal/extract"
	"dicteeclash/internal/models"
	"dicteeclash/internal/observe"
	"dicteeclash/internal/repository"
	"dicteeclash/internal/security"
	"dicteeclash/internal/textgen"
	"dicteeclash/internal/validation"
	"dicteeclash/internal/wordlist"
)

type testEnv struct {
	db       *database.DB
	auth     *AuthService
	lists    *ListService
	students *StudentService
	sessions *SessionService
	imports  *ImportService
	drills   *DrillService
}

func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.Initialize(filepath.Join(t.TempDir(), "service.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.RunMigrations(context.Background(), database.MigrationsFS("")); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return db
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)

	tokens, err := security.NewTokenIssuer("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenIssuer() error = %v", err)
	}

	teacherRepo := repository.NewTeacherRepository(db)
	listRepo := repository.NewListRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	metrics := observe.Noop()

	lists := NewListService(listRepo, nil)
	return &testEnv{
		db:       db,
		auth:     NewAuthService(teacherRepo, tokens, nil),
		lists:    lists,
		students: NewStudentService(studentRepo, db),
		sessions: NewSessionService(sessionRepo, studentRepo, lists),
		imports:  NewImportService(wordlist.DefaultDetector(), metrics),
		drills:   NewDrillService(lists, textgen.DefaultLibrary(), nil, nil, metrics),
	}
}

func (e *testEnv) registerTeacher(t *testing.T, email string) *models.Teacher {
	t.Helper()
	res, err := e.auth.Register(context.Background(), email, "motdepasse", "Mme Martin")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	return res.Teacher
}

func TestAuthService(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	res, err := env.auth.Register(ctx, "Prof@Ecole.fr", "motdepasse", "Mme Martin")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if res.Token == "" || res.Teacher.ID == 0 {
		t.Fatalf("Register() = %+v, want token and ID", res)
	}

	if _, err := env.auth.Register(ctx, "prof@ecole.fr", "autremotdepasse", "M. Petit"); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("Register() duplicate error = %v, want ErrEmailTaken", err)
	}

	var vErr validation.ValidationError
	if _, err := env.auth.Register(ctx, "autre@ecole.fr", "court", "M. Petit"); !errors.As(err, &vErr) {
		t.Errorf("Register() short password error = %v, want ValidationError", err)
	}

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{"valid", "prof@ecole.fr", "motdepasse", nil},
		{"email case ignored", "PROF@ECOLE.FR", "motdepasse", nil},
		{"wrong password", "prof@ecole.fr", "mauvais", ErrInvalidCredentials},
		{"unknown email", "inconnu@ecole.fr", "motdepasse", ErrInvalidCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			login, err := env.auth.Login(ctx, tt.email, tt.password)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Login() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			teacher, err := env.auth.Authenticate(ctx, login.Token)
			if err != nil {
				t.Fatalf("Authenticate() error = %v", err)
			}
			if teacher.ID != res.Teacher.ID {
				t.Errorf("Authenticate() teacher = %d, want %d", teacher.ID, res.Teacher.ID)
			}
		})
	}

	if _, err := env.auth.Authenticate(ctx, "not-a-token"); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("Authenticate() garbage error = %v, want ErrUnauthorized", err)
	}
}

func TestAuthServiceOAuthLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	existing := env.registerTeacher(t, "prof@ecole.fr")

	linked, err := env.auth.OAuthLogin(ctx, "google", "sub-1", "prof@ecole.fr", "")
	if err != nil {
		t.Fatalf("OAuthLogin() link error = %v", err)
	}
	if linked.Teacher.ID != existing.ID {
		t.Errorf("OAuthLogin() linked teacher %d, want %d", linked.Teacher.ID, existing.ID)
	}

	again, err := env.auth.OAuthLogin(ctx, "google", "sub-1", "ignored@ecole.fr", "")
	if err != nil {
		t.Fatalf("OAuthLogin() repeat error = %v", err)
	}
	if again.Teacher.ID != existing.ID {
		t.Errorf("OAuthLogin() repeat teacher %d, want %d", again.Teacher.ID, existing.ID)
	}

	created, err := env.auth.OAuthLogin(ctx, "google", "sub-2", "nouveau@ecole.fr", "")
	if err != nil {
		t.Fatalf("OAuthLogin() create error = %v", err)
	}
	if created.Teacher.Name != "nouveau" || created.Teacher.HasPassword() {
		t.Errorf("OAuthLogin() created %+v", created.Teacher)
	}

	if _, err := env.auth.OAuthLogin(ctx, "", "", "x@ecole.fr", ""); err == nil {
		t.Error("OAuthLogin() without provider should fail")
	}
}

func TestListService(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.registerTeacher(t, "owner@ecole.fr")
	other := env.registerTeacher(t, "other@ecole.fr")

	tests := []struct {
		name    string
		title   string
		mode    models.ListMode
		words   []string
		wantErr error
	}{
		{"default mode", "Les animaux", "", []string{"chat", " chien ", ""}, nil},
		{"bad mode", "Les animaux", "karaoke", []string{"chat"}, ErrInvalidMode},
		{"only blanks", "Les animaux", models.ListModeAudio, []string{" ", ""}, ErrEmptyList},
		{"nil words", "Les animaux", models.ListModeAudio, nil, ErrEmptyList},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.lists.CreateList(ctx, &owner.ID, tt.title, "", tt.mode, tt.words)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("CreateList() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if _, err := env.lists.CreateList(ctx, nil, "  ", "", "", []string{"chat"}); err == nil {
		t.Error("CreateList() with blank title should fail")
	}

	list, err := env.lists.CreateList(ctx, &owner.ID, "Les animaux", "CE1", "", []string{"chat", " chien ", ""})
	if err != nil {
		t.Fatalf("CreateList() error = %v", err)
	}
	if list.Mode != models.ListModeFlashcard {
		t.Errorf("mode = %q, want flashcard", list.Mode)
	}
	if got := strings.Join(list.WordTexts(), ","); got != "chat,chien" {
		t.Errorf("words = %q, want chat,chien", got)
	}

	found, err := env.lists.GetByCode(ctx, strings.ToLower(list.ShareCode))
	if err != nil || found.ID != list.ID {
		t.Fatalf("GetByCode() = %v, %v", found, err)
	}
	if _, err := env.lists.GetByCode(ctx, "NOPE00"); !errors.Is(err, ErrListNotFound) {
		t.Errorf("GetByCode() missing error = %v, want ErrListNotFound", err)
	}

	if _, err := env.lists.ReplaceWords(ctx, other.ID, list.ID, []string{"loup"}); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("ReplaceWords() by non-owner error = %v, want ErrUnauthorized", err)
	}
	updated, err := env.lists.ReplaceWords(ctx, owner.ID, list.ID, []string{"loup", "renard"})
	if err != nil {
		t.Fatalf("ReplaceWords() error = %v", err)
	}
	if got := strings.Join(updated.WordTexts(), ","); got != "loup,renard" {
		t.Errorf("replaced words = %q", got)
	}

	if _, err := env.lists.UpdateList(ctx, owner.ID, list.ID, "La forêt", "", models.ListModeProgression); err != nil {
		t.Fatalf("UpdateList() error = %v", err)
	}

	mine, err := env.lists.ListsForTeacher(ctx, owner.ID)
	if err != nil || len(mine) != 1 || mine[0].Title != "La forêt" {
		t.Fatalf("ListsForTeacher() = %+v, %v", mine, err)
	}

	if err := env.lists.ShareList(ctx, owner.ID, list.ID, "parent@ecole.fr"); !errors.Is(err, ErrEmailDisabled) {
		t.Errorf("ShareList() error = %v, want ErrEmailDisabled", err)
	}

	if err := env.lists.DeleteList(ctx, other.ID, list.ID); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("DeleteList() by non-owner error = %v, want ErrUnauthorized", err)
	}
	if err := env.lists.DeleteList(ctx, owner.ID, list.ID); err != nil {
		t.Fatalf("DeleteList() error = %v", err)
	}
	if err := env.lists.DeleteList(ctx, owner.ID, list.ID); !errors.Is(err, ErrListNotFound) {
		t.Errorf("DeleteList() twice error = %v, want ErrListNotFound", err)
	}
}

func TestAnonymousListIsReadOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	teacher := env.registerTeacher(t, "prof@ecole.fr")

	list, err := env.lists.CreateList(ctx, nil, "Anonyme", "", models.ListModeAudio, []string{"chat"})
	if err != nil {
		t.Fatalf("CreateList() error = %v", err)
	}
	if _, err := env.lists.ReplaceWords(ctx, teacher.ID, list.ID, []string{"chien"}); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("ReplaceWords() on anonymous list error = %v, want ErrUnauthorized", err)
	}
}

func TestStudentService(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if _, err := env.db.LoadBlockedWords(ctx, strings.NewReader("zut\n")); err != nil {
		t.Fatalf("LoadBlockedWords() error = %v", err)
	}

	student, err := env.students.CreateStudent(ctx, nil, "Léa Dupont")
	if err != nil {
		t.Fatalf("CreateStudent() error = %v", err)
	}
	if !strings.HasPrefix(student.StudentCode, "LEADU-") {
		t.Errorf("StudentCode = %q, want LEADU- prefix", student.StudentCode)
	}

	found, err := env.students.GetByCode(ctx, strings.ToLower(student.StudentCode))
	if err != nil || found.ID != student.ID {
		t.Errorf("GetByCode() = %v, %v", found, err)
	}

	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"blocked word", "Zut Alors", ErrNameRejected},
		{"unknown code", "", ErrStudentNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var err error
			if tt.input != "" {
				_, err = env.students.CreateStudent(ctx, nil, tt.input)
			} else {
				_, err = env.students.GetByCode(ctx, "NOBODY-0000")
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSessionService(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	list, err := env.lists.CreateList(ctx, nil, "Dictée", "", models.ListModeAudio, []string{"chat", "maison", "école"})
	if err != nil {
		t.Fatalf("CreateList() error = %v", err)
	}

	session := &models.TrainingSession{
		StudentName:      " Élodie ",
		ModeUsed:         models.DrillBlanks,
		TimeSpentSeconds: 90,
		Attempts: []models.WordAttempt{
			{Word: "chat", UserAnswer: "chat", IsCorrect: true},
			{Word: "maison", UserAnswer: "maizon", IsCorrect: false},
			{Word: "école", UserAnswer: "école", IsCorrect: true},
		},
	}
	if err := env.sessions.Record(ctx, list.ShareCode, session); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if session.ID == "" || session.TotalWords != 3 || session.CorrectWords != 2 || session.Percentage != 67 {
		t.Errorf("recorded session = %+v", session)
	}
	if got := session.FinishedAt.Sub(session.StartedAt); got != 90*time.Second {
		t.Errorf("duration = %v, want 90s", got)
	}

	bad := &models.TrainingSession{StudentName: "Élodie", ModeUsed: "karaoke", TotalWords: 1}
	if err := env.sessions.Record(ctx, list.ShareCode, bad); !errors.Is(err, ErrInvalidSession) {
		t.Errorf("Record() invalid error = %v, want ErrInvalidSession", err)
	}
	if err := env.sessions.Record(ctx, "ZZZZZZ", &models.TrainingSession{ModeUsed: models.DrillAudio, TotalWords: 1}); !errors.Is(err, ErrListNotFound) {
		t.Errorf("Record() unknown list error = %v, want ErrListNotFound", err)
	}

	history, err := env.sessions.History(ctx, HistoryQuery{ListCode: list.ShareCode, StudentName: "élodie"})
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(history) != 1 || history[0].ID != session.ID {
		t.Errorf("History() = %+v", history)
	}
	if _, err := env.sessions.History(ctx, HistoryQuery{StudentCode: "NOBODY-0000"}); !errors.Is(err, ErrStudentNotFound) {
		t.Errorf("History() unknown student error = %v, want ErrStudentNotFound", err)
	}

	attempts, err := env.sessions.Attempts(ctx, session.ID)
	if err != nil {
		t.Fatalf("Attempts() error = %v", err)
	}
	if len(attempts) != 3 || attempts[1].UserAnswer != "maizon" {
		t.Errorf("Attempts() = %+v", attempts)
	}
	if _, err := env.sessions.Attempts(ctx, "missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Attempts() missing error = %v, want ErrSessionNotFound", err)
	}
}

func TestImportService(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tests := []struct {
		name       string
		filename   string
		content    string
		wantWords  string
		wantNotice bool
		wantErr    error
	}{
		{"plain list", "mots.txt", "chat\nmaison\nécole\n", "chat,maison,école", false, nil},
		{"nothing usable", "mots.txt", "123\n456\n", "", true, nil},
		{"unsupported", "mots.xls", "chat", "", false, extract.ErrUnsupportedFormat},
		{"broken docx", "mots.docx", "not a zip", "", false, extract.ErrInvalidDocument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := strings.NewReader(tt.content)
			report, err := env.imports.Import(ctx, tt.filename, r, r.Size())
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Import() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			if got := strings.Join(report.Words, ","); got != tt.wantWords {
				t.Errorf("Words = %q, want %q", got, tt.wantWords)
			}
			if (report.Notice != "") != tt.wantNotice {
				t.Errorf("Notice = %q, want notice %v", report.Notice, tt.wantNotice)
			}
		})
	}
}
