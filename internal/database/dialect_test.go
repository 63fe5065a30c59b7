package database

import (
	"testing"

	sq "github.com/Masterminds/squirrel"
)

func TestDialects(t *testing.T) {
	tests := []struct {
		name            string
		dialect         Dialect
		driver          string
		lastInsertID    bool
		migrationSubdir string
		placeholder     sq.PlaceholderFormat
	}{
		{"SQLite", NewSQLiteDialect(), "sqlite3", true, "sqlite", sq.Question},
		{"PostgreSQL", NewPostgresDialect(), "postgres", false, "postgres", sq.Dollar},
		{"MySQL", NewMySQLDialect(), "mysql", true, "mysql", sq.Question},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.dialect.DriverName(); got != tt.driver {
				t.Errorf("DriverName() = %v, want %v", got, tt.driver)
			}
			if got := tt.dialect.SupportsLastInsertId(); got != tt.lastInsertID {
				t.Errorf("SupportsLastInsertId() = %v, want %v", got, tt.lastInsertID)
			}
			if got := tt.dialect.MigrationsSubdir(); got != tt.migrationSubdir {
				t.Errorf("MigrationsSubdir() = %v, want %v", got, tt.migrationSubdir)
			}
			if got := tt.dialect.Placeholder(); got != tt.placeholder {
				t.Errorf("Placeholder() = %T, want %T", got, tt.placeholder)
			}
		})
	}
}

func TestDialectFor(t *testing.T) {
	for _, name := range []string{"sqlite", "sqlite3", "", "postgres", "postgresql", "mysql"} {
		if _, ok := DialectFor(name); !ok {
			t.Errorf("DialectFor(%q) not found", name)
		}
	}
	if _, ok := DialectFor("oracle"); ok {
		t.Error("DialectFor(oracle) should not resolve")
	}
}

func TestRewriteQuery(t *testing.T) {
	tests := []struct {
		name     string
		dialect  Dialect
		query    string
		expected string
	}{
		{
			name:     "SQLite no change",
			dialect:  NewSQLiteDialect(),
			query:    "SELECT * FROM word_lists WHERE share_code = ?",
			expected: "SELECT * FROM word_lists WHERE share_code = ?",
		},
		{
			name:     "PostgreSQL single placeholder",
			dialect:  NewPostgresDialect(),
			query:    "SELECT * FROM word_lists WHERE share_code = ?",
			expected: "SELECT * FROM word_lists WHERE share_code = $1",
		},
		{
			name:     "PostgreSQL multiple placeholders",
			dialect:  NewPostgresDialect(),
			query:    "INSERT INTO words (list_id, word, position) VALUES (?, ?, ?)",
			expected: "INSERT INTO words (list_id, word, position) VALUES ($1, $2, $3)",
		},
		{
			name:     "MySQL no change",
			dialect:  NewMySQLDialect(),
			query:    "UPDATE word_lists SET title = ? WHERE id = ?",
			expected: "UPDATE word_lists SET title = ? WHERE id = ?",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := tt.dialect.RewriteQuery(tt.query); result != tt.expected {
				t.Errorf("RewriteQuery() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestInsertIgnoreQuery(t *testing.T) {
	tests := []struct {
		dialect  Dialect
		expected string
	}{
		{NewSQLiteDialect(), "INSERT OR IGNORE INTO blocked_words (word) VALUES (?)"},
		{NewPostgresDialect(), "INSERT INTO blocked_words (word) VALUES (?) ON CONFLICT DO NOTHING"},
		{NewMySQLDialect(), "INSERT IGNORE INTO blocked_words (word) VALUES (?)"},
	}
	for _, tt := range tests {
		if got := tt.dialect.InsertIgnoreQuery("blocked_words", "word"); got != tt.expected {
			t.Errorf("InsertIgnoreQuery() = %q, want %q", got, tt.expected)
		}
	}
}

func TestMySQLDSNParsesTime(t *testing.T) {
	d := NewMySQLDialect()
	tests := map[string]string{
		"user:pw@tcp(db:3306)/app":                 "user:pw@tcp(db:3306)/app?parseTime=true",
		"user:pw@tcp(db:3306)/app?charset=utf8mb4": "user:pw@tcp(db:3306)/app?charset=utf8mb4&parseTime=true",
		"user:pw@tcp(db:3306)/app?parseTime=false": "user:pw@tcp(db:3306)/app?parseTime=false",
	}
	for in, want := range tests {
		if got := d.DSN(DialectConfig{URL: in}); got != want {
			t.Errorf("DSN(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSplitStatements(t *testing.T) {
	stmts := splitStatements("-- comment\nCREATE TABLE a (id INT);\n\nCREATE TABLE b (id INT);\n")
	if len(stmts) != 2 {
		t.Fatalf("got %d statements, want 2: %q", len(stmts), stmts)
	}
	if stmts[0] != "CREATE TABLE a (id INT)" {
		t.Errorf("first statement = %q", stmts[0])
	}
}

func TestSQLiteDSNEnablesForeignKeys(t *testing.T) {
	d := NewSQLiteDialect()
	if got := d.DSN(DialectConfig{Path: "app.db"}); got != "app.db?_foreign_keys=on&_busy_timeout=5000" {
		t.Errorf("DSN() = %q", got)
	}
	if got := d.DSN(DialectConfig{Path: "file:app.db?mode=ro"}); got != "file:app.db?mode=ro" {
		t.Errorf("DSN() with explicit options = %q", got)
	}
}
