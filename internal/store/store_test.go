package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"storysmith/internal/core"
)

var created = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func businessStory(title string) core.Story {
	return core.NewStory(core.FormSubmission{
		Category:   core.CategoryBusiness,
		Title:      title,
		Objectives: core.Objectives{Actor: "cliente", Goal: "login"},
		Complexity: 5,
		Business: core.BusinessFields{
			BusinessRules:      []string{"Rule A"},
			AcceptanceCriteria: []string{"CA1", "CA2"},
			IsAPI:              true,
			APISpec:            &core.APISpec{Method: "get", Endpoint: "/users", QueryParams: "page"},
		},
	}, "## "+title+"\n\n### Contexto\n\nTexto.", created)
}

func fixStory() core.Story {
	return core.NewStory(core.FormSubmission{
		Category:   core.CategoryFix,
		Title:      "Checkout 500",
		Complexity: 3,
		Fix: core.FixFields{
			Description: "Erro 500 no checkout",
			Severity:    "Alta",
			Environment: "Produção",
			Attachments: []core.Attachment{{Name: "tela.png", MediaType: "image/png", Data: "aGVsbG8="}},
		},
	}, "## Checkout 500", created)
}

// repositories returns one fresh instance of every backend.
func repositories(t *testing.T) map[string]Repository {
	t.Helper()
	db, err := NewSQLite(filepath.Join(t.TempDir(), "stories.db"))
	if err != nil {
		t.Fatalf("NewSQLite failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	repos := map[string]Repository{
		"sqlite":  db,
		"session": NewSession(),
	}

	// Postgres runs only against a disposable database.
	if dsn := os.Getenv("STORYSMITH_TEST_POSTGRES_DSN"); dsn != "" {
		pg, err := NewPostgres(dsn)
		if err != nil {
			t.Fatalf("NewPostgres failed: %v", err)
		}
		if _, err := pg.db.Exec("TRUNCATE stories"); err != nil {
			t.Fatalf("Failed to reset stories table: %v", err)
		}
		t.Cleanup(func() { _ = pg.Close() })
		repos["postgres"] = pg
	}
	return repos
}

func TestOpen_PostgresUnreachable(t *testing.T) {
	if _, err := Open(DriverPostgres, "postgres://nobody@127.0.0.1:1/none?sslmode=disable&connect_timeout=1"); err == nil {
		t.Fatal("Expected error for unreachable database")
	}
}

func TestNewSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "storysmith.db")

	db, err := NewSQLite(path)
	if err != nil {
		t.Fatalf("NewSQLite failed: %v", err)
	}
	defer func() { _ = db.Close() }()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("Database file should be created")
	}
	if db.Path() != path {
		t.Errorf("Expected path %s, got %s", path, db.Path())
	}
}

func TestNewSQLite_InvalidDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	file := filepath.Join(tmpDir, "file.txt")
	_ = os.WriteFile(file, []byte("test"), 0644)

	if _, err := NewSQLite(filepath.Join(file, "storysmith.db")); err == nil {
		t.Error("Expected error when the data directory is a file")
	}
}

func TestRepository_AddGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			for _, story := range []core.Story{businessStory("Login"), fixStory()} {
				if err := repo.Add(ctx, story); err != nil {
					t.Fatalf("Add failed: %v", err)
				}
				got, err := repo.Get(ctx, story.ID)
				if err != nil {
					t.Fatalf("Get failed: %v", err)
				}
				if !reflect.DeepEqual(story.Record(), got.Record()) {
					t.Errorf("Record mismatch:\nwant %v\ngot  %v", story.Record(), got.Record())
				}
				if !got.CreatedAt.Equal(created) {
					t.Errorf("Expected created_at %v, got %v", created, got.CreatedAt)
				}
			}
		})
	}
}

func TestSQLite_KeepsAttachmentPayloads(t *testing.T) {
	db, err := NewSQLite(filepath.Join(t.TempDir(), "stories.db"))
	if err != nil {
		t.Fatalf("NewSQLite failed: %v", err)
	}
	defer func() { _ = db.Close() }()

	story := fixStory()
	if err := db.Add(context.Background(), story); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	got, err := db.Get(context.Background(), story.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(got.Fix.Attachments) != 1 || got.Fix.Attachments[0].Data != "aGVsbG8=" {
		t.Errorf("Expected attachment payload to survive, got %+v", got.Fix.Attachments)
	}
}

func TestSQLite_DuplicateID(t *testing.T) {
	db, err := NewSQLite(filepath.Join(t.TempDir(), "stories.db"))
	if err != nil {
		t.Fatalf("NewSQLite failed: %v", err)
	}
	defer func() { _ = db.Close() }()

	story := businessStory("Login")
	if err := db.Add(context.Background(), story); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := db.Add(context.Background(), story); err == nil {
		t.Error("Expected error when adding the same ID twice")
	}
}

func TestRepository_ListPreservesOrder(t *testing.T) {
	ctx := context.Background()
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			empty, err := repo.List(ctx)
			if err != nil {
				t.Fatalf("List failed: %v", err)
			}
			if len(empty) != 0 {
				t.Fatalf("Expected empty list, got %d", len(empty))
			}

			titles := []string{"First", "Second", "Third"}
			for _, title := range titles {
				if err := repo.Add(ctx, businessStory(title)); err != nil {
					t.Fatalf("Add failed: %v", err)
				}
			}

			stories, err := repo.List(ctx)
			if err != nil {
				t.Fatalf("List failed: %v", err)
			}
			if len(stories) != len(titles) {
				t.Fatalf("Expected %d stories, got %d", len(titles), len(stories))
			}
			for i, title := range titles {
				if stories[i].Title != title {
					t.Errorf("Expected story %d to be %q, got %q", i, title, stories[i].Title)
				}
			}
		})
	}
}

func TestRepository_UpdateBody(t *testing.T) {
	ctx := context.Background()
	updated := created.Add(time.Hour)

	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			story := businessStory("Login")
			if err := repo.Add(ctx, story); err != nil {
				t.Fatalf("Add failed: %v", err)
			}

			got, err := repo.UpdateBody(ctx, story.ID, "## Login\n\nnovo", updated)
			if err != nil {
				t.Fatalf("UpdateBody failed: %v", err)
			}
			if got.Body != "## Login\n\nnovo" {
				t.Errorf("Expected rewritten body, got %q", got.Body)
			}
			if !got.UpdatedAt.Equal(updated) {
				t.Errorf("Expected updated_at %v, got %v", updated, got.UpdatedAt)
			}
			if !got.CreatedAt.Equal(created) {
				t.Errorf("created_at must not change, got %v", got.CreatedAt)
			}

			reloaded, _ := repo.Get(ctx, story.ID)
			if reloaded.Body != got.Body {
				t.Errorf("Expected stored body %q, got %q", got.Body, reloaded.Body)
			}

			if _, err := repo.UpdateBody(ctx, "missing", "x", updated); !errors.Is(err, ErrNotFound) {
				t.Errorf("Expected ErrNotFound, got %v", err)
			}
		})
	}
}

func TestRepository_Delete(t *testing.T) {
	ctx := context.Background()
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			story := businessStory("Login")
			_ = repo.Add(ctx, story)

			if err := repo.Delete(ctx, story.ID); err != nil {
				t.Fatalf("Delete failed: %v", err)
			}
			if _, err := repo.Get(ctx, story.ID); !errors.Is(err, ErrNotFound) {
				t.Errorf("Expected ErrNotFound after delete, got %v", err)
			}
			if err := repo.Delete(ctx, story.ID); !errors.Is(err, ErrNotFound) {
				t.Errorf("Expected ErrNotFound deleting twice, got %v", err)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	ctx := context.Background()
	repo := NewSession()

	a := businessStory("A")
	a.ID = "abc123"
	b := businessStory("B")
	b.ID = "abd456"
	_ = repo.Add(ctx, a)
	_ = repo.Add(ctx, b)

	tests := []struct {
		ref     string
		wantID  string
		wantErr error
	}{
		{ref: "abc123", wantID: "abc123"},
		{ref: "abd", wantID: "abd456"},
		{ref: "ab", wantErr: ErrAmbiguous},
		{ref: "zzz", wantErr: ErrNotFound},
		{ref: "  ", wantErr: ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			got, err := Resolve(ctx, repo, tt.ref)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve failed: %v", err)
			}
			if got.ID != tt.wantID {
				t.Errorf("Expected %s, got %s", tt.wantID, got.ID)
			}
		})
	}
}

func TestOpen(t *testing.T) {
	repo, err := Open("memory", "")
	if err != nil {
		t.Fatalf("Open(memory) failed: %v", err)
	}
	if _, ok := repo.(*Session); !ok {
		t.Errorf("Expected *Session, got %T", repo)
	}

	repo, err = Open("sqlite", filepath.Join(t.TempDir(), "s.db"))
	if err != nil {
		t.Fatalf("Open(sqlite) failed: %v", err)
	}
	defer func() { _ = repo.Close() }()
	if _, ok := repo.(*SQLite); !ok {
		t.Errorf("Expected *SQLite, got %T", repo)
	}

	if _, err := Open("postgres", ""); err == nil {
		t.Error("Expected error for unknown driver")
	}
}
