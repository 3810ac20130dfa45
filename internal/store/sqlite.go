package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"storysmith/internal/core"
)

// SQLite persists stories in a single SQLite database file.
type SQLite struct {
	db   *sql.DB
	path string
}

// NewSQLite opens (creating if needed) the database at path.
func NewSQLite(path string) (*SQLite, error) {
	if path == "" {
		path = filepath.Join(".storysmith", "storysmith.db")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &SQLite{db: db, path: path}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return s, nil
}

// initialize creates the stories table
func (s *SQLite) initialize() error {
	storiesTable := `
	CREATE TABLE IF NOT EXISTS stories (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		category TEXT NOT NULL,
		title TEXT NOT NULL,
		complexity INTEGER,
		fields TEXT,
		generated_body TEXT NOT NULL DEFAULT '',
		created_at TEXT,
		updated_at TEXT
	);`

	if _, err := s.db.Exec(storiesTable); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	return nil
}

// Path returns the database file location.
func (s *SQLite) Path() string { return s.path }

// Close closes the database connection
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Add stores a new story. Adding an ID twice is an error.
func (s *SQLite) Add(ctx context.Context, story core.Story) error {
	fields, err := json.Marshal(story.Form())
	if err != nil {
		return fmt.Errorf("failed to encode story fields: %w", err)
	}

	query := `
	INSERT INTO stories
	(id, category, title, complexity, fields, generated_body, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = s.db.ExecContext(ctx, query,
		story.ID,
		string(story.Category),
		story.Title,
		story.Complexity,
		string(fields),
		story.Body,
		formatTime(story.CreatedAt),
		formatTime(story.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert story %s: %w", story.ID, err)
	}
	return nil
}

const selectStory = `
	SELECT id, fields, generated_body, created_at, updated_at
	FROM stories`

// Get retrieves a story by ID.
func (s *SQLite) Get(ctx context.Context, id string) (core.Story, error) {
	row := s.db.QueryRowContext(ctx, selectStory+" WHERE id = ?", id)
	story, err := scanStory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Story{}, ErrNotFound
	}
	return story, err
}

// List returns every stored story, oldest first.
func (s *SQLite) List(ctx context.Context) ([]core.Story, error) {
	rows, err := s.db.QueryContext(ctx, selectStory+" ORDER BY seq")
	if err != nil {
		return nil, fmt.Errorf("failed to query stories: %w", err)
	}
	defer rows.Close()

	stories := []core.Story{}
	for rows.Next() {
		story, err := scanStory(rows)
		if err != nil {
			return nil, err
		}
		stories = append(stories, story)
	}
	return stories, rows.Err()
}

// UpdateBody rewrites a story's document and stamps updated_at.
func (s *SQLite) UpdateBody(ctx context.Context, id, body string, now time.Time) (core.Story, error) {
	res, err := s.db.ExecContext(ctx,
		"UPDATE stories SET generated_body = ?, updated_at = ? WHERE id = ?",
		body, formatTime(now), id)
	if err != nil {
		return core.Story{}, fmt.Errorf("failed to update story %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.Story{}, ErrNotFound
	}
	return s.Get(ctx, id)
}

// Delete removes a story.
func (s *SQLite) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM stories WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete story %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanStory(row scanner) (core.Story, error) {
	var (
		id, fields, body     string
		createdAt, updatedAt sql.NullString
	)
	if err := row.Scan(&id, &fields, &body, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Story{}, err
		}
		return core.Story{}, fmt.Errorf("failed to scan story: %w", err)
	}

	var form core.FormSubmission
	if err := json.Unmarshal([]byte(fields), &form); err != nil {
		return core.Story{}, fmt.Errorf("failed to decode fields of story %s: %w", id, err)
	}

	story := storyFromForm(id, form, body)
	story.CreatedAt = parseTime(createdAt)
	story.UpdatedAt = parseTime(updatedAt)
	return story, nil
}

// storyFromForm rebuilds a story from its stored form fields.
func storyFromForm(id string, form core.FormSubmission, body string) core.Story {
	return core.Story{
		ID:         id,
		Category:   form.Category,
		Title:      form.Title,
		Objectives: form.Objectives,
		Complexity: form.Complexity,
		Business:   form.Business,
		Spike:      form.Spike,
		Kaizen:     form.Kaizen,
		Fix:        form.Fix,
		Body:       body,
	}
}

// Timestamps are stored as RFC 3339 text with nanoseconds; the zero time is stored as NULL.
func formatTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s sql.NullString) time.Time {
	if !s.Valid {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s.String)
	if err != nil {
		return time.Time{}
	}
	return t
}
