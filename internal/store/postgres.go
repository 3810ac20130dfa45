package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq" // Postgres driver

	"storysmith/internal/core"
)

// Postgres persists stories in a shared PostgreSQL database, for teams running one API server.
type Postgres struct {
	db *sql.DB
}

// NewPostgres connects to the database described by dsn and creates the stories table.
func NewPostgres(dsn string) (*Postgres, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	p := &Postgres{db: db}
	if err := p.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return p, nil
}

func (p *Postgres) migrate(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, `
	CREATE TABLE IF NOT EXISTS stories (
		seq BIGSERIAL PRIMARY KEY,
		id TEXT NOT NULL UNIQUE,
		category TEXT NOT NULL,
		title TEXT NOT NULL,
		complexity INTEGER,
		fields JSONB NOT NULL,
		generated_body TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ,
		updated_at TIMESTAMPTZ
	)`)
	return err
}

func (p *Postgres) Close() error {
	return p.db.Close()
}

// Add stores a new story. Adding an ID twice is an error.
func (p *Postgres) Add(ctx context.Context, story core.Story) error {
	fields, err := json.Marshal(story.Form())
	if err != nil {
		return fmt.Errorf("failed to encode story fields: %w", err)
	}

	_, err = p.db.ExecContext(ctx, `
	INSERT INTO stories (id, category, title, complexity, fields, generated_body, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		story.ID,
		string(story.Category),
		story.Title,
		story.Complexity,
		fields,
		story.Body,
		nullTime(story.CreatedAt),
		nullTime(story.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert story %s: %w", story.ID, err)
	}
	return nil
}

// Get retrieves a story by ID.
func (p *Postgres) Get(ctx context.Context, id string) (core.Story, error) {
	row := p.db.QueryRowContext(ctx, selectStory+" WHERE id = $1", id)
	story, err := scanPostgresStory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Story{}, ErrNotFound
	}
	return story, err
}

// List returns every stored story, oldest first.
func (p *Postgres) List(ctx context.Context) ([]core.Story, error) {
	rows, err := p.db.QueryContext(ctx, selectStory+" ORDER BY seq")
	if err != nil {
		return nil, fmt.Errorf("failed to query stories: %w", err)
	}
	defer rows.Close()

	stories := []core.Story{}
	for rows.Next() {
		story, err := scanPostgresStory(rows)
		if err != nil {
			return nil, err
		}
		stories = append(stories, story)
	}
	return stories, rows.Err()
}

// UpdateBody rewrites a story's document and stamps updated_at.
func (p *Postgres) UpdateBody(ctx context.Context, id, body string, now time.Time) (core.Story, error) {
	res, err := p.db.ExecContext(ctx,
		"UPDATE stories SET generated_body = $1, updated_at = $2 WHERE id = $3",
		body, nullTime(now), id)
	if err != nil {
		return core.Story{}, fmt.Errorf("failed to update story %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.Story{}, ErrNotFound
	}
	return p.Get(ctx, id)
}

// Delete removes a story.
func (p *Postgres) Delete(ctx context.Context, id string) error {
	res, err := p.db.ExecContext(ctx, "DELETE FROM stories WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete story %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanPostgresStory(row scanner) (core.Story, error) {
	var (
		id, body             string
		fields               []byte
		createdAt, updatedAt sql.NullTime
	)
	if err := row.Scan(&id, &fields, &body, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Story{}, err
		}
		return core.Story{}, fmt.Errorf("failed to scan story: %w", err)
	}

	var form core.FormSubmission
	if err := json.Unmarshal(fields, &form); err != nil {
		return core.Story{}, fmt.Errorf("failed to decode fields of story %s: %w", id, err)
	}

	story := storyFromForm(id, form, body)
	if createdAt.Valid {
		story.CreatedAt = createdAt.Time.UTC()
	}
	if updatedAt.Valid {
		story.UpdatedAt = updatedAt.Time.UTC()
	}
	return story, nil
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t.UTC(), Valid: !t.IsZero()}
}
