// Package store keeps generated stories for the current session and, optionally, on disk.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"storysmith/internal/core"
)

// ErrNotFound is returned when no story matches the requested ID.
var ErrNotFound = errors.New("story not found")

// ErrAmbiguous is returned by Resolve when an ID prefix matches more than one story.
var ErrAmbiguous = errors.New("story reference is ambiguous")

// Repository is the story collection the assembler appends to. List returns stories in creation order.
type Repository interface {
	Add(ctx context.Context, story core.Story) error
	Get(ctx context.Context, id string) (core.Story, error)
	List(ctx context.Context) ([]core.Story, error)
	UpdateBody(ctx context.Context, id, body string, now time.Time) (core.Story, error)
	Delete(ctx context.Context, id string) error
	Close() error
}

// Drivers accepted by Open.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Open returns the repository for driver. location is the SQLite database file or the Postgres DSN,
// and is ignored for memory.
func Open(driver, location string) (Repository, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case DriverMemory:
		return NewSession(), nil
	case DriverPostgres:
		db, err := NewPostgres(location)
		if err != nil {
			return nil, err
		}
		return db, nil
	case "", DriverSQLite:
		db, err := NewSQLite(location)
		if err != nil {
			return nil, err
		}
		return db, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", driver)
}

// Resolve finds a story by full ID or by a unique ID prefix.
func Resolve(ctx context.Context, repo Repository, ref string) (core.Story, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return core.Story{}, ErrNotFound
	}
	if s, err := repo.Get(ctx, ref); err == nil {
		return s, nil
	} else if !errors.Is(err, ErrNotFound) {
		return core.Story{}, err
	}

	stories, err := repo.List(ctx)
	if err != nil {
		return core.Story{}, err
	}
	var match *core.Story
	for i := range stories {
		if strings.HasPrefix(stories[i].ID, ref) {
			if match != nil {
				return core.Story{}, fmt.Errorf("%w: %q", ErrAmbiguous, ref)
			}
			match = &stories[i]
		}
	}
	if match == nil {
		return core.Story{}, ErrNotFound
	}
	return *match, nil
}
