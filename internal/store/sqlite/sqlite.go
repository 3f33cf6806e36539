// Package sqlite stores bookmarks in a local SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"

	"github.com/MrSnakeDoc/shelf/internal/domain"
	"github.com/MrSnakeDoc/shelf/internal/store"
)

const table = "bookmarks"

var columns = []string{"id", "owner_id", "title", "url", "description", "created_at"}

// Store is a bookmark store over database/sql. created_at is kept as unix
// microseconds so ordering is numeric.
type Store struct {
	db    *sql.DB
	clock *store.Clock
	newID func() string
}

// Open opens (and creates if needed) the database at path. ":memory:" is
// accepted for tests.
func Open(path string) (*Store, error) {
	dsn := ":memory:"
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		dsn = path + "?_journal_mode=WAL"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and serializes writes.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, clock: store.NewClock(nil), newID: store.NewID}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS bookmarks (
		id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL,
		title TEXT NOT NULL,
		url TEXT NOT NULL,
		description TEXT,
		created_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_bookmarks_owner_created ON bookmarks(owner_id, created_at);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// List returns the owner's bookmarks, newest first.
func (s *Store) List(ctx context.Context, ownerID string) ([]domain.Bookmark, error) {
	query, args, err := sq.Select(columns...).
		From(table).
		Where(sq.Eq{"owner_id": ownerID}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookmarks: %w", err)
	}
	defer rows.Close()

	bookmarks := []domain.Bookmark{}
	for rows.Next() {
		var (
			b           domain.Bookmark
			description sql.NullString
			createdAt   int64
		)
		if err := rows.Scan(&b.ID, &b.OwnerID, &b.Title, &b.URL, &description, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan bookmark: %w", err)
		}
		if description.Valid {
			b.Description = &description.String
		}
		b.CreatedAt = time.UnixMicro(createdAt).UTC()
		bookmarks = append(bookmarks, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list bookmarks: %w", err)
	}
	return bookmarks, nil
}

// Insert stores the draft under a fresh ID.
func (s *Store) Insert(ctx context.Context, draft domain.Draft) (domain.Bookmark, error) {
	b := draft.Bookmark(s.newID(), s.clock.Next())

	var description sql.NullString
	if b.Description != nil {
		description = sql.NullString{String: *b.Description, Valid: true}
	}

	query, args, err := sq.Insert(table).
		Columns(columns...).
		Values(b.ID, b.OwnerID, b.Title, b.URL, description, b.CreatedAt.UnixMicro()).
		ToSql()
	if err != nil {
		return domain.Bookmark{}, fmt.Errorf("failed to build query: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return domain.Bookmark{}, fmt.Errorf("failed to save bookmark: %w", err)
	}
	return b, nil
}

// Delete removes the row matching both id and ownerID.
func (s *Store) Delete(ctx context.Context, id, ownerID string) (int64, error) {
	query, args, err := sq.Delete(table).
		Where(sq.Eq{"id": id, "owner_id": ownerID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build query: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete bookmark: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to delete bookmark: %w", err)
	}
	return n, nil
}

// Ping checks the database handle.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}
