// Package memory is an in-process bookmark store. It backs tests and the
// `memory` backend; nothing survives a restart.
package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/MrSnakeDoc/shelf/internal/domain"
	"github.com/MrSnakeDoc/shelf/internal/store"
)

// Store keeps bookmarks in maps guarded by a RWMutex.
type Store struct {
	mu        sync.RWMutex
	bookmarks map[string]domain.Bookmark     // ID -> Bookmark
	byOwner   map[string]map[string]struct{} // OwnerID -> set of IDs

	clock *store.Clock
	newID func() string
}

// Option customizes a Store.
type Option func(*Store)

// WithClock sets the time source used for CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.clock = store.NewClock(now) }
}

// WithIDs sets the ID generator (deterministic ids in tests).
func WithIDs(next func() string) Option {
	return func(s *Store) { s.newID = next }
}

// NewStore creates an empty memory store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		bookmarks: make(map[string]domain.Bookmark),
		byOwner:   make(map[string]map[string]struct{}),
		clock:     store.NewClock(nil),
		newID:     store.NewID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns the owner's bookmarks, newest first.
func (s *Store) List(_ context.Context, ownerID string) ([]domain.Bookmark, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.byOwner[ownerID]
	rows := make([]domain.Bookmark, 0, len(ids))
	for id := range ids {
		rows = append(rows, s.bookmarks[id])
	}
	slices.SortFunc(rows, func(a, b domain.Bookmark) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return rows, nil
}

// Insert stores the draft under a fresh ID.
func (s *Store) Insert(_ context.Context, draft domain.Draft) (domain.Bookmark, error) {
	row := draft.Bookmark(s.newID(), s.clock.Next())

	s.mu.Lock()
	defer s.mu.Unlock()

	s.put(row)
	return row, nil
}

// Put adds or replaces a row as-is, keeping its ID and CreatedAt.
// Used to seed fixtures.
func (s *Store) Put(rows ...domain.Bookmark) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, row := range rows {
		s.put(row)
	}
}

func (s *Store) put(row domain.Bookmark) {
	s.bookmarks[row.ID] = row
	ids, ok := s.byOwner[row.OwnerID]
	if !ok {
		ids = make(map[string]struct{})
		s.byOwner[row.OwnerID] = ids
	}
	ids[row.ID] = struct{}{}
}

// Delete removes the row only when it belongs to ownerID.
func (s *Store) Delete(_ context.Context, id, ownerID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.bookmarks[id]
	if !ok || row.OwnerID != ownerID {
		return 0, nil
	}

	delete(s.bookmarks, id)
	delete(s.byOwner[ownerID], id)
	if len(s.byOwner[ownerID]) == 0 {
		delete(s.byOwner, ownerID)
	}
	return 1, nil
}

// Count returns the number of bookmarks across all owners.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.bookmarks)
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// Close is a no-op.
func (s *Store) Close() error { return nil }
