// Package store defines the remote store contract the sync state talks to,
// plus helpers shared by its implementations.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/shelf/internal/domain"
)

// Store is the authoritative, owner-partitioned bookmark table.
//
// Every method filters by owner; implementations must never return or
// delete another owner's rows.
type Store interface {
	// List returns all bookmarks of ownerID, newest CreatedAt first.
	List(ctx context.Context, ownerID string) ([]domain.Bookmark, error)

	// Insert persists the draft and returns the created row, including
	// the store-assigned ID and CreatedAt.
	Insert(ctx context.Context, draft domain.Draft) (domain.Bookmark, error)

	// Delete removes the row matching both id and ownerID and reports how
	// many rows were affected (0 or 1). Zero rows is not an error.
	Delete(ctx context.Context, id, ownerID string) (int64, error)

	Close() error
}

// Pinger is implemented by stores that can report connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewID returns a fresh bookmark identifier.
func NewID() string {
	return uuid.NewString()
}

// Clock hands out strictly increasing creation timestamps at microsecond
// precision, so rows created in a burst still sort newest-first.
type Clock struct {
	mu   sync.Mutex
	now  func() time.Time
	last time.Time
}

// NewClock wraps now (time.Now when nil).
func NewClock(now func() time.Time) *Clock {
	if now == nil {
		now = time.Now
	}
	return &Clock{now: now}
}

// Next returns a UTC timestamp after every previously returned one.
func (c *Clock) Next() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := c.now().UTC().Truncate(time.Microsecond)
	if !t.After(c.last) {
		t = c.last.Add(time.Microsecond)
	}
	c.last = t
	return t
}
