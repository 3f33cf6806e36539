// Package redis stores bookmarks in Redis: one JSON value per bookmark plus
// a sorted set per owner for newest-first listing.
package redis

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/shelf/internal/store"
)

// Store handles Redis operations for bookmarks
type Store struct {
	client *redis.Client
	clock  *store.Clock
	newID  func() string
}

// NewStore creates a new Redis store. The store owns client and closes it.
func NewStore(client *redis.Client) *Store {
	return &Store{
		client: client,
		clock:  store.NewClock(nil),
		newID:  store.NewID,
	}
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close releases the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}
