package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/shelf/internal/domain"
)

// deleteScript removes a bookmark only when its owner_id matches ARGV[1].
// Returns the number of rows removed.
var deleteScript = redis.NewScript(`
local data = redis.call("GET", KEYS[1])
if not data then
	redis.call("ZREM", KEYS[2], ARGV[2])
	return 0
end
local row = cjson.decode(data)
if row["owner_id"] ~= ARGV[1] then
	return 0
end
redis.call("DEL", KEYS[1])
redis.call("ZREM", KEYS[2], ARGV[2])
return 1
`)

// List returns the owner's bookmarks, newest first.
func (s *Store) List(ctx context.Context, ownerID string) ([]domain.Bookmark, error) {
	ids, err := s.client.ZRevRange(ctx, OwnerKey(ownerID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get bookmark IDs: %w", err)
	}

	if len(ids) == 0 {
		return []domain.Bookmark{}, nil
	}

	pipe := s.client.Pipeline()
	cmds := make([]*redis.StringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.Get(ctx, BookmarkKey(id))
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to get bookmarks: %w", err)
	}

	bookmarks := make([]domain.Bookmark, 0, len(ids))
	for _, cmd := range cmds {
		data, err := cmd.Bytes()
		if err != nil {
			// Skip index entries whose row is gone
			continue
		}

		var bookmark domain.Bookmark
		if err := json.Unmarshal(data, &bookmark); err != nil {
			return nil, fmt.Errorf("failed to unmarshal bookmark: %w", err)
		}
		if bookmark.OwnerID != ownerID {
			continue
		}
		bookmarks = append(bookmarks, bookmark)
	}

	return bookmarks, nil
}

// Insert stores the draft under a fresh ID and indexes it for its owner.
func (s *Store) Insert(ctx context.Context, draft domain.Draft) (domain.Bookmark, error) {
	bookmark := draft.Bookmark(s.newID(), s.clock.Next())

	data, err := json.Marshal(bookmark)
	if err != nil {
		return domain.Bookmark{}, fmt.Errorf("failed to marshal bookmark: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, BookmarkKey(bookmark.ID), data, 0)
	pipe.ZAdd(ctx, OwnerKey(bookmark.OwnerID), redis.Z{
		Score:  float64(bookmark.CreatedAt.UnixMicro()),
		Member: bookmark.ID,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return domain.Bookmark{}, fmt.Errorf("failed to save bookmark: %w", err)
	}

	return bookmark, nil
}

// Delete removes the bookmark when it belongs to ownerID.
func (s *Store) Delete(ctx context.Context, id, ownerID string) (int64, error) {
	n, err := deleteScript.Run(ctx, s.client,
		[]string{BookmarkKey(id), OwnerKey(ownerID)},
		ownerID, id,
	).Int64()
	if err != nil {
		return 0, fmt.Errorf("failed to delete bookmark: %w", err)
	}
	return n, nil
}

// Count returns the number of bookmarks indexed for ownerID.
func (s *Store) Count(ctx context.Context, ownerID string) (int64, error) {
	n, err := s.client.ZCard(ctx, OwnerKey(ownerID)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count bookmarks: %w", err)
	}
	return n, nil
}
