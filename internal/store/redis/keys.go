package redis

const (
	// KeyPrefixBookmark is the prefix for bookmark JSON rows
	KeyPrefixBookmark = "shelf:bookmark:"
	// KeyPrefixOwner is the prefix for per-owner indexes
	KeyPrefixOwner = "shelf:owner:"
)

// BookmarkKey returns the Redis key for a bookmark
func BookmarkKey(id string) string {
	return KeyPrefixBookmark + id
}

// OwnerKey returns the sorted set of bookmark IDs for an owner, scored by
// created_at in unix microseconds.
func OwnerKey(ownerID string) string {
	return KeyPrefixOwner + ownerID + ":bookmarks"
}
