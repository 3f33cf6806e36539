package domain

import (
	"net/url"
	"time"
)

// Bookmark is a saved URL owned by exactly one user.
//
// Rows are created by a store (which assigns ID and CreatedAt) and are
// never updated afterwards: the only mutations are create and delete.
type Bookmark struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// ID is the opaque identifier assigned by the store on insert.
	ID string `json:"id"`

	// OwnerID is the identity that created the bookmark.
	// Only that identity may delete it.
	OwnerID string `json:"owner_id"`

	// ─────────────────────────────
	// Content
	// ─────────────────────────────

	// Title is the non-empty, trimmed display title.
	Title string `json:"title"`

	// URL is the trimmed absolute URL.
	// Example: https://example.com/docs
	URL string `json:"url"`

	// Description is optional. Blank descriptions are stored as nil,
	// never as an empty string.
	Description *string `json:"description"`

	// ─────────────────────────────
	// Metadata
	// ─────────────────────────────

	// CreatedAt is assigned by the store and drives newest-first ordering.
	CreatedAt time.Time `json:"created_at"`
}

// DescriptionText returns the description or "" when absent.
func (b Bookmark) DescriptionText() string {
	if b.Description == nil {
		return ""
	}
	return *b.Description
}

// Host returns the hostname of the bookmark URL, falling back to the raw
// URL when it cannot be parsed.
func (b Bookmark) Host() string {
	u, err := url.Parse(b.URL)
	if err != nil || u.Hostname() == "" {
		return b.URL
	}
	return u.Hostname()
}

// CreatedDate formats CreatedAt for list display (ex: "Jan 2, 2024").
func (b Bookmark) CreatedDate() string {
	if b.CreatedAt.IsZero() {
		return ""
	}
	return b.CreatedAt.Local().Format("Jan 2, 2006")
}
