// Package api holds the JSON shapes exchanged by `shelf serve` and the
// remote store client.
package api

import "github.com/MrSnakeDoc/shelf/internal/domain"

// BookmarksPath is the collection endpoint. A single bookmark lives at
// BookmarksPath + "/{id}".
const BookmarksPath = "/api/bookmarks"

// Error codes returned in ErrorResponse.Code besides the validation codes.
const (
	CodeUnauthorized = "unauthorized"
	CodeBadRequest   = "bad_request"
	CodeStoreFailure = "store_failure"
)

type ListResponse struct {
	Bookmarks []domain.Bookmark `json:"bookmarks"`
}

// CreateRequest is the POST body. Owner is never read from the body.
type CreateRequest struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
}

type DeleteResponse struct {
	Deleted int64 `json:"deleted"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}
