package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/shelf/internal/api"
	"github.com/MrSnakeDoc/shelf/internal/domain"
	"github.com/MrSnakeDoc/shelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/shelf/internal/identity"
	"github.com/MrSnakeDoc/shelf/internal/logger"
)

const maxBodyBytes = 64 << 10

// ListBookmarks returns the caller's bookmarks, newest first.
func ListBookmarks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner := identity.OwnerFrom(r.Context())

		rows, err := d.Store.List(r.Context(), owner)
		if err != nil {
			d.Logger.Error("list bookmarks failed",
				logger.Owner(owner),
				logger.Error(err))
			WriteError(w, http.StatusInternalServerError, "failed to load bookmarks", api.CodeStoreFailure)
			return
		}

		writeJSON(w, http.StatusOK, api.ListResponse{Bookmarks: rows})
	}
}

// CreateBookmark validates the body and inserts it for the caller. Any
// owner_id in the body is ignored.
func CreateBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner := identity.OwnerFrom(r.Context())

		var req api.CreateRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid JSON body", api.CodeBadRequest)
			return
		}

		draft, err := domain.NewDraft(req.Title, req.URL, req.Description, owner)
		if err != nil {
			var verr *domain.ValidationError
			if errors.As(err, &verr) {
				WriteError(w, http.StatusUnprocessableEntity, verr.Message(), verr.Code)
				return
			}
			WriteError(w, http.StatusBadRequest, err.Error(), api.CodeBadRequest)
			return
		}

		row, err := d.Store.Insert(r.Context(), draft)
		if err != nil {
			d.Logger.Error("create bookmark failed",
				logger.Owner(owner),
				logger.String("url", draft.URL),
				logger.Error(err))
			WriteError(w, http.StatusInternalServerError, "failed to add bookmark", api.CodeStoreFailure)
			return
		}

		d.Logger.Info("bookmark created",
			logger.Owner(owner),
			logger.String("id", row.ID))
		writeJSON(w, http.StatusCreated, row)
	}
}

// DeleteBookmark deletes {id} if it belongs to the caller. Deleting a
// missing or foreign row answers {"deleted": 0}.
func DeleteBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner := identity.OwnerFrom(r.Context())
		id := chi.URLParam(r, "id")

		n, err := d.Store.Delete(r.Context(), id, owner)
		if err != nil {
			d.Logger.Error("delete bookmark failed",
				logger.Owner(owner),
				logger.String("id", id),
				logger.Error(err))
			WriteError(w, http.StatusInternalServerError, "failed to delete bookmark", api.CodeStoreFailure)
			return
		}

		d.Logger.Info("bookmark deleted",
			logger.Owner(owner),
			logger.String("id", id),
			logger.Int64("rows", n))
		writeJSON(w, http.StatusOK, api.DeleteResponse{Deleted: n})
	}
}
