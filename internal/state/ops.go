package state

import (
	"context"
	"slices"

	"github.com/MrSnakeDoc/shelf/internal/domain"
	"github.com/MrSnakeDoc/shelf/internal/logger"
)

// Load replaces the list with ownerID's rows, newest first.
//
// An empty ownerID means signed out: the list is emptied without a store
// call. Switching to another owner empties the list before the fetch, so a
// failed load never leaves the previous owner's rows on screen; a failed
// refresh of the same owner keeps the list. A Load started later supersedes
// this one; its result is then dropped, but its own cleanup still runs.
func (s *State) Load(ctx context.Context, ownerID string) error {
	var gen uint64
	s.mutate(func() bool {
		s.loadGen++
		gen = s.loadGen
		if s.owner != ownerID {
			s.list = nil
		}
		s.owner = ownerID
		if ownerID == "" {
			s.list = nil
			s.loading = false
			return true
		}
		s.loading = true
		return true
	})
	if ownerID == "" {
		return nil
	}
	defer s.endLoad(gen)

	rows, err := s.store.List(ctx, ownerID)
	if err != nil {
		rerr := &domain.RemoteError{Op: domain.OpLoad, Err: err}
		s.log.Error("load failed",
			logger.Owner(ownerID),
			logger.Error(err))
		return rerr
	}

	// Rows of any other owner are never shown, whatever the store returns.
	list := make([]domain.Bookmark, 0, len(rows))
	for _, row := range rows {
		if row.OwnerID == ownerID {
			list = append(list, row)
		}
	}
	slices.SortStableFunc(list, func(a, b domain.Bookmark) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	s.mutate(func() bool {
		if gen != s.loadGen {
			s.log.Debug("dropping superseded load", logger.Owner(ownerID))
			return false
		}
		s.list = list
		return true
	})
	s.log.Debug("bookmarks loaded",
		logger.Owner(ownerID),
		logger.Int("count", len(list)))
	return nil
}

func (s *State) endLoad(gen uint64) {
	s.mutate(func() bool {
		if gen != s.loadGen || !s.loading {
			return false
		}
		s.loading = false
		return true
	})
}

// Create validates the input, submits it and prepends the row the store
// returned. Nothing is inserted locally before the store confirms.
func (s *State) Create(ctx context.Context, title, url, description, ownerID string) (domain.Bookmark, error) {
	if ownerID == "" {
		return domain.Bookmark{}, domain.ErrSignedOut
	}
	draft, err := domain.NewDraft(title, url, description, ownerID)
	if err != nil {
		return domain.Bookmark{}, err
	}

	s.mutate(func() bool {
		s.submitting++
		return true
	})
	defer s.mutate(func() bool {
		s.submitting--
		return true
	})

	row, err := s.store.Insert(ctx, draft)
	if err != nil {
		s.log.Error("create failed",
			logger.Owner(ownerID),
			logger.String("url", draft.URL),
			logger.Error(err))
		return domain.Bookmark{}, &domain.RemoteError{Op: domain.OpCreate, Err: err}
	}
	if row.OwnerID != ownerID {
		s.log.Error("store returned a bookmark of another owner",
			logger.Owner(ownerID),
			logger.String("row_owner", row.OwnerID),
			logger.String("id", row.ID))
		return domain.Bookmark{}, &domain.RemoteError{Op: domain.OpCreate, Err: domain.ErrOwnerMismatch}
	}

	s.mutate(func() bool {
		switch s.owner {
		case ownerID:
		case "":
			s.owner = ownerID
		default:
			// Owner switched while the insert was in flight.
			return false
		}
		if s.indexLocked(row.ID) >= 0 {
			return false
		}
		s.list = append([]domain.Bookmark{row}, s.list...)
		return true
	})
	s.log.Info("bookmark created",
		logger.Owner(ownerID),
		logger.String("id", row.ID))
	return row, nil
}

// Delete removes the bookmark from the store, then from the list.
//
// Deleting a listed row owned by someone else is a no-op. Zero rows
// affected in the store is still success.
func (s *State) Delete(ctx context.Context, id, ownerID string) error {
	if ownerID == "" {
		return domain.ErrSignedOut
	}

	var (
		skip bool
		err  error
	)
	s.mutate(func() bool {
		if i := s.indexLocked(id); i >= 0 && s.list[i].OwnerID != ownerID {
			skip = true
			return false
		}
		if s.pending[id] {
			err = ErrDeletePending
			return false
		}
		s.pending[id] = true
		return true
	})
	if skip {
		s.log.Warn("refusing to delete bookmark of another owner",
			logger.Owner(ownerID),
			logger.String("id", id))
		return nil
	}
	if err != nil {
		return err
	}
	defer s.mutate(func() bool {
		delete(s.pending, id)
		return true
	})

	n, err := s.store.Delete(ctx, id, ownerID)
	if err != nil {
		s.log.Error("delete failed",
			logger.Owner(ownerID),
			logger.String("id", id),
			logger.Error(err))
		return &domain.RemoteError{Op: domain.OpDelete, Err: err}
	}

	s.mutate(func() bool {
		i := s.indexLocked(id)
		if i < 0 {
			return false
		}
		s.list = slices.Delete(slices.Clone(s.list), i, i+1)
		return true
	})
	s.log.Info("bookmark deleted",
		logger.Owner(ownerID),
		logger.String("id", id),
		logger.Int64("rows", n))
	return nil
}

func (s *State) indexLocked(id string) int {
	return slices.IndexFunc(s.list, func(b domain.Bookmark) bool { return b.ID == id })
}
