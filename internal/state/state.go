// Package state keeps the in-memory bookmark list of one client consistent
// with the authoritative store.
//
// The list only changes after the store confirms an operation: Load replaces
// it wholesale, Create prepends the row the store returned, Delete splices
// the row out. The mutex is never held across a store call, so a Delete may
// run while a Load is outstanding; whichever completes last wins.
package state

import (
	"errors"
	"slices"
	"sync"

	"github.com/MrSnakeDoc/shelf/internal/domain"
	"github.com/MrSnakeDoc/shelf/internal/logger"
	"github.com/MrSnakeDoc/shelf/internal/store"
)

// ErrDeletePending is returned when a delete for the same id is already
// outstanding.
var ErrDeletePending = errors.New("delete already in progress")

// Snapshot is a consistent, caller-owned copy of the state.
type Snapshot struct {
	Owner      string
	Bookmarks  []domain.Bookmark
	Loading    bool
	Submitting bool
	Pending    map[string]bool
}

// IsPending reports whether a delete for id is outstanding.
func (s Snapshot) IsPending(id string) bool {
	return s.Pending[id]
}

type State struct {
	store store.Store
	log   logger.Logger

	mu         sync.Mutex
	owner      string
	list       []domain.Bookmark
	loadGen    uint64
	loading    bool
	submitting int
	pending    map[string]bool

	listeners map[int]func(Snapshot)
	nextID    int
}

// New returns an empty state bound to st.
func New(st store.Store, log logger.Logger) *State {
	if log == nil {
		log = logger.NewNop()
	}
	return &State{
		store:     st,
		log:       log.With(logger.String("component", "state")),
		pending:   make(map[string]bool),
		listeners: make(map[int]func(Snapshot)),
	}
}

// Snapshot returns a copy of the current state.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *State) snapshotLocked() Snapshot {
	pending := make(map[string]bool, len(s.pending))
	for id := range s.pending {
		pending[id] = true
	}
	return Snapshot{
		Owner:      s.owner,
		Bookmarks:  slices.Clone(s.list),
		Loading:    s.loading,
		Submitting: s.submitting > 0,
		Pending:    pending,
	}
}

// Owner returns the owner of the current list.
func (s *State) Owner() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.owner
}

// OnChange registers fn to run after every state change. fn runs outside
// the lock and must not block. The returned func unsubscribes.
func (s *State) OnChange(fn func(Snapshot)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// mutate applies fn under the lock and notifies listeners when fn reports
// a change.
func (s *State) mutate(fn func() bool) {
	s.mu.Lock()
	if !fn() {
		s.mu.Unlock()
		return
	}
	snap := s.snapshotLocked()
	listeners := make([]func(Snapshot), 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(snap)
	}
}
