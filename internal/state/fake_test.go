package state

import (
	"context"
	"sync"

	"github.com/MrSnakeDoc/shelf/internal/domain"
)

// fakeStore records calls and returns canned results. When gate is set,
// every call blocks until a value is received from it.
type fakeStore struct {
	mu sync.Mutex

	rows      []domain.Bookmark
	inserted  domain.Bookmark
	deleted   int64
	listErr   error
	insertErr error
	deleteErr error
	gate      chan struct{}
	entered   chan string

	listCalls   int
	insertCalls int
	deleteCalls int
	drafts      []domain.Draft
	deletes     [][2]string
}

func (f *fakeStore) wait(op string) {
	if f.entered != nil {
		f.entered <- op
	}
	if f.gate != nil {
		<-f.gate
	}
}

func (f *fakeStore) List(_ context.Context, ownerID string) ([]domain.Bookmark, error) {
	f.mu.Lock()
	f.listCalls++
	rows, err := append([]domain.Bookmark(nil), f.rows...), f.listErr
	f.mu.Unlock()

	f.wait("list")
	return rows, err
}

func (f *fakeStore) Insert(_ context.Context, d domain.Draft) (domain.Bookmark, error) {
	f.mu.Lock()
	f.insertCalls++
	f.drafts = append(f.drafts, d)
	row, err := f.inserted, f.insertErr
	f.mu.Unlock()

	f.wait("insert")
	return row, err
}

func (f *fakeStore) Delete(_ context.Context, id, ownerID string) (int64, error) {
	f.mu.Lock()
	f.deleteCalls++
	f.deletes = append(f.deletes, [2]string{id, ownerID})
	n, err := f.deleted, f.deleteErr
	f.mu.Unlock()

	f.wait("delete")
	return n, err
}

func (f *fakeStore) Close() error { return nil }

func (f *fakeStore) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls + f.insertCalls + f.deleteCalls
}
