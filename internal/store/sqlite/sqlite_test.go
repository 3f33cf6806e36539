package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/shelf/internal/domain"
	"github.com/MrSnakeDoc/shelf/internal/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "shelf.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func mustDraft(t *testing.T, title, url, description, owner string) domain.Draft {
	t.Helper()
	d, err := domain.NewDraft(title, url, description, owner)
	require.NoError(t, err)
	return d
}

func TestInsertAndList(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.Insert(ctx, mustDraft(t, "First", "https://a.example", "", "alice"))
	require.NoError(t, err)
	second, err := s.Insert(ctx, mustDraft(t, "Second", "https://b.example", "read later", "alice"))
	require.NoError(t, err)
	_, err = s.Insert(ctx, mustDraft(t, "Other", "https://c.example", "", "bob"))
	require.NoError(t, err)

	assert.NotEmpty(t, first.ID)
	assert.NotEqual(t, first.ID, second.ID)

	rows, err := s.List(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, second.ID, rows[0].ID)
	assert.Equal(t, first.ID, rows[1].ID)
	require.NotNil(t, rows[0].Description)
	assert.Equal(t, "read later", *rows[0].Description)
	assert.Nil(t, rows[1].Description)
	assert.True(t, second.CreatedAt.Equal(rows[0].CreatedAt))
}

func TestListEmptyOwner(t *testing.T) {
	s := newTestStore(t)

	rows, err := s.List(context.Background(), "nobody")
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestDeleteFiltersByOwner(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	row, err := s.Insert(ctx, mustDraft(t, "Site", "https://a.example", "", "alice"))
	require.NoError(t, err)

	n, err := s.Delete(ctx, row.ID, "mallory")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	n, err = s.Delete(ctx, row.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = s.Delete(ctx, "missing", "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	rows, err := s.List(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestFrozenClockStillOrders(t *testing.T) {
	s := newTestStore(t)
	s.clock = store.NewClock(func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) })
	ctx := context.Background()

	var ids []string
	for _, title := range []string{"a", "b", "c"} {
		row, err := s.Insert(ctx, mustDraft(t, title, "https://"+title+".example", "", "alice"))
		require.NoError(t, err)
		ids = append(ids, row.ID)
	}

	rows, err := s.List(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{ids[2], ids[1], ids[0]}, []string{rows[0].ID, rows[1].ID, rows[2].ID})
}

func TestOpenInMemory(t *testing.T) {
	s, err := Open(":memory:")
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Ping(context.Background()))
}
