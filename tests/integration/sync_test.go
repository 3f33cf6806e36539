package integration

import (
	"context"
	"errors"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/MrSnakeDoc/shelf/internal/domain"
	"github.com/MrSnakeDoc/shelf/internal/httpserver"
	"github.com/MrSnakeDoc/shelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/shelf/internal/identity"
	"github.com/MrSnakeDoc/shelf/internal/logger"
	"github.com/MrSnakeDoc/shelf/internal/state"
	"github.com/MrSnakeDoc/shelf/internal/store/remote"
	"github.com/MrSnakeDoc/shelf/internal/store/sqlite"
)

// newClient starts an API server over db and returns a
// sync state talking to it over HTTP.
func newClient(t *testing.T, db *sqlite.Store) *state.State {
	t.Helper()

	srv := httptest.NewServer(httpserver.NewRouter(5*time.Second, deps.Deps{
		Logger:          logger.NewNop(),
		StartTime:       time.Now(),
		RateLimitBurst:  1000,
		RateLimitPerMin: 1000,
		Store:           db,
		Backend:         "sqlite",
		Identity:        identity.NewHeaderProvider(""),
		IdentityMode:    "header",
	}))
	t.Cleanup(srv.Close)

	client, err := remote.New(srv.URL, remote.WithOwnerHeader(identity.DefaultHeader))
	if err != nil {
		t.Fatalf("remote.New() error = %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	return state.New(client, logger.NewNop())
}

func openDB(t *testing.T) *sqlite.Store {
	t.Helper()
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "shelf.db"))
	if err != nil {
		t.Fatalf("sqlite.Open() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func titles(s *state.State) []string {
	var out []string
	for _, b := range s.Snapshot().Bookmarks {
		out = append(out, b.Title)
	}
	return out
}

// TestSyncScenarios drives the sync state end to end: state -> HTTP client
// -> chi API -> sqlite.
func TestSyncScenarios(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		run         func(t *testing.T, alice *state.State)
		expected    []string
		description string
	}{
		{
			name: "create prepends",
			run: func(t *testing.T, alice *state.State) {
				for _, title := range []string{"b", "a", "c"} {
					if _, err := alice.Create(ctx, title, "https://"+title+".example.com", "", "alice"); err != nil {
						t.Fatalf("Create(%s) error = %v", title, err)
					}
				}
			},
			expected:    []string{"c", "a", "b"},
			description: "Each confirmed create lands at the top",
		},
		{
			name: "reload keeps newest first",
			run: func(t *testing.T, alice *state.State) {
				for _, title := range []string{"b", "a"} {
					if _, err := alice.Create(ctx, title, "https://"+title+".example.com", "", "alice"); err != nil {
						t.Fatalf("Create(%s) error = %v", title, err)
					}
				}
				if err := alice.Load(ctx, "alice"); err != nil {
					t.Fatalf("Load() error = %v", err)
				}
			},
			expected:    []string{"a", "b"},
			description: "A fresh load orders by created_at desc",
		},
		{
			name: "delete removes exactly one",
			run: func(t *testing.T, alice *state.State) {
				var first domain.Bookmark
				for i, title := range []string{"b", "a"} {
					row, err := alice.Create(ctx, title, "https://"+title+".example.com", "", "alice")
					if err != nil {
						t.Fatalf("Create(%s) error = %v", title, err)
					}
					if i == 1 {
						first = row
					}
				}
				if err := alice.Delete(ctx, first.ID, "alice"); err != nil {
					t.Fatalf("Delete() error = %v", err)
				}
				if alice.Snapshot().IsPending(first.ID) {
					t.Error("pending flag should be cleared after delete")
				}
			},
			expected:    []string{"b"},
			description: "Delete splices the row out and clears pending",
		},
		{
			name: "validation never reaches the server",
			run: func(t *testing.T, alice *state.State) {
				_, err := alice.Create(ctx, "  ", "https://x.example.com", "", "alice")
				if !domain.IsValidation(err, domain.CodeMissingFields) {
					t.Errorf("err = %v, want missing_fields", err)
				}
				_, err = alice.Create(ctx, "x", "not a url", "", "alice")
				if !domain.IsValidation(err, domain.CodeInvalidURL) {
					t.Errorf("err = %v, want invalid_url", err)
				}
			},
			expected:    nil,
			description: "Local validation failures leave the list empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alice := newClient(t, openDB(t))
			if err := alice.Load(ctx, "alice"); err != nil {
				t.Fatalf("Load() error = %v", err)
			}

			tt.run(t, alice)

			got := titles(alice)
			if len(got) != len(tt.expected) {
				t.Fatalf("%s: got %v, want %v", tt.description, got, tt.expected)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("%s: got %v, want %v", tt.description, got, tt.expected)
					break
				}
			}
		})
	}
}

// TestOwnersAreIsolated checks two clients sharing one server.
func TestOwnersAreIsolated(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	alice := newClient(t, db)
	bob := newClient(t, db)

	row, err := alice.Create(ctx, "private", "https://private.example.com", "", "alice")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := bob.Load(ctx, "bob"); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if n := len(bob.Snapshot().Bookmarks); n != 0 {
		t.Errorf("bob sees %d bookmarks, want 0", n)
	}

	// Bob deleting alice's id affects zero rows, which is still success.
	if err := bob.Delete(ctx, row.ID, "bob"); err != nil {
		t.Errorf("Delete() error = %v", err)
	}

	if err := alice.Load(ctx, "alice"); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := titles(alice); len(got) != 1 || got[0] != "private" {
		t.Errorf("alice list = %v, want [private]", got)
	}
}

// TestServerFailureSurfacesRemoteError checks the generic user message when
// the server cannot reach its store.
func TestServerFailureSurfacesRemoteError(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	alice := newClient(t, db)
	if err := db.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	_, err := alice.Create(ctx, "x", "https://x.example.com", "", "alice")
	var rerr *domain.RemoteError
	if !errors.As(err, &rerr) {
		t.Fatalf("err = %v, want RemoteError", err)
	}
	if got := domain.UserMessage(err); got != "Failed to add bookmark" {
		t.Errorf("UserMessage() = %q", got)
	}
	if len(alice.Snapshot().Bookmarks) != 0 {
		t.Error("list must stay unchanged on failure")
	}
}
