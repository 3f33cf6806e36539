package httpserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/shelf/internal/api"
	"github.com/MrSnakeDoc/shelf/internal/domain"
	"github.com/MrSnakeDoc/shelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/shelf/internal/identity"
	"github.com/MrSnakeDoc/shelf/internal/logger"
	"github.com/MrSnakeDoc/shelf/internal/store/memory"
)

func newTestRouter(t *testing.T) (http.Handler, *memory.Store) {
	t.Helper()
	st := memory.NewStore()
	d := deps.Deps{
		Logger:          logger.New("error", false),
		StartTime:       time.Now(),
		Version:         "test",
		RateLimitBurst:  100,
		RateLimitPerMin: 100,
		Store:           st,
		Backend:         "memory",
		Identity:        identity.NewHeaderProvider(""),
		IdentityMode:    "header",
	}
	return NewRouter(time.Second, d), st
}

func do(t *testing.T, h http.Handler, method, path, owner, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if owner != "" {
		req.Header.Set(identity.DefaultHeader, owner)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestBookmarksRequireIdentity(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := do(t, h, http.MethodGet, api.BookmarksPath, "", "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	var body api.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, api.CodeUnauthorized, body.Code)
}

func TestCreateListDelete(t *testing.T) {
	h, st := newTestRouter(t)

	rec := do(t, h, http.MethodPost, api.BookmarksPath, "alice",
		`{"title":" Go ","url":"https://go.dev","description":"","owner_id":"mallory"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created domain.Bookmark
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "alice", created.OwnerID, "owner comes from identity, never the body")
	assert.Equal(t, "Go", created.Title)
	assert.Nil(t, created.Description)

	rec = do(t, h, http.MethodGet, api.BookmarksPath, "alice", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list api.ListResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&list))
	require.Len(t, list.Bookmarks, 1)
	assert.Equal(t, created.ID, list.Bookmarks[0].ID)

	// Another owner sees nothing and cannot delete.
	rec = do(t, h, http.MethodGet, api.BookmarksPath, "bob", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"bookmarks":[]}`, rec.Body.String())

	rec = do(t, h, http.MethodDelete, api.BookmarksPath+"/"+created.ID, "bob", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"deleted":0}`, rec.Body.String())
	assert.Equal(t, 1, st.Count())

	rec = do(t, h, http.MethodDelete, api.BookmarksPath+"/"+created.ID, "alice", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"deleted":1}`, rec.Body.String())
	assert.Equal(t, 0, st.Count())
}

func TestCreateValidation(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		status   int
		wantCode string
	}{
		{name: "blank title", body: `{"title":"  ","url":"https://go.dev"}`, status: http.StatusUnprocessableEntity, wantCode: domain.CodeMissingFields},
		{name: "missing url", body: `{"title":"Go"}`, status: http.StatusUnprocessableEntity, wantCode: domain.CodeMissingFields},
		{name: "invalid url", body: `{"title":"Go","url":"not a url"}`, status: http.StatusUnprocessableEntity, wantCode: domain.CodeInvalidURL},
		{name: "broken json", body: `{"title":`, status: http.StatusBadRequest, wantCode: api.CodeBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, st := newTestRouter(t)

			rec := do(t, h, http.MethodPost, api.BookmarksPath, "alice", tt.body)

			assert.Equal(t, tt.status, rec.Code)
			var body api.ErrorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tt.wantCode, body.Code)
			assert.Equal(t, 0, st.Count())
		})
	}
}

func TestProbes(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)

	rec = do(t, h, http.MethodGet, "/readyz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ready":true}`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/infra", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	var infra struct {
		Status     string `json:"status"`
		Components map[string]struct {
			OK   bool   `json:"ok"`
			Mode string `json:"mode"`
		} `json:"components"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&infra))
	assert.Equal(t, "ok", infra.Status)
	assert.Equal(t, "memory", infra.Components["store"].Mode)
	assert.Equal(t, "header", infra.Components["identity"].Mode)
}

func TestRateLimitPerOwner(t *testing.T) {
	d := deps.Deps{
		Logger:          logger.New("error", false),
		StartTime:       time.Now(),
		RateLimitBurst:  2,
		RateLimitPerMin: 1,
		Store:           memory.NewStore(),
		Identity:        identity.NewHeaderProvider(""),
	}
	h := NewRouter(time.Second, d)

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, api.BookmarksPath, "alice", "").Code)
	}
	rec := do(t, h, http.MethodGet, api.BookmarksPath, "alice", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	// A different owner has its own bucket.
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, api.BookmarksPath, "bob", "").Code)
}
