package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/shelf/internal/domain"
)

// setupEnv points the CLI at a fresh sqlite database owned by alice.
func setupEnv(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("{}\n"), 0o644))

	t.Setenv("SHELF_CONFIG", cfgPath)
	t.Setenv("SHELF_STORE_BACKEND", "sqlite")
	t.Setenv("SHELF_SQLITE_PATH", filepath.Join(dir, "shelf.db"))
	t.Setenv("SHELF_OWNER", "alice")
	t.Setenv("SHELF_LOG_LEVEL", "error")
	t.Setenv("SHELF_PRETTY_LOG", "false")
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestAddListRemove(t *testing.T) {
	setupEnv(t)

	out, err := execute(t, "add", "https://go.dev", "--title", "Go", "--description", "The Go site")
	require.NoError(t, err)
	assert.Contains(t, out, "Bookmark added successfully")

	_, err = execute(t, "add", "https://pkg.go.dev", "-t", "Packages")
	require.NoError(t, err)

	out, err = execute(t, "list", "--json")
	require.NoError(t, err)
	var rows []domain.Bookmark
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "Packages", rows[0].Title, "newest first")
	assert.Equal(t, "Go", rows[1].Title)
	assert.Equal(t, "The Go site", rows[1].DescriptionText())

	out, err = execute(t, "rm", rows[0].ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Bookmark removed successfully")

	out, err = execute(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Go")
	assert.NotContains(t, out, "Packages")
}

func TestRemoveUnknownID(t *testing.T) {
	setupEnv(t)

	_, err := execute(t, "add", "https://go.dev", "--title", "Go")
	require.NoError(t, err)

	out, err := execute(t, "rm", "does-not-exist")
	require.Error(t, err)
	assert.Equal(t, "Bookmark not found: does-not-exist", err.Error())
	assert.NotContains(t, out, "Bookmark removed successfully")

	out, err = execute(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Go")
}

func TestAddValidation(t *testing.T) {
	setupEnv(t)

	_, err := execute(t, "add", "https://go.dev")
	require.Error(t, err)
	assert.Equal(t, "Title and URL are required", err.Error())

	_, err = execute(t, "add", "not a url", "--title", "Broken")
	require.Error(t, err)
	assert.Equal(t, "Please enter a valid URL", err.Error())
}

func TestListEmpty(t *testing.T) {
	setupEnv(t)

	out, err := execute(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No bookmarks yet.")

	out, err = execute(t, "list", "--json")
	require.NoError(t, err)
	assert.JSONEq(t, "[]", out)
}

func TestImport(t *testing.T) {
	setupEnv(t)

	file := filepath.Join(t.TempDir(), "bookmarks.yaml")
	content := `- Developer:
    - Github:
        - abbr: GH
          href: https://github.com/
    - Broken:
        - abbr: BR
          href: not a url
`
	require.NoError(t, os.WriteFile(file, []byte(content), 0o644))

	out, err := execute(t, "import", file, "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "Github")

	out, err = execute(t, "import", file)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 1 bookmarks (1 skipped)")
	assert.Contains(t, out, `skipped "Broken": Please enter a valid URL`)

	out, err = execute(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "https://github.com/")
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "shelf "))
}

func TestMissingOwner(t *testing.T) {
	setupEnv(t)
	t.Setenv("SHELF_OWNER", "")

	_, err := execute(t, "list")
	assert.Error(t, err)
}
