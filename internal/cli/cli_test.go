package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/mailib/mailib-server/internal/domain"
	"github.com/mailib/mailib-server/internal/service"
)

func fantlabFixtures(t *testing.T) *httptest.Server {
	t.Helper()
	fixtures := map[string]string{
		"/work/4245/extended":   "work_extended.json",
		"/edition/777/extended": "edition_extended.json",
		"/search-works":         "search_works.json",
		"/search-editions":      "search_editions.json",
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name, ok := fixtures[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		data, err := os.ReadFile(filepath.Join("..", "metadata", "fantlab", "testdata", name))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(data)
	}))
	t.Cleanup(srv.Close)
	return srv
}

type harness struct {
	dataDir string
	baseURL string
	config  string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return &harness{
		dataDir: t.TempDir(),
		baseURL: fantlabFixtures(t).URL,
		config:  filepath.Join(t.TempDir(), "config.yml"),
	}
}

// run executes one mailibctl invocation with its own command tree.
func (h *harness) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(append([]string{
		"--config", h.config,
		"--data-path", h.dataDir,
		"--fantlab-url", h.baseURL,
		"--log-level", "error",
		"--no-color",
	}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestResolve_ImportsThenReadsLocally(t *testing.T) {
	h := newHarness(t)

	out, err := h.run(t, "resolve", "fantlab_work", "4245", "-o", "json")
	require.NoError(t, err)

	var first domain.ResolveResult
	require.NoError(t, json.Unmarshal([]byte(out), &first))
	require.NotNil(t, first.Book)
	assert.True(t, first.Imported)
	assert.Equal(t, "Пикник на обочине", first.Book.Name)
	assert.Len(t, first.Book.Authors, 1)

	out, err = h.run(t, "resolve", "fantlab_work", "4245", "-o", "yaml")
	require.NoError(t, err)

	var second map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &second))
	assert.Equal(t, false, second["imported"])
	book := second["book"].(map[string]any)
	assert.Equal(t, first.Book.ID, book["id"])

	out, err = h.run(t, "resolve", "inner_db_work", first.Book.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Пикник на обочине")
	assert.Contains(t, out, "Аркадий и Борис Стругацкие")
}

func TestResolve_Errors(t *testing.T) {
	h := newHarness(t)

	_, err := h.run(t, "resolve", "fantlab_work", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	_, err = h.run(t, "resolve", "audible", "1")
	assert.Error(t, err)

	_, err = h.run(t, "resolve", "fantlab_work", "4245", "-o", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown output format")
}

func TestSearch(t *testing.T) {
	h := newHarness(t)

	out, err := h.run(t, "search", "пикник", "-o", "json")
	require.NoError(t, err)

	var res domain.SearchResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.NotEmpty(t, res.Books)
	assert.Equal(t, "4245", res.Books[0].ExternalID)

	out, err = h.run(t, "search", "пикник")
	require.NoError(t, err)
	assert.Contains(t, out, "Works (")
	assert.Contains(t, out, "Editions (")
	assert.Contains(t, out, "Catalog (")
}

func TestReindexAndReconcile(t *testing.T) {
	h := newHarness(t)

	_, err := h.run(t, "resolve", "fantlab_work", "4245")
	require.NoError(t, err)

	out, err := h.run(t, "reindex")
	require.NoError(t, err)
	assert.Contains(t, out, "indexed 1 books")

	out, err = h.run(t, "reconcile", "-o", "json")
	require.NoError(t, err)
	var report service.ReconcileReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, service.ReconcileReport{}, report)
}

func TestCachePurge(t *testing.T) {
	h := newHarness(t)

	_, err := h.run(t, "resolve", "fantlab_work", "4245")
	require.NoError(t, err)

	out, err := h.run(t, "cache", "purge")
	require.NoError(t, err)
	assert.Contains(t, out, "cache purged")

	out, err = h.run(t, "cache", "purge", "-o", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"purged":true}`, out)
}

func TestToken(t *testing.T) {
	h := newHarness(t)

	out, err := h.run(t, "token", "user-1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(strings.TrimSpace(out), "v4.local."))

	out, err = h.run(t, "token", "user-1", "-o", "json")
	require.NoError(t, err)
	var payload map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &payload))
	assert.Equal(t, "user-1", payload["user_id"])
	assert.NotEmpty(t, payload["expires_at"])

	// The key generated by the first run is reused.
	assert.FileExists(t, filepath.Join(h.dataDir, "auth.key"))
}

func TestLoadSettings(t *testing.T) {
	t.Run("defaults without a file", func(t *testing.T) {
		s, err := LoadSettings(viper.New(), filepath.Join(t.TempDir(), "missing.yml"))
		require.NoError(t, err)
		assert.Equal(t, "~/.mailib", s.DataPath)
		assert.Equal(t, "https://api.fantlab.ru", s.FantlabURL)
		assert.Equal(t, float64(5), s.FantlabRPS)
		assert.Equal(t, outputText, s.Output)
	})

	t.Run("file and environment", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yml")
		require.NoError(t, os.WriteFile(path, []byte("data_path: /srv/mailib\noutput: yaml\nfantlab_rps: 2\n"), 0o600))
		t.Setenv("MAILIBCTL_OUTPUT", "json")

		s, err := LoadSettings(viper.New(), path)
		require.NoError(t, err)
		assert.Equal(t, "/srv/mailib", s.DataPath)
		assert.Equal(t, float64(2), s.FantlabRPS)
		assert.Equal(t, outputJSON, s.Output)
	})

	t.Run("malformed file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yml")
		require.NoError(t, os.WriteFile(path, []byte("data_path: [unterminated\n"), 0o600))

		_, err := LoadSettings(viper.New(), path)
		assert.Error(t, err)
	})
}

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, render(&buf, outputYAML, service.ReconcileReport{Scanned: 2, Repaired: 1, Failed: 1}))
	assert.Equal(t, "failed: 1\nrepaired: 1\nscanned: 2\n", buf.String())
}

func TestUsers(t *testing.T) {
	h := newHarness(t)

	out, err := h.run(t, "users", "add", "u-anna", "--first-name", "Anna", "--last-name", "Ivanova", "--family", "fam")
	require.NoError(t, err)
	assert.Contains(t, out, "synced 1 users")

	_, err = h.run(t, "users", "add", "u-nobody")
	assert.Error(t, err)

	file := filepath.Join(t.TempDir(), "users.yml")
	require.NoError(t, os.WriteFile(file, []byte(`users:
  - id: u-anna
    first_name: Anna
    last_name: Petrova
    family_id: fam
  - id: u-boris
    first_name: Boris
    family_id: fam
`), 0o600))

	out, err = h.run(t, "users", "import", file, "-o", "json")
	require.NoError(t, err)
	var users []domain.User
	require.NoError(t, json.Unmarshal([]byte(out), &users))
	require.Len(t, users, 2)
	assert.Equal(t, "Petrova", users[0].LastName)

	bad := filepath.Join(t.TempDir(), "bad.yml")
	require.NoError(t, os.WriteFile(bad, []byte("users:\n  - first_name: NoID\n"), 0o600))
	_, err = h.run(t, "users", "import", bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "users[0]")
}
