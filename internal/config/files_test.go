package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets keys for the duration of the test and restores them afterwards.
func clearEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadEnvFile_ValidFile(t *testing.T) {
	clearEnv(t, "MAILIB_T_ENV", "MAILIB_T_QUOTED", "MAILIB_T_SINGLE")
	path := writeFile(t, ".env", `# comment
MAILIB_T_ENV=staging

MAILIB_T_QUOTED="some value"
  MAILIB_T_SINGLE = 'another value'
`)

	require.NoError(t, loadEnvFile(path))

	assert.Equal(t, "staging", os.Getenv("MAILIB_T_ENV"))
	assert.Equal(t, "some value", os.Getenv("MAILIB_T_QUOTED"))
	assert.Equal(t, "another value", os.Getenv("MAILIB_T_SINGLE"))
}

func TestLoadEnvFile_InvalidFormat(t *testing.T) {
	path := writeFile(t, ".env", "OK=1\nINVALID LINE\n")

	err := loadEnvFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format at line 2")
}

func TestLoadEnvFile_NonExistentFile(t *testing.T) {
	assert.Error(t, loadEnvFile("/nonexistent/.env"))
}

func TestLoadEnvFile_ExistingEnvVarsNotOverwritten(t *testing.T) {
	t.Setenv("MAILIB_T_KEEP", "from-env")
	path := writeFile(t, ".env", "MAILIB_T_KEEP=from-file\n")

	require.NoError(t, loadEnvFile(path))
	assert.Equal(t, "from-env", os.Getenv("MAILIB_T_KEEP"))
}

func TestLoadYAMLFile_Flattens(t *testing.T) {
	path := writeFile(t, "mailib.yml", `
env: staging
data_path: /data
rate_limit:
  search_burst: 4
server:
  cors_origins:
    - http://x.test
  empty:
`)

	got, err := loadYAMLFile(path)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"ENV":                     "staging",
		"DATA_PATH":               "/data",
		"RATE_LIMIT_SEARCH_BURST": "4",
		"SERVER_CORS_ORIGINS":     "http://x.test",
	}, got)
}

func TestLoadYAMLFile_Invalid(t *testing.T) {
	path := writeFile(t, "bad.yml", "server: [unclosed\n")

	_, err := loadYAMLFile(path)
	assert.Error(t, err)
}
