package nqls_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rlch/nqls"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestLoadConfig_WalksUp(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".nqls.yaml"), `
server:
  url: https://bi.example.com
  database: 3
  api_key: secret
workspace: queries/ws.yaml
completion:
  debounce: 500ms
  hide: name startsWith "_"
`)

	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o750))

	cfg, err := nqls.LoadConfig(nested)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, ".nqls.yaml"), cfg.Path())
	assert.Equal(t, "https://bi.example.com", cfg.Server.URL)
	assert.Equal(t, 3, cfg.Server.Database)
	assert.Equal(t, "secret", cfg.Server.APIKey)
	assert.Equal(t, filepath.Join(root, "queries", "ws.yaml"), cfg.WorkspacePath())
	assert.Equal(t, 500*time.Millisecond, cfg.DebounceInterval())
	assert.Equal(t, `name startsWith "_"`, cfg.Completion.Hide)
}

func TestLoadConfig_NotFound(t *testing.T) {
	t.Parallel()

	_, err := nqls.LoadConfig(t.TempDir())

	// A config above the temp dir would make this test meaningless, not wrong.
	if err == nil {
		t.Skip("found a config file above the temp dir")
	}

	assert.ErrorIs(t, err, nqls.ErrConfigNotFound)
}

func TestLoadConfigFile_Invalid(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), ".nqls.yaml")
	writeFile(t, path, "server: [")

	_, err := nqls.LoadConfigFile(path)
	assert.Error(t, err)
}

func TestConfig_Defaults(t *testing.T) {
	t.Parallel()

	var nilCfg *nqls.Config

	assert.Equal(t, nqls.DefaultDebounceInterval, nilCfg.DebounceInterval())
	assert.Equal(t, nqls.DefaultQuestionCacheSize, nilCfg.QuestionCacheSize())

	cfg := &nqls.Config{Workspace: "/abs/ws.yaml"}
	assert.Equal(t, "/abs/ws.yaml", cfg.WorkspacePath())
	assert.Equal(t, 700*time.Millisecond, cfg.DebounceInterval())

	cfg.Server.QuestionCacheSize = 16
	assert.Equal(t, 16, cfg.QuestionCacheSize())
}
