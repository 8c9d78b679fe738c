package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "predmarkets.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "repo:\n  path: /srv/prediction-markets\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "origin", cfg.Repo.Remote)
	assert.Equal(t, "main", cfg.Repo.Branch)
	assert.Equal(t, defaultArtifacts, cfg.Repo.Artifacts)
	assert.Equal(t, DefaultGeneratorCommand, cfg.Generator.Command)
	assert.Equal(t, "Asia/Shanghai", cfg.Market.Timezone)
	assert.Equal(t, 3, cfg.Market.MaxRetries)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestLoadRequiresRepoPath(t *testing.T) {
	path := writeConfig(t, "repo:\n  remote: origin\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "repo.path")
}

func TestLoadExpandsEnvVars(t *testing.T) {
	t.Setenv("PREDMARKETS_TEST_REPO", "/srv/from-env")
	path := writeConfig(t, "repo:\n  path: ${PREDMARKETS_TEST_REPO}\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/from-env", cfg.Repo.Path)
}

func TestValidateRejectsUnknownAuthType(t *testing.T) {
	cfg := &Config{Repo: RepoConfig{Path: "/srv/x", Auth: &AuthConfig{Type: "kerberos"}}}
	cfg.ApplyDefaults()
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported auth type")
}

func TestValidateRejectsEmptyArtifactOverride(t *testing.T) {
	path := writeConfig(t, "repo:\n  path: /srv/x\n  artifacts: []\n")
	cfg, err := Load(path)
	// An explicit empty list is replaced by defaults rather than rejected; the
	// staging contract always has a fixed artifact set.
	require.NoError(t, err)
	assert.NotEmpty(t, cfg.Repo.Artifacts)
}

func TestInitScaffoldRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "predmarkets.yaml")

	require.NoError(t, Init(path, false))

	// Refuses to overwrite without force.
	err := Init(path, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	require.NoError(t, Init(path, true))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "main", cfg.Repo.Branch)
	assert.Len(t, cfg.Repo.Artifacts, 5)
}

func TestNormalizeLogLevel(t *testing.T) {
	assert.Equal(t, LogLevelDebug, NormalizeLogLevel("DEBUG"))
	assert.Equal(t, LogLevelWarn, NormalizeLogLevel("warning"))
	assert.Equal(t, LogLevelInfo, NormalizeLogLevel("bogus"))
	assert.Equal(t, LogFormatJSON, NormalizeLogFormat("JSON"))
	assert.Equal(t, LogFormatText, NormalizeLogFormat(""))
}
