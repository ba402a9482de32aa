package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, []string{"claude", "gemini"}, cfg.Reasoning.Priority)
	assert.Equal(t, 10, cfg.Retrieval.Limit)
	assert.Equal(t, 0.7, cfg.Retrieval.ScoreThreshold)
	assert.Equal(t, 1000, cfg.Chunking.ChunkSize)
	assert.Equal(t, 200, cfg.Chunking.Overlap)
	assert.Equal(t, 768, cfg.Embedding.Dimension)
	require.NoError(t, cfg.Validate())
}

func TestLoadFromFilesOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "galen.toml")
	content := `
environment = "production"

[retrieval]
limit = 5
score_threshold = 0.6

[chunking]
chunk_size = 500
overlap = 100

[reasoning]
priority = ["gemini"]
timeout = "30s"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadFromFiles(path)
	require.NoError(t, err)
	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, 5, cfg.Retrieval.Limit)
	assert.Equal(t, 0.6, cfg.Retrieval.ScoreThreshold)
	assert.Equal(t, 500, cfg.Chunking.ChunkSize)
	assert.Equal(t, []string{"gemini"}, cfg.Reasoning.Priority)

	// untouched sections keep defaults
	assert.Equal(t, "gemini-2.0-flash", cfg.Gemini.Model)
}

func TestLoadFromFilesLaterFileWins(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "base.toml")
	second := filepath.Join(dir, "override.toml")
	require.NoError(t, os.WriteFile(first, []byte("[retrieval]\nlimit = 5\n"), 0644))
	require.NoError(t, os.WriteFile(second, []byte("[retrieval]\nlimit = 7\n"), 0644))

	cfg, err := LoadFromFiles(first, second)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Retrieval.Limit)
}

func TestLoadFromFilesMissingFile(t *testing.T) {
	_, err := LoadFromFiles("/nonexistent/galen.toml")
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("GALEN_ENV", "production")
	t.Setenv("GALEN_LOG_LEVEL", "debug")
	t.Setenv("GALEN_EMBEDDING_PROVIDER", "hash")
	t.Setenv("GALEN_CLAUDE_API_KEY", "sk-test")
	t.Setenv("GALEN_REASONING_PRIORITY", "gemini, claude")

	cfg, err := LoadFromFiles()
	require.NoError(t, err)
	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "hash", cfg.Embedding.Provider)
	assert.Equal(t, "sk-test", cfg.Claude.APIKey)
	assert.Equal(t, []string{"gemini", "claude"}, cfg.Reasoning.Priority)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Logging.Level = "verbose"
	assert.Error(t, cfg.Validate())

	cfg = NewDefaultConfig()
	cfg.Retrieval.ScoreThreshold = 1.5
	assert.Error(t, cfg.Validate())

	cfg = NewDefaultConfig()
	cfg.Chunking.ChunkSize = 0
	assert.Error(t, cfg.Validate())
}

func TestParseTimeout(t *testing.T) {
	assert.Equal(t, 30*time.Second, ParseTimeout("30s", time.Minute))
	assert.Equal(t, time.Minute, ParseTimeout("", time.Minute))
	assert.Equal(t, time.Minute, ParseTimeout("not-a-duration", time.Minute))
	assert.Equal(t, time.Minute, ParseTimeout("-5s", time.Minute))
}
