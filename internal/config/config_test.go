package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefaultMatchesAggregatorDefaults(t *testing.T) {
	cfg := Default()
	tc := cfg.ThreadConfig()
	assert.Equal(t, 10, tc.MaxComments)
	assert.Equal(t, 2, tc.MaxDepth)
	assert.Equal(t, 3, tc.MaxChildrenPerNode)
	assert.Equal(t, 100*time.Millisecond, tc.InterRequestDelay)
	assert.NoError(t, cfg.Validate())
}

func TestLoadOverlaysFile(t *testing.T) {
	t.Setenv(EnvNewsAPIKey, " secret ")
	t.Setenv(EnvGNewsKey, "")
	t.Setenv(EnvCongressKey, "c0ngress")
	path := writeFile(t, "config.toml", `
log_level = "debug"
history_path = ""

[thread]
max_comments = 4
request_delay = "250ms"

[http]
timeout = "3s"

[arxiv]
category = "cs.LG"

[sources]
enabled = ["hackernews", "arxiv"]
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Empty(t, cfg.HistoryPath)
	assert.Equal(t, 4, cfg.Thread.MaxComments)
	assert.Equal(t, 2, cfg.Thread.MaxDepth, "unset keys keep defaults")
	assert.Equal(t, 250*time.Millisecond, cfg.Thread.RequestDelay)
	assert.Equal(t, 3*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, "cs.LG", cfg.Arxiv.Category)
	assert.Equal(t, 5, cfg.Arxiv.MaxResults)
	assert.Equal(t, []string{"hackernews", "arxiv"}, cfg.Sources.Enabled)
	assert.Equal(t, "secret", cfg.NewsAPIKey)
	assert.Empty(t, cfg.GNewsKey)
	assert.Equal(t, "c0ngress", cfg.CongressKey)
}

func TestLoadMissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.toml")

	t.Setenv(EnvConfigPath, missing)
	cfg, err := Load("")
	require.NoError(t, err, "default location may be absent")
	assert.Equal(t, "warn", cfg.LogLevel)

	_, err = Load(missing)
	assert.Error(t, err, "an explicit path must exist")
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name, body string
	}{
		{"syntax", "log_level = "},
		{"negative depth", "[thread]\nmax_depth = -1"},
		{"zero concurrency", "concurrency = 0"},
		{"bad duration", "[thread]\nrequest_delay = \"soon\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, "config.toml", tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	t.Setenv("INGEST_TEST_PRESET", "keep")
	t.Setenv("INGEST_TEST_NEW", "")
	os.Unsetenv("INGEST_TEST_NEW")
	t.Setenv("INGEST_TEST_QUOTED", "")
	os.Unsetenv("INGEST_TEST_QUOTED")

	path := writeFile(t, ".env", `
# comment
INGEST_TEST_PRESET=override
INGEST_TEST_NEW=value
export INGEST_TEST_QUOTED="a b"
not a pair
`)
	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "keep", os.Getenv("INGEST_TEST_PRESET"))
	assert.Equal(t, "value", os.Getenv("INGEST_TEST_NEW"))
	assert.Equal(t, "a b", os.Getenv("INGEST_TEST_QUOTED"))

	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "absent")))
}

func TestReadEnv(t *testing.T) {
	t.Setenv("INGEST_A", "  ")
	t.Setenv("INGEST_B", "b")
	assert.Equal(t, "b", ReadEnv("INGEST_A", "INGEST_B"))
	assert.Empty(t, ReadEnv("INGEST_A"))
}
