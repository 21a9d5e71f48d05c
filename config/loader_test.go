package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", "")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, 16, cfg.Corpus.CacheSize)
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "wordsplit.yaml", `
server:
  addr: ":9090"
  max_text_runes: 50
  read_timeout: 3s
corpus:
  source: /data/words.txt
  watch: true
log:
  level: debug
  format: json
batch:
  workers: 4
`)
	cfg, err := Load(path, "")
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 50, cfg.Server.MaxTextRunes)
	assert.Equal(t, 3*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 1<<20, cfg.Server.BodyLimit, "unset fields keep defaults")
	assert.Equal(t, "/data/words.txt", cfg.Corpus.Source)
	assert.True(t, cfg.Corpus.Watch)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 4, cfg.Batch.Workers)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), "")
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Load(writeFile(t, "bad.yaml", "server: [1, 2"), "")
	assert.Error(t, err)

	_, err = Load(writeFile(t, "c.toml", "x = 1"), "")
	assert.ErrorContains(t, err, "unsupported format")

	_, err = Load(writeFile(t, "c.yaml", "log:\n  format: xml\n"), "")
	assert.ErrorContains(t, err, "log.format")
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("WORDSPLIT_ADDR", ":7000")
	t.Setenv("WORDSPLIT_MAX_TEXT_RUNES", "12")
	t.Setenv("WORDSPLIT_MAX_BATCH", "7")
	t.Setenv("WORDSPLIT_WATCH", "true")

	cfg, err := Load(writeFile(t, "c.yaml", "server:\n  addr: \":9090\"\n"), "")
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Server.Addr)
	assert.Equal(t, 12, cfg.Server.MaxTextRunes)
	assert.Equal(t, 7, cfg.Server.MaxBatch)
	assert.True(t, cfg.Corpus.Watch)
}

func TestLoadEnvOverrideInvalid(t *testing.T) {
	t.Setenv("WORDSPLIT_BATCH_WORKERS", "many")
	_, err := Load("", "")
	assert.ErrorContains(t, err, "WORDSPLIT_BATCH_WORKERS")
}

func TestLoadEnvOverrideInvalidMaxBatch(t *testing.T) {
	t.Setenv("WORDSPLIT_MAX_BATCH", "lots")
	_, err := Load("", "")
	assert.ErrorContains(t, err, "WORDSPLIT_MAX_BATCH")
}

func TestLoadDotEnv(t *testing.T) {
	t.Setenv("WORDSPLIT_CORPUS", "")
	os.Unsetenv("WORDSPLIT_CORPUS")
	env := writeFile(t, ".env", "WORDSPLIT_CORPUS=sqlite://words.db\n")
	t.Cleanup(func() { os.Unsetenv("WORDSPLIT_CORPUS") })

	cfg, err := Load("", env)
	require.NoError(t, err)
	assert.Equal(t, "sqlite://words.db", cfg.Corpus.Source)

	_, err = Load("", filepath.Join(t.TempDir(), "absent.env"))
	assert.NoError(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	cfg.Server.Addr = ""
	cfg.Batch.Workers = -1
	err := cfg.Validate()
	assert.ErrorContains(t, err, "server.addr")
	assert.ErrorContains(t, err, "batch.workers")
}
