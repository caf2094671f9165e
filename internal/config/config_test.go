package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeFull(t *testing.T) {
	cfg, err := Decode(strings.NewReader(`
heap:
  file: /tmp/heap.bin
  limit: 64MiB
  strict: true
  in_place: true
  verify_each: true
log:
  enabled: true
  dir: /tmp/logs
  level: debug
`))
	require.NoError(t, err)
	assert.Equal(t, "/tmp/heap.bin", cfg.Heap.File)
	assert.True(t, cfg.Heap.Strict)
	assert.True(t, cfg.Heap.InPlace)
	assert.True(t, cfg.Heap.VerifyEach)

	n, err := cfg.Heap.LimitBytes()
	require.NoError(t, err)
	assert.Equal(t, int64(64<<20), n)

	lvl, err := cfg.Log.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, lvl)
}

func TestDecodeEmpty(t *testing.T) {
	cfg, err := Decode(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestDecodeUnknownKey(t *testing.T) {
	_, err := Decode(strings.NewReader("heap:\n  limitt: 1MiB\n"))
	require.Error(t, err)
}

func TestDecodeBadLimit(t *testing.T) {
	_, err := Decode(strings.NewReader("heap:\n  limit: lots\n"))
	assert.True(t, errors.Is(err, ErrInvalid), "got %v", err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "heapctl.yaml")
	require.NoError(t, os.WriteFile(path, []byte("heap:\n  limit: 4 KiB\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	n, err := cfg.Heap.LimitBytes()
	require.NoError(t, err)
	assert.Equal(t, int64(4096), n)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestSetOverrides(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Set([]string{
		"heap.limit=1MB",
		"heap.strict=true",
		"heap.in_place=1",
		"log.level=warn",
	}))
	assert.Equal(t, "1MB", cfg.Heap.Limit)
	assert.True(t, cfg.Heap.Strict)
	assert.True(t, cfg.Heap.InPlace)
	assert.Equal(t, "warn", cfg.Log.Level)

	n, err := cfg.Heap.LimitBytes()
	require.NoError(t, err)
	assert.Equal(t, int64(1_000_000), n)
}

func TestSetKeepsUntouchedFields(t *testing.T) {
	cfg := Default()
	cfg.Heap.File = "keep.bin"
	require.NoError(t, cfg.Set([]string{"heap.strict=true"}))
	assert.Equal(t, "keep.bin", cfg.Heap.File)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestSetRejects(t *testing.T) {
	for _, kv := range []string{"strict=true", "heap.strict", "heap.nope=1", ".x=1", "log.level=loud"} {
		cfg := Default()
		err := cfg.Set([]string{kv})
		assert.True(t, errors.Is(err, ErrInvalid), "%s: got %v", kv, err)
	}
}
