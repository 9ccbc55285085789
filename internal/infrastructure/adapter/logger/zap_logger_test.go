package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amirhossein-jamali/gem-ledger/internal/domain/port/core"
)

func TestZapLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	log, err := NewZapLogger(Options{Production: true, Level: "warn", OutputPath: path})
	require.NoError(t, err)

	child := log.With(map[string]any{"component": "ledger"})
	child.Info("dropped", nil)
	child.Warn("kept", map[string]any{"account_id": 7})

	log.SetLevel(core.LogLevelDebug)
	assert.Equal(t, core.LogLevelDebug, child.GetLevel(), "children share the level")
	child.Debug("now visible", nil)
	_ = log.Flush()

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(raw)

	assert.NotContains(t, out, "dropped")
	assert.Contains(t, out, `"message":"kept"`)
	assert.Contains(t, out, `"component":"ledger"`)
	assert.Contains(t, out, `"account_id":7`)
	assert.Contains(t, out, "now visible")
}

func TestNoopLogger(t *testing.T) {
	log := NewNoopLogger()
	log.SetLevel(core.LogLevelError)

	assert.Equal(t, core.LogLevelError, log.GetLevel())
	assert.Same(t, log, log.With(map[string]any{"a": 1}))
	assert.NoError(t, log.Flush())
}
