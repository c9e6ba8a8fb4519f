package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdirTemp(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "runs.db", cfg.Store.RunHistory)
	assert.Equal(t, 0.5, cfg.Analysis.Coefficient)
	assert.Equal(t, "fmr", cfg.Analysis.RentType)
	assert.Equal(t, 50.0, cfg.Analysis.PctBurdened)
	assert.Equal(t, 4, cfg.Analysis.Concurrency)
	assert.Equal(t, "Output", cfg.Output.Dir)
	assert.Equal(t, "xlsx", cfg.Output.Format)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadEnvOverride(t *testing.T) {
	chdirTemp(t)
	t.Setenv("SOCIAL_ANALYSIS_COEFFICIENT", "1.5")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 1.5, cfg.Analysis.Coefficient)
}

func TestLoadConfigFile(t *testing.T) {
	chdirTemp(t)

	yaml := `
analysis:
  coefficient: 1.0
  rent_type: rent50
output:
  dir: results
`
	require.NoError(t, os.WriteFile(filepath.Join(".", "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 1.0, cfg.Analysis.Coefficient)
	assert.Equal(t, "rent50", cfg.Analysis.RentType)
	assert.Equal(t, "results", cfg.Output.Dir)
	// Untouched keys keep their defaults.
	assert.Equal(t, "xlsx", cfg.Output.Format)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	require.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))

	err := InitLogger(LogConfig{Level: "nonsense", Format: "json"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse log level")
}
