package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var keys = []string{"TLC_OUTPUT_DIR", "TLC_EPS", "TLC_LOL", "TLC_SCAN_RULE", "TLC_LOG_LEVEL", "TLC_SHEET"}

// unset clears the TLC_* variables now and after the test, since
// godotenv writes straight into the process environment.
func unset(t *testing.T) {
	t.Helper()
	for _, k := range keys {
		os.Unsetenv(k)
	}
	t.Cleanup(func() {
		for _, k := range keys {
			os.Unsetenv(k)
		}
	})
}

func TestLoadDefaults(t *testing.T) {
	unset(t)
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Config{
		OutputDir: DefaultOutputDir,
		Eps:       DefaultEps,
		LOL:       DefaultLOL,
		Rule:      DefaultRule,
		LogLevel:  DefaultLogLevel,
	}, cfg)
}

func TestLoadEnvFile(t *testing.T) {
	unset(t)
	path := filepath.Join(t.TempDir(), "tlc.env")
	require.NoError(t, os.WriteFile(path, []byte("TLC_EPS=0.03\nTLC_SCAN_RULE=separated\nTLC_SHEET=Run 2\n"), 0o644))
	os.Setenv("TLC_LOL", "20")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.03, cfg.Eps)
	assert.Equal(t, 20.0, cfg.LOL)
	assert.Equal(t, "separated", cfg.Rule)
	assert.Equal(t, "Run 2", cfg.Sheet)
	assert.Equal(t, DefaultOutputDir, cfg.OutputDir)
}

func TestLoadErrors(t *testing.T) {
	unset(t)
	_, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	require.Error(t, err)

	os.Setenv("TLC_EPS", "small")
	_, err = Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TLC_EPS")
}
